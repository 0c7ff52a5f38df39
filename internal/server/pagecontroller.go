package server

import (
	"bytes"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samvad-hq/samvad-newsdesk/internal/view"
	"github.com/samvad-hq/samvad-newsdesk/pkg/dom"
)

// RegisterPageRoutes registers the rendered page and its form target.
func RegisterPageRoutes(r *gin.Engine, d Deps) {
	r.GET("/", func(c *gin.Context) { handlePage(c, d) })
	r.POST("/news", func(c *gin.Context) { handleSubmit(c, d) })
}

func handlePage(c *gin.Context, d Deps) {
	var buf bytes.Buffer
	if err := d.Page.WriteHTML(&buf); err != nil {
		c.String(http.StatusInternalServerError, "render page: %v", err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// handleSubmit dispatches a submit event on the form, waits for the load to
// settle and redirects back to the page.
func handleSubmit(c *gin.Context, d Deps) {
	if err := c.Request.ParseForm(); err != nil {
		c.String(http.StatusBadRequest, "invalid form: %v", err)
		return
	}
	form := d.Page.Form()
	if form == nil {
		c.String(http.StatusInternalServerError, "form %q not bound", view.FormName)
		return
	}

	ev := dom.NewEvent(context.WithoutCancel(c.Request.Context()), "submit")
	ev.Form = c.Request.PostForm
	if !form.Dispatch(ev) {
		c.String(http.StatusInternalServerError, "submit handler not bound")
		return
	}

	waitCtx, cancel := context.WithTimeout(c.Request.Context(), d.SubmitWait)
	defer cancel()
	if err := ev.Wait(waitCtx); err != nil {
		d.Logger.WarnObj("submit did not settle before redirect", "submit_wait", map[string]any{
			"error": err.Error(),
		})
	}
	c.Redirect(http.StatusSeeOther, "/")
}
