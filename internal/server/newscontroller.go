package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/samvad-hq/samvad-newsdesk/internal/domain"
	"github.com/samvad-hq/samvad-newsdesk/pkg/newsapi"
)

const defaultHistoryLimit = 20

// RegisterNewsAPIRoutes registers the JSON endpoints.
func RegisterNewsAPIRoutes(r *gin.Engine, d Deps) {
	api := r.Group("/api")
	api.GET("/news", func(c *gin.Context) { handleNews(c, d) })
	api.GET("/history", func(c *gin.Context) { handleHistory(c, d) })
}

// handleNews proxies one query to the news service without touching the page.
func handleNews(c *gin.Context, d Deps) {
	q := domain.Query{
		Country: strings.TrimSpace(c.Query("country")),
		Search:  strings.TrimSpace(c.Query("search")),
	}

	var resp *newsapi.Response
	var err error
	if q.Kind() == domain.KindEverything {
		resp, err = d.News.Everything(c.Request.Context(), q.Search).Await(c.Request.Context())
	} else {
		resp, err = d.News.TopHeadlines(c.Request.Context(), q.Country).Await(c.Request.Context())
	}
	if err != nil {
		d.Logger.ErrorObj("news api request failed", "api_news_error", map[string]any{
			"kind":  q.Kind(),
			"error": err.Error(),
		})
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	articles := []domain.Article{}
	if resp != nil && resp.Articles != nil {
		articles = resp.Articles
	}
	c.JSON(http.StatusOK, gin.H{
		"kind":     q.Kind(),
		"count":    len(articles),
		"articles": articles,
	})
}

func handleHistory(c *gin.Context, d Deps) {
	if d.History == nil {
		c.JSON(http.StatusOK, gin.H{"queries": []any{}})
		return
	}
	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	entries, err := d.History.RecentQueries(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if entries == nil {
		c.JSON(http.StatusOK, gin.H{"queries": []any{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"queries": entries})
}
