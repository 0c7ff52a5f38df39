package view

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/samvad-hq/samvad-newsdesk/internal/config"
	"github.com/samvad-hq/samvad-newsdesk/internal/domain"
	"github.com/samvad-hq/samvad-newsdesk/internal/logger"
	"github.com/samvad-hq/samvad-newsdesk/pkg/async"
	"github.com/samvad-hq/samvad-newsdesk/pkg/dom"
	"github.com/samvad-hq/samvad-newsdesk/pkg/newsapi"
	"github.com/samvad-hq/samvad-newsdesk/pkg/publishers"
)

// NewsSource fetches articles for the controller.
type NewsSource interface {
	TopHeadlines(ctx context.Context, country string) *async.Future[*newsapi.Response]
	Everything(ctx context.Context, query string) *async.Future[*newsapi.Response]
}

// Enricher fills gaps in fetched articles before they are rendered.
type Enricher interface {
	Enrich(ctx context.Context, articles []domain.Article) []domain.Article
}

// EventPublisher receives the outcome of every load that reaches the page.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}

// History records issued queries.
type History interface {
	RecordQuery(q domain.Query, at time.Time) error
}

// State is the controller's position in the load cycle.
type State int

const (
	Idle State = iota
	Loading
	Rendered
	Empty
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Rendered:
		return "rendered"
	case Empty:
		return "empty"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Outcome describes how a load completed. A stale outcome left the page untouched.
type Outcome struct {
	Generation uint64
	Query      domain.Query
	State      State
	Articles   []domain.Article
	Err        error
	Stale      bool
}

// Options configures a Controller.
type Options struct {
	ContainerID      string
	PlaceholderImage string
	DefaultCountry   string
	Context          context.Context
	Logger           logger.Logger
	Enricher         Enricher
	Publisher        EventPublisher
	History          History
}

// Controller drives the news page. All document mutations happen under mu.
type Controller struct {
	doc       *dom.Document
	container *dom.Element
	news      NewsSource
	opts      Options
	log       logger.Logger

	form *dom.Element

	mu     sync.Mutex
	state  State
	gen    uint64
	loader *dom.Element
}

// NewController binds a controller to doc. The results container must exist.
func NewController(doc *dom.Document, news NewsSource, opts Options) (*Controller, error) {
	if doc == nil || doc.Root() == nil {
		return nil, errors.New("view: document is nil")
	}
	if news == nil {
		return nil, errors.New("view: news source is nil")
	}
	if opts.ContainerID == "" {
		opts.ContainerID = DefaultContainerID
	}
	if opts.DefaultCountry == "" {
		opts.DefaultCountry = newsapi.DefaultCountry
	}
	if strings.TrimSpace(opts.PlaceholderImage) == "" {
		opts.PlaceholderImage = config.DefaultPlaceholderImage
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}

	container := doc.GetElementByID(opts.ContainerID)
	if container == nil {
		return nil, fmt.Errorf("view: container %q not found", opts.ContainerID)
	}

	return &Controller{
		doc:       doc,
		container: container,
		news:      news,
		opts:      opts,
		log:       logger.Ensure(opts.Logger),
	}, nil
}

// Bind installs the form submit and document-ready listeners.
func (c *Controller) Bind() error {
	form := c.doc.Form(FormName)
	if form == nil {
		return fmt.Errorf("view: form %q not found", FormName)
	}
	c.form = form
	form.SetListener("onSubmit", func(ev *dom.Event) {
		ev.WaitUntil(c.Submit(ev.Ctx(), ev.Form).Done())
	})
	c.doc.Root().SetListener("on"+dom.ReadyEvent, func(ev *dom.Event) {
		ev.WaitUntil(c.Ready(ev.Ctx()).Done())
	})
	return nil
}

// Document returns the controlled document. Callers must not walk it while
// loads are in flight; use WriteHTML or Form instead.
func (c *Controller) Document() *dom.Document { return c.doc }

// Form returns the bound search form, or nil before Bind.
func (c *Controller) Form() *dom.Element { return c.form }

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Generation returns the number of loads started so far.
func (c *Controller) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// WriteHTML renders the current document to w.
func (c *Controller) WriteHTML(w io.Writer) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return dom.RenderDocument(w, c.doc)
}

// Ready loads with the values the form currently shows.
func (c *Controller) Ready(ctx context.Context) *async.Future[Outcome] {
	c.mu.Lock()
	q := c.formQuery()
	c.mu.Unlock()
	return c.load(ctx, q)
}

// Submit reflects the posted country and search into the form and loads them.
func (c *Controller) Submit(ctx context.Context, form url.Values) *async.Future[Outcome] {
	q := domain.Query{
		Country: strings.TrimSpace(form.Get("country")),
		Search:  strings.TrimSpace(form.Get("search")),
	}
	c.mu.Lock()
	c.setFormValues(q)
	c.mu.Unlock()
	return c.load(ctx, q)
}

// Load starts a load for q using the controller context.
func (c *Controller) Load(q domain.Query) *async.Future[Outcome] {
	return c.load(c.opts.Context, q)
}

func (c *Controller) load(ctx context.Context, q domain.Query) *async.Future[Outcome] {
	if ctx == nil {
		ctx = c.opts.Context
	}
	q.Search = strings.TrimSpace(q.Search)
	q.Country = strings.TrimSpace(q.Country)
	if q.Country == "" {
		q.Country = c.opts.DefaultCountry
	}

	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.state = Loading
	c.showLoader()
	c.mu.Unlock()

	c.log.InfoObj("news load started", "news_load", map[string]any{
		"generation": gen,
		"kind":       q.Kind(),
		"country":    q.Country,
		"search":     q.Search,
	})
	c.recordHistory(q)

	var fetch *async.Future[*newsapi.Response]
	if q.Kind() == domain.KindEverything {
		fetch = c.news.Everything(ctx, q.Search)
	} else {
		fetch = c.news.TopHeadlines(ctx, q.Country)
	}

	out, resolve := async.New[Outcome]()
	fetch.Then(func(res async.Result[*newsapi.Response]) {
		var articles []domain.Article
		if res.Err == nil && res.Value != nil {
			articles = res.Value.Articles
		}
		if res.Err == nil && len(articles) > 0 && c.opts.Enricher != nil && c.isCurrent(gen) {
			articles = c.opts.Enricher.Enrich(ctx, articles)
		}

		outcome := c.complete(gen, q, articles, res.Err)
		if !outcome.Stale {
			c.publish(ctx, outcome)
		}
		resolve(async.Result[Outcome]{Value: outcome})
	})
	return out
}

func (c *Controller) isCurrent(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return gen == c.gen
}

// complete applies a finished load to the page unless a newer load has started.
func (c *Controller) complete(gen uint64, q domain.Query, articles []domain.Article, err error) Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()

	outcome := Outcome{Generation: gen, Query: q, Articles: articles, Err: err}
	if gen != c.gen {
		outcome.Stale = true
		c.log.DebugObj("stale news load discarded", "news_load_stale", map[string]any{
			"generation": gen,
			"current":    c.gen,
		})
		return outcome
	}

	c.removeLoader()
	switch {
	case err != nil:
		c.state = Failed
		c.log.ErrorObj("news load failed", "news_load_error", map[string]any{
			"generation": gen,
			"kind":       q.Kind(),
			"error":      err.Error(),
		})
	case len(articles) == 0:
		c.state = Empty
		c.container.ClearChildren()
		c.container.AppendChild(emptyTemplate())
	default:
		c.state = Rendered
		c.container.ClearChildren()
		for _, a := range articles {
			c.container.AppendChild(cardTemplate(a, c.opts.PlaceholderImage))
		}
	}
	outcome.State = c.state
	return outcome
}

// showLoader inserts the loading indicator right before the container.
// At most one indicator is attached at a time.
func (c *Controller) showLoader() {
	if c.loader != nil && c.loader.Parent() != nil {
		return
	}
	parent := c.container.Parent()
	if parent == nil {
		return
	}
	c.loader = loaderTemplate()
	parent.InsertBefore(c.loader, c.container)
}

func (c *Controller) removeLoader() {
	if c.loader == nil {
		return
	}
	c.loader.Remove()
	c.loader = nil
}

func (c *Controller) recordHistory(q domain.Query) {
	if c.opts.History == nil {
		return
	}
	if err := c.opts.History.RecordQuery(q, time.Now()); err != nil {
		c.log.WarnObj("query history write failed", "history_error", map[string]any{
			"error": err.Error(),
		})
	}
}

func (c *Controller) publish(ctx context.Context, o Outcome) {
	if c.opts.Publisher == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			c.log.ErrorObj("outcome publish panicked", "publish_error", map[string]any{
				"generation": o.Generation,
				"panic":      fmt.Sprint(r),
			})
		}
	}()
	evt := publishers.NewEvent(o.Generation, o.Query, eventState(o.State), o.Articles, o.Err)
	n, err := c.opts.Publisher.Publish(context.WithoutCancel(ctx), evt)
	if err != nil {
		c.log.WarnObj("outcome publish failed", "publish_error", map[string]any{
			"generation": o.Generation,
			"delivered":  n,
			"error":      err.Error(),
		})
	}
}

func eventState(s State) string {
	switch s {
	case Rendered:
		return publishers.StateRendered
	case Empty:
		return publishers.StateEmpty
	default:
		return publishers.StateFailed
	}
}

// formQuery reads the selected country and search text from the form.
func (c *Controller) formQuery() domain.Query {
	var q domain.Query
	form := c.doc.Form(FormName)
	if form == nil {
		return q
	}
	if sel := namedControl(form, "country"); sel != nil {
		q.Country = selectedValue(sel)
	}
	if in := namedControl(form, "search"); in != nil {
		q.Search, _ = in.Attr("value")
	}
	return q
}

func (c *Controller) setFormValues(q domain.Query) {
	form := c.doc.Form(FormName)
	if form == nil {
		return
	}
	if sel := namedControl(form, "country"); sel != nil && q.Country != "" {
		for _, opt := range sel.ChildElements() {
			if v, _ := opt.Attr("value"); v == q.Country {
				opt.SetAttr("selected", "selected")
			} else {
				opt.RemoveAttr("selected")
			}
		}
	}
	if in := namedControl(form, "search"); in != nil {
		if q.Search == "" {
			in.RemoveAttr("value")
		} else {
			in.SetAttr("value", q.Search)
		}
	}
}

func namedControl(form *dom.Element, name string) *dom.Element {
	var found *dom.Element
	form.Walk(func(e *dom.Element) bool {
		if n, _ := e.Attr("name"); n == name && e != form {
			found = e
			return false
		}
		return true
	})
	return found
}

// selectedValue mirrors browser select semantics: the selected option, else the first.
func selectedValue(sel *dom.Element) string {
	opts := sel.ChildElements()
	for _, opt := range opts {
		if _, ok := opt.Attr("selected"); ok {
			v, _ := opt.Attr("value")
			return v
		}
	}
	if len(opts) > 0 {
		v, _ := opts[0].Attr("value")
		return v
	}
	return ""
}
