package view

import (
	"html"
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/samvad-hq/samvad-newsdesk/internal/domain"
	"github.com/samvad-hq/samvad-newsdesk/pkg/dom"
)

const (
	// DefaultContainerID is the id of the results container.
	DefaultContainerID = "news-container"
	// FormName is the name of the search form.
	FormName = "newsControls"

	emptyMessage  = "No news found for your search"
	readMoreLabel = "Read more!"
	loaderClass   = "lds-spinner"
	loaderBlades  = 12
)

// textPolicy strips markup some publishers embed in titles and descriptions.
var textPolicy = bluemonday.StrictPolicy()

// DefaultCountries populates the country select.
var DefaultCountries = []string{"ua", "us", "gb", "de", "fr", "in", "jp", "ca", "au"}

// PageOptions configures NewPage.
type PageOptions struct {
	Title          string
	Action         string
	ContainerID    string
	Countries      []string
	DefaultCountry string
}

// NewPage builds the news page: search form first, then the results container.
func NewPage(opts PageOptions) *dom.Document {
	if opts.Title == "" {
		opts.Title = "News"
	}
	if opts.Action == "" {
		opts.Action = "/news"
	}
	if opts.ContainerID == "" {
		opts.ContainerID = DefaultContainerID
	}
	if len(opts.Countries) == 0 {
		opts.Countries = DefaultCountries
	}

	options := make([]*dom.Element, 0, len(opts.Countries))
	for _, c := range opts.Countries {
		attrs := dom.Attrs{"value": c}
		if c == opts.DefaultCountry {
			attrs["selected"] = "selected"
		}
		options = append(options, dom.El("option", attrs, strings.ToUpper(c)))
	}

	root := dom.El("html", dom.Attrs{"lang": "en"},
		dom.El("head", nil,
			dom.El("meta", dom.Attrs{"charset": "utf-8"}),
			dom.El("title", nil, opts.Title),
		),
		dom.El("body", nil,
			dom.El("div", dom.Attrs{"class": "container"},
				dom.El("form", dom.Attrs{"name": FormName, "method": "post", "action": opts.Action},
					dom.El("select", dom.Attrs{"name": "country"}, options),
					dom.El("input", dom.Attrs{"type": "text", "name": "search", "placeholder": "Search", "autocomplete": "off"}),
					dom.El("button", dom.Attrs{"type": "submit", "class": "btn"}, "Search"),
				),
				dom.El("div", dom.Attrs{"id": opts.ContainerID, "class": "row"}),
			),
		),
	)
	return dom.NewDocument(root)
}

// cardTemplate renders one article. Missing title and description render as
// empty text.
func cardTemplate(a domain.Article, placeholder string) *dom.Element {
	src := safeURL(a.URLToImage, placeholder)
	return dom.El("div", dom.Attrs{"class": "card"},
		dom.El("div", dom.Attrs{"class": "card-image"},
			dom.El("img", dom.Attrs{"src": src, "onError": imageFallback(placeholder)}),
			dom.El("span", dom.Attrs{"class": "card-title"}, plainText(a.Title)),
		),
		dom.El("div", dom.Attrs{"class": "card-content"},
			dom.El("p", nil, plainText(a.Description)),
		),
		dom.El("div", dom.Attrs{"class": "card-action"},
			dom.El("a", dom.Attrs{"href": safeURL(a.URL, "#")}, readMoreLabel),
		),
	)
}

// safeURL returns raw when it is an absolute http(s) URL, else fallback.
// Article links and images come from third-party publishers.
func safeURL(raw, fallback string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return fallback
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return raw
	default:
		return fallback
	}
}

// plainText drops tags from s. Entities are decoded again since the renderer
// escapes text nodes itself.
func plainText(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(s)))
}

// imageFallback swaps the image source to placeholder, in-process on
// Dispatch and in the browser through the inline handler.
func imageFallback(placeholder string) dom.Listener {
	return dom.Listener{
		Func: func(ev *dom.Event) {
			if ev.Target != nil {
				ev.Target.SetAttr("src", placeholder)
			}
		},
		Script: "this.onerror=null;this.src='" + strings.ReplaceAll(placeholder, "'", "%27") + "';",
	}
}

func emptyTemplate() *dom.Element {
	return dom.El("div", dom.Attrs{"class": "empty-message"}, emptyMessage)
}

func loaderTemplate() *dom.Element {
	blades := make([]*dom.Element, loaderBlades)
	for i := range blades {
		blades[i] = dom.El("div", nil)
	}
	return dom.El("div", dom.Attrs{"class": loaderClass}, blades)
}
