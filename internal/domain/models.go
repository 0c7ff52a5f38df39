package domain

import "strings"

// Domain contains core models shared across packages.

// Source identifies the publication an article came from.
type Source struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Article is one news item as returned by the news API. Optional fields the
// API leaves null decode to empty strings.
type Article struct {
	Source      Source `json:"source"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
	Content     string `json:"content"`
}

// Query kinds.
const (
	KindTopHeadlines = "top_headlines"
	KindEverything   = "everything"
)

// Query is the form state that drives a load.
type Query struct {
	Country string `json:"country,omitempty"`
	Search  string `json:"search,omitempty"`
}

// Kind reports which endpoint the query targets: free-text search wins over country.
func (q Query) Kind() string {
	if strings.TrimSpace(q.Search) != "" {
		return KindEverything
	}
	return KindTopHeadlines
}
