package publishers

import (
	"time"

	"github.com/samvad-hq/samvad-newsdesk/internal/domain"
)

// Event states.
const (
	StateRendered = "rendered"
	StateEmpty    = "empty"
	StateFailed   = "failed"
)

// Event represents the outcome of one page load, published downstream.
type Event struct {
	Generation   uint64           `json:"generation"`
	Kind         string           `json:"kind"`
	Country      string           `json:"country,omitempty"`
	Query        string           `json:"query,omitempty"`
	State        string           `json:"state"`
	ArticleCount int              `json:"article_count"`
	Articles     []domain.Article `json:"articles,omitempty"`
	Error        string           `json:"error,omitempty"`
	CompletedAt  time.Time        `json:"completed_at"`
}

// NewEvent constructs an Event for the given load.
func NewEvent(generation uint64, q domain.Query, state string, articles []domain.Article, err error) Event {
	evt := Event{
		Generation:   generation,
		Kind:         q.Kind(),
		Country:      q.Country,
		Query:        q.Search,
		State:        state,
		ArticleCount: len(articles),
		Articles:     articles,
		CompletedAt:  time.Now().UTC(),
	}
	if err != nil {
		evt.Error = err.Error()
	}
	return evt
}
