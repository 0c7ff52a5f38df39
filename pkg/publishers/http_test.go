package publishers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/samvad-hq/samvad-newsdesk/internal/domain"
)

func TestHTTPPublisherPostsEventJSON(t *testing.T) {
	var got Event
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		if tok := r.Header.Get("Authorization"); tok != "Bearer t" {
			t.Errorf("authorization = %q", tok)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	pub, err := newHTTPPublisher(context.Background(), PublisherConfig{
		ID:   "hook",
		Type: TypeHTTP,
		HTTP: &HTTPPublisherConfig{
			URL:     srv.URL,
			Method:  http.MethodPut,
			Headers: map[string]string{"Authorization": "Bearer t"},
		},
	}, nil)
	if err != nil {
		t.Fatalf("newHTTPPublisher: %v", err)
	}

	evt := NewEvent(3, domain.Query{Search: "rust"}, StateRendered, []domain.Article{{Title: "a"}}, nil)
	if err := pub.Publish(context.Background(), evt); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if got.Generation != 3 || got.Kind != domain.KindEverything || got.Query != "rust" || got.ArticleCount != 1 {
		t.Fatalf("unexpected payload %+v", got)
	}
}

func TestHTTPPublisherReportsStatusAndSnippet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	pub, err := newHTTPPublisher(context.Background(), PublisherConfig{
		ID:   "hook",
		Type: TypeHTTP,
		HTTP: &HTTPPublisherConfig{URL: srv.URL},
	}, nil)
	if err != nil {
		t.Fatalf("newHTTPPublisher: %v", err)
	}

	err = pub.Publish(context.Background(), Event{})
	if err == nil {
		t.Fatalf("expected error on non-2xx response")
	}
	if want := "http response status 429: quota exceeded"; err.Error() != want {
		t.Fatalf("error = %q, want %q", err.Error(), want)
	}
}

func TestHTTPPublisherRequiresConfig(t *testing.T) {
	if _, err := newHTTPPublisher(context.Background(), PublisherConfig{ID: "x", Type: TypeHTTP}, nil); err == nil {
		t.Fatalf("expected error without http block")
	}
}

func TestNewEventCarriesFailure(t *testing.T) {
	evt := NewEvent(1, domain.Query{Country: "ua"}, StateFailed, nil, errors.New("request failed with status code 404"))
	if evt.Kind != domain.KindTopHeadlines || evt.Country != "ua" {
		t.Fatalf("unexpected query fields %+v", evt)
	}
	if evt.Error == "" || evt.ArticleCount != 0 || evt.CompletedAt.IsZero() {
		t.Fatalf("unexpected failure event %+v", evt)
	}
}
