package enrich

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/samvad-hq/samvad-newsdesk/internal/domain"
	"github.com/samvad-hq/samvad-newsdesk/pkg/httpclient"
)

type stubResponse struct {
	body   []byte
	status int
}

func (s stubResponse) Body() []byte        { return s.body }
func (s stubResponse) StatusCode() int     { return s.status }
func (s stubResponse) Header() http.Header { return http.Header{} }

type stubClient struct {
	resp  httpclient.Response
	calls int
}

func (s *stubClient) Get(context.Context, string, map[string]string) (httpclient.Response, error) {
	s.calls++
	return s.resp, nil
}

func (s *stubClient) Post(context.Context, string, []byte, map[string]string) (httpclient.Response, error) {
	return s.resp, nil
}

func TestParseMetaPrefersOGTags(t *testing.T) {
	html := []byte(`
<html>
  <head>
    <title>Fallback</title>
    <meta name="description" content="Plain desc">
    <meta property="og:title" content="OG Title">
    <meta property="og:description" content="OG Desc">
    <meta property="og:image" content="/img/og.png">
  </head>
</html>`)

	meta, err := parseMeta(html)
	if err != nil {
		t.Fatalf("parseMeta: %v", err)
	}
	if meta.Title != "OG Title" || meta.Description != "OG Desc" || meta.ImageURL != "/img/og.png" {
		t.Fatalf("unexpected meta %#v", meta)
	}
}

func TestResolveURL(t *testing.T) {
	if got := resolveURL("/img.png", "https://example.com/articles/1"); got != "https://example.com/img.png" {
		t.Fatalf("resolveURL got %q", got)
	}
	if got := resolveURL("", "https://example.com"); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}

func TestEnrichFillsOnlyMissingFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != "desk-test" {
			t.Errorf("user agent = %q", ua)
		}
		w.Write([]byte(`<html><head>
			<meta property="og:description" content="From page">
			<meta property="og:image" content="/cover.jpg">
		</head></html>`))
	}))
	defer srv.Close()

	e := New(httpclient.NewRestyClient(0), Options{UserAgent: "desk-test"})
	in := []domain.Article{
		{Title: "kept", Description: "own", URL: srv.URL + "/a"},
		{Title: "complete", Description: "d", URLToImage: "https://img/x.png", URL: srv.URL + "/b"},
	}
	out := e.Enrich(context.Background(), in)

	if out[0].Description != "own" {
		t.Fatalf("existing description overwritten: %q", out[0].Description)
	}
	if out[0].URLToImage != srv.URL+"/cover.jpg" {
		t.Fatalf("image not resolved: %q", out[0].URLToImage)
	}
	if out[1] != in[1] {
		t.Fatalf("complete article changed: %+v", out[1])
	}
	if in[0].URLToImage != "" {
		t.Fatalf("input slice mutated")
	}
}

func TestEnrichRespectsMaxArticles(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.Write([]byte(`<html></html>`))
	}))
	defer srv.Close()

	e := New(httpclient.NewRestyClient(0), Options{MaxArticles: 2})
	e.Enrich(context.Background(), []domain.Article{{URL: srv.URL}, {URL: srv.URL}, {URL: srv.URL}})
	if got := hits.Load(); got != 2 {
		t.Fatalf("expected 2 fetches, got %d", got)
	}
}

func TestEnrichKeepsArticleOnFailureAndLimitsBody(t *testing.T) {
	client := &stubClient{resp: stubResponse{status: http.StatusNotFound}}
	e := New(client, Options{})
	art := domain.Article{Title: "t", URL: "https://example.com/404"}
	if out := e.Enrich(context.Background(), []domain.Article{art}); out[0] != art {
		t.Fatalf("failed fetch must keep the article, got %+v", out[0])
	}

	client.resp = stubResponse{status: http.StatusOK, body: bytes.Repeat([]byte("a"), maxHTMLBodyBytes+10)}
	if out := e.Enrich(context.Background(), []domain.Article{art}); out[0].Description != "" {
		t.Fatalf("expected no metadata from oversized plain body")
	}
}

func TestEnrichStopsOnCancelledContext(t *testing.T) {
	client := &stubClient{resp: stubResponse{status: http.StatusOK}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := New(client, Options{}).Enrich(ctx, []domain.Article{{URL: "https://example.com"}})
	if client.calls != 0 || len(out) != 1 {
		t.Fatalf("expected no fetches after cancel, calls=%d", client.calls)
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := firstNonEmpty("", " ", "foo", "bar"); got != "foo" {
		t.Fatalf("firstNonEmpty returned %q", got)
	}
}
