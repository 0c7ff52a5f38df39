package enrich

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/samvad-hq/samvad-newsdesk/internal/domain"
	"github.com/samvad-hq/samvad-newsdesk/internal/logger"
	"github.com/samvad-hq/samvad-newsdesk/pkg/httpclient"
)

const (
	maxHTMLBodyBytes = 1 << 20 // 1 MiB
)

// Options tunes the enricher.
type Options struct {
	UserAgent    string
	RequestDelay time.Duration
	MaxArticles  int
	Logger       logger.Logger
}

// Enricher fills missing descriptions and images from article pages.
type Enricher struct {
	client httpclient.Client
	opts   Options
	log    logger.Logger
}

// New constructs an enricher. A nil client gets a resty client with a 10s timeout.
func New(client httpclient.Client, opts Options) *Enricher {
	if client == nil {
		client = httpclient.NewRestyClient(10 * time.Second)
	}
	return &Enricher{client: client, opts: opts, log: logger.Ensure(opts.Logger)}
}

// Enrich returns a copy of articles with gaps filled where the article page
// offers og/meta tags. Articles that already have both a description and an
// image are not fetched. On cancellation the remaining articles are returned
// unchanged.
func (e *Enricher) Enrich(ctx context.Context, articles []domain.Article) []domain.Article {
	out := append([]domain.Article(nil), articles...)
	if e == nil || len(out) == 0 {
		return out
	}

	fetched := 0
	for i, art := range out {
		if !needsMetadata(art) || strings.TrimSpace(art.URL) == "" {
			continue
		}
		if e.opts.MaxArticles > 0 && fetched >= e.opts.MaxArticles {
			break
		}
		if fetched > 0 && e.opts.RequestDelay > 0 {
			timer := time.NewTimer(e.opts.RequestDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return out
			case <-timer.C:
			}
		}
		if ctx.Err() != nil {
			return out
		}
		fetched++

		enriched, err := e.fetchAndParse(ctx, art)
		if err != nil {
			e.log.WarnObj("article metadata fetch failed", "metadata_error", map[string]any{
				"url":   art.URL,
				"error": err.Error(),
			})
			continue
		}
		out[i] = enriched
	}
	return out
}

func needsMetadata(art domain.Article) bool {
	return strings.TrimSpace(art.Description) == "" || strings.TrimSpace(art.URLToImage) == ""
}

func (e *Enricher) fetchAndParse(ctx context.Context, art domain.Article) (domain.Article, error) {
	var headers map[string]string
	if e.opts.UserAgent != "" {
		headers = map[string]string{"User-Agent": e.opts.UserAgent}
	}

	resp, err := e.client.Get(ctx, art.URL, headers)
	if err != nil {
		return art, fmt.Errorf("http fetch: %w", err)
	}
	if resp.StatusCode()/100 != 2 {
		return art, fmt.Errorf("status %d", resp.StatusCode())
	}

	body := resp.Body()
	if len(body) > maxHTMLBodyBytes {
		body = body[:maxHTMLBodyBytes]
	}

	meta, err := parseMeta(body)
	if err != nil {
		return art, err
	}
	updated := art
	if strings.TrimSpace(updated.Description) == "" {
		updated.Description = meta.Description
	}
	if strings.TrimSpace(updated.URLToImage) == "" {
		updated.URLToImage = resolveURL(meta.ImageURL, art.URL)
	}
	if strings.TrimSpace(updated.Title) == "" {
		updated.Title = meta.Title
	}
	return updated, nil
}

type pageMeta struct {
	Title       string
	Description string
	ImageURL    string
}

func parseMeta(body []byte) (pageMeta, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return pageMeta{}, fmt.Errorf("parse html: %w", err)
	}

	extract := func(sel string) string {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			if val, ok := node.Attr("content"); ok {
				return strings.TrimSpace(val)
			}
		}
		return ""
	}

	return pageMeta{
		Title: firstNonEmpty(
			extract(`meta[property="og:title"]`),
			doc.Find("title").First().Text(),
		),
		Description: firstNonEmpty(
			extract(`meta[property="og:description"]`),
			extract(`meta[name="description"]`),
		),
		ImageURL: firstNonEmpty(
			extract(`meta[property="og:image"]`),
			extract(`meta[name="twitter:image"]`),
		),
	}, nil
}

// resolveURL makes ref absolute against the page it was found on.
func resolveURL(ref, page string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	base, err := url.Parse(page)
	if err != nil {
		return ref
	}
	return base.ResolveReference(refURL).String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
