package newsapi

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/samvad-hq/samvad-newsdesk/internal/domain"
	"github.com/samvad-hq/samvad-newsdesk/pkg/async"
	"github.com/samvad-hq/samvad-newsdesk/pkg/httpclient"
)

const (
	DefaultBaseURL  = "https://newsapi.org"
	DefaultCategory = "technology"
	DefaultCountry  = "ua"

	topHeadlinesPath = "v2/top-headlines"
	everythingPath   = "v2/everything"
)

// Config holds everything the service needs to compose request URLs.
type Config struct {
	BaseURL        string
	APIKey         string
	Category       string
	DefaultCountry string
	UserAgent      string
}

// Response is the envelope returned by both endpoints.
type Response struct {
	Status       string           `json:"status"`
	TotalResults int              `json:"totalResults"`
	Articles     []domain.Article `json:"articles"`
}

// Service composes NewsAPI URLs and delegates the requests to an httpclient.Client.
type Service struct {
	cfg    Config
	base   *url.URL
	client httpclient.Client
}

// NewService validates cfg and returns a Service bound to client.
func NewService(cfg Config, client httpclient.Client) (*Service, error) {
	if client == nil {
		return nil, errors.New("newsapi: http client is nil")
	}
	cfg = sanitizeConfig(cfg)
	if cfg.APIKey == "" {
		return nil, errors.New("newsapi: api key is required")
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("newsapi: parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" || base.Host == "" {
		return nil, fmt.Errorf("newsapi: base url %q must be absolute http(s)", cfg.BaseURL)
	}

	return &Service{cfg: cfg, base: base, client: client}, nil
}

func sanitizeConfig(cfg Config) Config {
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.Category = strings.TrimSpace(cfg.Category)
	cfg.DefaultCountry = strings.ToLower(strings.TrimSpace(cfg.DefaultCountry))
	cfg.UserAgent = strings.TrimSpace(cfg.UserAgent)

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Category == "" {
		cfg.Category = DefaultCategory
	}
	if cfg.DefaultCountry == "" {
		cfg.DefaultCountry = DefaultCountry
	}
	return cfg
}

// DefaultCountry returns the country used when none is supplied.
func (s *Service) DefaultCountry() string { return s.cfg.DefaultCountry }

// TopHeadlinesURL builds the top-headlines URL for country (or the default).
func (s *Service) TopHeadlinesURL(country string) string {
	country = strings.ToLower(strings.TrimSpace(country))
	if country == "" {
		country = s.cfg.DefaultCountry
	}
	return s.endpoint(topHeadlinesPath, url.Values{
		"country":  {country},
		"category": {s.cfg.Category},
	})
}

// EverythingURL builds the free-text search URL for query.
func (s *Service) EverythingURL(query string) string {
	return s.endpoint(everythingPath, url.Values{"q": {query}})
}

// TopHeadlines fetches the configured category's headlines for country.
func (s *Service) TopHeadlines(ctx context.Context, country string) *async.Future[*Response] {
	return httpclient.GetJSON[*Response](ctx, s.client, s.TopHeadlinesURL(country), s.headers())
}

// Everything searches all articles matching query.
func (s *Service) Everything(ctx context.Context, query string) *async.Future[*Response] {
	return httpclient.GetJSON[*Response](ctx, s.client, s.EverythingURL(query), s.headers())
}

func (s *Service) endpoint(path string, params url.Values) string {
	u := s.base.ResolveReference(&url.URL{Path: path})
	q := u.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Set(k, v)
		}
	}
	q.Set("apiKey", s.cfg.APIKey)
	u.RawQuery = q.Encode()
	return u.String()
}

func (s *Service) headers() map[string]string {
	if s.cfg.UserAgent == "" {
		return nil
	}
	return map[string]string{"User-Agent": s.cfg.UserAgent}
}
