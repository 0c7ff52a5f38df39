package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/samvad-hq/samvad-newsdesk/internal/config"
	"github.com/samvad-hq/samvad-newsdesk/internal/view"
)

func testConfig(t *testing.T, baseURL string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		AppName:                "newsdesk-test",
		HTTPAddr:               "127.0.0.1:0",
		NewsAPIBaseURL:         baseURL,
		NewsAPIKey:             "k",
		NewsCategory:           "technology",
		NewsDefaultCountry:     "ua",
		HTTPTimeout:            2 * time.Second,
		SubmitWait:             time.Second,
		PlaceholderImageURL:    config.DefaultPlaceholderImage,
		PublishersFile:         filepath.Join(dir, "absent.yaml"),
		StorageType:            "bbolt",
		BBoltPath:              filepath.Join(dir, "history.db"),
		StorageTTL:             time.Hour,
		StorageCleanupInterval: time.Hour,
	}
}

func TestRunLoadsOnReadyAndShutsDown(t *testing.T) {
	var hits atomic.Int32
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/v2/top-headlines" || r.URL.Query().Get("country") != "ua" {
			t.Errorf("unexpected request %s", r.URL)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","totalResults":1,"articles":[{"title":"hello","url":"https://n.test/1"}]}`))
	}))
	defer api.Close()

	ctx, cancel := context.WithCancel(context.Background())
	desk, err := NewDesk(ctx, testConfig(t, api.URL), nil)
	if err != nil {
		t.Fatalf("NewDesk: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- desk.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for desk.Controller().State() != view.Rendered {
		if time.Now().After(deadline) {
			t.Fatalf("initial load did not render, state=%s", desk.Controller().State())
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}
	if hits.Load() != 1 {
		t.Fatalf("expected one api call, got %d", hits.Load())
	}
}

func TestNewDeskRejectsBadPublishersFile(t *testing.T) {
	cfg := testConfig(t, "https://newsapi.org")
	cfg.StorageType = "none"
	if err := os.WriteFile(cfg.PublishersFile, []byte("publishers: [{id: x}]"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := NewDesk(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected invalid publishers error")
	}
}

func TestNewDeskRequiresConfig(t *testing.T) {
	if _, err := NewDesk(context.Background(), nil, nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
}
