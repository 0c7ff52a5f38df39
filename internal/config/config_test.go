package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("NEWS_API_KEY", "secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.NewsCategory != "technology" || cfg.NewsDefaultCountry != "ua" {
		t.Fatalf("unexpected news defaults %+v", cfg)
	}
	if cfg.HTTPTimeout != 15*time.Second || cfg.SubmitWait != 10*time.Second {
		t.Fatalf("unexpected durations timeout=%v wait=%v", cfg.HTTPTimeout, cfg.SubmitWait)
	}
	if cfg.PlaceholderImageURL != DefaultPlaceholderImage {
		t.Fatalf("unexpected placeholder %q", cfg.PlaceholderImageURL)
	}
	if cfg.EnrichMissingMetadata {
		t.Fatalf("enrichment must be opt-in")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("NEWS_API_KEY", "secret")
	t.Setenv("NEWS_DEFAULT_COUNTRY", "us")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "0")
	t.Setenv("STORAGE_TYPE", "none")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.NewsDefaultCountry != "us" || cfg.StorageType != "none" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
	if cfg.HTTPTimeout != 0 {
		t.Fatalf("expected unbounded timeout, got %v", cfg.HTTPTimeout)
	}
}

func TestLoadRequiresAPIKey(t *testing.T) {
	t.Setenv("NEWS_API_KEY", "  ")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error without api key")
	}
}

func TestRedactedHidesKey(t *testing.T) {
	cfg := Config{NewsAPIKey: "secret"}
	if cfg.Redacted().NewsAPIKey == "secret" {
		t.Fatalf("api key leaked")
	}
	if cfg.NewsAPIKey != "secret" {
		t.Fatalf("Redacted must not mutate the receiver")
	}
}
