package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`
	HTTPAddr string `mapstructure:"http_addr"`

	NewsAPIBaseURL     string `mapstructure:"news_api_base_url"`
	NewsAPIKey         string `mapstructure:"news_api_key"`
	NewsCategory       string `mapstructure:"news_category"`
	NewsDefaultCountry string `mapstructure:"news_default_country"`
	NewsUserAgent      string `mapstructure:"news_user_agent"`

	HTTPTimeoutSeconds  int64         `mapstructure:"http_timeout_seconds"`
	HTTPTimeout         time.Duration `mapstructure:"-"`
	SubmitWaitSeconds   int64         `mapstructure:"submit_wait_seconds"`
	SubmitWait          time.Duration `mapstructure:"-"`
	PlaceholderImageURL string        `mapstructure:"placeholder_image_url"`
	PublishersFile      string        `mapstructure:"publishers_file"`

	StorageType            string        `mapstructure:"storage_type"`
	BBoltPath              string        `mapstructure:"bbolt_path"`
	StorageTTLSeconds      int64         `mapstructure:"storage_ttl_seconds"`
	StorageCleanupSeconds  int64         `mapstructure:"storage_cleanup_interval_seconds"`
	StorageTTL             time.Duration `mapstructure:"-"`
	StorageCleanupInterval time.Duration `mapstructure:"-"`

	EnrichMissingMetadata bool  `mapstructure:"enrich_missing_metadata"`
	EnrichRequestDelayMs  int64 `mapstructure:"enrich_request_delay_ms"`
	EnrichMaxArticles     int   `mapstructure:"enrich_max_articles"`
}

// DefaultPlaceholderImage is shown when an article has no image or the image fails to load.
const DefaultPlaceholderImage = "https://media.discordapp.net/attachments/1018916450888593459/1051505824419303534/image.png"

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "samvad-newsdesk")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("news_api_base_url", "https://newsapi.org")
	v.SetDefault("news_api_key", "")
	v.SetDefault("news_category", "technology")
	v.SetDefault("news_default_country", "ua")
	v.SetDefault("news_user_agent", "samvad-newsdesk/1.0")
	v.SetDefault("http_timeout_seconds", 15)
	v.SetDefault("submit_wait_seconds", 10)
	v.SetDefault("placeholder_image_url", DefaultPlaceholderImage)
	v.SetDefault("publishers_file", "./configs/publishers.yaml")
	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/history.db")
	v.SetDefault("storage_ttl_seconds", int64((7*24*time.Hour)/time.Second))
	v.SetDefault("storage_cleanup_interval_seconds", int64((6*time.Hour)/time.Second))
	v.SetDefault("enrich_missing_metadata", false)
	v.SetDefault("enrich_request_delay_ms", 250)
	v.SetDefault("enrich_max_articles", 10)

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) finalize() error {
	cfg.NewsAPIKey = strings.TrimSpace(cfg.NewsAPIKey)
	if cfg.NewsAPIKey == "" {
		return fmt.Errorf("news_api_key is required")
	}
	if strings.TrimSpace(cfg.HTTPAddr) == "" {
		return fmt.Errorf("http_addr must not be empty")
	}

	if cfg.HTTPTimeoutSeconds < 0 {
		return fmt.Errorf("invalid http_timeout_seconds (must be zero or positive seconds)")
	}
	cfg.HTTPTimeout = time.Duration(cfg.HTTPTimeoutSeconds) * time.Second

	if cfg.SubmitWaitSeconds <= 0 {
		return fmt.Errorf("invalid submit_wait_seconds (must be positive seconds)")
	}
	cfg.SubmitWait = time.Duration(cfg.SubmitWaitSeconds) * time.Second

	if cfg.StorageTTLSeconds <= 0 {
		return fmt.Errorf("invalid storage_ttl_seconds (must be positive seconds)")
	}
	if cfg.StorageCleanupSeconds <= 0 {
		return fmt.Errorf("invalid storage_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.StorageTTL = time.Duration(cfg.StorageTTLSeconds) * time.Second
	cfg.StorageCleanupInterval = time.Duration(cfg.StorageCleanupSeconds) * time.Second

	if cfg.EnrichRequestDelayMs < 0 {
		return fmt.Errorf("invalid enrich_request_delay_ms (must be zero or positive)")
	}
	if cfg.EnrichMaxArticles < 0 {
		return fmt.Errorf("invalid enrich_max_articles (must be zero or positive)")
	}
	return nil
}

// EnrichRequestDelay returns the pause between metadata page fetches.
func (cfg *Config) EnrichRequestDelay() time.Duration {
	return time.Duration(cfg.EnrichRequestDelayMs) * time.Millisecond
}

// Redacted returns a copy safe to log.
func (cfg Config) Redacted() Config {
	if cfg.NewsAPIKey != "" {
		cfg.NewsAPIKey = "***"
	}
	return cfg
}
