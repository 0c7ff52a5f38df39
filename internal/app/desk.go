package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/samvad-hq/samvad-newsdesk/internal/config"
	"github.com/samvad-hq/samvad-newsdesk/internal/enrich"
	"github.com/samvad-hq/samvad-newsdesk/internal/logger"
	"github.com/samvad-hq/samvad-newsdesk/internal/server"
	"github.com/samvad-hq/samvad-newsdesk/internal/storage"
	"github.com/samvad-hq/samvad-newsdesk/internal/view"
	"github.com/samvad-hq/samvad-newsdesk/pkg/httpclient"
	"github.com/samvad-hq/samvad-newsdesk/pkg/newsapi"
	"github.com/samvad-hq/samvad-newsdesk/pkg/publishers"
)

const shutdownTimeout = 10 * time.Second

// Desk is the news desk runtime: the page controller, the HTTP surface and
// the resources both depend on.
type Desk struct {
	cfg        *config.Config
	controller *view.Controller
	server     *server.Server
	fanout     *publishers.Fanout
	store      storage.Store
	log        logger.Logger
}

// NewDesk wires the desk from config.
func NewDesk(ctx context.Context, cfg *config.Config, log logger.Logger) (*Desk, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	log = logger.Ensure(log)
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
		EntryTTL:        cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"entry_ttl_seconds":        int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	fanout, err := buildFanout(ctx, cfg.PublishersFile, log)
	if err != nil {
		store.Close()
		return nil, err
	}

	client := httpclient.NewRestyClient(cfg.HTTPTimeout)
	news, err := newsapi.NewService(newsapi.Config{
		BaseURL:        cfg.NewsAPIBaseURL,
		APIKey:         cfg.NewsAPIKey,
		Category:       cfg.NewsCategory,
		DefaultCountry: cfg.NewsDefaultCountry,
		UserAgent:      cfg.NewsUserAgent,
	}, client)
	if err != nil {
		closeAll(log, fanout, store)
		return nil, fmt.Errorf("init news service: %w", err)
	}

	var enricher view.Enricher
	if cfg.EnrichMissingMetadata {
		enricher = enrich.New(client, enrich.Options{
			UserAgent:    cfg.NewsUserAgent,
			RequestDelay: cfg.EnrichRequestDelay(),
			MaxArticles:  cfg.EnrichMaxArticles,
			Logger:       log,
		})
	}

	doc := view.NewPage(view.PageOptions{
		Title:          cfg.AppName,
		DefaultCountry: news.DefaultCountry(),
	})
	controller, err := view.NewController(doc, news, view.Options{
		PlaceholderImage: cfg.PlaceholderImageURL,
		DefaultCountry:   news.DefaultCountry(),
		Context:          ctx,
		Logger:           log,
		Enricher:         enricher,
		Publisher:        fanout,
		History:          store,
	})
	if err == nil {
		err = controller.Bind()
	}
	if err != nil {
		closeAll(log, fanout, store)
		return nil, fmt.Errorf("init page: %w", err)
	}

	router := server.NewRouter(server.Deps{
		Page:       controller,
		News:       news,
		History:    store,
		SubmitWait: cfg.SubmitWait,
		Logger:     log,
	})

	return &Desk{
		cfg:        cfg,
		controller: controller,
		server:     server.New(cfg.HTTPAddr, router, log),
		fanout:     fanout,
		store:      store,
		log:        log,
	}, nil
}

// buildFanout loads the publishers file. A missing file disables publishing.
func buildFanout(ctx context.Context, path string, log logger.Logger) (*publishers.Fanout, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return publishers.NewFanout(nil), nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		log.InfoObj("publishers file absent; outcome publishing disabled", "publishers_file", path)
		return publishers.NewFanout(nil), nil
	}

	reg, err := publishers.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabled := reg.Enabled()
	pubs, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, p := range enabled {
		summaries = append(summaries, map[string]string{"id": p.ID, "type": p.Type})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})
	return publishers.NewFanout(pubs), nil
}

// Controller exposes the page controller.
func (d *Desk) Controller() *view.Controller { return d.controller }

// Run fires the initial load, serves HTTP until ctx is cancelled, then shuts
// down and releases resources.
func (d *Desk) Run(ctx context.Context) error {
	if d == nil || d.server == nil {
		return fmt.Errorf("desk is not initialized")
	}
	defer closeAll(d.log, d.fanout, d.store)

	d.log.InfoObj("news desk starting", "desk_state", map[string]any{
		"addr":             d.cfg.HTTPAddr,
		"publishers_count": d.fanout.Size(),
		"default_country":  d.cfg.NewsDefaultCountry,
	})

	errCh := make(chan error, 1)
	go func() { errCh <- d.server.Serve() }()

	d.controller.Document().Ready(ctx)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	d.log.InfoObj("news desk exiting", "reason", ctx.Err().Error())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := d.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return <-errCh
}

type closer interface{ Close() error }

// closeAll releases resources in order, logging failures.
func closeAll(log logger.Logger, cs ...closer) {
	for _, c := range cs {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil {
			log.ErrorObj("resource close failed", "error", err.Error())
		}
	}
}
