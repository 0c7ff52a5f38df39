// Package storage keeps the history of queries the desk has issued.
// Article results are never stored.
package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/samvad-newsdesk/internal/domain"
)

// HistoryEntry is one recorded query.
type HistoryEntry struct {
	Query      domain.Query `json:"query"`
	Kind       string       `json:"kind"`
	RecordedAt time.Time    `json:"recorded_at"`
	ExpiresAt  time.Time    `json:"expires_at"`
}

// Store records queries and lists the most recent ones.
type Store interface {
	Close() error
	RecordQuery(q domain.Query, at time.Time) error
	RecentQueries(limit int) ([]HistoryEntry, error)
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	EntryTTL        time.Duration
	CleanupInterval time.Duration
}

const (
	defaultEntryTTL        = 7 * 24 * time.Hour
	defaultCleanupInterval = 6 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.EntryTTL <= 0 {
		opts.EntryTTL = defaultEntryTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                              { return nil }
func (noopStore) RecordQuery(domain.Query, time.Time) error { return nil }
func (noopStore) RecentQueries(int) ([]HistoryEntry, error) { return nil, nil }
