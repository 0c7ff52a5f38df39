package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/samvad-hq/samvad-newsdesk/internal/domain"
	bolt "go.etcd.io/bbolt"
)

const (
	queryBucket = "queries"
	keyBytes    = 16
)

// boltStore implements a Store backed by BoltDB.
type boltStore struct {
	db              *bolt.DB
	cleanupMu       sync.Mutex
	lastCleanup     atomic.Int64
	entryTTL        time.Duration
	cleanupInterval time.Duration
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string, opts Options) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(queryBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	store := &boltStore{
		db:              db,
		entryTTL:        opts.EntryTTL,
		cleanupInterval: opts.CleanupInterval,
	}
	store.lastCleanup.Store(time.Now().Unix())
	return store, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// RecordQuery appends q to the history. Keys sort by record time, then by
// insertion sequence.
func (b *boltStore) RecordQuery(q domain.Query, at time.Time) error {
	if b == nil || b.db == nil {
		return nil
	}
	if at.IsZero() {
		at = time.Now()
	}
	if err := b.maybeCleanupExpired(at); err != nil {
		return err
	}

	entry := HistoryEntry{
		Query:      q,
		Kind:       q.Kind(),
		RecordedAt: at.UTC(),
		ExpiresAt:  at.Add(b.entryTTL).UTC(),
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode history entry: %w", err)
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(queryBucket))
		if bucket == nil {
			return fmt.Errorf("query bucket missing")
		}
		seq, err := bucket.NextSequence()
		if err != nil {
			return err
		}
		key := make([]byte, keyBytes)
		binary.BigEndian.PutUint64(key[:8], uint64(at.UnixNano()))
		binary.BigEndian.PutUint64(key[8:], seq)
		return bucket.Put(key, raw)
	})
}

// RecentQueries returns up to limit unexpired entries, newest first.
func (b *boltStore) RecentQueries(limit int) ([]HistoryEntry, error) {
	if b == nil || b.db == nil || limit <= 0 {
		return nil, nil
	}

	now := time.Now()
	out := make([]HistoryEntry, 0, limit)
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(queryBucket))
		if bucket == nil {
			return fmt.Errorf("query bucket missing")
		}
		cursor := bucket.Cursor()
		for k, v := cursor.Last(); k != nil && len(out) < limit; k, v = cursor.Prev() {
			entry, ok := decodeEntry(v)
			if !ok || !entry.ExpiresAt.After(now) {
				continue
			}
			out = append(out, entry)
		}
		return nil
	})
	return out, err
}

// maybeCleanupExpired removes expired entries on a fixed cadence to avoid unbounded growth.
func (b *boltStore) maybeCleanupExpired(now time.Time) error {
	if b == nil || b.db == nil {
		return nil
	}

	last := time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	b.cleanupMu.Lock()
	defer b.cleanupMu.Unlock()

	last = time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(queryBucket))
		if bucket == nil {
			return fmt.Errorf("query bucket missing")
		}

		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			entry, ok := decodeEntry(v)
			if !ok || !entry.ExpiresAt.After(now) {
				if err := cursor.Delete(); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err == nil {
		b.lastCleanup.Store(now.Unix())
	}
	return err
}

// decodeEntry decodes a stored history entry.
func decodeEntry(value []byte) (HistoryEntry, bool) {
	var entry HistoryEntry
	if err := json.Unmarshal(value, &entry); err != nil {
		return HistoryEntry{}, false
	}
	if entry.ExpiresAt.IsZero() {
		return HistoryEntry{}, false
	}
	return entry, true
}
