package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/bluele/gcache"
)

// memoryTierSize bounds the in-memory tier. Entries are whole price
// histories, so a few hundred keys is already far beyond a personal
// watchlist.
const memoryTierSize = 512

// FileStore persists one JSON document per key under a directory, with an
// in-memory LRU tier in front of the disk so repeat hits inside the
// freshness window skip the file read.
type FileStore struct {
	dir       string
	freshness time.Duration
	logger    *slog.Logger
	now       func() time.Time

	memory gcache.Cache
}

// FileOption configures a FileStore.
type FileOption func(*FileStore)

// WithFreshness overrides the default freshness window.
func WithFreshness(d time.Duration) FileOption {
	return func(s *FileStore) {
		if d > 0 {
			s.freshness = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) FileOption {
	return func(s *FileStore) {
		s.logger = logger
	}
}

// WithClock injects the time source used for freshness checks.
func WithClock(now func() time.Time) FileOption {
	return func(s *FileStore) {
		s.now = now
	}
}

// NewFileStore creates the cache directory if needed and returns the store.
func NewFileStore(dir string, opts ...FileOption) (*FileStore, error) {
	s := &FileStore{
		dir:       dir,
		freshness: Freshness,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	s.memory = gcache.New(memoryTierSize).
		LRU().
		Expiration(s.freshness).
		Build()

	return s, nil
}

// Get returns the entry for key if it exists and is fresh.
func (s *FileStore) Get(ctx context.Context, key string) (*Entry, bool) {
	if v, err := s.memory.Get(key); err == nil {
		entry := v.(*Entry)
		if s.fresh(entry) {
			return entry, true
		}
		s.memory.Remove(key)
	}

	entry, err := s.readFile(key)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("cache read failed", "key", key, "err", err)
		}
		return nil, false
	}
	if !s.fresh(entry) {
		return nil, false
	}

	if err := s.memory.Set(key, entry); err != nil {
		s.logger.Debug("memory tier set failed", "key", key, "err", err)
	}
	return entry, true
}

// Put overwrites the entry for key and stamps it with the current time.
// The entry is always installed in the memory tier; only the durable write
// can fail.
func (s *FileStore) Put(ctx context.Context, key string, payload []byte) error {
	entry := &Entry{
		Key:       key,
		FetchedAt: s.now(),
		Payload:   json.RawMessage(payload),
	}

	if err := s.memory.Set(key, entry); err != nil {
		s.logger.Debug("memory tier set failed", "key", key, "err", err)
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}
	if err := os.WriteFile(s.path(key), data, 0644); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}
	return nil
}

// IsFresh reports whether Get would return an entry for key.
func (s *FileStore) IsFresh(ctx context.Context, key string) bool {
	_, ok := s.Get(ctx, key)
	return ok
}

func (s *FileStore) fresh(entry *Entry) bool {
	return s.now().Sub(entry.FetchedAt) <= s.freshness
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, sanitizeKey(key)+".json")
}

func (s *FileStore) readFile(key string) (*Entry, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return nil, err
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("decode cache file: %w", err)
	}
	return &entry, nil
}
