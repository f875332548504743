package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/GaborinoS/gablab-finance/internal/config"
)

// Freshness is the default window after which an entry is treated as absent.
// Shared by all keys; there is no per-key override.
const Freshness = 6 * time.Hour

// Entry is one cached record.
type Entry struct {
	Key       string          `json:"key"`
	FetchedAt time.Time       `json:"fetched_at"`
	Payload   json.RawMessage `json:"payload"`
}

// Store is the cache contract shared by all backends.
type Store interface {
	// Get returns the entry for key, or false if no entry exists or the
	// stored entry is older than the freshness window.
	Get(ctx context.Context, key string) (*Entry, bool)

	// Put overwrites the entry for key unconditionally and stamps it with
	// the current time. The returned error reports a persistence failure
	// only; callers treat it as non-fatal.
	Put(ctx context.Context, key string, payload []byte) error

	// IsFresh reports whether Get would return an entry for key.
	IsFresh(ctx context.Context, key string) bool
}

// NewFromConfig builds the configured backend.
func NewFromConfig(ctx context.Context, cfg config.CacheConfig) (Store, error) {
	switch cfg.Backend {
	case "file":
		return NewFileStore(cfg.Dir, WithFreshness(cfg.Freshness))
	case "postgres":
		return NewPGStore(ctx, cfg.Postgres, cfg.Freshness)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// sanitizeKey maps a cache key to a safe file/row identifier. Tickers like
// "EUNL.DE" or "^GSPC" must not escape the cache directory.
func sanitizeKey(key string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", "..", "_", ":", "_", "^", "_")
	return r.Replace(key)
}
