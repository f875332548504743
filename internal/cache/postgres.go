package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/GaborinoS/gablab-finance/internal/config"
)

// PGStore keeps cache entries in a ticker_cache table. It implements the
// same freshness semantics as FileStore: stale rows stay in the table but
// are reported absent.
type PGStore struct {
	pool      *pgxpool.Pool
	freshness time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

const createTickerCache = `
CREATE TABLE IF NOT EXISTS ticker_cache (
	key        TEXT PRIMARY KEY,
	fetched_at TIMESTAMPTZ NOT NULL,
	payload    JSONB NOT NULL
)`

// NewPGStore connects a pool, ensures the cache table exists and returns the
// store.
func NewPGStore(ctx context.Context, cfg config.DBConfig, freshness time.Duration) (*PGStore, error) {
	poolCfg, err := pgxpool.ParseConfig(buildConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}
	poolCfg.MinConns = int32(cfg.MinConns)
	poolCfg.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, createTickerCache); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure ticker_cache table: %w", err)
	}

	if freshness <= 0 {
		freshness = Freshness
	}

	return &PGStore{
		pool:      pool,
		freshness: freshness,
		logger:    slog.Default(),
		now:       time.Now,
	}, nil
}

// Get returns the entry for key if a fresh row exists.
func (s *PGStore) Get(ctx context.Context, key string) (*Entry, bool) {
	var entry Entry
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT key, fetched_at, payload FROM ticker_cache WHERE key = $1`,
		sanitizeKey(key),
	).Scan(&entry.Key, &entry.FetchedAt, &payload)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn("cache read failed", "key", key, "err", err)
		}
		return nil, false
	}
	if s.now().Sub(entry.FetchedAt) > s.freshness {
		return nil, false
	}
	entry.Key = key
	entry.Payload = json.RawMessage(payload)
	return &entry, true
}

// Put upserts the row for key with the current timestamp.
func (s *PGStore) Put(ctx context.Context, key string, payload []byte) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO ticker_cache (key, fetched_at, payload)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (key) DO UPDATE SET fetched_at = EXCLUDED.fetched_at, payload = EXCLUDED.payload`,
		sanitizeKey(key), s.now(), payload,
	)
	if err != nil {
		return fmt.Errorf("upsert cache row: %w", err)
	}
	return nil
}

// IsFresh reports whether Get would return an entry for key.
func (s *PGStore) IsFresh(ctx context.Context, key string) bool {
	_, ok := s.Get(ctx, key)
	return ok
}

// Close releases the connection pool.
func (s *PGStore) Close() {
	s.pool.Close()
}

// buildConnString builds a PostgreSQL connection string from config.
func buildConnString(cfg config.DBConfig) string {
	// URL-encode password to handle special characters
	escapedPassword := url.QueryEscape(cfg.Password)

	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "prefer"
	}

	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User,
		escapedPassword,
		cfg.Host,
		cfg.Port,
		cfg.Name,
		sslMode,
	)
}
