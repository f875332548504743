package prices

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/GaborinoS/gablab-finance/internal/cache"
	"github.com/GaborinoS/gablab-finance/internal/model"
	"github.com/GaborinoS/gablab-finance/internal/ratelimit"
)

// Source is the rate limiter source id for the price upstream.
const Source = "prices"

// Fetcher answers "full price history of X" from cache when possible and
// from the upstream otherwise, degrading to flagged fallback data when the
// upstream fails.
type Fetcher struct {
	store   cache.Store
	limiter *ratelimit.Limiter
	client  *Client
	logger  *slog.Logger
	now     func() time.Time
}

// NewFetcher wires the fetcher from its injected components.
func NewFetcher(store cache.Store, limiter *ratelimit.Limiter, client *Client, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		store:   store,
		limiter: limiter,
		client:  client,
		logger:  logger,
		now:     time.Now,
	}
}

// Fetch returns the price series for ticker.
//
// Order of preference: fresh complete cache entry, live upstream history,
// synthetic fallback. Fallback results are cached too, so a dead upstream is
// not re-hit on every call within the freshness window. Only
// model.ErrNoDataForSymbol and context errors reach the caller.
func (f *Fetcher) Fetch(ctx context.Context, ticker string) (*model.PriceSeries, error) {
	if cached, ok := f.fromCache(ctx, ticker); ok {
		return cached, nil
	}

	if err := f.limiter.Acquire(ctx, Source); err != nil {
		return nil, err
	}

	series, err := f.client.GetHistory(ctx, ticker)
	if err != nil {
		if errors.Is(err, model.ErrNoDataForSymbol) {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		f.logger.Warn("upstream fetch failed, serving fallback",
			"ticker", ticker,
			"err", err,
		)
		series = Fallback(ticker, DefaultFallbackDays, f.now())
	} else if !series.Complete() {
		f.logger.Warn("upstream returned empty history, serving fallback", "ticker", ticker)
		series = Fallback(ticker, DefaultFallbackDays, f.now())
	}

	f.put(ctx, ticker, series)
	return series, nil
}

// fromCache returns a fresh cached series. Entries that do not carry a full
// history (missing dates or closes) are treated as stale regardless of age
// so the next step re-fetches.
func (f *Fetcher) fromCache(ctx context.Context, ticker string) (*model.PriceSeries, bool) {
	entry, ok := f.store.Get(ctx, ticker)
	if !ok {
		return nil, false
	}

	var series model.PriceSeries
	if err := json.Unmarshal(entry.Payload, &series); err != nil {
		f.logger.Warn("cached payload does not match series schema",
			"ticker", ticker,
			"err", err,
		)
		return nil, false
	}
	if !series.Complete() {
		f.logger.Debug("cached series lacks full history, forcing refetch", "ticker", ticker)
		return nil, false
	}
	return &series, true
}

// put persists a series. Persistence is best-effort: the series is served
// to the caller whether or not the write sticks.
func (f *Fetcher) put(ctx context.Context, ticker string, series *model.PriceSeries) {
	payload, err := json.Marshal(series)
	if err != nil {
		f.logger.Warn("marshal series for cache failed", "ticker", ticker, "err", err)
		return
	}
	if err := f.store.Put(ctx, ticker, payload); err != nil {
		f.logger.Warn("cache write failed", "ticker", ticker, "err", err)
	}
}
