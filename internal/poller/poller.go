package poller

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/GaborinoS/gablab-finance/internal/model"
)

// SeriesFetcher fetches one ticker's history. *prices.Fetcher and the
// service facade both satisfy it.
type SeriesFetcher interface {
	Fetch(ctx context.Context, ticker string) (*model.PriceSeries, error)
}

// Config holds refresher configuration.
type Config struct {
	Interval    time.Duration // Refresh interval (default: 1h)
	Concurrency int           // Max concurrent fetches (default: 2)
	Timeout     time.Duration // Per-ticker timeout (default: 30s)
	Tickers     []string      // Watchlist to keep warm
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval:    time.Hour,
		Concurrency: 2,
		Timeout:     30 * time.Second,
	}
}

// Poller periodically refreshes the watchlist through the fetcher, so the
// cache stays inside the freshness window between interactive requests.
type Poller struct {
	cfg     Config
	fetcher SeriesFetcher
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Poller.
func New(cfg Config, fetcher SeriesFetcher, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConfig().Concurrency
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	return &Poller{
		cfg:     cfg,
		fetcher: fetcher,
		logger:  logger,
	}
}

// Start begins the refresh loop.
func (p *Poller) Start(ctx context.Context) error {
	p.ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go p.run()

	p.logger.Info("watchlist refresher started",
		"interval", p.cfg.Interval,
		"tickers", len(p.cfg.Tickers),
	)

	return nil
}

// Stop gracefully shuts down the refresher.
func (p *Poller) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("watchlist refresher stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is the main refresh loop.
func (p *Poller) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	// Warm the cache immediately on start.
	p.refreshAll()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.refreshAll()
		}
	}
}

// refreshAll fetches every watchlist ticker with bounded concurrency.
func (p *Poller) refreshAll() {
	start := time.Now()

	if len(p.cfg.Tickers) == 0 {
		p.logger.Debug("watchlist is empty, nothing to refresh")
		return
	}

	sem := make(chan struct{}, p.cfg.Concurrency)
	var wg sync.WaitGroup
	var refreshed, fallbacks, errors atomic.Int64

	for _, symbol := range p.cfg.Tickers {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-p.ctx.Done():
				return
			}

			series, err := p.refreshTicker(symbol)
			if err != nil {
				p.logger.Warn("failed to refresh ticker",
					"ticker", symbol,
					"err", err,
				)
				errors.Add(1)
				return
			}
			if series.IsFallback {
				fallbacks.Add(1)
			}
			refreshed.Add(1)
		}(symbol)
	}

	wg.Wait()

	p.logger.Info("refresh cycle complete",
		"tickers", len(p.cfg.Tickers),
		"refreshed", refreshed.Load(),
		"fallbacks", fallbacks.Load(),
		"errors", errors.Load(),
		"duration", time.Since(start),
	)
}

// refreshTicker fetches one ticker with the per-ticker timeout.
func (p *Poller) refreshTicker(symbol string) (*model.PriceSeries, error) {
	ctx, cancel := context.WithTimeout(p.ctx, p.cfg.Timeout)
	defer cancel()

	return p.fetcher.Fetch(ctx, symbol)
}
