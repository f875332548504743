// Package service is the caller-facing facade over the data layer: price
// history, indicators, station search, and live departures. Every component
// is injected at construction; the service owns no hidden state beyond
// in-flight request collapsing.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/GaborinoS/gablab-finance/internal/indicator"
	"github.com/GaborinoS/gablab-finance/internal/model"
	"github.com/GaborinoS/gablab-finance/internal/transit"
)

// PriceFetcher is the price-history dependency. *prices.Fetcher satisfies it.
type PriceFetcher interface {
	Fetch(ctx context.Context, ticker string) (*model.PriceSeries, error)
}

// DepartureFetcher is the transit dependency. *transit.Fetcher satisfies it.
type DepartureFetcher interface {
	FetchForStation(ctx context.Context, station model.Station) ([]model.Departure, error)
}

// Service answers the four caller-facing operations.
type Service struct {
	prices  PriceFetcher
	transit DepartureFetcher
	index   *transit.StationIndex
	logger  *slog.Logger
	now     func() time.Time

	flight singleflight.Group
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithClock injects the reference time. For tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New wires the service from its injected components.
func New(priceFetcher PriceFetcher, departureFetcher DepartureFetcher, index *transit.StationIndex, opts ...Option) *Service {
	s := &Service{
		prices:  priceFetcher,
		transit: departureFetcher,
		index:   index,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetPriceSeries returns the full price history for ticker. Concurrent
// callers for the same ticker collapse onto one fetch; callers for
// different tickers proceed independently.
func (s *Service) GetPriceSeries(ctx context.Context, ticker string) (*model.PriceSeries, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, fmt.Errorf("ticker is required: %w", model.ErrNoDataForSymbol)
	}

	v, err, _ := s.flight.Do(ticker, func() (any, error) {
		return s.prices.Fetch(ctx, ticker)
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.PriceSeries), nil
}

// GetIndicator returns the requested indicator over the timeframe-clipped
// history of ticker.
func (s *Service) GetIndicator(ctx context.Context, ticker string, timeframe indicator.Timeframe, kind indicator.Kind) (*indicator.Result, error) {
	series, err := s.GetPriceSeries(ctx, ticker)
	if err != nil {
		return nil, err
	}
	return indicator.Compute(*series, timeframe, kind, s.now())
}

// SearchStations ranks stations by name similarity to query. A query that
// matches nothing is model.ErrNoDataForStation, not an empty success.
func (s *Service) SearchStations(ctx context.Context, query string) ([]model.StationMatch, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query is required: %w", model.ErrNoDataForStation)
	}

	matches := s.index.Search(query, transit.DefaultSearchLimit)
	if len(matches) == 0 {
		return nil, fmt.Errorf("no station matches %q: %w", query, model.ErrNoDataForStation)
	}
	return matches, nil
}

// GetDepartures returns the aggregated departure board for a stop id. A
// known id expands to all sibling stops of its station; an unknown id fans
// out over just itself. A fully failing upstream yields an empty board.
func (s *Service) GetDepartures(ctx context.Context, stopID string) ([]model.Departure, error) {
	stopID = strings.TrimSpace(stopID)
	if stopID == "" {
		return nil, fmt.Errorf("stop id is required: %w", model.ErrNoDataForStation)
	}

	station, ok := s.index.Lookup(stopID)
	if !ok {
		s.logger.Debug("stop id not in reference table, querying directly", "stop_id", stopID)
		station = model.Station{Name: stopID, StopIDs: []string{stopID}}
	}

	departures, err := s.transit.FetchForStation(ctx, station)
	if err != nil {
		return nil, err
	}
	return transit.Aggregate(departures), nil
}
