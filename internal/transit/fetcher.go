package transit

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/GaborinoS/gablab-finance/internal/model"
	"github.com/GaborinoS/gablab-finance/internal/ratelimit"
)

// Source is the rate limiter source id for the transit upstream.
const Source = "transit"

// DefaultStopDelay is the pause between fan-out stops, on top of the rate
// limiter's spacing.
const DefaultStopDelay = 1500 * time.Millisecond

// Fetcher fans a station query out over its physical stops, one sequential
// rate-limited call per stop, and isolates per-stop failures.
type Fetcher struct {
	client    *Client
	limiter   *ratelimit.Limiter
	logger    *slog.Logger
	stopDelay time.Duration
	sleep     func(ctx context.Context, d time.Duration) error
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithStopDelay overrides the inter-stop pause.
func WithStopDelay(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.stopDelay = d
	}
}

// WithFetcherLogger sets the logger.
func WithFetcherLogger(logger *slog.Logger) FetcherOption {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// WithSleep injects the wait function. For tests.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) FetcherOption {
	return func(f *Fetcher) {
		f.sleep = sleep
	}
}

// NewFetcher wires the fetcher from its injected components.
func NewFetcher(client *Client, limiter *ratelimit.Limiter, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:    client,
		limiter:   limiter,
		logger:    slog.Default(),
		stopDelay: DefaultStopDelay,
		sleep:     sleepContext,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchForStation fetches departures from every physical stop of station,
// strictly in order: stop N is only attempted after the delay following
// stop N-1. A failing stop contributes zero departures and never aborts the
// others; the only error returned is context cancellation.
func (f *Fetcher) FetchForStation(ctx context.Context, station model.Station) ([]model.Departure, error) {
	requestID := uuid.New().String()
	logger := f.logger.With("request_id", requestID, "station", station.Name)

	logger.Info("fetching departures",
		"stops", len(station.StopIDs),
	)

	var all []model.Departure
	succeeded := 0

	for i, stopID := range station.StopIDs {
		if i > 0 {
			if err := f.sleep(ctx, f.stopDelay); err != nil {
				return all, err
			}
		}
		if err := f.limiter.Acquire(ctx, Source); err != nil {
			return all, err
		}

		departures, err := f.fetchStop(ctx, logger, stopID)
		if err != nil {
			if ctx.Err() != nil {
				return all, ctx.Err()
			}
			logger.Warn("stop fetch failed", "stop_id", stopID, "err", err)
			continue
		}

		logger.Debug("stop fetched", "stop_id", stopID, "departures", len(departures))
		all = append(all, departures...)
		succeeded++
	}

	logger.Info("fan-out complete",
		"stops_ok", succeeded,
		"stops_total", len(station.StopIDs),
		"departures", len(all),
	)

	return all, nil
}

// fetchStop calls the upstream for one stop and parses the nested payload.
func (f *Fetcher) fetchStop(ctx context.Context, logger *slog.Logger, stopID string) ([]model.Departure, error) {
	resp, err := f.client.GetMonitors(ctx, stopID)
	if err != nil {
		return nil, err
	}
	return parseMonitors(logger, stopID, resp), nil
}

// parseMonitors walks the monitors -> lines -> departures nesting with
// default-to-empty semantics at every level: a missing field anywhere means
// that element contributes nothing, never that the stop fails.
func parseMonitors(logger *slog.Logger, stopID string, resp *MonitorResponse) []model.Departure {
	if resp == nil || resp.Data == nil {
		logger.Warn("monitor payload missing field", "stop_id", stopID, "field", "data")
		return nil
	}
	if len(resp.Data.Monitors) == 0 {
		logger.Debug("no monitors for stop", "stop_id", stopID)
		return nil
	}

	var departures []model.Departure
	for _, monitor := range resp.Data.Monitors {
		location := ""
		if monitor.LocationStop != nil && monitor.LocationStop.Properties != nil {
			location = monitor.LocationStop.Properties.Title
		}

		for _, line := range monitor.Lines {
			if line.Departures == nil || len(line.Departures.Departure) == 0 {
				logger.Debug("line without departures",
					"stop_id", stopID,
					"line", line.Name,
				)
				continue
			}

			for _, dep := range line.Departures.Departure {
				if dep.DepartureTime == nil || dep.DepartureTime.Countdown == nil {
					logger.Warn("departure missing field",
						"stop_id", stopID,
						"line", line.Name,
						"field", "departureTime.countdown",
					)
					continue
				}

				countdown := *dep.DepartureTime.Countdown
				if countdown < 0 {
					countdown = 0
				}

				platform := ""
				if dep.Platform != nil {
					platform = dep.Platform.Text
				}

				departures = append(departures, model.Departure{
					Line:             line.Name,
					Direction:        line.Towards,
					CountdownMinutes: countdown,
					TimeDisplay:      formatCountdown(countdown),
					IsRealtime:       isRealtime(dep.DepartureTime),
					Platform:         platform,
					StopID:           stopID,
					Location:         location,
				})
			}
		}
	}

	return departures
}

// isRealtime reports whether the departure carries live tracking: a real
// timestamp that diverges from (or lacks) the plan.
func isRealtime(dt *DepartureTime) bool {
	return dt.TimeReal != "" && dt.TimeReal != dt.TimePlanned
}

// formatCountdown renders the countdown for display: "Jetzt" at zero,
// minutes below an hour, hours and minutes above.
func formatCountdown(minutes int) string {
	switch {
	case minutes == 0:
		return "Jetzt"
	case minutes < 60:
		return strconv.Itoa(minutes) + " min"
	default:
		return strconv.Itoa(minutes/60) + "h " + strconv.Itoa(minutes%60) + "min"
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
