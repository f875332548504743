// apiprobe exercises the two upstreams once and prints what came back.
// Usage: go run ./cmd/apiprobe --config configs/financed.local.yaml --ticker AAPL --stop 4101
//
// Useful for checking connectivity and payload shape without starting the
// full service; the cache and watchlist refresher are bypassed entirely.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/GaborinoS/gablab-finance/internal/config"
	"github.com/GaborinoS/gablab-finance/internal/prices"
	"github.com/GaborinoS/gablab-finance/internal/transit"
)

func main() {
	configPath := flag.String("config", "configs/financed.local.yaml", "path to config file")
	ticker := flag.String("ticker", "", "probe the price upstream for this symbol")
	stopID := flag.String("stop", "", "probe the transit upstream for this stop id")
	verbose := flag.Bool("verbose", false, "print full payload JSON")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if *ticker == "" && *stopID == "" {
		fmt.Fprintln(os.Stderr, "nothing to probe: pass --ticker and/or --stop")
		os.Exit(2)
	}

	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if *ticker != "" {
		probePrices(ctx, cfg, *ticker, *verbose)
	}
	if *stopID != "" {
		probeTransit(ctx, cfg, *stopID, *verbose)
	}
}

func probePrices(ctx context.Context, cfg *config.Config, ticker string, verbose bool) {
	client := prices.NewClient(
		cfg.Prices.BaseURL,
		prices.WithTimeout(cfg.Prices.Timeout),
		prices.WithRetries(cfg.Prices.MaxRetries, time.Second),
	)

	start := time.Now()
	series, err := client.GetHistory(ctx, ticker)
	if err != nil {
		slog.Error("price probe failed", "ticker", ticker, "error", err)
		os.Exit(1)
	}

	slog.Info("price probe ok",
		"ticker", series.Ticker,
		"points", len(series.Dates),
		"last_close", series.LastClose,
		"duration", time.Since(start),
	)
	if verbose {
		json.NewEncoder(os.Stdout).Encode(series)
	} else if len(series.Dates) > 0 {
		fmt.Printf("%s: %d points, %s .. %s, last close %.2f\n",
			series.Ticker, len(series.Dates),
			series.Dates[0], series.Dates[len(series.Dates)-1],
			series.LastClose,
		)
	}
}

func probeTransit(ctx context.Context, cfg *config.Config, stopID string, verbose bool) {
	client := transit.NewClient(
		cfg.Transit.BaseURL,
		transit.WithTimeout(cfg.Transit.Timeout),
	)

	start := time.Now()
	resp, err := client.GetMonitors(ctx, stopID)
	if err != nil {
		slog.Error("transit probe failed", "stop_id", stopID, "error", err)
		os.Exit(1)
	}

	monitors := 0
	if resp.Data != nil {
		monitors = len(resp.Data.Monitors)
	}
	slog.Info("transit probe ok",
		"stop_id", stopID,
		"monitors", monitors,
		"duration", time.Since(start),
	)
	if verbose {
		json.NewEncoder(os.Stdout).Encode(resp)
		return
	}
	if resp.Data == nil {
		return
	}
	for _, m := range resp.Data.Monitors {
		for _, line := range m.Lines {
			n := 0
			if line.Departures != nil {
				n = len(line.Departures.Departure)
			}
			fmt.Printf("%s -> %s: %d departures\n", line.Name, line.Towards, n)
		}
	}
}
