package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GaborinoS/gablab-finance/internal/cache"
	"github.com/GaborinoS/gablab-finance/internal/config"
	"github.com/GaborinoS/gablab-finance/internal/indicator"
	"github.com/GaborinoS/gablab-finance/internal/model"
	"github.com/GaborinoS/gablab-finance/internal/poller"
	"github.com/GaborinoS/gablab-finance/internal/prices"
	"github.com/GaborinoS/gablab-finance/internal/ratelimit"
	"github.com/GaborinoS/gablab-finance/internal/service"
	"github.com/GaborinoS/gablab-finance/internal/transit"
	"github.com/GaborinoS/gablab-finance/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/financed.local.yaml", "path to config file")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting financed",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"instance_id", cfg.Instance.ID,
		"cache_backend", cfg.Cache.Backend,
		"watchlist", len(cfg.Poller.Tickers),
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Open the cache store
	store, err := cache.NewFromConfig(ctx, cfg.Cache)
	if err != nil {
		logger.Error("failed to open cache store", "error", err)
		os.Exit(1)
	}
	if closer, ok := store.(interface{ Close() }); ok {
		defer closer.Close()
	}
	logger.Info("cache store ready", "backend", cfg.Cache.Backend)

	// Shared rate limiter: jittered spacing for prices, fixed for transit
	limiter := ratelimit.New(ratelimit.WithLogger(logger))
	limiter.RegisterJitter(prices.Source, cfg.Prices.MinInterval, cfg.Prices.MaxInterval)
	limiter.Register(transit.Source, cfg.Transit.MinInterval)

	// Price history pipeline
	priceClient := prices.NewClient(
		cfg.Prices.BaseURL,
		prices.WithLogger(logger),
		prices.WithTimeout(cfg.Prices.Timeout),
		prices.WithRetries(cfg.Prices.MaxRetries, time.Second),
	)
	priceFetcher := prices.NewFetcher(store, limiter, priceClient, logger)

	// Station reference table
	index, err := transit.LoadStationIndex(cfg.Transit.StationsFile)
	if err != nil {
		logger.Error("failed to load station index", "error", err, "file", cfg.Transit.StationsFile)
		os.Exit(1)
	}
	logger.Info("station index loaded", "stations", index.Len())

	// Departure pipeline
	transitClient := transit.NewClient(
		cfg.Transit.BaseURL,
		transit.WithLogger(logger),
		transit.WithTimeout(cfg.Transit.Timeout),
	)
	departureFetcher := transit.NewFetcher(transitClient, limiter,
		transit.WithStopDelay(cfg.Transit.StopDelay),
		transit.WithFetcherLogger(logger),
	)

	svc := service.New(priceFetcher, departureFetcher, index, service.WithLogger(logger))

	// Watchlist refresher keeps the price cache warm
	refresher := poller.New(poller.Config{
		Interval:    cfg.Poller.Interval,
		Concurrency: cfg.Poller.Concurrency,
		Tickers:     cfg.Poller.Tickers,
	}, priceFetcher, logger)

	if err := refresher.Start(ctx); err != nil {
		logger.Error("failed to start watchlist refresher", "error", err)
		os.Exit(1)
	}
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer stopCancel()
		refresher.Stop(stopCtx)
	}()

	// HTTP API
	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: createHandler(svc, index, logger),
	}

	go func() {
		logger.Info("starting api server", "addr", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("api server error", "error", err)
			cancel()
		}
	}()

	logger.Info("financed running",
		"instance_id", cfg.Instance.ID,
		"addr", cfg.Server.Addr,
	)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	server.Shutdown(shutdownCtx)

	logger.Info("financed stopped")
}

// createHandler builds the JSON API. Errors map onto status codes by
// taxonomy: unknown symbol or station is 404, an empty timeframe is 422,
// anything else from the data layer is 502.
func createHandler(svc *service.Service, index *transit.StationIndex, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":   "healthy",
			"version":  version.String(),
			"stations": index.Len(),
		})
	})

	mux.HandleFunc("GET /api/prices/{ticker}", func(w http.ResponseWriter, r *http.Request) {
		series, err := svc.GetPriceSeries(r.Context(), r.PathValue("ticker"))
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, series)
	})

	mux.HandleFunc("GET /api/indicator/{ticker}", func(w http.ResponseWriter, r *http.Request) {
		timeframe := indicator.Timeframe(r.URL.Query().Get("timeframe"))
		if timeframe == "" {
			timeframe = indicator.TimeframeAll
		}
		kind := indicator.Kind(r.URL.Query().Get("kind"))
		if kind == "" {
			kind = indicator.KindSMA
		}

		result, err := svc.GetIndicator(r.Context(), r.PathValue("ticker"), timeframe, kind)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	})

	mux.HandleFunc("GET /api/stations/search", func(w http.ResponseWriter, r *http.Request) {
		matches, err := svc.SearchStations(r.Context(), r.URL.Query().Get("q"))
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"count":   len(matches),
			"matches": matches,
		})
	})

	mux.HandleFunc("GET /api/departures/{stopID}", func(w http.ResponseWriter, r *http.Request) {
		departures, err := svc.GetDepartures(r.Context(), r.PathValue("stopID"))
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"count":      len(departures),
			"departures": departures,
		})
	})

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, model.ErrNoDataForSymbol), errors.Is(err, model.ErrNoDataForStation):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrInsufficientData):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}

	if status >= 500 {
		logger.Error("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
