package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/GaborinoS/gablab-finance/internal/indicator"
	"github.com/GaborinoS/gablab-finance/internal/model"
	"github.com/GaborinoS/gablab-finance/internal/transit"
)

type fakePrices struct {
	calls   atomic.Int64
	gate    chan struct{} // when set, Fetch blocks until closed
	series  func(ticker string) *model.PriceSeries
	lastArg atomic.Value
}

func (f *fakePrices) Fetch(ctx context.Context, ticker string) (*model.PriceSeries, error) {
	f.calls.Add(1)
	f.lastArg.Store(ticker)
	if f.gate != nil {
		<-f.gate
	}
	if f.series != nil {
		return f.series(ticker), nil
	}
	return &model.PriceSeries{
		Ticker: ticker,
		Dates:  []string{"2026-08-27", "2026-08-28"},
		Closes: []float64{100, 101},
	}, nil
}

type fakeTransit struct {
	station    model.Station
	departures []model.Departure
	err        error
}

func (f *fakeTransit) FetchForStation(ctx context.Context, station model.Station) ([]model.Departure, error) {
	f.station = station
	return f.departures, f.err
}

func loadTestIndex(t *testing.T) *transit.StationIndex {
	t.Helper()
	idx, err := transit.LoadStationIndex(filepath.Join("testdata", "haltepunkte.csv"))
	if err != nil {
		t.Fatalf("LoadStationIndex failed: %v", err)
	}
	return idx
}

func TestGetPriceSeriesNormalizesTicker(t *testing.T) {
	prices := &fakePrices{}
	svc := New(prices, &fakeTransit{}, loadTestIndex(t))

	series, err := svc.GetPriceSeries(context.Background(), "  aapl ")
	if err != nil {
		t.Fatalf("GetPriceSeries failed: %v", err)
	}
	if got := prices.lastArg.Load(); got != "AAPL" {
		t.Errorf("fetcher received ticker %q, want %q", got, "AAPL")
	}
	if series.Ticker != "AAPL" {
		t.Errorf("Ticker = %q, want %q", series.Ticker, "AAPL")
	}
}

func TestGetPriceSeriesEmptyTicker(t *testing.T) {
	svc := New(&fakePrices{}, &fakeTransit{}, loadTestIndex(t))

	_, err := svc.GetPriceSeries(context.Background(), "   ")
	if !errors.Is(err, model.ErrNoDataForSymbol) {
		t.Errorf("err = %v, want ErrNoDataForSymbol", err)
	}
}

func TestGetPriceSeriesCollapsesConcurrentCalls(t *testing.T) {
	prices := &fakePrices{gate: make(chan struct{})}
	svc := New(prices, &fakeTransit{}, loadTestIndex(t))

	const callers = 5
	var wg sync.WaitGroup
	call := func() {
		defer wg.Done()
		if _, err := svc.GetPriceSeries(context.Background(), "AAPL"); err != nil {
			t.Errorf("GetPriceSeries failed: %v", err)
		}
	}

	// First caller enters the fetch and blocks on the gate.
	wg.Add(1)
	go call()
	deadline := time.Now().Add(2 * time.Second)
	for prices.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	// The rest arrive while that fetch is in flight and must join it.
	for i := 1; i < callers; i++ {
		wg.Add(1)
		go call()
	}
	time.Sleep(100 * time.Millisecond)
	close(prices.gate)
	wg.Wait()

	if got := prices.calls.Load(); got != 1 {
		t.Errorf("upstream fetches = %d, want 1 for %d concurrent callers", got, callers)
	}
}

func TestGetIndicator(t *testing.T) {
	now := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	prices := &fakePrices{series: func(ticker string) *model.PriceSeries {
		series := &model.PriceSeries{Ticker: ticker}
		for i := 0; i < 40; i++ {
			day := now.AddDate(0, 0, -(39 - i))
			series.Dates = append(series.Dates, day.Format(indicator.DateLayout))
			series.Closes = append(series.Closes, 100+float64(i))
		}
		return series
	}}
	svc := New(prices, &fakeTransit{}, loadTestIndex(t), WithClock(func() time.Time { return now }))

	result, err := svc.GetIndicator(context.Background(), "AAPL", indicator.Timeframe1M, indicator.KindSMA)
	if err != nil {
		t.Fatalf("GetIndicator failed: %v", err)
	}
	if len(result.Dates) != 31 {
		t.Errorf("len(Dates) = %d, want 31", len(result.Dates))
	}
	if len(result.Lines["sma"]) != len(result.Dates) {
		t.Errorf("len(sma) = %d, want %d", len(result.Lines["sma"]), len(result.Dates))
	}
}

func TestGetIndicatorStaleHistory(t *testing.T) {
	now := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	prices := &fakePrices{series: func(ticker string) *model.PriceSeries {
		return &model.PriceSeries{
			Ticker: ticker,
			Dates:  []string{"2024-01-02", "2024-01-03"},
			Closes: []float64{10, 11},
		}
	}}
	svc := New(prices, &fakeTransit{}, loadTestIndex(t), WithClock(func() time.Time { return now }))

	_, err := svc.GetIndicator(context.Background(), "AAPL", indicator.Timeframe1M, indicator.KindEMA)
	if !errors.Is(err, model.ErrInsufficientData) {
		t.Errorf("err = %v, want ErrInsufficientData", err)
	}
}

func TestSearchStations(t *testing.T) {
	svc := New(&fakePrices{}, &fakeTransit{}, loadTestIndex(t))

	matches, err := svc.SearchStations(context.Background(), "Karlsplatz")
	if err != nil {
		t.Fatalf("SearchStations failed: %v", err)
	}
	if len(matches) == 0 || matches[0].StationName != "Karlsplatz" {
		t.Errorf("matches = %v, want Karlsplatz first", matches)
	}
}

func TestSearchStationsNoMatch(t *testing.T) {
	svc := New(&fakePrices{}, &fakeTransit{}, loadTestIndex(t))

	_, err := svc.SearchStations(context.Background(), "zzzzzzzzzz")
	if !errors.Is(err, model.ErrNoDataForStation) {
		t.Errorf("err = %v, want ErrNoDataForStation", err)
	}
}

func TestSearchStationsEmptyQuery(t *testing.T) {
	svc := New(&fakePrices{}, &fakeTransit{}, loadTestIndex(t))

	_, err := svc.SearchStations(context.Background(), "  ")
	if !errors.Is(err, model.ErrNoDataForStation) {
		t.Errorf("err = %v, want ErrNoDataForStation", err)
	}
}

func TestGetDeparturesExpandsSiblingStops(t *testing.T) {
	fetcher := &fakeTransit{}
	svc := New(&fakePrices{}, fetcher, loadTestIndex(t))

	if _, err := svc.GetDepartures(context.Background(), "4102"); err != nil {
		t.Fatalf("GetDepartures failed: %v", err)
	}
	if fetcher.station.Name != "Karlsplatz" {
		t.Errorf("station = %q, want Karlsplatz", fetcher.station.Name)
	}
	if len(fetcher.station.StopIDs) != 3 {
		t.Errorf("fan-out over %d stops, want all 3 siblings", len(fetcher.station.StopIDs))
	}
}

func TestGetDeparturesUnknownStopID(t *testing.T) {
	fetcher := &fakeTransit{}
	svc := New(&fakePrices{}, fetcher, loadTestIndex(t))

	if _, err := svc.GetDepartures(context.Background(), "99999"); err != nil {
		t.Fatalf("GetDepartures failed: %v", err)
	}
	if len(fetcher.station.StopIDs) != 1 || fetcher.station.StopIDs[0] != "99999" {
		t.Errorf("station = %+v, want single-stop fan-out over 99999", fetcher.station)
	}
}

func TestGetDeparturesAggregates(t *testing.T) {
	fetcher := &fakeTransit{departures: []model.Departure{
		{Line: "U1", Direction: "Leopoldau", CountdownMinutes: 5, StopID: "4101"},
		{Line: "U1", Direction: "Leopoldau", CountdownMinutes: 5, StopID: "4102"},
		{Line: "59A", Direction: "X", CountdownMinutes: 1},
	}}
	svc := New(&fakePrices{}, fetcher, loadTestIndex(t))

	departures, err := svc.GetDepartures(context.Background(), "4101")
	if err != nil {
		t.Fatalf("GetDepartures failed: %v", err)
	}
	if len(departures) != 2 {
		t.Fatalf("len(departures) = %d, want 2 after dedup", len(departures))
	}
	if departures[0].Line != "U1" {
		t.Errorf("first line = %q, want U1 ahead of the bus", departures[0].Line)
	}
}

func TestGetDeparturesEmptyStopID(t *testing.T) {
	svc := New(&fakePrices{}, &fakeTransit{}, loadTestIndex(t))

	_, err := svc.GetDepartures(context.Background(), "")
	if !errors.Is(err, model.ErrNoDataForStation) {
		t.Errorf("err = %v, want ErrNoDataForStation", err)
	}
}
