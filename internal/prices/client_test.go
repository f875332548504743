package prices

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/GaborinoS/gablab-finance/internal/model"
)

const chartBody = `{
  "chart": {
    "result": [{
      "meta": {"symbol": "EUNL.DE", "currency": "EUR", "regularMarketPrice": 103.1, "regularMarketTime": 1756368000},
      "timestamp": [1756108800, 1756195200, 1756281600],
      "indicators": {"quote": [{
        "open":   [100.5, 101.0, 102.2],
        "high":   [101.5, 102.0, 103.6],
        "low":    [100.1, 100.8, 102.0],
        "close":  [101.2, 101.9, 103.1],
        "volume": [12000, 13500, 11000]
      }]}
    }],
    "error": null
  }
}`

func TestGetHistory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/EUNL.DE" {
			t.Errorf("path = %q, want %q", r.URL.Path, "/EUNL.DE")
		}
		if got := r.URL.Query().Get("range"); got != "max" {
			t.Errorf("range = %q, want %q", got, "max")
		}
		if got := r.URL.Query().Get("interval"); got != "1d" {
			t.Errorf("interval = %q, want %q", got, "1d")
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, chartBody)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	series, err := client.GetHistory(context.Background(), "EUNL.DE")
	if err != nil {
		t.Fatalf("GetHistory failed: %v", err)
	}

	if len(series.Dates) != 3 {
		t.Fatalf("len(Dates) = %d, want 3", len(series.Dates))
	}
	if series.Dates[0] != "2025-08-25" {
		t.Errorf("Dates[0] = %q, want %q", series.Dates[0], "2025-08-25")
	}
	if series.Closes[2] != 103.1 {
		t.Errorf("Closes[2] = %v, want 103.1", series.Closes[2])
	}
	if series.LastClose != 103.1 {
		t.Errorf("LastClose = %v, want 103.1", series.LastClose)
	}
	if series.IsFallback {
		t.Error("IsFallback = true for live data")
	}
	if len(series.Volumes) != 3 || series.Volumes[1] != 13500 {
		t.Errorf("Volumes = %v, want three entries with [1]=13500", series.Volumes)
	}
}

func TestGetHistoryUnknownSymbol(t *testing.T) {
	t.Run("http 404", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`)
		}))
		defer server.Close()

		client := NewClient(server.URL)
		_, err := client.GetHistory(context.Background(), "NOPE")
		if !errors.Is(err, model.ErrNoDataForSymbol) {
			t.Errorf("error = %v, want ErrNoDataForSymbol", err)
		}
	})

	t.Run("error body with 200", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"delisted"}}}`)
		}))
		defer server.Close()

		client := NewClient(server.URL)
		_, err := client.GetHistory(context.Background(), "GONE")
		if !errors.Is(err, model.ErrNoDataForSymbol) {
			t.Errorf("error = %v, want ErrNoDataForSymbol", err)
		}
	})

	t.Run("empty result set", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"chart":{"result":[],"error":null}}`)
		}))
		defer server.Close()

		client := NewClient(server.URL)
		_, err := client.GetHistory(context.Background(), "EMPTY")
		if !errors.Is(err, model.ErrNoDataForSymbol) {
			t.Errorf("error = %v, want ErrNoDataForSymbol", err)
		}
	})
}

func TestGetHistoryRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, chartBody)
	}))
	defer server.Close()

	client := NewClient(server.URL, WithRetries(3, 10*time.Millisecond))
	series, err := client.GetHistory(context.Background(), "EUNL.DE")
	if err != nil {
		t.Fatalf("GetHistory failed after retries: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("upstream calls = %d, want 3", calls.Load())
	}
	if len(series.Closes) != 3 {
		t.Errorf("len(Closes) = %d, want 3", len(series.Closes))
	}
}

func TestGetHistoryDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient(server.URL, WithRetries(3, 10*time.Millisecond))
	_, err := client.GetHistory(context.Background(), "EUNL.DE")
	if err == nil {
		t.Fatal("expected error for 400 response")
	}
	if calls.Load() != 1 {
		t.Errorf("upstream calls = %d, want 1 (no retry on 400)", calls.Load())
	}
}

func TestAPIErrorIsRetryable(t *testing.T) {
	tests := []struct {
		code int
		want bool
	}{
		{500, true},
		{502, true},
		{503, true},
		{429, true},
		{400, false},
		{401, false},
		{404, false},
	}
	for _, tt := range tests {
		err := &APIError{StatusCode: tt.code}
		if got := err.IsRetryable(); got != tt.want {
			t.Errorf("IsRetryable(%d) = %v, want %v", tt.code, got, tt.want)
		}
	}
}
