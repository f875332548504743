package indicator

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/GaborinoS/gablab-finance/internal/model"
)

func almostEqual(a, b float64) bool {
	const eps = 1e-9
	d := a - b
	return d < eps && d > -eps
}

func TestSMA(t *testing.T) {
	got := SMA([]float64{1, 2, 3, 4, 5}, 3)

	// First full window means 2; leading points back-filled with it.
	want := []float64{2, 2, 2, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if !almostEqual(got[i], want[i]) {
			t.Errorf("sma[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSMAShorterThanWindow(t *testing.T) {
	got := SMA([]float64{1, 2, 3}, 20)
	for i, v := range got {
		if !almostEqual(v, 2) {
			t.Errorf("sma[%d] = %v, want 2 (whole-series window)", i, v)
		}
	}
}

func TestEMA(t *testing.T) {
	// span 3 -> smoothing 0.5, easy to follow by hand.
	got := EMA([]float64{2, 4, 8}, 3)

	want := []float64{2, 3, 5.5}
	for i := range want {
		if !almostEqual(got[i], want[i]) {
			t.Errorf("ema[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestBollinger(t *testing.T) {
	// Consecutive integers: every 3-window has sample std exactly 1.
	middle, upper, lower := Bollinger([]float64{1, 2, 3, 4, 5}, 3)

	wantMiddle := []float64{2, 2, 2, 3, 4}
	for i := range wantMiddle {
		if !almostEqual(middle[i], wantMiddle[i]) {
			t.Errorf("middle[%d] = %v, want %v", i, middle[i], wantMiddle[i])
		}
		if !almostEqual(upper[i], wantMiddle[i]+2) {
			t.Errorf("upper[%d] = %v, want %v", i, upper[i], wantMiddle[i]+2)
		}
		if !almostEqual(lower[i], wantMiddle[i]-2) {
			t.Errorf("lower[%d] = %v, want %v", i, lower[i], wantMiddle[i]-2)
		}
	}
}

func TestIndicatorLengthInvariant(t *testing.T) {
	for _, n := range []int{1, 5, 19, 20, 25, 60} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			values := make([]float64, n)
			for i := range values {
				values[i] = float64(i + 1)
			}

			if got := len(SMA(values, Window)); got != n {
				t.Errorf("len(SMA) = %d, want %d", got, n)
			}
			if got := len(EMA(values, Window)); got != n {
				t.Errorf("len(EMA) = %d, want %d", got, n)
			}
			middle, upper, lower := Bollinger(values, Window)
			if len(middle) != n || len(upper) != n || len(lower) != n {
				t.Errorf("bollinger lens = %d/%d/%d, want %d",
					len(middle), len(upper), len(lower), n)
			}
		})
	}
}

func TestComputeStats(t *testing.T) {
	stats := computeStats([]float64{10, 20, 30})

	if !almostEqual(stats.Mean, 20) {
		t.Errorf("Mean = %v, want 20", stats.Mean)
	}
	if !almostEqual(stats.StdDev, 10) {
		t.Errorf("StdDev = %v, want 10 (sample std)", stats.StdDev)
	}
	if !almostEqual(stats.Min, 10) || !almostEqual(stats.Max, 30) {
		t.Errorf("Min/Max = %v/%v, want 10/30", stats.Min, stats.Max)
	}
	if !almostEqual(stats.First, 10) || !almostEqual(stats.Last, 30) {
		t.Errorf("First/Last = %v/%v, want 10/30", stats.First, stats.Last)
	}
	if !almostEqual(stats.Change, 20) {
		t.Errorf("Change = %v, want 20", stats.Change)
	}
	if !almostEqual(stats.PctChange, 200) {
		t.Errorf("PctChange = %v, want 200", stats.PctChange)
	}
}

func TestComputeStatsNonPositiveFirst(t *testing.T) {
	for _, first := range []float64{0, -5} {
		stats := computeStats([]float64{first, 10})
		if stats.PctChange != 0 {
			t.Errorf("PctChange with first=%v is %v, want 0", first, stats.PctChange)
		}
	}
}

func testSeries(n int, end time.Time) model.PriceSeries {
	series := model.PriceSeries{Ticker: "TEST"}
	for i := 0; i < n; i++ {
		day := end.AddDate(0, 0, -(n - 1 - i))
		series.Dates = append(series.Dates, day.Format(DateLayout))
		series.Closes = append(series.Closes, 100+float64(i))
	}
	return series
}

func TestComputeTimeframeFilter(t *testing.T) {
	now := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	series := testSeries(400, now)

	tests := []struct {
		timeframe Timeframe
		wantLen   int
	}{
		{Timeframe1M, 31},
		{Timeframe3M, 91},
		{Timeframe6M, 181},
		{Timeframe1Y, 366},
		{TimeframeAll, 400},
	}
	for _, tt := range tests {
		t.Run(string(tt.timeframe), func(t *testing.T) {
			result, err := Compute(series, tt.timeframe, KindSMA, now)
			if err != nil {
				t.Fatalf("Compute failed: %v", err)
			}
			if len(result.Dates) != tt.wantLen {
				t.Errorf("len(Dates) = %d, want %d", len(result.Dates), tt.wantLen)
			}
			if len(result.Values) != len(result.Dates) {
				t.Errorf("len(Values) = %d, want %d", len(result.Values), len(result.Dates))
			}
			if len(result.Lines["sma"]) != len(result.Dates) {
				t.Errorf("len(sma) = %d, want %d", len(result.Lines["sma"]), len(result.Dates))
			}
		})
	}
}

func TestComputeEmptyTimeframe(t *testing.T) {
	// A long history whose newest point is still too old for a 1-month
	// window must fail, not return an empty success.
	now := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	series := testSeries(700, now.AddDate(-1, 0, 0))

	_, err := Compute(series, Timeframe1M, KindSMA, now)
	if !errors.Is(err, model.ErrInsufficientData) {
		t.Errorf("err = %v, want ErrInsufficientData", err)
	}
}

func TestComputeEmptySeries(t *testing.T) {
	now := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	_, err := Compute(model.PriceSeries{Ticker: "TEST"}, TimeframeAll, KindEMA, now)
	if !errors.Is(err, model.ErrInsufficientData) {
		t.Errorf("err = %v, want ErrInsufficientData", err)
	}
}

func TestComputeBollingerLines(t *testing.T) {
	now := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	series := testSeries(25, now)

	result, err := Compute(series, TimeframeAll, KindBollinger, now)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	for _, line := range []string{"middle", "upper", "lower"} {
		if len(result.Lines[line]) != 25 {
			t.Errorf("len(%s) = %d, want 25", line, len(result.Lines[line]))
		}
	}
	for i := range result.Lines["middle"] {
		if result.Lines["upper"][i] < result.Lines["middle"][i] {
			t.Fatalf("upper[%d] below middle", i)
		}
		if result.Lines["lower"][i] > result.Lines["middle"][i] {
			t.Fatalf("lower[%d] above middle", i)
		}
	}
}

func TestComputeUnknownInputs(t *testing.T) {
	now := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	series := testSeries(5, now)

	if _, err := Compute(series, Timeframe("2w"), KindSMA, now); err == nil {
		t.Error("unknown timeframe accepted")
	}
	if _, err := Compute(series, TimeframeAll, Kind("macd"), now); err == nil {
		t.Error("unknown indicator kind accepted")
	}
}
