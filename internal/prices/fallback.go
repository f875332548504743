package prices

import (
	"hash/fnv"
	"time"

	"github.com/GaborinoS/gablab-finance/internal/model"
)

// DefaultFallbackDays is the length of a synthetic series when the upstream
// is unreachable.
const DefaultFallbackDays = 30

// Fallback builds a synthetic price series of exactly days points ending at
// now. The shape is a deterministic gentle uptrend seeded from the ticker
// name: the same ticker always yields the same values, every value is
// strictly positive, and the series is flagged so no consumer can mistake it
// for market data.
func Fallback(ticker string, days int, now time.Time) *model.PriceSeries {
	if days <= 0 {
		days = DefaultFallbackDays
	}

	// Stable per-ticker base level in [50, 150).
	h := fnv.New32a()
	h.Write([]byte(ticker))
	base := 50.0 + float64(h.Sum32()%100)

	series := &model.PriceSeries{
		Ticker:         ticker,
		Dates:          make([]string, days),
		Closes:         make([]float64, days),
		LastObservedAt: now,
		IsFallback:     true,
	}

	day := now.AddDate(0, 0, -(days - 1))
	for i := 0; i < days; i++ {
		series.Dates[i] = day.Format("2006-01-02")
		series.Closes[i] = base + float64(i)
		day = day.AddDate(0, 0, 1)
	}
	series.LastClose = series.Closes[days-1]

	return series
}
