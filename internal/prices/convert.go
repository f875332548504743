package prices

import (
	"time"

	"github.com/GaborinoS/gablab-finance/internal/model"
)

// ToPriceSeries converts a chart result into the internal series record.
// Intervals with a null close (holidays, halts) are dropped so the output
// slices stay parallel and gap-free on the value side.
func (r ChartResult) ToPriceSeries(symbol string) *model.PriceSeries {
	series := &model.PriceSeries{
		Ticker: symbol,
	}

	var quote Quote
	if len(r.Indicators.Quote) > 0 {
		quote = r.Indicators.Quote[0]
	}

	hasOpens := len(quote.Open) == len(r.Timestamps)
	hasHighs := len(quote.High) == len(r.Timestamps)
	hasLows := len(quote.Low) == len(r.Timestamps)
	hasVolumes := len(quote.Volume) == len(r.Timestamps)

	for i, ts := range r.Timestamps {
		if i >= len(quote.Close) || quote.Close[i] == nil {
			continue
		}

		series.Dates = append(series.Dates, time.Unix(ts, 0).UTC().Format("2006-01-02"))
		series.Closes = append(series.Closes, *quote.Close[i])

		if hasOpens {
			series.Opens = append(series.Opens, deref(quote.Open[i]))
		}
		if hasHighs {
			series.Highs = append(series.Highs, deref(quote.High[i]))
		}
		if hasLows {
			series.Lows = append(series.Lows, deref(quote.Low[i]))
		}
		if hasVolumes {
			var v int64
			if quote.Volume[i] != nil {
				v = *quote.Volume[i]
			}
			series.Volumes = append(series.Volumes, v)
		}
	}

	if n := len(series.Closes); n > 0 {
		series.LastClose = series.Closes[n-1]
		series.LastObservedAt = time.Unix(r.Timestamps[len(r.Timestamps)-1], 0).UTC()
		if r.Meta.RegularMarketTime > 0 {
			series.LastObservedAt = time.Unix(r.Meta.RegularMarketTime, 0).UTC()
		}
	}

	return series
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
