// Package indicator computes technical indicators and summary statistics
// over a price history. It is pure computation: no I/O, no clock of its
// own, the reference time comes in as an argument.
package indicator

import (
	"fmt"
	"time"

	"github.com/GaborinoS/gablab-finance/internal/model"
)

// Window is the period of the rolling indicators (SMA, Bollinger) and the
// span of the EMA.
const Window = 20

// DateLayout is the calendar-date format of series dates.
const DateLayout = "2006-01-02"

// Timeframe selects how far back from the reference time the series is
// clipped before computing.
type Timeframe string

const (
	Timeframe1M  Timeframe = "1m"
	Timeframe3M  Timeframe = "3m"
	Timeframe6M  Timeframe = "6m"
	Timeframe1Y  Timeframe = "1y"
	TimeframeAll Timeframe = "all"
)

// timeframeDays maps a timeframe to its lookback in calendar days. Zero
// means no clipping.
var timeframeDays = map[Timeframe]int{
	Timeframe1M:  30,
	Timeframe3M:  90,
	Timeframe6M:  180,
	Timeframe1Y:  365,
	TimeframeAll: 0,
}

// Kind names an indicator family.
type Kind string

const (
	KindSMA       Kind = "sma"
	KindEMA       Kind = "ema"
	KindBollinger Kind = "bollinger"
)

// Result is the computed output for one (series, timeframe, kind) request.
// Lines holds one entry per indicator line: "sma", "ema", or the
// "middle"/"upper"/"lower" Bollinger triple. Every line has the same
// length as Dates and Values.
type Result struct {
	Ticker string               `json:"ticker"`
	Dates  []string             `json:"dates"`
	Values []float64            `json:"values"`
	Lines  map[string][]float64 `json:"indicator_values"`
	Stats  Stats                `json:"stats"`
}

// Compute clips series to the timeframe ending at now and computes the
// requested indicator plus summary statistics. An empty clipped series is
// model.ErrInsufficientData.
func Compute(series model.PriceSeries, timeframe Timeframe, kind Kind, now time.Time) (*Result, error) {
	dates, values, err := filterTimeframe(series.Dates, series.Closes, timeframe, now)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Ticker: series.Ticker,
		Dates:  dates,
		Values: values,
		Stats:  computeStats(values),
	}

	switch kind {
	case KindSMA:
		result.Lines = map[string][]float64{
			"sma": SMA(values, Window),
		}
	case KindEMA:
		result.Lines = map[string][]float64{
			"ema": EMA(values, Window),
		}
	case KindBollinger:
		middle, upper, lower := Bollinger(values, Window)
		result.Lines = map[string][]float64{
			"middle": middle,
			"upper":  upper,
			"lower":  lower,
		}
	default:
		return nil, fmt.Errorf("unknown indicator kind %q", kind)
	}

	return result, nil
}

// filterTimeframe keeps the points dated within the lookback window ending
// at now. Dates that fail to parse are dropped with the same effect as
// falling outside the window.
func filterTimeframe(dates []string, values []float64, timeframe Timeframe, now time.Time) ([]string, []float64, error) {
	days, ok := timeframeDays[timeframe]
	if !ok {
		return nil, nil, fmt.Errorf("unknown timeframe %q", timeframe)
	}

	if days == 0 {
		if len(dates) == 0 {
			return nil, nil, fmt.Errorf("timeframe %s: %w", timeframe, model.ErrInsufficientData)
		}
		return dates, values, nil
	}

	cutoff := now.AddDate(0, 0, -days)
	var (
		outDates  []string
		outValues []float64
	)
	for i, d := range dates {
		t, err := time.Parse(DateLayout, d)
		if err != nil {
			continue
		}
		if t.Before(cutoff) {
			continue
		}
		outDates = append(outDates, d)
		outValues = append(outValues, values[i])
	}

	if len(outDates) == 0 {
		return nil, nil, fmt.Errorf("timeframe %s: %w", timeframe, model.ErrInsufficientData)
	}
	return outDates, outValues, nil
}
