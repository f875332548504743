package indicator

import "math"

// Stats summarizes a clipped price series.
type Stats struct {
	Mean      float64 `json:"mean"`
	StdDev    float64 `json:"std_dev"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	First     float64 `json:"first"`
	Last      float64 `json:"last"`
	Change    float64 `json:"change"`
	PctChange float64 `json:"pct_change"`
}

// computeStats derives summary statistics from a non-empty value series.
// The percentage change is zero when the first value is not positive,
// which avoids a division fault on degenerate series.
func computeStats(values []float64) Stats {
	if len(values) == 0 {
		return Stats{}
	}

	first := values[0]
	last := values[len(values)-1]
	min, max := first, first
	var sum float64
	for _, v := range values {
		sum += v
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	mean := sum / float64(len(values))

	var std float64
	if len(values) > 1 {
		var sq float64
		for _, v := range values {
			d := v - mean
			sq += d * d
		}
		std = math.Sqrt(sq / float64(len(values)-1))
	}

	stats := Stats{
		Mean:   mean,
		StdDev: std,
		Min:    min,
		Max:    max,
		First:  first,
		Last:   last,
		Change: last - first,
	}
	if first > 0 {
		stats.PctChange = (last - first) / first * 100
	}
	return stats
}
