package indicator

import "math"

// SMA returns the rolling mean over window periods. The leading window-1
// points, where the full window is not yet available, are back-filled with
// the first fully windowed value, so the output length equals the input
// length. Inputs shorter than the window use the whole series as the
// window.
func SMA(values []float64, window int) []float64 {
	n := len(values)
	if n == 0 {
		return nil
	}
	if window > n {
		window = n
	}

	out := make([]float64, n)
	var sum float64
	for i := 0; i < window; i++ {
		sum += values[i]
	}
	out[window-1] = sum / float64(window)
	for i := window; i < n; i++ {
		sum += values[i] - values[i-window]
		out[i] = sum / float64(window)
	}
	backfill(out, window)
	return out
}

// EMA returns the exponentially weighted mean with the given span
// (smoothing 2/(span+1)), seeded from the first value. It is defined from
// index 0, so no back-fill is needed.
func EMA(values []float64, span int) []float64 {
	n := len(values)
	if n == 0 {
		return nil
	}

	alpha := 2.0 / (float64(span) + 1.0)
	out := make([]float64, n)
	out[0] = values[0]
	for i := 1; i < n; i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// Bollinger returns the middle band (SMA), and the upper and lower bands
// at ±2 rolling sample standard deviations. All three are back-filled like
// SMA.
func Bollinger(values []float64, window int) (middle, upper, lower []float64) {
	n := len(values)
	if n == 0 {
		return nil, nil, nil
	}
	if window > n {
		window = n
	}

	middle = SMA(values, window)
	std := rollingStd(values, window)
	upper = make([]float64, n)
	lower = make([]float64, n)
	for i := range middle {
		upper[i] = middle[i] + 2*std[i]
		lower[i] = middle[i] - 2*std[i]
	}
	return middle, upper, lower
}

// rollingStd computes the rolling sample standard deviation (divisor
// window-1) over window periods, back-filled like SMA. A window of 1 has
// no spread and yields zeros.
func rollingStd(values []float64, window int) []float64 {
	n := len(values)
	out := make([]float64, n)
	if window < 2 {
		return out
	}

	for i := window - 1; i < n; i++ {
		start := i - window + 1
		var sum float64
		for _, v := range values[start : i+1] {
			sum += v
		}
		mean := sum / float64(window)
		var sq float64
		for _, v := range values[start : i+1] {
			d := v - mean
			sq += d * d
		}
		out[i] = math.Sqrt(sq / float64(window-1))
	}
	backfill(out, window)
	return out
}

// backfill copies the first defined value (at index window-1) over the
// leading undefined points.
func backfill(out []float64, window int) {
	for i := 0; i < window-1 && i < len(out); i++ {
		out[i] = out[window-1]
	}
}
