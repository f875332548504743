package prices

// ChartResponse from GET /{symbol}.
type ChartResponse struct {
	Chart ChartEnvelope `json:"chart"`
}

// ChartEnvelope wraps the result list and the upstream's error object.
type ChartEnvelope struct {
	Result []ChartResult `json:"result"`
	Error  *ChartError   `json:"error"`
}

// ChartError is the upstream's structured error.
type ChartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// ChartResult is one symbol's history.
type ChartResult struct {
	Meta       ChartMeta  `json:"meta"`
	Timestamps []int64    `json:"timestamp"`
	Indicators Indicators `json:"indicators"`
}

// ChartMeta carries symbol-level metadata.
type ChartMeta struct {
	Symbol             string  `json:"symbol"`
	Currency           string  `json:"currency"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
	RegularMarketTime  int64   `json:"regularMarketTime"`
}

// Indicators holds the parallel quote arrays.
type Indicators struct {
	Quote []Quote `json:"quote"`
}

// Quote holds daily OHLCV arrays parallel to the timestamps. Individual
// entries may be null for non-trading intervals, hence the pointers.
type Quote struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
}
