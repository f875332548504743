// Package prices synchronizes daily price histories from the market-data
// upstream.
//
// The chart endpoint serves the maximal available daily history per symbol:
//
//	GET {base}/{symbol}?range=max&interval=1d
//
// The fetcher is cache-first with a fixed 6h freshness window, spaces its
// upstream calls through the rate limiter, and substitutes a clearly flagged
// synthetic series when the upstream is unreachable. An unknown symbol is
// surfaced as model.ErrNoDataForSymbol instead; that is a caller problem,
// not an upstream outage.
package prices
