// Package poller implements the watchlist refresher.
//
// The refresher:
//   - Re-fetches every watchlist ticker on a fixed interval
//   - Keeps the price cache warm so interactive requests hit fresh entries
//   - Uses bounded concurrency; actual upstream spacing is the rate
//     limiter's job
package poller
