// Package model defines the domain records shared across the sync layer.
//
// Two record families exist:
//   - price histories fetched from the market-data upstream
//   - live departures fetched from the transit upstream
//
// Both are normalized here so that cache, fetchers and the service facade
// agree on one schema regardless of which upstream produced the data.
package model
