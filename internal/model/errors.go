package model

import "errors"

// Named errors surfaced to callers. These indicate caller-input or data-shape
// problems and are never converted into empty successes or fallback data.
var (
	// ErrNoDataForSymbol means the price upstream definitively knows nothing
	// about the requested ticker (as opposed to being temporarily down).
	ErrNoDataForSymbol = errors.New("no data for symbol")

	// ErrNoDataForStation means a station query resolved to no stops.
	ErrNoDataForStation = errors.New("no data for station")

	// ErrInsufficientData means a timeframe filter left zero points.
	ErrInsufficientData = errors.New("insufficient data for timeframe")
)
