package model

import (
	"fmt"
	"time"
)

// -----------------------------------------------------------------------------
// Price Types
// -----------------------------------------------------------------------------

// PriceSeries is the full daily price history of one instrument.
//
// Dates are calendar days formatted YYYY-MM-DD, ascending. Closes is always
// populated and parallel to Dates; the OHLV slices are optional but must be
// parallel when present. IsFallback marks synthetic data substituted for a
// failed upstream fetch and must never be dropped on the way to a consumer.
type PriceSeries struct {
	Ticker  string    `json:"ticker"`
	Dates   []string  `json:"dates"`
	Closes  []float64 `json:"closes"`
	Opens   []float64 `json:"opens,omitempty"`
	Highs   []float64 `json:"highs,omitempty"`
	Lows    []float64 `json:"lows,omitempty"`
	Volumes []int64   `json:"volumes,omitempty"`

	LastClose      float64   `json:"last_close"`
	LastObservedAt time.Time `json:"last_observed_at"`
	IsFallback     bool      `json:"is_fallback"`
}

// Complete reports whether the series carries a usable full history.
// A cached series failing this check is treated as stale regardless of age.
func (s *PriceSeries) Complete() bool {
	return s != nil && len(s.Dates) > 0 && len(s.Closes) == len(s.Dates)
}

// Validate checks the parallel-slice invariant.
func (s *PriceSeries) Validate() error {
	n := len(s.Dates)
	if len(s.Closes) != n {
		return fmt.Errorf("series %s: closes length %d != dates length %d", s.Ticker, len(s.Closes), n)
	}
	for name, l := range map[string]int{
		"opens":   len(s.Opens),
		"highs":   len(s.Highs),
		"lows":    len(s.Lows),
		"volumes": len(s.Volumes),
	} {
		if l != 0 && l != n {
			return fmt.Errorf("series %s: %s length %d != dates length %d", s.Ticker, name, l, n)
		}
	}
	return nil
}

// -----------------------------------------------------------------------------
// Transit Types
// -----------------------------------------------------------------------------

// Station is a logical stop grouping: one public name covering the physical
// stop ids of its platforms and directions. Stop ids keep source-file order;
// the first one is the primary id used when a single id must represent the
// station.
type Station struct {
	Name    string   `json:"name"`
	StopIDs []string `json:"stop_ids"`
}

// PrimaryStopID returns the first stop id in source order.
func (s Station) PrimaryStopID() string {
	if len(s.StopIDs) == 0 {
		return ""
	}
	return s.StopIDs[0]
}

// StationMatch is one result of an approximate station-name search.
type StationMatch struct {
	StationName   string   `json:"station_name"`
	PrimaryStopID string   `json:"stop_id"`
	AllStopIDs    []string `json:"all_stop_ids"`
	Score         int      `json:"similarity_score"` // 0-100
}

// Departure is one upcoming vehicle departure reported by the transit
// upstream for a single physical stop.
type Departure struct {
	Line             string `json:"line"`
	Direction        string `json:"direction"`
	CountdownMinutes int    `json:"countdown"`
	TimeDisplay      string `json:"time_display"`
	IsRealtime       bool   `json:"realtime"`
	Platform         string `json:"platform,omitempty"`
	StopID           string `json:"stop_id"`
	Location         string `json:"location,omitempty"`
}

// DedupKey identifies the physical event behind a departure record. Two
// departures with equal keys seen from different stop fetches are the same
// vehicle and must collapse to one.
func (d Departure) DedupKey() string {
	return fmt.Sprintf("%s_%s_%d", d.Line, d.Direction, d.CountdownMinutes)
}
