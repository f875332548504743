package transit

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/GaborinoS/gablab-finance/internal/model"
)

// Search defaults. The 0-100 scale and the >=50 cutoff are part of the
// caller contract, not tuning knobs.
const (
	DefaultSearchLimit = 10
	MinScore           = 50
)

// StationIndex is the read-only reference table of physical stops grouped
// by logical station name. Loaded once at construction, never mutated.
type StationIndex struct {
	names    []string // distinct station names in file order
	byName   map[string]*model.Station
	stopName map[string]string // stop id -> station name
}

// LoadStationIndex reads the semicolon-separated stops CSV. The header row
// locates the stop id and stop name columns; rows missing either value are
// skipped.
func LoadStationIndex(path string) (*StationIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open stations file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = ';'
	r.FieldsPerRecord = -1 // the source file is not strictly rectangular

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse stations csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("stations file %s is empty", path)
	}

	idCol, nameCol := -1, -1
	for i, col := range records[0] {
		switch strings.TrimSpace(col) {
		case "StopID":
			idCol = i
		case "StopText":
			nameCol = i
		}
	}
	if idCol < 0 || nameCol < 0 {
		return nil, fmt.Errorf("stations file %s: missing StopID or StopText column", path)
	}

	idx := &StationIndex{
		byName:   make(map[string]*model.Station),
		stopName: make(map[string]string),
	}

	for _, rec := range records[1:] {
		if len(rec) <= idCol || len(rec) <= nameCol {
			continue
		}
		stopID := strings.TrimSpace(rec[idCol])
		name := strings.TrimSpace(rec[nameCol])
		if stopID == "" || name == "" {
			continue
		}

		station, ok := idx.byName[name]
		if !ok {
			station = &model.Station{Name: name}
			idx.byName[name] = station
			idx.names = append(idx.names, name)
		}
		if _, seen := idx.stopName[stopID]; !seen {
			station.StopIDs = append(station.StopIDs, stopID)
			idx.stopName[stopID] = name
		}
	}

	if len(idx.names) == 0 {
		return nil, fmt.Errorf("stations file %s: no usable rows", path)
	}

	return idx, nil
}

// Len returns the number of distinct stations.
func (idx *StationIndex) Len() int {
	return len(idx.names)
}

// Search ranks station names by similarity to query. Results score 0-100,
// only scores >= MinScore are returned, ordered by descending score and
// truncated to limit (DefaultSearchLimit when limit <= 0).
func (idx *StationIndex) Search(query string, limit int) []model.StationMatch {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	var matches []model.StationMatch
	for _, name := range idx.names {
		score := similarity(query, name)
		if score < MinScore {
			continue
		}
		station := idx.byName[name]
		matches = append(matches, model.StationMatch{
			StationName:   name,
			PrimaryStopID: station.PrimaryStopID(),
			AllStopIDs:    append([]string(nil), station.StopIDs...),
			Score:         score,
		})
	}

	// Stable: equal scores keep file order, matching the first-encountered
	// rule for ambiguous names.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// Lookup resolves a physical stop id to its logical station with the full
// sibling stop set.
func (idx *StationIndex) Lookup(stopID string) (model.Station, bool) {
	name, ok := idx.stopName[stopID]
	if !ok {
		return model.Station{}, false
	}
	station := idx.byName[name]
	return model.Station{
		Name:    station.Name,
		StopIDs: append([]string(nil), station.StopIDs...),
	}, true
}

// similarity scores two strings on 0-100. Exact case-insensitive matches
// score 100, substring containment 90, everything else the normalized
// edit-distance ratio.
func similarity(query, name string) int {
	q := strings.ToLower(strings.TrimSpace(query))
	n := strings.ToLower(strings.TrimSpace(name))
	if q == "" || n == "" {
		return 0
	}
	if q == n {
		return 100
	}
	if strings.Contains(n, q) || strings.Contains(q, n) {
		return 90
	}

	dist := levenshtein.ComputeDistance(q, n)
	longer := len([]rune(q))
	if l := len([]rune(n)); l > longer {
		longer = l
	}
	return int(float64(longer-dist) / float64(longer) * 100)
}
