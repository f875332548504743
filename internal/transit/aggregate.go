package transit

import (
	"regexp"
	"sort"
	"strconv"

	"github.com/GaborinoS/gablab-finance/internal/model"
)

// lineNumberSentinel sorts lines without a numeric prefix after all
// numbered lines of the same class.
const lineNumberSentinel = 999

var (
	tramPattern       = regexp.MustCompile(`^\d+$`)
	busPattern        = regexp.MustCompile(`^[0-9]+[AB]$`)
	lineNumberPattern = regexp.MustCompile(`^[A-Z]*(\d+)`)
)

// Aggregate merges fan-out results into the final departure board.
//
// Duplicates collapse on the dedup key with the first occurrence winning,
// so the metadata of the earliest-fetched stop survives. Survivors sort by
// (line class, line number, countdown): metro before rail before tram
// before bus before everything else, numbered lines ascending within a
// class, ties broken by the soonest departure. The full set is returned;
// limiting is the caller's concern.
func Aggregate(departures []model.Departure) []model.Departure {
	seen := make(map[string]struct{}, len(departures))
	unique := make([]model.Departure, 0, len(departures))
	for _, dep := range departures {
		key := dep.DedupKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, dep)
	}

	sort.SliceStable(unique, func(i, j int) bool {
		a, b := unique[i], unique[j]
		pa, pb := lineTypePriority(a.Line), lineTypePriority(b.Line)
		if pa != pb {
			return pa < pb
		}
		na, nb := lineNumber(a.Line), lineNumber(b.Line)
		if na != nb {
			return na < nb
		}
		return a.CountdownMinutes < b.CountdownMinutes
	})

	return unique
}

// lineTypePriority ranks line classes: metro (U-prefixed) first, then rail
// (S-prefixed), numeric tram lines, alphanumeric bus lines, anything else
// last.
func lineTypePriority(line string) int {
	switch {
	case len(line) > 0 && line[0] == 'U':
		return 1
	case len(line) > 0 && line[0] == 'S':
		return 2
	case tramPattern.MatchString(line):
		return 3
	case busPattern.MatchString(line):
		return 4
	default:
		return 5
	}
}

// lineNumber extracts the integer prefix of a line label after any leading
// capitals ("U1" -> 1, "59A" -> 59). Labels without one get the sentinel.
func lineNumber(line string) int {
	m := lineNumberPattern.FindStringSubmatch(line)
	if m == nil {
		return lineNumberSentinel
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return lineNumberSentinel
	}
	return n
}
