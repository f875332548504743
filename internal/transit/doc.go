// Package transit synchronizes live departures from the real-time monitor
// upstream.
//
// One logical station maps to several physical stop ids (platforms and
// directions). A station query fans out sequentially over all of them, one
// rate-limited upstream call per stop, isolates per-stop failures, and then
// merges the results: duplicates collapse on (line, direction, countdown)
// and the survivors sort by line class (metro, rail, tram, bus), numeric
// line prefix and countdown.
//
// There is deliberately no synthetic fallback for departures. Inventing a
// departure time for a live-commute view would be worse than showing
// nothing, so total upstream failure yields an empty list.
package transit
