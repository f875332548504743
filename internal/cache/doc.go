// Package cache implements the time-bounded entry store in front of the
// upstream fetchers.
//
// An entry is one opaque JSON payload per key plus the time it was fetched.
// Entries older than the freshness window are reported absent; nothing is
// evicted by size, only by staleness. Two backends exist: a file store (one
// JSON document per key, with an in-memory tier in front of the disk) and a
// Postgres store. Writes are best-effort for callers: a failed Put is logged
// and the in-flight data is still served.
package cache
