// Package cache provides the in-memory, time-bounded leaderboard cache.
//
// # Overview
//
// The cache keeps exactly one Entry per leaderboard id. An entry records the
// value produced by the last successful fetch and the moment it was stored.
// Entries are never edited: a refresh stores a brand new Entry that replaces
// the previous one. Nothing is ever evicted, so the process lifetime bounds
// the lifetime of every entry.
//
// # Validity
//
// An entry is fresh while now - FetchedAt < duration. The boundary itself
// (now - FetchedAt == duration) is stale.
//
//	Unfetched --fetch--> Fresh --time--> Stale --fetch--> Fresh ...
//
// A failed fetch never touches the store, so a stale entry (or the absence of
// one) stays in place until the next request retries.
package cache

import (
	"time"
)

// Entry is one cached value with the time it was fetched.
type Entry[V any] struct {
	Value     V
	FetchedAt time.Time
}

// IsValid reports whether the entry is still fresh at now for the given duration.
func (e Entry[V]) IsValid(now time.Time, duration time.Duration) bool {
	return now.Sub(e.FetchedAt) < duration
}

// Age returns how long ago the entry was fetched.
func (e Entry[V]) Age(now time.Time) time.Duration {
	return now.Sub(e.FetchedAt)
}
