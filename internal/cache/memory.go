package cache

import (
	"sync"
	"time"
)

// Store maps leaderboard ids to their most recent Entry.
type Store[V any] struct {
	entries map[string]Entry[V]
	mu      sync.RWMutex
	now     func() time.Time
}

// Option configures a Store.
type Option func(*storeOptions)

type storeOptions struct {
	now func() time.Time
}

// WithClock overrides the clock used to stamp new entries.
func WithClock(now func() time.Time) Option {
	return func(o *storeOptions) {
		o.now = now
	}
}

// NewStore creates an empty store.
func NewStore[V any](opts ...Option) *Store[V] {
	o := storeOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store[V]{
		entries: make(map[string]Entry[V]),
		now:     o.now,
	}
}

// Get returns the entry for id, if one was ever stored.
func (s *Store[V]) Get(id string) (Entry[V], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[id]
	return entry, ok
}

// Set replaces the entry for id with a new one stamped with the current time.
func (s *Store[V]) Set(id string, value V) Entry[V] {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := Entry[V]{Value: value, FetchedAt: s.now()}
	s.entries[id] = entry
	return entry
}

// Len returns the number of cached ids.
func (s *Store[V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Now returns the store clock's current time.
func (s *Store[V]) Now() time.Time {
	return s.now()
}
