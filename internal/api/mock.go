package api

import (
	"context"
	"net/http"
	"sync"
)

// InMemoryTransport is a lightweight stand-in for the leaderboard endpoint.
// It serves seeded leaderboards, returns injected failures, and records every
// request for assertions in unit tests.
type InMemoryTransport struct {
	mu           sync.Mutex
	leaderboards map[string]*RawLeaderboard
	failures     map[string]error
	RequestLog   []string

	// OnFetch, when set, runs before every fetch (outside the lock).
	OnFetch func(ctx context.Context, id string)
}

// NewInMemoryTransport creates an empty in-memory transport.
func NewInMemoryTransport() *InMemoryTransport {
	return &InMemoryTransport{
		leaderboards: make(map[string]*RawLeaderboard),
		failures:     make(map[string]error),
		RequestLog:   make([]string, 0),
	}
}

// Seed makes id return raw. Any failure injected for id is cleared.
func (t *InMemoryTransport) Seed(id string, raw *RawLeaderboard) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.leaderboards[id] = raw
	delete(t.failures, id)
}

// Fail makes every fetch of id return err until it is re-seeded.
func (t *InMemoryTransport) Fail(id string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failures[id] = err
}

// RequestsMade returns the number of fetches performed.
func (t *InMemoryTransport) RequestsMade() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.RequestLog)
}

// RequestsFor returns the number of fetches performed for id.
func (t *InMemoryTransport) RequestsFor(id string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, got := range t.RequestLog {
		if got == id {
			n++
		}
	}
	return n
}

// Reset clears recorded requests. Seeds and failures are kept.
func (t *InMemoryTransport) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.RequestLog = make([]string, 0)
}

// FetchLeaderboard implements Fetcher. Unknown ids answer like a 404.
func (t *InMemoryTransport) FetchLeaderboard(ctx context.Context, id string) (*RawLeaderboard, error) {
	if t.OnFetch != nil {
		t.OnFetch(ctx, id)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.RequestLog = append(t.RequestLog, id)

	if err, ok := t.failures[id]; ok {
		return nil, err
	}
	if raw, ok := t.leaderboards[id]; ok {
		return raw, nil
	}
	return nil, &TransportError{StatusCode: http.StatusNotFound, Message: http.StatusText(http.StatusNotFound)}
}

// SampleLeaderboard builds a small two-member leaderboard for tests and demos.
func SampleLeaderboard() *RawLeaderboard {
	alice := MemberID("1001")
	bob := MemberID("1002")
	aliceName := "Alice"
	aliceScore, bobScore := 42, 17

	return &RawLeaderboard{
		Event:   "2023",
		OwnerID: &alice,
		Members: map[string]RawMember{
			"1002": {
				ID:         &bob,
				LocalScore: &bobScore,
				CompletionDayLevel: map[int]DayCompletion{
					1: {Part1: &Star{StarIndex: 12, GetStarTS: 1701410000}},
				},
				Stars:      1,
				LastStarTS: 1701410000,
			},
			"1001": {
				ID:         &alice,
				Name:       &aliceName,
				LocalScore: &aliceScore,
				CompletionDayLevel: map[int]DayCompletion{
					1: {
						Part1: &Star{StarIndex: 3, GetStarTS: 1701407000},
						Part2: &Star{StarIndex: 9, GetStarTS: 1701408000},
					},
					2: {Part1: &Star{StarIndex: 40, GetStarTS: 1701494000}},
				},
				Stars:      3,
				LastStarTS: 1701494000,
			},
		},
	}
}
