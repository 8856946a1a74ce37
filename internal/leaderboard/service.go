// Package leaderboard serves reduced Advent of Code private leaderboards from
// a time-bounded cache.
//
// # Read path
//
// Get checks the id against the configured allow-list, then consults the
// cache. A fresh entry is returned without any I/O. A stale or missing entry
// triggers Refresh, which fetches upstream, reduces the document and stores
// the result before returning it.
//
// # Failures
//
// Upstream failures are returned to the caller as-is: *api.RedirectError when
// the session cookie no longer works, *api.TransportError for network and
// HTTP errors, api.ErrMalformedPayload when the document has an unexpected
// shape. A failed refresh leaves the cache untouched, so the next request
// simply tries again. There is no background retry.
//
// # Concurrency
//
// Concurrent reads of the same id may each miss and each fetch upstream; the
// last write wins. GetAll fans out one goroutine per id and joins them.
package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/colthorp/aoclb/internal/api"
	"github.com/colthorp/aoclb/internal/cache"
	"github.com/colthorp/aoclb/internal/core"
)

// ErrUnknownLeaderboard is returned for ids outside the allow-list.
var ErrUnknownLeaderboard = errors.New("leaderboard not found")

// Options configures a Service.
type Options struct {
	// IDs is the allow-list of leaderboards the service will serve.
	IDs []string
	// CacheDuration is how long a fetched leaderboard stays fresh.
	CacheDuration time.Duration

	Logger  *slog.Logger
	Metrics *Metrics
	// Store defaults to a fresh in-memory store.
	Store *cache.Store[*Leaderboard]
}

// Result is one item of a bulk read. Exactly one of Data and Error is set.
type Result struct {
	ID    string       `json:"id"`
	Data  *Leaderboard `json:"data"`
	Error *string      `json:"error"`

	Err error `json:"-"`
}

// Service orchestrates cache lookups, upstream fetches and reduction.
// Returned *Leaderboard values are shared with the cache and must not be
// modified.
type Service struct {
	ids      []string
	known    map[string]bool
	duration time.Duration
	fetcher  api.Fetcher
	store    *cache.Store[*Leaderboard]
	logger   *slog.Logger
	metrics  *Metrics
}

// NewService creates a service reading through fetcher.
func NewService(fetcher api.Fetcher, opts Options) *Service {
	if opts.CacheDuration <= 0 {
		opts.CacheDuration = core.DefaultCacheDuration
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Store == nil {
		opts.Store = cache.NewStore[*Leaderboard]()
	}

	known := make(map[string]bool, len(opts.IDs))
	for _, id := range opts.IDs {
		known[id] = true
	}

	return &Service{
		ids:      slices.Clone(opts.IDs),
		known:    known,
		duration: opts.CacheDuration,
		fetcher:  fetcher,
		store:    opts.Store,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
	}
}

// IDs returns the configured allow-list in order.
func (s *Service) IDs() []string {
	return slices.Clone(s.ids)
}

// Known reports whether id is on the allow-list.
func (s *Service) Known(id string) bool {
	return s.known[id]
}

// Cached returns the number of leaderboards currently held in the cache.
func (s *Service) Cached() int {
	return s.store.Len()
}

// Get returns the leaderboard for id, from cache when fresh.
func (s *Service) Get(ctx context.Context, id string) (*Leaderboard, error) {
	if !s.Known(id) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLeaderboard, id)
	}

	if entry, ok := s.store.Get(id); ok && entry.IsValid(s.store.Now(), s.duration) {
		s.metrics.cacheHit()
		s.logger.DebugContext(ctx, "cache hit", "id", id, "age", entry.Age(s.store.Now()))
		return entry.Value, nil
	}

	s.metrics.cacheMiss()
	return s.refresh(ctx, id)
}

// Refresh fetches id upstream regardless of the cached entry and stores the
// reduced result.
func (s *Service) Refresh(ctx context.Context, id string) (*Leaderboard, error) {
	if !s.Known(id) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLeaderboard, id)
	}
	return s.refresh(ctx, id)
}

func (s *Service) refresh(ctx context.Context, id string) (*Leaderboard, error) {
	start := time.Now()
	board, err := s.fetchAndReduce(ctx, id)
	s.metrics.fetched(err, time.Since(start))
	if err != nil {
		s.logFailure(ctx, id, err)
		return nil, err
	}

	entry := s.store.Set(id, board)
	s.logger.InfoContext(ctx, "leaderboard fetched",
		"id", id,
		"members", len(board.Members),
		"fetched_at", entry.FetchedAt.UTC().Format(time.RFC3339))
	return board, nil
}

func (s *Service) fetchAndReduce(ctx context.Context, id string) (*Leaderboard, error) {
	raw, err := s.fetcher.FetchLeaderboard(ctx, id)
	if err != nil {
		return nil, err
	}
	return Reduce(raw)
}

func (s *Service) logFailure(ctx context.Context, id string, err error) {
	var redirectErr *api.RedirectError
	var transportErr *api.TransportError

	switch {
	case errors.As(err, &redirectErr):
		s.logger.ErrorContext(ctx, "session likely expired", "id", id, "error", err)
	case errors.As(err, &transportErr) && transportErr.StatusCode != 0:
		s.logger.ErrorContext(ctx, "upstream returned an error",
			"id", id,
			"status", transportErr.StatusCode,
			"headers", transportErr.Header)
	default:
		s.logger.ErrorContext(ctx, "failed to fetch leaderboard", "id", id, "error", err)
	}
}

// InitializeCache refreshes every configured leaderboard once. Failures are
// logged and skipped.
func (s *Service) InitializeCache(ctx context.Context) {
	for _, id := range s.ids {
		if ctx.Err() != nil {
			return
		}
		if _, err := s.refresh(ctx, id); err != nil {
			s.logger.WarnContext(ctx, "failed to fetch initial data", "id", id)
		}
	}
}

// GetAll reads every configured leaderboard concurrently. Results follow the
// allow-list order and carry per-id failures instead of aborting.
func (s *Service) GetAll(ctx context.Context) []Result {
	results := make([]Result, len(s.ids))

	var g errgroup.Group
	for i, id := range s.ids {
		g.Go(func() error {
			board, err := s.Get(ctx, id)
			results[i] = Result{ID: id, Data: board, Err: err}
			if err != nil {
				msg := err.Error()
				results[i].Error = &msg
			}
			return nil
		})
	}
	_ = g.Wait()

	return results
}
