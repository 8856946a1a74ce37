package leaderboard

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/colthorp/aoclb/internal/api"
)

// Fetch outcomes reported by Metrics.
const (
	OutcomeSuccess   = "success"
	OutcomeRedirect  = "redirect"
	OutcomeTransport = "transport"
	OutcomeMalformed = "malformed"
)

// Metrics holds the Prometheus collectors for the service. A nil *Metrics
// records nothing.
type Metrics struct {
	cacheRequests *prometheus.CounterVec
	fetches       *prometheus.CounterVec
	fetchDuration prometheus.Histogram
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		cacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aoclb",
			Name:      "cache_requests_total",
			Help:      "Leaderboard reads by cache result.",
		}, []string{"result"}),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aoclb",
			Name:      "upstream_fetches_total",
			Help:      "Upstream leaderboard fetches by outcome.",
		}, []string{"outcome"}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "aoclb",
			Name:      "upstream_fetch_duration_seconds",
			Help:      "Duration of upstream fetch, parse and reduce.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.cacheRequests, m.fetches, m.fetchDuration)
	return m
}

func (m *Metrics) cacheHit() {
	if m == nil {
		return
	}
	m.cacheRequests.WithLabelValues("hit").Inc()
}

func (m *Metrics) cacheMiss() {
	if m == nil {
		return
	}
	m.cacheRequests.WithLabelValues("miss").Inc()
}

func (m *Metrics) fetched(err error, took time.Duration) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(Outcome(err)).Inc()
	m.fetchDuration.Observe(took.Seconds())
}

// Outcome classifies a refresh error for metrics and logs. Anything that is
// neither a redirect nor a malformed payload counts as a transport failure.
func Outcome(err error) string {
	var redirectErr *api.RedirectError
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.As(err, &redirectErr):
		return OutcomeRedirect
	case errors.Is(err, api.ErrMalformedPayload):
		return OutcomeMalformed
	}
	return OutcomeTransport
}
