package metrics

import (
	"context"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/kalambet/numera/internal/numerology"
)

// Metrics provides observability for calculations, the reading cache and
// the analytics outbox. All methods are safe on a nil receiver.
type Metrics struct {
	// Calculations by kind, system and whether the reading was cached
	Calculations *prometheus.CounterVec

	// Cache lookups by tier and result (hit, miss, error)
	CacheLookups *prometheus.CounterVec

	// Cache entries dropped by tier, for capacity or expiry
	CacheEvictions *prometheus.CounterVec

	// Analytics outbox jobs by final status (done, retry)
	OutboxJobs *prometheus.CounterVec
}

// New creates a Metrics instance registered with reg. A nil reg uses the
// default Prometheus registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		Calculations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "numera_calculations_total",
			Help: "Total calculations by kind, system and cache outcome",
		}, []string{"kind", "system", "cached"}),

		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "numera_cache_lookups_total",
			Help: "Reading cache lookups by tier and result",
		}, []string{"tier", "result"}),

		CacheEvictions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "numera_cache_evictions_total",
			Help: "Reading cache entries evicted by tier",
		}, []string{"tier"}),

		OutboxJobs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "numera_outbox_jobs_total",
			Help: "Analytics outbox jobs processed by status",
		}, []string{"status"}),
	}
}

// CalculationPerformed implements numerology.Observer.
func (m *Metrics) CalculationPerformed(_ context.Context, ev numerology.CalculationEvent) {
	if m != nil {
		m.Calculations.WithLabelValues(string(ev.Kind), string(ev.System), strconv.FormatBool(ev.CacheHit)).Inc()
	}
}

// CacheHit records a lookup served by tier.
func (m *Metrics) CacheHit(tier string) {
	if m != nil {
		m.CacheLookups.WithLabelValues(tier, "hit").Inc()
	}
}

// CacheMiss records a lookup that found nothing in tier.
func (m *Metrics) CacheMiss(tier string) {
	if m != nil {
		m.CacheLookups.WithLabelValues(tier, "miss").Inc()
	}
}

// CacheError records a failed lookup or store against tier.
func (m *Metrics) CacheError(tier string) {
	if m != nil {
		m.CacheLookups.WithLabelValues(tier, "error").Inc()
	}
}

// CacheEviction records an entry dropped from tier.
func (m *Metrics) CacheEviction(tier string) {
	if m != nil {
		m.CacheEvictions.WithLabelValues(tier).Inc()
	}
}

// IncrementOutboxJob records a processed outbox job with the given status.
func (m *Metrics) IncrementOutboxJob(status string) {
	if m != nil {
		m.OutboxJobs.WithLabelValues(status).Inc()
	}
}
