package metrics

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalambet/numera/internal/numerology"
)

func TestCalculationPerformed(t *testing.T) {
	m := New(prometheus.NewRegistry())
	ctx := context.Background()

	m.CalculationPerformed(ctx, numerology.CalculationEvent{Kind: numerology.EventReading, System: numerology.Pythagorean})
	m.CalculationPerformed(ctx, numerology.CalculationEvent{Kind: numerology.EventReading, System: numerology.Pythagorean, CacheHit: true})
	m.CalculationPerformed(ctx, numerology.CalculationEvent{Kind: numerology.EventReading, System: numerology.Pythagorean, CacheHit: true})
	m.CalculationPerformed(ctx, numerology.CalculationEvent{Kind: numerology.EventCompatibility, System: numerology.Chaldean})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Calculations.WithLabelValues("reading", "pythagorean", "false")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Calculations.WithLabelValues("reading", "pythagorean", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Calculations.WithLabelValues("compatibility", "chaldean", "false")))
}

func TestCacheCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.CacheHit("memory")
	m.CacheHit("memory")
	m.CacheMiss("memory")
	m.CacheError("redis")
	m.CacheEviction("memory")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("memory", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("memory", "miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("redis", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheEvictions.WithLabelValues("memory")))
}

func TestIndependentRegistries(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.IncrementOutboxJob("done")

	// A second registry must accept the same metric names.
	require.NotPanics(t, func() { New(prometheus.NewRegistry()) })

	count, err := testutil.GatherAndCount(reg, "numera_outbox_jobs_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.CacheHit("memory")
		m.CacheMiss("memory")
		m.CacheError("redis")
		m.CacheEviction("memory")
		m.IncrementOutboxJob("done")
		m.CalculationPerformed(context.Background(), numerology.CalculationEvent{})
	})
}
