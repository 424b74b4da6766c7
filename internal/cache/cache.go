// Package cache stores computed readings so repeat lookups skip
// recomputation. Implementations satisfy numerology.Cache.
package cache

import (
	"time"

	"github.com/kalambet/numera/internal/numerology"
)

// Tier names used when reporting stats.
const (
	TierMemory = "memory"
	TierRedis  = "redis"
)

// Defaults applied when a constructor receives zero values.
const (
	DefaultMaxEntries = 1000
	DefaultTTL        = 24 * time.Hour
)

// Stats receives cache events. *metrics.Metrics implements it.
type Stats interface {
	CacheHit(tier string)
	CacheMiss(tier string)
	CacheError(tier string)
	CacheEviction(tier string)
}

type noopStats struct{}

func (noopStats) CacheHit(string)      {}
func (noopStats) CacheMiss(string)     {}
func (noopStats) CacheError(string)    {}
func (noopStats) CacheEviction(string) {}

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// createdAt is the instant a reading's age is measured from. Readings
// without a ComputedAt are treated as created now.
func createdAt(r numerology.Reading, now time.Time) time.Time {
	if r.ComputedAt.IsZero() {
		return now
	}
	return r.ComputedAt
}

var (
	_ numerology.Cache = (*Memory)(nil)
	_ numerology.Cache = (*Redis)(nil)
	_ numerology.Cache = (*Tiered)(nil)
)
