package cache

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/kalambet/numera/internal/numerology"
)

type memoryEntry struct {
	reading   numerology.Reading
	expiresAt time.Time
}

// Memory is an in-process LRU. An entry lives for ttl measured from the
// reading's ComputedAt, not from insertion, so a reading copied in from
// another tier keeps its original deadline. Stored and returned readings
// are deep copies.
type Memory struct {
	lru   *lru.Cache[string, memoryEntry]
	ttl   time.Duration
	clock Clock
	stats Stats
}

// MemoryOption configures a Memory cache.
type MemoryOption func(*Memory)

// WithClock overrides the time source used for expiry.
func WithClock(c Clock) MemoryOption {
	return func(m *Memory) {
		if c != nil {
			m.clock = c
		}
	}
}

// WithStats reports hits, misses and evictions to s.
func WithStats(s Stats) MemoryOption {
	return func(m *Memory) {
		if s != nil {
			m.stats = s
		}
	}
}

// NewMemory creates a cache holding at most maxEntries readings for ttl
// each. Zero values select DefaultMaxEntries and DefaultTTL.
func NewMemory(maxEntries int, ttl time.Duration, opts ...MemoryOption) (*Memory, error) {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	m := &Memory{ttl: ttl, clock: realClock{}, stats: noopStats{}}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}

	c, err := lru.NewWithEvict(maxEntries, func(string, memoryEntry) {
		m.stats.CacheEviction(TierMemory)
	})
	if err != nil {
		return nil, fmt.Errorf("creating lru: %w", err)
	}
	m.lru = c
	return m, nil
}

// Get returns the reading stored under key if it has not expired.
func (m *Memory) Get(_ context.Context, key string) (numerology.Reading, bool, error) {
	e, ok := m.lru.Get(key)
	if ok && !m.clock.Now().Before(e.expiresAt) {
		m.lru.Remove(key)
		ok = false
	}
	if !ok {
		m.stats.CacheMiss(TierMemory)
		return numerology.Reading{}, false, nil
	}
	m.stats.CacheHit(TierMemory)
	return e.reading.Clone(), true, nil
}

// Set stores r under key, evicting the least recently used entry when full.
// A reading already older than the ttl is not stored.
func (m *Memory) Set(_ context.Context, key string, r numerology.Reading) error {
	now := m.clock.Now()
	expiresAt := createdAt(r, now).Add(m.ttl)
	if !now.Before(expiresAt) {
		return nil
	}
	m.lru.Add(key, memoryEntry{reading: r.Clone(), expiresAt: expiresAt})
	return nil
}

// Len returns the number of entries, including expired ones not yet read.
func (m *Memory) Len() int {
	return m.lru.Len()
}

// Purge drops every entry.
func (m *Memory) Purge() {
	m.lru.Purge()
}
