package cache

import (
	"context"

	"github.com/kalambet/numera/internal/numerology"
)

// Tiered checks the in-process cache first and falls back to Redis,
// copying Redis hits into memory for the rest of their lifetime.
type Tiered struct {
	memory *Memory
	remote *Redis
}

// NewTiered combines a memory cache with a Redis cache.
func NewTiered(memory *Memory, remote *Redis) *Tiered {
	return &Tiered{memory: memory, remote: remote}
}

// Get implements numerology.Cache.
func (t *Tiered) Get(ctx context.Context, key string) (numerology.Reading, bool, error) {
	if r, ok, _ := t.memory.Get(ctx, key); ok {
		return r, true, nil
	}
	r, ok, err := t.remote.Get(ctx, key)
	if err != nil || !ok {
		return numerology.Reading{}, false, err
	}
	_ = t.memory.Set(ctx, key, r)
	return r, true, nil
}

// Set writes to both tiers. Memory always succeeds; the Redis error, if
// any, is returned.
func (t *Tiered) Set(ctx context.Context, key string, r numerology.Reading) error {
	_ = t.memory.Set(ctx, key, r)
	return t.remote.Set(ctx, key, r)
}
