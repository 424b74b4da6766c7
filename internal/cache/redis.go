package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kalambet/numera/internal/numerology"
)

// redisKeyPrefix namespaces reading keys in a shared Redis.
const redisKeyPrefix = "numera:reading:"

// redisStore is the subset of *redis.Client the cache uses.
type redisStore interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// Redis stores readings as JSON with a Redis-side expiry, so several
// processes can share one cache.
type Redis struct {
	client redisStore
	ttl    time.Duration
	stats  Stats
	clock  Clock
}

// NewRedis wraps client. A zero ttl selects DefaultTTL; a nil stats is
// allowed.
func NewRedis(client redisStore, ttl time.Duration, stats Stats) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if stats == nil {
		stats = noopStats{}
	}
	return &Redis{client: client, ttl: ttl, stats: stats, clock: realClock{}}
}

// DialRedis connects to the Redis at url and verifies the connection.
func DialRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// Get returns the reading stored under key. A missing key is a miss, not
// an error.
func (r *Redis) Get(ctx context.Context, key string) (numerology.Reading, bool, error) {
	raw, err := r.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		r.stats.CacheMiss(TierRedis)
		return numerology.Reading{}, false, nil
	}
	if err != nil {
		r.stats.CacheError(TierRedis)
		return numerology.Reading{}, false, fmt.Errorf("redis get: %w", err)
	}

	var reading numerology.Reading
	if err := json.Unmarshal(raw, &reading); err != nil {
		r.stats.CacheError(TierRedis)
		return numerology.Reading{}, false, fmt.Errorf("decoding cached reading: %w", err)
	}
	// Another process may have written the entry with a longer expiry.
	if r.remaining(reading) <= 0 {
		r.stats.CacheMiss(TierRedis)
		return numerology.Reading{}, false, nil
	}
	r.stats.CacheHit(TierRedis)
	return reading, true, nil
}

// Set stores r under key until ttl after the reading was computed. A
// reading already older than the ttl is not stored.
func (r *Redis) Set(ctx context.Context, key string, reading numerology.Reading) error {
	expiry := r.remaining(reading)
	if expiry <= 0 {
		return nil
	}
	raw, err := json.Marshal(reading)
	if err != nil {
		return fmt.Errorf("encoding reading: %w", err)
	}
	if err := r.client.Set(ctx, redisKeyPrefix+key, raw, expiry).Err(); err != nil {
		r.stats.CacheError(TierRedis)
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *Redis) remaining(reading numerology.Reading) time.Duration {
	now := r.clock.Now()
	left := createdAt(reading, now).Add(r.ttl).Sub(now)
	if left > r.ttl {
		return r.ttl
	}
	return left
}
