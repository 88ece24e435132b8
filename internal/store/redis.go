package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/attempt-limiter-go/internal/ratelimit"
)

// CounterRedisStore is a Redis implementation of ratelimit.Store.
type CounterRedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewCounterRedisStore creates a new Redis-backed counter store.
// A positive ttl expires every key that long after its last write.
func NewCounterRedisStore(client *redis.Client, ttl time.Duration) *CounterRedisStore {
	return &CounterRedisStore{
		client: client,
		prefix: "ratelimit:",
		ttl:    ttl,
	}
}

// Get reads the prefixed key as an integer. A missing key yields def.
func (r *CounterRedisStore) Get(ctx context.Context, key string, def int64) (int64, error) {
	value, err := r.client.Get(ctx, r.prefix+key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return def, nil
		}

		return 0, err
	}

	return value, nil
}

// Set writes the prefixed key, refreshing its expiry when a ttl is configured.
func (r *CounterRedisStore) Set(ctx context.Context, key string, value int64) error {
	return r.client.Set(ctx, r.prefix+key, value, r.ttl).Err()
}

// Compile-time check.
var _ ratelimit.Store = (*CounterRedisStore)(nil)
