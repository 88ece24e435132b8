//go:build integration

package store_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/attempt-limiter-go/internal/ratelimit"
	"github.com/serroba/attempt-limiter-go/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getRedisAddr() string {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		return addr
	}
	return "localhost:6379"
}

func TestCounterRedisStoreIntegration(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr: getRedisAddr(),
	})
	defer client.Close()

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	s := store.NewCounterRedisStore(client, 0)

	t.Run("set and get value", func(t *testing.T) {
		err := s.Set(ctx, "it:redis:count", 5)
		require.NoError(t, err)

		got, err := s.Get(ctx, "it:redis:count", 0)
		require.NoError(t, err)
		assert.Equal(t, int64(5), got)

		// Cleanup
		client.Del(ctx, "ratelimit:it:redis:count")
	})

	t.Run("missing key returns default", func(t *testing.T) {
		got, err := s.Get(ctx, "it:redis:missing", 9)

		require.NoError(t, err)
		assert.Equal(t, int64(9), got)
	})

	t.Run("ttl is applied on write", func(t *testing.T) {
		expiring := store.NewCounterRedisStore(client, time.Minute)

		err := expiring.Set(ctx, "it:redis:ttl", 1)
		require.NoError(t, err)

		ttl, err := client.TTL(ctx, "ratelimit:it:redis:ttl").Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0))

		// Cleanup
		client.Del(ctx, "ratelimit:it:redis:ttl")
	})

	t.Run("drives the fixed window limiter", func(t *testing.T) {
		limiter := ratelimit.NewFixedWindowLimiter(s, ratelimit.FixedClock(1000))

		allowed, err := limiter.Attempt(ctx, "it:redis:limiter", 0, 60)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = limiter.Attempt(ctx, "it:redis:limiter", 0, 60)
		require.NoError(t, err)
		assert.False(t, allowed)

		// Cleanup
		client.Del(ctx, "ratelimit:it:redis:limiter:time", "ratelimit:it:redis:limiter:count")
	})
}
