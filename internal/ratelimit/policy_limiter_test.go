package ratelimit_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/serroba/attempt-limiter-go/internal/ratelimit"
	"github.com/serroba/attempt-limiter-go/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPolicy() *ratelimit.Policy {
	return &ratelimit.Policy{
		Limits: map[ratelimit.Scope][]ratelimit.LimitConfig{
			ratelimit.ScopeGlobal: {{Window: time.Minute, Max: 10}},
			ratelimit.ScopeWrite:  {{Window: time.Minute, Max: 1}},
		},
	}
}

func TestPolicyLimiter_Allow(t *testing.T) {
	ctx := context.Background()
	writeScopes := []ratelimit.Scope{ratelimit.ScopeGlobal, ratelimit.ScopeWrite}

	t.Run("allows until the tightest limit is exceeded", func(t *testing.T) {
		clock := ratelimit.NewManualClock(1000)
		limiter := ratelimit.NewPolicyLimiter(
			ratelimit.NewFixedWindowLimiter(store.NewCounterMemoryStore(), clock), newTestPolicy())

		for rangeIdx := 0; rangeIdx < 2; rangeIdx++ {
			allowed, exceeded, err := limiter.Allow(ctx, "client1", writeScopes)

			require.NoError(t, err)
			assert.True(t, allowed)
			assert.Nil(t, exceeded)
		}

		allowed, exceeded, err := limiter.Allow(ctx, "client1", writeScopes)

		require.NoError(t, err)
		assert.False(t, allowed)
		require.NotNil(t, exceeded)
		assert.Equal(t, ratelimit.ScopeWrite, exceeded.Scope)
		assert.Equal(t, int64(1), exceeded.Config.Max)
		assert.Equal(t, int64(-1), exceeded.Remaining)
	})

	t.Run("scopes without limits are skipped", func(t *testing.T) {
		clock := ratelimit.NewManualClock(1000)
		limiter := ratelimit.NewPolicyLimiter(
			ratelimit.NewFixedWindowLimiter(store.NewCounterMemoryStore(), clock), newTestPolicy())

		for rangeIdx := 0; rangeIdx < 5; rangeIdx++ {
			allowed, _, err := limiter.Allow(ctx, "client1", []ratelimit.Scope{ratelimit.ScopeRead})

			require.NoError(t, err)
			assert.True(t, allowed)
		}
	})

	t.Run("window expiry restores the budget", func(t *testing.T) {
		clock := ratelimit.NewManualClock(1000)
		limiter := ratelimit.NewPolicyLimiter(
			ratelimit.NewFixedWindowLimiter(store.NewCounterMemoryStore(), clock), newTestPolicy())

		for rangeIdx := 0; rangeIdx < 2; rangeIdx++ {
			_, _, _ = limiter.Allow(ctx, "client1", writeScopes)
		}

		allowed, _, _ := limiter.Allow(ctx, "client1", writeScopes)
		assert.False(t, allowed)

		clock.Advance(61)

		allowed, _, err := limiter.Allow(ctx, "client1", writeScopes)

		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("returns store errors", func(t *testing.T) {
		storeErr := errors.New("store down")
		s := newRecordingStore(nil)
		s.getErr = storeErr
		limiter := ratelimit.NewPolicyLimiter(
			ratelimit.NewFixedWindowLimiter(s, ratelimit.FixedClock(1000)), newTestPolicy())

		allowed, exceeded, err := limiter.Allow(ctx, "client1", writeScopes)

		require.ErrorIs(t, err, storeErr)
		assert.False(t, allowed)
		assert.Nil(t, exceeded)
	})
}

func TestPolicyLimiter_AllowCustom(t *testing.T) {
	ctx := context.Background()
	clock := ratelimit.NewManualClock(1000)
	limiter := ratelimit.NewPolicyLimiter(
		ratelimit.NewFixedWindowLimiter(store.NewCounterMemoryStore(), clock), newTestPolicy())
	limits := []ratelimit.LimitConfig{{Window: time.Minute, Max: 0}}

	allowed, exceeded, err := limiter.AllowCustom(ctx, "client1", "/attempts/{key}", limits)

	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Nil(t, exceeded)

	allowed, exceeded, err = limiter.AllowCustom(ctx, "client1", "/attempts/{key}", limits)

	require.NoError(t, err)
	assert.False(t, allowed)
	require.NotNil(t, exceeded)
	assert.Equal(t, time.Minute, exceeded.Config.Window)

	allowed, _, err = limiter.AllowCustom(ctx, "client1", "/health", limits)

	require.NoError(t, err)
	assert.True(t, allowed, "routes are tracked independently")
}

func TestPolicyLimiter_Remaining(t *testing.T) {
	ctx := context.Background()
	writeScopes := []ratelimit.Scope{ratelimit.ScopeGlobal, ratelimit.ScopeWrite}

	t.Run("reports the lowest remaining budget", func(t *testing.T) {
		clock := ratelimit.NewManualClock(1000)
		limiter := ratelimit.NewPolicyLimiter(
			ratelimit.NewFixedWindowLimiter(store.NewCounterMemoryStore(), clock), newTestPolicy())

		_, _, _ = limiter.Allow(ctx, "client1", writeScopes)

		remaining, ok, err := limiter.Remaining(ctx, "client1", writeScopes)

		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, int64(0), remaining)
	})

	t.Run("reports nothing when no limit applies", func(t *testing.T) {
		limiter := ratelimit.NewPolicyLimiter(
			ratelimit.NewFixedWindowLimiter(store.NewCounterMemoryStore(), ratelimit.FixedClock(1000)),
			newTestPolicy())

		_, ok, err := limiter.Remaining(ctx, "client1", []ratelimit.Scope{ratelimit.ScopeRead})

		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestPolicyLimiter_RemainingCustom(t *testing.T) {
	ctx := context.Background()
	limiter := ratelimit.NewPolicyLimiter(
		ratelimit.NewFixedWindowLimiter(store.NewCounterMemoryStore(), ratelimit.NewManualClock(1000)),
		newTestPolicy())
	limits := []ratelimit.LimitConfig{
		{Window: time.Hour, Max: 10},
		{Window: time.Minute, Max: 3},
	}

	_, _, err := limiter.AllowCustom(ctx, "client1", "/attempts/{key}", limits)
	require.NoError(t, err)

	remaining, ok, err := limiter.RemainingCustom(ctx, "client1", "/attempts/{key}", limits)

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(2), remaining)

	_, ok, err = limiter.RemainingCustom(ctx, "client1", "/attempts/{key}", nil)

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPolicyLimiter_KeysDoNotCollideWithCallerKeys(t *testing.T) {
	ctx := context.Background()
	s := store.NewCounterMemoryStore()
	fixed := ratelimit.NewFixedWindowLimiter(s, ratelimit.NewManualClock(1000))
	limiter := ratelimit.NewPolicyLimiter(fixed, newTestPolicy())
	writeScopes := []ratelimit.Scope{ratelimit.ScopeGlobal, ratelimit.ScopeWrite}

	for rangeIdx := 0; rangeIdx < 2; rangeIdx++ {
		allowed, _, err := limiter.Allow(ctx, "client1", writeScopes)
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	// A reset of the bare "client:scope:seconds" key must not reopen the policy window.
	_, err := fixed.Attempt(ctx, "client1:write:60", 0, -1)
	require.NoError(t, err)

	allowed, _, err := limiter.Allow(ctx, "client1", writeScopes)

	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestPolicyLimiter_AllowCustomRejectsInvalidLimits(t *testing.T) {
	limiter := ratelimit.NewPolicyLimiter(
		ratelimit.NewFixedWindowLimiter(store.NewCounterMemoryStore(), ratelimit.FixedClock(1000)),
		newTestPolicy())

	allowed, exceeded, err := limiter.AllowCustom(context.Background(), "client1", "/attempts/{key}",
		[]ratelimit.LimitConfig{{Window: 500 * time.Millisecond, Max: 1}})

	require.ErrorIs(t, err, ratelimit.ErrInvalidLimit)
	assert.False(t, allowed)
	assert.Nil(t, exceeded)
}

func TestLimitConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		limit   ratelimit.LimitConfig
		wantErr bool
	}{
		{"one second window", ratelimit.LimitConfig{Window: time.Second, Max: 0}, false},
		{"minute window", ratelimit.LimitConfig{Window: time.Minute, Max: 60}, false},
		{"sub-second window", ratelimit.LimitConfig{Window: 999 * time.Millisecond, Max: 1}, true},
		{"zero window", ratelimit.LimitConfig{Max: 1}, true},
		{"negative max", ratelimit.LimitConfig{Window: time.Minute, Max: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.limit.Validate()

			if tt.wantErr {
				assert.ErrorIs(t, err, ratelimit.ErrInvalidLimit)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPolicy_Validate(t *testing.T) {
	require.NoError(t, ratelimit.DefaultPolicy().Validate())

	policy := newTestPolicy()
	policy.Limits[ratelimit.ScopeRead] = []ratelimit.LimitConfig{{Window: time.Millisecond, Max: 5}}

	err := policy.Validate()

	require.ErrorIs(t, err, ratelimit.ErrInvalidLimit)
	assert.Contains(t, err.Error(), "scope read")
}
