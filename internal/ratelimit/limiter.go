package ratelimit

import "context"

const (
	timeSuffix  = ":time"
	countSuffix = ":count"
)

// FixedWindowLimiter implements rate limiting using a fixed window algorithm.
//
// Window state for a key lives in the store under "{key}:time" (window start)
// and "{key}:count" (attempts recorded in the window). The limiter itself is
// stateless and does not lock: concurrent callers on the same key can race.
type FixedWindowLimiter struct {
	store Store
	clock Clock
}

// NewFixedWindowLimiter creates a new fixed window rate limiter.
func NewFixedWindowLimiter(store Store, clock Clock) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		store: store,
		clock: clock,
	}
}

// NewSystemFixedWindowLimiter creates a fixed window limiter driven by the system clock.
func NewSystemFixedWindowLimiter(store Store) *FixedWindowLimiter {
	return NewFixedWindowLimiter(store, SystemClock{})
}

// Attempt records an attempt for key and reports whether it is permitted.
//
// A window expires once more than timeLimit has elapsed since it started; the
// next attempt then opens a new window with a count of one. Within a window the
// attempt is rejected only when the stored count already exceeds countLimit,
// so countLimit+1 attempts fit in a window.
func (l *FixedWindowLimiter) Attempt(ctx context.Context, key string, countLimit, timeLimit int64) (bool, error) {
	expired, err := l.windowExpired(ctx, key, timeLimit)
	if err != nil {
		return false, err
	}

	if expired {
		if err := l.resetWindow(ctx, key); err != nil {
			return false, err
		}

		return true, nil
	}

	count, err := l.store.Get(ctx, key+countSuffix, 0)
	if err != nil {
		return false, err
	}

	if count > countLimit {
		return false, nil
	}

	if err := l.store.Set(ctx, key+countSuffix, count+1); err != nil {
		return false, err
	}

	return true, nil
}

// RemainingAttempts reports how many attempts are left for key without recording one.
// The result is negative once the count has gone past countLimit.
func (l *FixedWindowLimiter) RemainingAttempts(ctx context.Context, key string, countLimit, timeLimit int64) (int64, error) {
	expired, err := l.windowExpired(ctx, key, timeLimit)
	if err != nil {
		return 0, err
	}

	if expired {
		return countLimit, nil
	}

	count, err := l.store.Get(ctx, key+countSuffix, 0)
	if err != nil {
		return 0, err
	}

	return countLimit - count, nil
}

func (l *FixedWindowLimiter) windowExpired(ctx context.Context, key string, timeLimit int64) (bool, error) {
	start, err := l.store.Get(ctx, key+timeSuffix, 0)
	if err != nil {
		return false, err
	}

	return l.clock.Now()-start > timeLimit, nil
}

func (l *FixedWindowLimiter) resetWindow(ctx context.Context, key string) error {
	if err := l.store.Set(ctx, key+timeSuffix, l.clock.Now()); err != nil {
		return err
	}

	return l.store.Set(ctx, key+countSuffix, 1)
}
