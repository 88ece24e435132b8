package ratelimit

import (
	"sync"
	"time"
)

// Clock supplies the current time as an integer.
// The unit must match the timeLimit passed to the limiter.
type Clock interface {
	Now() int64
}

// SystemClock reports wall-clock time in Unix seconds.
type SystemClock struct{}

// Now returns the current Unix time in seconds.
func (SystemClock) Now() int64 {
	return time.Now().Unix()
}

// FixedClock always reports the same time.
type FixedClock int64

// Now returns the fixed time.
func (c FixedClock) Now() int64 {
	return int64(c)
}

// ManualClock is a clock that only moves when told to. Safe for concurrent use.
type ManualClock struct {
	mu  sync.Mutex
	now int64
}

// NewManualClock creates a manual clock starting at now.
func NewManualClock(now int64) *ManualClock {
	return &ManualClock{now: now}
}

// Now returns the current manual time.
func (c *ManualClock) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

// Set moves the clock to now.
func (c *ManualClock) Set(now int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = now
}

// Advance moves the clock forward by delta and returns the new time.
func (c *ManualClock) Advance(delta int64) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now += delta

	return c.now
}
