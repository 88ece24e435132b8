package ratelimit

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidLimit is returned for a limit the fixed window limiter cannot enforce.
var ErrInvalidLimit = errors.New("invalid rate limit")

// LimitConfig defines a single rate limit: at most Max attempts per Window.
//
// Windows are fixed, so Max+1 attempts pass before a window blocks. The limiter
// counts in whole seconds: Window is truncated to seconds and must be at least
// one second long.
type LimitConfig struct {
	Window time.Duration
	Max    int64
}

// Validate reports whether the limit can be enforced.
func (c LimitConfig) Validate() error {
	if c.Window < time.Second {
		return fmt.Errorf("%w: window %s is shorter than one second", ErrInvalidLimit, c.Window)
	}

	if c.Max < 0 {
		return fmt.Errorf("%w: negative max %d", ErrInvalidLimit, c.Max)
	}

	return nil
}

// seconds converts the window to the clock unit used by the limiter.
func (c LimitConfig) seconds() int64 {
	return int64(c.Window / time.Second)
}

// Policy maps scopes to the limits enforced for them.
type Policy struct {
	Limits map[Scope][]LimitConfig
}

// Validate checks every limit of every scope.
func (p *Policy) Validate() error {
	for scope, limits := range p.Limits {
		if err := validateLimits(limits); err != nil {
			return fmt.Errorf("scope %s: %w", scope, err)
		}
	}

	return nil
}

func validateLimits(limits []LimitConfig) error {
	for _, limit := range limits {
		if err := limit.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// DefaultPolicy returns the limits applied when no endpoint config overrides them.
func DefaultPolicy() *Policy {
	return &Policy{
		Limits: map[Scope][]LimitConfig{
			ScopeGlobal: {
				{Window: time.Minute, Max: 600},
			},
			ScopeRead: {
				{Window: time.Minute, Max: 300},
			},
			ScopeWrite: {
				{Window: time.Minute, Max: 60},
				{Window: time.Hour, Max: 1000},
			},
		},
	}
}
