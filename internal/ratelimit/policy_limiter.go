package ratelimit

import (
	"context"
	"fmt"
)

// LimitExceeded contains information about which limit was exceeded.
type LimitExceeded struct {
	Scope     Scope
	Config    LimitConfig
	Remaining int64
}

// PolicyLimiter enforces rate limits based on a policy and resolved scopes.
type PolicyLimiter struct {
	limiter *FixedWindowLimiter
	policy  *Policy
}

// NewPolicyLimiter creates a new policy-based rate limiter.
func NewPolicyLimiter(limiter *FixedWindowLimiter, policy *Policy) *PolicyLimiter {
	return &PolicyLimiter{
		limiter: limiter,
		policy:  policy,
	}
}

// Allow checks if a request should be allowed based on the client key and applicable scopes.
// Limits are attempted in order and evaluation stops at the first rejection, so
// later limits are not charged for a rejected request.
// The LimitExceeded return value provides details about which limit was hit (nil if allowed).
func (l *PolicyLimiter) Allow(ctx context.Context, clientKey string, scopes []Scope) (bool, *LimitExceeded, error) {
	for _, scope := range scopes {
		for _, limit := range l.policy.Limits[scope] {
			exceeded, err := l.attempt(ctx, l.buildKey(clientKey, scope, limit), scope, limit)
			if err != nil {
				return false, nil, err
			}

			if exceeded != nil {
				return false, exceeded, nil
			}
		}
	}

	return true, nil, nil
}

// AllowCustom applies endpoint-specific limits under the given route.
func (l *PolicyLimiter) AllowCustom(
	ctx context.Context, clientKey, route string, limits []LimitConfig,
) (bool, *LimitExceeded, error) {
	if err := validateLimits(limits); err != nil {
		return false, nil, err
	}

	for _, limit := range limits {
		exceeded, err := l.attempt(ctx, l.buildCustomKey(clientKey, route, limit), "", limit)
		if err != nil {
			return false, nil, err
		}

		if exceeded != nil {
			return false, exceeded, nil
		}
	}

	return true, nil, nil
}

// Remaining returns the smallest remaining budget across the limits of the given scopes.
// The second return value is false when no limit applies.
func (l *PolicyLimiter) Remaining(ctx context.Context, clientKey string, scopes []Scope) (int64, bool, error) {
	var low lowest

	for _, scope := range scopes {
		for _, limit := range l.policy.Limits[scope] {
			if err := low.observe(ctx, l.limiter, l.buildKey(clientKey, scope, limit), limit); err != nil {
				return 0, false, err
			}
		}
	}

	return low.value, low.found, nil
}

// RemainingCustom is Remaining for endpoint-specific limits under the given route.
func (l *PolicyLimiter) RemainingCustom(
	ctx context.Context, clientKey, route string, limits []LimitConfig,
) (int64, bool, error) {
	var low lowest

	for _, limit := range limits {
		if err := low.observe(ctx, l.limiter, l.buildCustomKey(clientKey, route, limit), limit); err != nil {
			return 0, false, err
		}
	}

	return low.value, low.found, nil
}

// lowest tracks the minimum remaining budget seen so far.
type lowest struct {
	value int64
	found bool
}

func (m *lowest) observe(ctx context.Context, limiter *FixedWindowLimiter, key string, limit LimitConfig) error {
	remaining, err := limiter.RemainingAttempts(ctx, key, limit.Max, limit.seconds())
	if err != nil {
		return err
	}

	if !m.found || remaining < m.value {
		m.value = remaining
		m.found = true
	}

	return nil
}

func (l *PolicyLimiter) attempt(ctx context.Context, key string, scope Scope, limit LimitConfig) (*LimitExceeded, error) {
	allowed, err := l.limiter.Attempt(ctx, key, limit.Max, limit.seconds())
	if err != nil {
		return nil, err
	}

	if allowed {
		return nil, nil
	}

	remaining, err := l.limiter.RemainingAttempts(ctx, key, limit.Max, limit.seconds())
	if err != nil {
		return nil, err
	}

	return &LimitExceeded{
		Scope:     scope,
		Config:    limit,
		Remaining: remaining,
	}, nil
}

// policyKeyPrefix keeps policy counters apart from other users of the same store.
const policyKeyPrefix = "policy:"

// buildKey creates a unique rate limit key for the client, scope, and window combination.
func (l *PolicyLimiter) buildKey(clientKey string, scope Scope, limit LimitConfig) string {
	return fmt.Sprintf("%s%s:%s:%d", policyKeyPrefix, clientKey, scope, limit.seconds())
}

func (l *PolicyLimiter) buildCustomKey(clientKey, route string, limit LimitConfig) string {
	return fmt.Sprintf("%s%s:custom:%s:%d", policyKeyPrefix, clientKey, route, limit.seconds())
}
