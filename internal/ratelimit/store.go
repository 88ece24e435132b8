package ratelimit

import "context"

// Store defines the interface for rate limit counter storage.
// Values are either a window start timestamp or an attempt count.
type Store interface {
	// Get returns the value stored under key, or def if the key is absent.
	Get(ctx context.Context, key string, def int64) (int64, error)
	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key string, value int64) error
}
