package store

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownBackend is returned when a store backend name is not recognized.
var ErrUnknownBackend = errors.New("unknown store backend")

// Backend names a ratelimit.Store implementation.
type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendRedis    Backend = "redis"
	BackendPostgres Backend = "postgres"
)

// ParseBackend converts a configuration value into a Backend.
func ParseBackend(name string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(name))); b {
	case BackendMemory, BackendRedis, BackendPostgres:
		return b, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
}
