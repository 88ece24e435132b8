package store

import (
	"context"
	"sync"

	"github.com/serroba/attempt-limiter-go/internal/ratelimit"
)

// CounterMemoryStore is an in-memory implementation of ratelimit.Store.
type CounterMemoryStore struct {
	mu     sync.RWMutex
	values map[string]int64
}

// NewCounterMemoryStore creates a new in-memory counter store.
func NewCounterMemoryStore() *CounterMemoryStore {
	return &CounterMemoryStore{
		values: make(map[string]int64),
	}
}

// Get returns the value stored under key, or def when the key is unset.
func (m *CounterMemoryStore) Get(_ context.Context, key string, def int64) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.values[key]
	if !ok {
		return def, nil
	}

	return value, nil
}

// Set stores value under key, replacing any previous value.
func (m *CounterMemoryStore) Set(_ context.Context, key string, value int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = value

	return nil
}

// Len returns the number of stored keys.
func (m *CounterMemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.values)
}

// Compile-time check.
var _ ratelimit.Store = (*CounterMemoryStore)(nil)
