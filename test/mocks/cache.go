// Package mocks provides hand-written test doubles for storage and cache interfaces.
package mocks

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// MockCache is an in-memory mock implementation of the Cache interface
// Used for testing without requiring a real Redis instance
type MockCache struct {
	data map[string]string
	mu   sync.RWMutex

	// Fail makes every call return an error when set.
	Fail bool
	Gets int
	Sets int
}

// NewMockCache creates a new mock cache instance
func NewMockCache() *MockCache {
	return &MockCache{data: make(map[string]string)}
}

var errCacheDown = errors.New("mock cache unavailable")

// Get retrieves a value from the mock cache
func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Gets++
	if m.Fail {
		return "", errCacheDown
	}
	return m.data[key], nil // missing keys read as "" like Redis
}

// Set stores a value in the mock cache
func (m *MockCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Sets++
	if m.Fail {
		return errCacheDown
	}
	switch v := value.(type) {
	case string:
		m.data[key] = v
	case []byte:
		m.data[key] = string(v)
	default:
		return errors.New("mock cache stores strings only")
	}
	// Note: expiration is ignored in mock (no TTL implementation)
	return nil
}

// Del deletes keys from the mock cache
func (m *MockCache) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Fail {
		return errCacheDown
	}
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

// DelPrefix deletes every key starting with prefix
func (m *MockCache) DelPrefix(ctx context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Fail {
		return errCacheDown
	}
	for key := range m.data {
		if strings.HasPrefix(key, prefix) {
			delete(m.data, key)
		}
	}
	return nil
}

// Keys returns the number of stored keys
func (m *MockCache) Keys() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
