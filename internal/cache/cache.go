// Package cache provides a TTL response cache keyed by request identity.
package cache

import (
	"sync"
	"time"
)

// Store is the cache contract injected into API clients. Implementations
// must be safe for concurrent use; last writer wins on expiry.
type Store interface {
	// Get returns the cached value for key, or false when absent or expired.
	Get(key string) ([]byte, bool)

	// Set stores value under key for the given TTL.
	Set(key string, value []byte, ttl time.Duration)

	// Purge drops all entries.
	Purge()
}

type entry struct {
	value   []byte
	expires time.Time
}

// Memory is an in-process TTL cache.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemory creates an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get returns the cached value for key if it has not expired.
func (m *Memory) Get(key string) ([]byte, bool) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok || m.now().After(e.expires) {
		return nil, false
	}
	return e.value, true
}

// Set stores value under key for the given TTL.
func (m *Memory) Set(key string, value []byte, ttl time.Duration) {
	m.mu.Lock()
	m.entries[key] = entry{value: value, expires: m.now().Add(ttl)}
	m.mu.Unlock()
}

// Purge drops all entries.
func (m *Memory) Purge() {
	m.mu.Lock()
	m.entries = make(map[string]entry)
	m.mu.Unlock()
}

var _ Store = (*Memory)(nil)
