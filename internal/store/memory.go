// internal/store/memory.go
//
// In-memory implementation of the KV interface.
// Used for ephemeral play (DB_PATH unset) and in tests.
//
// Characteristics:
//   - Values keyed by string in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts.

package store

import (
	"context"
	"sync"
)

// KV is a generic string key-value store.
// Implementations may be backed by memory (this package), SQLite, etc.
type KV interface {
	// Get returns the value for key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set inserts or replaces the value for key.
	Set(ctx context.Context, key, value string) error

	// Delete removes key; deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// memory is an in-memory map-based KV implementation.
type memory struct {
	mu   sync.RWMutex      // guards vals
	vals map[string]string // keyed by KV key
}

// NewMemoryStore constructs a new in-memory KV.
func NewMemoryStore() KV {
	return &memory{vals: make(map[string]string)}
}

// Get looks up key.
func (m *memory) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.vals[key]
	return v, ok, nil
}

// Set adds or replaces key.
func (m *memory) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vals[key] = value
	return nil
}

// Delete drops key.
func (m *memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.vals, key)
	return nil
}
