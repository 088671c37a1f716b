// internal/store/memory.go
//
// In-memory session store.
// Holds live rooms and single-player games keyed by ID for the lifetime of the
// process.
//
// Characteristics:
//   - Generic over the stored value (usually a pointer to a session type).
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Owns only the index. Values guard their own state.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrNotFound is returned by Get and Delete for unknown IDs.
	ErrNotFound = errors.New("store: not found")
	// ErrExists is returned by Create when the ID is taken.
	ErrExists = errors.New("store: already exists")
)

// Store is the session-store abstraction injected into the room and solo services.
type Store[T any] interface {
	// Create inserts v under id. Fails with ErrExists if id is taken.
	Create(ctx context.Context, id string, v T) error

	// Get retrieves the value for id or ErrNotFound.
	Get(ctx context.Context, id string) (T, error)

	// Delete removes id. Fails with ErrNotFound if absent.
	Delete(ctx context.Context, id string) error

	// Snapshot returns a point-in-time copy of the index.
	Snapshot(ctx context.Context) map[string]T

	// Len returns the number of entries.
	Len() int
}

// memory is a map-based Store.
type memory[T any] struct {
	mu    sync.RWMutex
	items map[string]T
}

// NewMemoryStore constructs an empty in-memory Store.
func NewMemoryStore[T any]() Store[T] {
	return &memory[T]{items: make(map[string]T)}
}

func (m *memory[T]) Create(_ context.Context, id string, v T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; ok {
		return ErrExists
	}
	m.items[id] = v
	return nil
}

func (m *memory[T]) Get(_ context.Context, id string) (T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.items[id]; ok {
		return v, nil
	}
	var zero T
	return zero, ErrNotFound
}

func (m *memory[T]) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memory[T]) Snapshot(_ context.Context) map[string]T {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]T, len(m.items))
	for k, v := range m.items {
		out[k] = v
	}
	return out
}

func (m *memory[T]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
