// Package inmemory provides a map-backed storage.Driver for tests and
// ephemeral sessions.
package inmemory

import (
	"context"
	"sync"

	"github.com/papercomputeco/verso/pkg/storage"
)

// Driver implements storage.Driver using an in-memory map.
type Driver struct {
	// mu is a read write sync mutex for locking the mapping of slots
	mu sync.RWMutex

	// slots maps a key to the last value written to it
	slots map[string][]byte
}

// NewDriver creates a new in-memory driver.
func NewDriver() *Driver {
	return &Driver{
		slots: make(map[string][]byte),
	}
}

// Get returns a copy of the value stored under key.
func (d *Driver) Get(_ context.Context, key string) ([]byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	value, ok := d.slots[key]
	if !ok {
		return nil, storage.NotFoundError{Key: key}
	}

	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Set stores a copy of value under key.
func (d *Driver) Set(_ context.Context, key string, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	d.mu.Lock()
	defer d.mu.Unlock()

	d.slots[key] = stored
	return nil
}

// Delete removes key.
func (d *Driver) Delete(_ context.Context, key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.slots, key)
	return nil
}

// Count returns the number of populated slots.
func (d *Driver) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.slots)
}

// Close is a no-op for the in-memory driver.
func (d *Driver) Close() error {
	return nil
}
