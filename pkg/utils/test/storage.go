// Package testutils holds shared test doubles.
package testutils

import (
	"context"
	"errors"
	"sync"

	"github.com/papercomputeco/verso/pkg/storage/inmemory"
)

// ErrInjected is returned by test doubles configured to fail.
var ErrInjected = errors.New("injected failure")

// MockDriver is a storage.Driver backed by an in-memory driver whose reads and
// writes can be made to fail on demand.
type MockDriver struct {
	*inmemory.Driver

	mu sync.Mutex

	// FailGet causes Get to return ErrInjected.
	FailGet bool

	// FailSet causes Set to return ErrInjected without writing.
	FailSet bool

	// SetCalls counts every Set attempt, failed or not.
	SetCalls int
}

// NewMockDriver creates a new mock storage driver.
func NewMockDriver() *MockDriver {
	return &MockDriver{Driver: inmemory.NewDriver()}
}

func (m *MockDriver) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	fail := m.FailGet
	m.mu.Unlock()

	if fail {
		return nil, ErrInjected
	}
	return m.Driver.Get(ctx, key)
}

func (m *MockDriver) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	m.SetCalls++
	fail := m.FailSet
	m.mu.Unlock()

	if fail {
		return ErrInjected
	}
	return m.Driver.Set(ctx, key, value)
}

// SetFailures toggles read and write failures.
func (m *MockDriver) SetFailures(get, set bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FailGet = get
	m.FailSet = set
}

// Writes returns the number of Set attempts so far.
func (m *MockDriver) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.SetCalls
}
