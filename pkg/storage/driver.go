// Package storage defines the durable key-value slot the notebook is mirrored to.
package storage

import (
	"context"
)

// Driver is a durable key-value collaborator. Values are opaque bytes (JSON in
// practice) and every Set is a whole-value overwrite.
//
// Implementations must make Set atomic per key: a concurrent Get observes
// either the previous value or the new one, never a mixture.
type Driver interface {
	// Get returns the value stored under key. It returns a NotFoundError when
	// the slot has never been written or was deleted.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set overwrites the value stored under key.
	Set(ctx context.Context, key string, value []byte) error

	// Delete clears the slot. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the driver.
	Close() error
}
