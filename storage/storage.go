// Package storage defines the key-value backend contract used by the
// persistence middleware, plus in-memory, file, and Redis backends.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Read when the key has never been written or
// has been removed.
var ErrNotFound = errors.New("storage: key not found")

// Backend is a key-value store for serialized state. Implementations may
// be backed by anything from a map to a network service; asynchronous
// backends surface their latency through the context-aware calls.
type Backend interface {
	// Read returns the payload stored under key, or ErrNotFound.
	Read(ctx context.Context, key string) ([]byte, error)
	// Write stores the payload under key, replacing any previous value.
	Write(ctx context.Context, key string, data []byte) error
	// Remove deletes the key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}
