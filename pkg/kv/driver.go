// Package kv defines the key-value persistence contract coursepilot uses
// for its index and conversation history.
//
// The contract is deliberately narrow: opaque values keyed by string, with
// read-your-writes consistency within a process. Drivers are pluggable via
// configuration:
//
//	[storage]
//	sqlite_path = "~/.coursepilot/coursepilot.db"
package kv

import "context"

// Driver handles storage and retrieval of opaque values by key.
type Driver interface {
	// Get returns the value stored under key, or ErrNotFound when absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any existing value. The write
	// is atomic: a concurrent Get observes either the old or the new value,
	// never a mixture.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes the value stored under key. Deleting an absent key is
	// not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the driver.
	Close() error
}
