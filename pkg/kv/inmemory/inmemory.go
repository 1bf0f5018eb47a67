// Package inmemory provides an in-process implementation of the kv.Driver
// contract, used in tests and ephemeral runs.
package inmemory

import (
	"context"
	"fmt"
	"sync"

	"github.com/oceanlabs/coursepilot/pkg/kv"
)

// Driver implements kv.Driver using an in-process map.
type Driver struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewDriver creates an empty in-memory driver.
func NewDriver() *Driver {
	return &Driver{values: make(map[string][]byte)}
}

// Get returns a copy of the value stored under key, or kv.ErrNotFound
// when absent.
func (d *Driver) Get(_ context.Context, key string) ([]byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	value, ok := d.values[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", kv.ErrNotFound, key)
	}

	// Return a copy to avoid callers mutating internal state.
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
	d.values[key] = stored

	return nil
}

// Delete removes the value stored under key.
func (d *Driver) Delete(_ context.Context, key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.values, key)
	return nil
}

// Close is a no-op for the in-memory driver.
func (d *Driver) Close() error {
	return nil
}

var _ kv.Driver = (*Driver)(nil)
