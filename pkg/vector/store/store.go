// Package store persists the vector index through the kv.Driver contract.
//
// The whole index lives under a single key as one JSON value, so every
// Build, Load, and Clear is a single transactional read or write: a
// concurrent Load never observes a state between "old index removed" and
// "new index written". A mutex additionally serializes concurrent builds on
// the same store — last writer wins, but writes never interleave.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/oceanlabs/coursepilot/pkg/kv"
	"github.com/oceanlabs/coursepilot/pkg/vector"
)

const indexKey = "index"

// Store persists exactly one vector index.
type Store struct {
	mu     sync.Mutex
	kv     kv.Driver
	logger *zap.Logger
}

// New creates a Store backed by the given kv driver.
func New(driver kv.Driver, logger *zap.Logger) *Store {
	return &Store{kv: driver, logger: logger}
}

// Build atomically replaces any stored index with the given entries, tagged
// with the build time and embedding model id. Entries must all carry
// embeddings of the same nonzero length. Build never leaves a half-written
// index: callers assemble the complete entry set first and Build persists it
// in one write.
func (s *Store) Build(ctx context.Context, entries []vector.Entry, modelID string) error {
	if err := validateDimensions(entries); err != nil {
		return err
	}

	index := vector.Index{
		Entries: entries,
		BuiltAt: time.Now().UTC(),
		ModelID: modelID,
	}

	data, err := json.Marshal(index)
	if err != nil {
		return fmt.Errorf("encoding index: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Set(ctx, indexKey, data); err != nil {
		return fmt.Errorf("persisting index: %w", err)
	}

	s.logger.Info("index built",
		zap.Int("entries", len(entries)),
		zap.String("model", modelID),
	)

	return nil
}

// Load returns the stored index, or vector.ErrNotBuilt when none exists.
// The returned index is freshly decoded on every call, so callers can never
// alias or mutate stored state.
func (s *Store) Load(ctx context.Context) (*vector.Index, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.kv.Get(ctx, indexKey)
	switch {
	case errors.Is(err, kv.ErrNotFound):
		return nil, vector.ErrNotBuilt
	case err != nil:
		return nil, fmt.Errorf("loading index: %w", err)
	}

	var index vector.Index
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("decoding index: %w", err)
	}

	return &index, nil
}

// Clear deletes the stored index. Clearing an absent index is not an error.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Delete(ctx, indexKey); err != nil {
		return fmt.Errorf("clearing index: %w", err)
	}

	s.logger.Info("index cleared")

	return nil
}

// Stats summarizes the stored index without exposing its entries.
func (s *Store) Stats(ctx context.Context) (vector.Stats, error) {
	index, err := s.Load(ctx)
	switch {
	case errors.Is(err, vector.ErrNotBuilt):
		return vector.Stats{}, nil
	case err != nil:
		return vector.Stats{}, err
	}

	seen := make(map[string]bool)
	for _, e := range index.Entries {
		seen[e.Chunk.SourceName] = true
	}

	sources := make([]string, 0, len(seen))
	for name := range seen {
		sources = append(sources, name)
	}
	sort.Strings(sources)

	return vector.Stats{
		Built:   true,
		Count:   len(index.Entries),
		BuiltAt: index.BuiltAt,
		ModelID: index.ModelID,
		Sources: sources,
	}, nil
}

// validateDimensions rejects entry sets whose embeddings are empty or of
// differing lengths.
func validateDimensions(entries []vector.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	want := len(entries[0].Embedding)
	if want == 0 {
		return fmt.Errorf("%w: entry 0 has an empty embedding", vector.ErrDimensionMismatch)
	}

	for i, e := range entries {
		if len(e.Embedding) != want {
			return fmt.Errorf("%w: entry %d has %d dimensions, want %d",
				vector.ErrDimensionMismatch, i, len(e.Embedding), want)
		}
	}

	return nil
}
