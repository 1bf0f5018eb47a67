package vector

import "errors"

var (
	// ErrNotBuilt is returned when no index has been built yet. It is a
	// defined outcome, not a failure: callers route it to a user-facing
	// "no data indexed" message.
	ErrNotBuilt = errors.New("index not built")

	// ErrModelMismatch is returned when an index built with one embedding
	// model is used with another. Vector lengths differ across models, so
	// mixing them silently would produce garbage scores.
	ErrModelMismatch = errors.New("index embedding model mismatch")

	// ErrDimensionMismatch is returned when entries with differing
	// embedding lengths are combined into one index.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
