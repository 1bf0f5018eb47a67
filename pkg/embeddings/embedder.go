// Package embeddings provides text embedding capabilities.
package embeddings

import "context"

// Embedder converts text into fixed-length vector embeddings.
type Embedder interface {
	// EmbedBatch converts texts into one vector per input, order preserved.
	// It either returns a vector for every input or fails as a whole; it
	// never returns partial results.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Embed converts a single text into a vector embedding.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Model returns the embedding model identifier. Indexes are tagged with
	// it so an index built with one model is never queried with another.
	Model() string

	// Close releases any resources held by the embedder.
	Close() error
}
