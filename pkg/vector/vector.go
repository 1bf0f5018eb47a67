// Package vector provides the vector index data model and exact in-process
// similarity ranking over it.
//
// Ranking is a deliberate linear scan: every stored embedding is scored
// against the query on every call. Corpus sizes are small (single-digit
// thousands of chunks), so exact ranking stays fast and reproducible without
// an approximate nearest-neighbor structure.
package vector

import (
	"time"

	"github.com/oceanlabs/coursepilot/pkg/corpus"
)

// Entry is the atomic indexed unit: one chunk and its embedding.
type Entry struct {
	Chunk     corpus.Chunk `json:"chunk"`
	Embedding []float32    `json:"embedding"`
}

// Index is the complete persisted index. Entries keep corpus order, every
// embedding has the same length, and ModelID records the embedding model the
// index was built with. Indexes are created wholesale and replaced wholesale;
// they are never mutated in place.
type Index struct {
	Entries []Entry   `json:"entries"`
	BuiltAt time.Time `json:"built_at"`
	ModelID string    `json:"model_id"`
}

// RankedResult pairs an indexed entry with its similarity score for one
// query. Results are ephemeral and never persisted.
type RankedResult struct {
	Entry Entry `json:"entry"`

	// Score is the cosine similarity in [-1, 1]; higher is more similar.
	Score float64 `json:"score"`
}

// Stats summarizes the stored index.
type Stats struct {
	Built   bool      `json:"built"`
	Count   int       `json:"count"`
	BuiltAt time.Time `json:"built_at,omitzero"`
	ModelID string    `json:"model_id,omitempty"`

	// Sources are the distinct source names in the index, sorted.
	Sources []string `json:"sources,omitempty"`
}
