package rag

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/oceanlabs/coursepilot/pkg/corpus"
	"github.com/oceanlabs/coursepilot/pkg/embeddings"
	"github.com/oceanlabs/coursepilot/pkg/vector"
	"github.com/oceanlabs/coursepilot/pkg/vector/store"
)

// Indexer orchestrates chunking, batched embedding, and index persistence.
// A failure at any step aborts the whole build; no partial index is ever
// persisted, because the store only receives the complete entry set.
type Indexer struct {
	embedder   embeddings.Embedder
	store      *store.Store
	chunkWords int
	logger     *zap.Logger
}

// BuildResult summarizes a completed index build.
type BuildResult struct {
	Sources  int           `json:"sources"`
	Chunks   int           `json:"chunks"`
	Duration time.Duration `json:"duration"`
}

// NewIndexer creates an Indexer. A chunkWords of zero or less falls back to
// corpus.DefaultChunkWords.
func NewIndexer(embedder embeddings.Embedder, s *store.Store, chunkWords int, logger *zap.Logger) *Indexer {
	if chunkWords <= 0 {
		chunkWords = corpus.DefaultChunkWords
	}
	return &Indexer{
		embedder:   embedder,
		store:      s,
		chunkWords: chunkWords,
		logger:     logger,
	}
}

// BuildIndex chunks every source, embeds all chunk texts in order, and
// atomically replaces the stored index with the result.
func (ix *Indexer) BuildIndex(ctx context.Context, sources []corpus.Source) (*BuildResult, error) {
	start := time.Now()

	var chunks []corpus.Chunk
	for _, src := range sources {
		chunks = append(chunks, corpus.ChunkSource(src, ix.chunkWords)...)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("chunking corpus: no text found in %d source(s)", len(sources))
	}

	ix.logger.Info("embedding corpus",
		zap.Int("sources", len(sources)),
		zap.Int("chunks", len(chunks)),
		zap.String("model", ix.embedder.Model()),
	)

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := ix.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding corpus: %w", err)
	}

	entries := make([]vector.Entry, len(chunks))
	for i := range chunks {
		entries[i] = vector.Entry{Chunk: chunks[i], Embedding: vectors[i]}
	}

	if err := ix.store.Build(ctx, entries, ix.embedder.Model()); err != nil {
		return nil, fmt.Errorf("persisting index: %w", err)
	}

	return &BuildResult{
		Sources:  len(sources),
		Chunks:   len(chunks),
		Duration: time.Since(start),
	}, nil
}
