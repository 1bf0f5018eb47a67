package rag_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/oceanlabs/coursepilot/pkg/corpus"
	"github.com/oceanlabs/coursepilot/pkg/kv/inmemory"
	"github.com/oceanlabs/coursepilot/pkg/rag"
	"github.com/oceanlabs/coursepilot/pkg/vector"
	"github.com/oceanlabs/coursepilot/pkg/vector/store"
)

var _ = Describe("Indexer", func() {
	const model = "text-embedding-3-small"

	var (
		ctx      context.Context
		indexes  *store.Store
		embedder *fakeEmbedder
	)

	source := func(name, text string) corpus.Source {
		return corpus.Source{ID: name, Name: name, Sections: []string{text}}
	}

	BeforeEach(func() {
		ctx = context.Background()
		indexes = store.New(inmemory.NewDriver(), zap.NewNop())
		embedder = &fakeEmbedder{model: model, vec: []float32{1, 0}}
	})

	It("chunks, embeds, and persists the whole corpus", func() {
		sources := []corpus.Source{
			source("lecture1", "alpha beta gamma"),
			source("lecture2", "delta epsilon"),
		}

		indexer := rag.NewIndexer(embedder, indexes, 2, zap.NewNop())
		result, err := indexer.BuildIndex(ctx, sources)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Sources).To(Equal(2))
		// "alpha beta gamma" at 2 words per chunk gives 2 chunks, the rest 1.
		Expect(result.Chunks).To(Equal(3))

		index, err := indexes.Load(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(index.Entries).To(HaveLen(3))
		Expect(index.ModelID).To(Equal(model))
		Expect(index.Entries[0].Chunk.SourceName).To(Equal("lecture1"))
	})

	It("rejects a corpus with no text", func() {
		indexer := rag.NewIndexer(embedder, indexes, 500, zap.NewNop())

		_, err := indexer.BuildIndex(ctx, []corpus.Source{source("empty", "")})
		Expect(err).To(MatchError(ContainSubstring("no text found")))
	})

	It("persists nothing when embedding fails", func() {
		embedder.err = errors.New("service down")
		indexer := rag.NewIndexer(embedder, indexes, 500, zap.NewNop())

		_, err := indexer.BuildIndex(ctx, []corpus.Source{source("lecture", "some text")})
		Expect(err).To(MatchError(ContainSubstring("service down")))

		_, err = indexes.Load(ctx)
		Expect(err).To(MatchError(vector.ErrNotBuilt))
	})

	It("replaces a previous index wholesale", func() {
		indexer := rag.NewIndexer(embedder, indexes, 500, zap.NewNop())

		_, err := indexer.BuildIndex(ctx, []corpus.Source{source("old", "old text")})
		Expect(err).NotTo(HaveOccurred())

		_, err = indexer.BuildIndex(ctx, []corpus.Source{source("new", "new text")})
		Expect(err).NotTo(HaveOccurred())

		index, err := indexes.Load(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(index.Entries).To(HaveLen(1))
		Expect(index.Entries[0].Chunk.SourceName).To(Equal("new"))
	})
})
