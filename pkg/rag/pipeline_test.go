package rag_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/oceanlabs/coursepilot/pkg/corpus"
	"github.com/oceanlabs/coursepilot/pkg/kv/inmemory"
	"github.com/oceanlabs/coursepilot/pkg/llm"
	"github.com/oceanlabs/coursepilot/pkg/rag"
	"github.com/oceanlabs/coursepilot/pkg/vector"
	"github.com/oceanlabs/coursepilot/pkg/vector/store"
)

// fakeEmbedder returns a fixed vector for every input and counts calls.
type fakeEmbedder struct {
	model  string
	vec    []float32
	err    error
	embeds int
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.embeds++
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = f.vec
	}
	return out, nil
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := f.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (f *fakeEmbedder) Model() string { return f.model }
func (f *fakeEmbedder) Close() error  { return nil }

// fakeCompleter replays a canned answer and records the last request.
type fakeCompleter struct {
	answer    string
	fragments []string
	err       error
	calls     int
	lastReq   llm.ChatRequest
}

func (f *fakeCompleter) Complete(_ context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &llm.ChatResponse{
		Message: llm.NewMessage(llm.RoleAssistant, f.answer),
		Usage:   &llm.Usage{PromptTokens: 7, CompletionTokens: 3, TotalTokens: 10},
	}, nil
}

func (f *fakeCompleter) Stream(_ context.Context, req llm.ChatRequest) (llm.StreamReader, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &fakeStream{fragments: f.fragments}, nil
}

func (f *fakeCompleter) Close() error { return nil }

// fakeStream yields fragments then io.EOF, or failAfter fragments then an error.
type fakeStream struct {
	fragments []string
	failAfter error
	pos       int
}

func (s *fakeStream) Recv() (string, error) {
	if s.pos >= len(s.fragments) {
		if s.failAfter != nil {
			return "", s.failAfter
		}
		return "", io.EOF
	}
	fragment := s.fragments[s.pos]
	s.pos++
	return fragment, nil
}

func (s *fakeStream) Close() error { return nil }

var _ = Describe("Pipeline", func() {
	const model = "text-embedding-3-small"

	var (
		ctx       context.Context
		indexes   *store.Store
		history   *rag.HistoryStore
		embedder  *fakeEmbedder
		completer *fakeCompleter
	)

	newPipeline := func() *rag.Pipeline {
		return rag.NewPipeline(rag.PipelineConfig{
			ChatModel:   "gpt-4o",
			Temperature: 0.2,
			MaxTokens:   1500,
		}, embedder, completer, indexes, history, zap.NewNop())
	}

	buildIndex := func(texts ...string) {
		entries := make([]vector.Entry, len(texts))
		for i, t := range texts {
			entries[i] = vector.Entry{
				Chunk:     corpus.Chunk{Text: t, SourceName: "lecture"},
				Embedding: []float32{1, 0},
			}
		}
		Expect(indexes.Build(ctx, entries, model)).To(Succeed())
	}

	BeforeEach(func() {
		ctx = context.Background()
		driver := inmemory.NewDriver()
		indexes = store.New(driver, zap.NewNop())
		history = rag.NewHistoryStore(driver, zap.NewNop())
		embedder = &fakeEmbedder{model: model, vec: []float32{1, 0}}
		completer = &fakeCompleter{answer: "the answer", fragments: []string{"the ", "answer"}}
	})

	Describe("Ask", func() {
		It("answers a question and records both turns", func() {
			buildIndex("amortized analysis averages cost over operations")

			answer, err := newPipeline().Ask(ctx, "what is amortized analysis?")
			Expect(err).NotTo(HaveOccurred())
			Expect(answer.Outcome).To(Equal(rag.OutcomeAnswered))
			Expect(answer.Text).To(Equal("the answer"))
			Expect(answer.Retrieved).To(Equal(1))
			Expect(answer.Usage.TotalTokens).To(Equal(10))

			stored, err := history.Load(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Turns).To(HaveLen(2))
			Expect(stored.Turns[0].Role).To(Equal(llm.RoleUser))
			Expect(stored.Turns[0].Content).To(Equal("what is amortized analysis?"))
			Expect(stored.Turns[1].Role).To(Equal(llm.RoleAssistant))
			Expect(stored.Turns[1].Content).To(Equal("the answer"))
		})

		It("puts the retrieved context before the question in the prompt", func() {
			buildIndex("relevant chunk text")

			_, err := newPipeline().Ask(ctx, "the question?")
			Expect(err).NotTo(HaveOccurred())

			Expect(completer.lastReq.Messages).To(HaveLen(2))
			Expect(completer.lastReq.Messages[0].Role).To(Equal(llm.RoleSystem))

			user := completer.lastReq.Messages[1].Content
			Expect(strings.Index(user, "relevant chunk text")).To(BeNumerically("<", strings.Index(user, "the question?")))
		})

		It("includes recent history in the system message", func() {
			buildIndex("chunk")
			p := newPipeline()

			_, err := p.Ask(ctx, "first question?")
			Expect(err).NotTo(HaveOccurred())

			_, err = p.Ask(ctx, "second question?")
			Expect(err).NotTo(HaveOccurred())

			system := completer.lastReq.Messages[0].Content
			Expect(system).To(ContainSubstring("User: first question?"))
			Expect(system).To(ContainSubstring("Assistant: the answer"))
		})

		It("short-circuits without an index and calls no remote service", func() {
			answer, err := newPipeline().Ask(ctx, "anything?")
			Expect(err).NotTo(HaveOccurred())
			Expect(answer.Outcome).To(Equal(rag.OutcomeNoIndex))
			Expect(answer.Text).To(Equal(rag.NoIndexMessage))
			Expect(embedder.embeds).To(BeZero())
			Expect(completer.calls).To(BeZero())
		})

		It("short-circuits when retrieval yields no usable context", func() {
			buildIndex("") // index exists but carries no text

			answer, err := newPipeline().Ask(ctx, "anything?")
			Expect(err).NotTo(HaveOccurred())
			Expect(answer.Outcome).To(Equal(rag.OutcomeNoContext))
			Expect(answer.Text).To(Equal(rag.NoContextMessage))
			Expect(completer.calls).To(BeZero())
		})

		It("rejects an index built with a different embedding model", func() {
			entries := []vector.Entry{{
				Chunk:     corpus.Chunk{Text: "chunk"},
				Embedding: []float32{1, 0},
			}}
			Expect(indexes.Build(ctx, entries, "some-older-model")).To(Succeed())

			_, err := newPipeline().Ask(ctx, "anything?")
			Expect(err).To(MatchError(vector.ErrModelMismatch))
			Expect(completer.calls).To(BeZero())
		})

		It("records nothing when the completion fails", func() {
			buildIndex("chunk")
			completer.err = llm.ErrService

			_, err := newPipeline().Ask(ctx, "anything?")
			Expect(err).To(MatchError(llm.ErrService))

			stored, err := history.Load(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Turns).To(BeEmpty())
		})

		It("surfaces embedding failures", func() {
			buildIndex("chunk")
			embedder.err = errors.New("embedding exploded")

			_, err := newPipeline().Ask(ctx, "anything?")
			Expect(err).To(MatchError(ContainSubstring("embedding exploded")))
			Expect(completer.calls).To(BeZero())
		})
	})

	Describe("AskStream", func() {
		It("streams fragments to the sink and records both turns", func() {
			buildIndex("chunk")

			var sink bytes.Buffer
			answer, err := newPipeline().AskStream(ctx, "question?", &sink)
			Expect(err).NotTo(HaveOccurred())
			Expect(answer.Outcome).To(Equal(rag.OutcomeAnswered))
			Expect(answer.Text).To(Equal("the answer"))
			Expect(sink.String()).To(Equal("the answer"))

			stored, err := history.Load(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Turns).To(HaveLen(2))
		})

		It("short-circuits without an index before opening a stream", func() {
			var sink bytes.Buffer
			answer, err := newPipeline().AskStream(ctx, "question?", &sink)
			Expect(err).NotTo(HaveOccurred())
			Expect(answer.Outcome).To(Equal(rag.OutcomeNoIndex))
			Expect(sink.Len()).To(BeZero())
			Expect(completer.calls).To(BeZero())
		})

		It("records nothing on a mid-stream failure", func() {
			buildIndex("chunk")
			completer.fragments = nil
			completer.err = nil

			// Replace the stream with one that fails after the first fragment.
			streamErr := errors.New("connection reset")
			completerWithBrokenStream := &brokenStreamCompleter{
				stream: &fakeStream{fragments: []string{"partial "}, failAfter: streamErr},
			}

			p := rag.NewPipeline(rag.PipelineConfig{ChatModel: "gpt-4o"},
				embedder, completerWithBrokenStream, indexes, history, zap.NewNop())

			var sink bytes.Buffer
			_, err := p.AskStream(ctx, "question?", &sink)
			Expect(err).To(MatchError(streamErr))
			Expect(sink.String()).To(Equal("partial "))

			stored, err := history.Load(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Turns).To(BeEmpty())
		})
	})
})

// brokenStreamCompleter hands out a pre-built stream.
type brokenStreamCompleter struct {
	stream llm.StreamReader
}

func (b *brokenStreamCompleter) Complete(context.Context, llm.ChatRequest) (*llm.ChatResponse, error) {
	return nil, errors.New("not used")
}

func (b *brokenStreamCompleter) Stream(context.Context, llm.ChatRequest) (llm.StreamReader, error) {
	return b.stream, nil
}

func (b *brokenStreamCompleter) Close() error { return nil }
