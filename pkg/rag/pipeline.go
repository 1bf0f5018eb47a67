package rag

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/oceanlabs/coursepilot/pkg/embeddings"
	"github.com/oceanlabs/coursepilot/pkg/llm"
	"github.com/oceanlabs/coursepilot/pkg/vector"
	"github.com/oceanlabs/coursepilot/pkg/vector/store"
)

// DefaultTopK is the default number of chunks retrieved per question.
const DefaultTopK = 5

// Outcome classifies the result of one Ask call.
type Outcome string

const (
	// OutcomeAnswered means a grounded answer was generated.
	OutcomeAnswered Outcome = "answered"

	// OutcomeNoIndex means no index has been built; no remote service
	// was called.
	OutcomeNoIndex Outcome = "no_index"

	// OutcomeNoContext means retrieval found nothing relevant; the
	// completion API was not called.
	OutcomeNoContext Outcome = "no_context"
)

// Answer is the result of one question. Text always carries either the
// generated answer or the fixed message for a non-answer outcome.
type Answer struct {
	Text      string     `json:"text"`
	Outcome   Outcome    `json:"outcome"`
	Retrieved int        `json:"retrieved"`
	Usage     *llm.Usage `json:"usage,omitempty"`
}

// PipelineConfig holds retrieval and generation parameters.
type PipelineConfig struct {
	ChatModel    string
	Temperature  float64
	MaxTokens    int
	TopK         int
	HistoryTurns int
	ContextWords int
}

// Pipeline answers questions: it embeds the question, ranks it against the
// stored index, assembles a bounded context with recent history, and calls
// the completion API. Two concurrent Ask calls are safe — they only read
// the index and independently call remote services.
type Pipeline struct {
	cfg       PipelineConfig
	embedder  embeddings.Embedder
	completer llm.Completer
	store     *store.Store
	history   *HistoryStore
	logger    *zap.Logger
}

// NewPipeline creates a Pipeline, applying defaults for unset parameters.
func NewPipeline(
	cfg PipelineConfig,
	embedder embeddings.Embedder,
	completer llm.Completer,
	s *store.Store,
	history *HistoryStore,
	logger *zap.Logger,
) *Pipeline {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	if cfg.HistoryTurns <= 0 {
		cfg.HistoryTurns = DefaultHistoryTurns
	}
	if cfg.ContextWords <= 0 {
		cfg.ContextWords = DefaultContextWords
	}

	return &Pipeline{
		cfg:       cfg,
		embedder:  embedder,
		completer: completer,
		store:     s,
		history:   history,
		logger:    logger,
	}
}

// Ask answers a question in blocking mode. The caller always receives
// either a complete answer or a specific failure; never a truncated or
// silently-empty one. History gains the question and answer turns only
// after a successful completion.
func (p *Pipeline) Ask(ctx context.Context, question string) (*Answer, error) {
	req, retrieved, err := p.prepare(ctx, question)
	if err != nil {
		return p.shortCircuit(err)
	}

	resp, err := p.completer.Complete(ctx, *req)
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(resp.Message.Content)
	p.recordTurns(ctx, question, text)

	return &Answer{
		Text:      text,
		Outcome:   OutcomeAnswered,
		Retrieved: retrieved,
		Usage:     resp.Usage,
	}, nil
}

// AskStream answers a question in streaming mode, writing each fragment to
// sink as it arrives. The returned Answer carries the accumulated text. A
// mid-stream failure surfaces as an error and appends nothing to history.
func (p *Pipeline) AskStream(ctx context.Context, question string, sink io.Writer) (*Answer, error) {
	req, retrieved, err := p.prepare(ctx, question)
	if err != nil {
		return p.shortCircuit(err)
	}

	reader, err := p.completer.Stream(ctx, *req)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	var full strings.Builder
	for {
		fragment, err := reader.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		full.WriteString(fragment)
		if _, err := io.WriteString(sink, fragment); err != nil {
			return nil, fmt.Errorf("writing answer fragment: %w", err)
		}
	}

	text := strings.TrimSpace(full.String())
	p.recordTurns(ctx, question, text)

	return &Answer{
		Text:      text,
		Outcome:   OutcomeAnswered,
		Retrieved: retrieved,
	}, nil
}

// prepare runs the retrieval half of the pipeline: load index, embed the
// question, rank, and assemble. It returns vector.ErrNotBuilt or
// ErrNoContext for the defined non-answer states.
func (p *Pipeline) prepare(ctx context.Context, question string) (*llm.ChatRequest, int, error) {
	index, err := p.store.Load(ctx)
	if err != nil {
		// Includes vector.ErrNotBuilt: resolved before any network call.
		return nil, 0, err
	}

	if index.ModelID != p.embedder.Model() {
		return nil, 0, fmt.Errorf("%w: index built with %q, embedder uses %q — re-run indexing",
			vector.ErrModelMismatch, index.ModelID, p.embedder.Model())
	}

	queryVec, err := p.embedder.Embed(ctx, question)
	if err != nil {
		return nil, 0, err
	}

	results := vector.Rank(queryVec, index.Entries, p.cfg.TopK)

	recent, err := p.history.Recent(ctx, p.cfg.HistoryTurns)
	if err != nil {
		return nil, 0, err
	}

	asm := Assemble(results, recent, p.cfg.HistoryTurns, p.cfg.ContextWords)
	if asm.Context == "" {
		return nil, 0, ErrNoContext
	}

	p.logger.Debug("retrieval complete",
		zap.Int("retrieved", len(results)),
		zap.Float64("top_score", results[0].Score),
	)

	req := buildRequest(p.cfg, question, asm)

	return &req, len(results), nil
}

// shortCircuit maps the defined non-answer states to fixed outcomes and
// passes every other error through.
func (p *Pipeline) shortCircuit(err error) (*Answer, error) {
	switch {
	case errors.Is(err, vector.ErrNotBuilt):
		return &Answer{Text: NoIndexMessage, Outcome: OutcomeNoIndex}, nil
	case errors.Is(err, ErrNoContext):
		return &Answer{Text: NoContextMessage, Outcome: OutcomeNoContext}, nil
	}
	return nil, err
}

// recordTurns appends the question/answer pair to history. A persistence
// failure doesn't void an already-generated answer; it is logged instead.
func (p *Pipeline) recordTurns(ctx context.Context, question, answer string) {
	now := time.Now().UTC()
	err := p.history.Append(ctx,
		Turn{Role: llm.RoleUser, Content: question, Timestamp: now},
		Turn{Role: llm.RoleAssistant, Content: answer, Timestamp: now},
	)
	if err != nil {
		p.logger.Warn("failed to persist conversation turns", zap.Error(err))
	}
}
