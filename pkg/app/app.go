// Package app wires coursepilot components from configuration: the
// key-value store, the vector index store, conversation history, the OpenAI
// clients, and the question-answering pipeline. Commands and the API server
// construct an App instead of assembling the graph by hand.
package app

import (
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/oceanlabs/coursepilot/pkg/config"
	"github.com/oceanlabs/coursepilot/pkg/embeddings"
	embopenai "github.com/oceanlabs/coursepilot/pkg/embeddings/openai"
	"github.com/oceanlabs/coursepilot/pkg/kv"
	"github.com/oceanlabs/coursepilot/pkg/kv/sqlite"
	"github.com/oceanlabs/coursepilot/pkg/llm"
	llmopenai "github.com/oceanlabs/coursepilot/pkg/llm/openai"
	"github.com/oceanlabs/coursepilot/pkg/rag"
	"github.com/oceanlabs/coursepilot/pkg/vector/store"
)

const (
	envAPIKey  = "OPENAI_API_KEY"
	envBaseURL = "OPENAI_BASE_URL"
)

// App is the assembled coursepilot component graph. Store, History and the
// KV driver are always populated by New; Embedder, Completer, Pipeline and
// Indexer are populated by ConnectOpenAI because they need a credential.
type App struct {
	Config  *config.Config
	KV      kv.Driver
	Store   *store.Store
	History *rag.HistoryStore

	Embedder  embeddings.Embedder
	Completer llm.Completer
	Pipeline  *rag.Pipeline
	Indexer   *rag.Indexer

	logger *zap.Logger
}

// New builds the storage side of the app from configuration. It opens the
// sqlite database and wires the index store and conversation history over it.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	if cfg == nil {
		return nil, errors.New("nil config")
	}

	driver, err := sqlite.NewDriver(sqlite.Config{Path: cfg.Storage.SQLitePath}, logger)
	if err != nil {
		return nil, fmt.Errorf("opening key-value store: %w", err)
	}

	return &App{
		Config:  cfg,
		KV:      driver,
		Store:   store.New(driver, logger),
		History: rag.NewHistoryStore(driver, logger),
		logger:  logger,
	}, nil
}

// ConnectOpenAI builds the OpenAI clients and the pipeline. The API key
// comes from the OPENAI_API_KEY environment variable; the base URL from
// config, overridable with OPENAI_BASE_URL. Fails before any network call
// when no credential is configured.
func (a *App) ConnectOpenAI() error {
	apiKey := os.Getenv(envAPIKey)
	if apiKey == "" {
		return embeddings.ErrNoCredential
	}

	baseURL := a.Config.OpenAI.BaseURL
	if env := os.Getenv(envBaseURL); env != "" {
		baseURL = env
	}

	embedder, err := embopenai.NewClient(embopenai.Config{
		APIKey:     apiKey,
		BaseURL:    baseURL,
		Model:      a.Config.Embedding.Model,
		BatchSize:  a.Config.Embedding.BatchSize,
		BatchDelay: time.Duration(a.Config.Embedding.BatchDelayMS) * time.Millisecond,
	}, a.logger)
	if err != nil {
		return fmt.Errorf("creating embedding client: %w", err)
	}

	completer, err := llmopenai.NewClient(llmopenai.Config{
		APIKey:  apiKey,
		BaseURL: baseURL,
	}, a.logger)
	if err != nil {
		return fmt.Errorf("creating completion client: %w", err)
	}

	a.Embedder = embedder
	a.Completer = completer

	a.Pipeline = rag.NewPipeline(rag.PipelineConfig{
		ChatModel:    a.Config.Chat.Model,
		Temperature:  a.Config.Chat.Temperature,
		MaxTokens:    a.Config.Chat.MaxTokens,
		TopK:         a.Config.Retrieval.TopK,
		HistoryTurns: a.Config.Retrieval.HistoryTurns,
		ContextWords: a.Config.Retrieval.ContextWords,
	}, embedder, completer, a.Store, a.History, a.logger)

	a.Indexer = rag.NewIndexer(embedder, a.Store, a.Config.Retrieval.ChunkWords, a.logger)

	return nil
}

// Close releases all held resources.
func (a *App) Close() error {
	var errs []error

	if a.Embedder != nil {
		if err := a.Embedder.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.Completer != nil {
		if err := a.Completer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.KV != nil {
		if err := a.KV.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
