package config

const (
	defaultBaseURL = "https://api.openai.com"

	defaultEmbeddingModel = "text-embedding-3-small"
	defaultBatchSize      = 100
	defaultBatchDelayMS   = 200

	defaultChatModel   = "gpt-4o"
	defaultTemperature = 0.2
	defaultMaxTokens   = 1500

	defaultTopK         = 5
	defaultChunkWords   = 500
	defaultHistoryTurns = 4
	defaultContextWords = 6000

	defaultAPIListen = ":8275"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
// Storage.SQLitePath stays empty here; it is resolved against the
// .coursepilot/ directory at load time.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		OpenAI: OpenAIConfig{
			BaseURL: defaultBaseURL,
		},
		Embedding: EmbeddingConfig{
			Model:        defaultEmbeddingModel,
			BatchSize:    defaultBatchSize,
			BatchDelayMS: defaultBatchDelayMS,
		},
		Chat: ChatConfig{
			Model:       defaultChatModel,
			Temperature: defaultTemperature,
			MaxTokens:   defaultMaxTokens,
		},
		Retrieval: RetrievalConfig{
			TopK:         defaultTopK,
			ChunkWords:   defaultChunkWords,
			HistoryTurns: defaultHistoryTurns,
			ContextWords: defaultContextWords,
		},
		API: APIConfig{
			Listen: defaultAPIListen,
		},
	}
}
