package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/oceanlabs/coursepilot/pkg/dotdir"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the COURSEPILOT_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound by the command layer)
//  2. Environment variables (COURSEPILOT_CHAT_MODEL, COURSEPILOT_API_LISTEN, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery via dotdir resolution.
	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// 3. Environment variables: COURSEPILOT_CHAT_MODEL, COURSEPILOT_STORAGE_SQLITE_PATH, etc.
	v.SetEnvPrefix("COURSEPILOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// configFromViper materializes a Config from the merged viper state:
// defaults, config file values, and environment variables, in ascending
// precedence.
func configFromViper(v *viper.Viper) *Config {
	return &Config{
		Version: v.GetInt("version"),
		Storage: StorageConfig{
			SQLitePath: v.GetString("storage.sqlite_path"),
		},
		OpenAI: OpenAIConfig{
			BaseURL: v.GetString("openai.base_url"),
		},
		Embedding: EmbeddingConfig{
			Model:        v.GetString("embedding.model"),
			BatchSize:    v.GetInt("embedding.batch_size"),
			BatchDelayMS: v.GetInt("embedding.batch_delay_ms"),
		},
		Chat: ChatConfig{
			Model:       v.GetString("chat.model"),
			Temperature: v.GetFloat64("chat.temperature"),
			MaxTokens:   v.GetInt("chat.max_tokens"),
		},
		Retrieval: RetrievalConfig{
			TopK:         v.GetInt("retrieval.top_k"),
			ChunkWords:   v.GetInt("retrieval.chunk_words"),
			HistoryTurns: v.GetInt("retrieval.history_turns"),
			ContextWords: v.GetInt("retrieval.context_words"),
		},
		API: APIConfig{
			Listen: v.GetString("api.listen"),
		},
	}
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Storage
	v.SetDefault("storage.sqlite_path", d.Storage.SQLitePath)

	// OpenAI
	v.SetDefault("openai.base_url", d.OpenAI.BaseURL)

	// Embedding
	v.SetDefault("embedding.model", d.Embedding.Model)
	v.SetDefault("embedding.batch_size", d.Embedding.BatchSize)
	v.SetDefault("embedding.batch_delay_ms", d.Embedding.BatchDelayMS)

	// Chat
	v.SetDefault("chat.model", d.Chat.Model)
	v.SetDefault("chat.temperature", d.Chat.Temperature)
	v.SetDefault("chat.max_tokens", d.Chat.MaxTokens)

	// Retrieval
	v.SetDefault("retrieval.top_k", d.Retrieval.TopK)
	v.SetDefault("retrieval.chunk_words", d.Retrieval.ChunkWords)
	v.SetDefault("retrieval.history_turns", d.Retrieval.HistoryTurns)
	v.SetDefault("retrieval.context_words", d.Retrieval.ContextWords)

	// API
	v.SetDefault("api.listen", d.API.Listen)
}
