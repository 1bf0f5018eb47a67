package config

import (
	"fmt"
	"strconv"
)

// Config represents the persistent coursepilot configuration stored as
// config.toml in the .coursepilot/ directory. The TOML layout uses sections
// for logical grouping. The API credential is deliberately not part of the
// file; it comes from the environment (OPENAI_API_KEY).
type Config struct {
	Version   int             `toml:"version"`
	Storage   StorageConfig   `toml:"storage"`
	OpenAI    OpenAIConfig    `toml:"openai"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Chat      ChatConfig      `toml:"chat"`
	Retrieval RetrievalConfig `toml:"retrieval"`
	API       APIConfig       `toml:"api"`
}

// StorageConfig holds key-value store settings.
type StorageConfig struct {
	SQLitePath string `toml:"sqlite_path,omitempty"`
}

// OpenAIConfig holds settings shared by both OpenAI clients.
type OpenAIConfig struct {
	BaseURL string `toml:"base_url,omitempty"`
}

// EmbeddingConfig holds embedding client settings.
type EmbeddingConfig struct {
	Model        string `toml:"model,omitempty"`
	BatchSize    int    `toml:"batch_size,omitempty"`
	BatchDelayMS int    `toml:"batch_delay_ms,omitempty"`
}

// ChatConfig holds answer generation settings.
type ChatConfig struct {
	Model       string  `toml:"model,omitempty"`
	Temperature float64 `toml:"temperature,omitempty"`
	MaxTokens   int     `toml:"max_tokens,omitempty"`
}

// RetrievalConfig holds retrieval and context assembly settings.
type RetrievalConfig struct {
	TopK         int `toml:"top_k,omitempty"`
	ChunkWords   int `toml:"chunk_words,omitempty"`
	HistoryTurns int `toml:"history_turns,omitempty"`
	ContextWords int `toml:"context_words,omitempty"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter
// on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func intKey(get func(c *Config) *int) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string {
			if v := *get(c); v != 0 {
				return strconv.Itoa(v)
			}
			return ""
		},
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid integer value %q: %w", v, err)
			}
			*get(c) = n
			return nil
		},
	}
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"storage.sqlite_path": {
		get: func(c *Config) string { return c.Storage.SQLitePath },
		set: func(c *Config, v string) error { c.Storage.SQLitePath = v; return nil },
	},
	"openai.base_url": {
		get: func(c *Config) string { return c.OpenAI.BaseURL },
		set: func(c *Config, v string) error { c.OpenAI.BaseURL = v; return nil },
	},
	"embedding.model": {
		get: func(c *Config) string { return c.Embedding.Model },
		set: func(c *Config, v string) error { c.Embedding.Model = v; return nil },
	},
	"embedding.batch_size":     intKey(func(c *Config) *int { return &c.Embedding.BatchSize }),
	"embedding.batch_delay_ms": intKey(func(c *Config) *int { return &c.Embedding.BatchDelayMS }),
	"chat.model": {
		get: func(c *Config) string { return c.Chat.Model },
		set: func(c *Config, v string) error { c.Chat.Model = v; return nil },
	},
	"chat.temperature": {
		get: func(c *Config) string {
			return strconv.FormatFloat(c.Chat.Temperature, 'f', -1, 64)
		},
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid value for chat.temperature: %w", err)
			}
			c.Chat.Temperature = f
			return nil
		},
	},
	"chat.max_tokens":          intKey(func(c *Config) *int { return &c.Chat.MaxTokens }),
	"retrieval.top_k":          intKey(func(c *Config) *int { return &c.Retrieval.TopK }),
	"retrieval.chunk_words":    intKey(func(c *Config) *int { return &c.Retrieval.ChunkWords }),
	"retrieval.history_turns":  intKey(func(c *Config) *int { return &c.Retrieval.HistoryTurns }),
	"retrieval.context_words":  intKey(func(c *Config) *int { return &c.Retrieval.ContextWords }),
	"api.listen": {
		get: func(c *Config) string { return c.API.Listen },
		set: func(c *Config, v string) error { c.API.Listen = v; return nil },
	},
}
