// Package config manages the coursepilot configuration file and its
// defaults. Configuration lives in config.toml inside the resolved
// .coursepilot/ directory.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/oceanlabs/coursepilot/pkg/dotdir"
)

const (
	configFile = "config.toml"

	// dbFile is the default sqlite database filename inside the
	// .coursepilot/ directory.
	dbFile = "coursepilot.db"

	// v0 is the alpha version of the config
	v0 = 0

	// CurrentV is the currently supported version, points to v0
	CurrentV = v0
)

type Configer struct {
	ddm        *dotdir.Manager
	targetDir  string
	targetPath string
}

func NewConfiger(override string) (*Configer, error) {
	cfger := &Configer{}

	cfger.ddm = dotdir.NewManager()
	target, err := cfger.ddm.Target(override)
	if err != nil {
		return nil, err
	}

	if target == "" {
		return cfger, nil
	}

	path := filepath.Join(target, configFile)
	_, err = os.Stat(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Always set targetPath when the directory exists so SaveConfig
	// can create or overwrite the file.
	cfger.targetDir = target
	cfger.targetPath = path

	return cfger, nil
}

// ValidConfigKeys returns the list of all supported configuration key names
// in a stable order matching the TOML section layout.
func ValidConfigKeys() []string {
	ordered := []string{
		"storage.sqlite_path",
		"openai.base_url",
		"embedding.model",
		"embedding.batch_size",
		"embedding.batch_delay_ms",
		"chat.model",
		"chat.temperature",
		"chat.max_tokens",
		"retrieval.top_k",
		"retrieval.chunk_words",
		"retrieval.history_turns",
		"retrieval.context_words",
		"api.listen",
	}

	// Sanity: only return keys that actually exist in the map.
	result := make([]string, 0, len(ordered))
	for _, k := range ordered {
		if _, ok := configKeys[k]; ok {
			result = append(result, k)
		}
	}

	// Append any keys in the map that we missed in the ordered list.
	seen := make(map[string]bool, len(result))
	for _, k := range result {
		seen[k] = true
	}
	for k := range configKeys {
		if !seen[k] {
			result = append(result, k)
		}
	}

	return result
}

// IsValidConfigKey returns true if the given key is a supported configuration key.
func IsValidConfigKey(key string) bool {
	_, ok := configKeys[key]
	return ok
}

// GetTarget returns the resolved config.toml path, or empty if no
// .coursepilot/ directory could be resolved.
func (c *Configer) GetTarget() string {
	return c.targetPath
}

// GetTargetDir returns the resolved .coursepilot/ directory.
func (c *Configer) GetTargetDir() string {
	return c.targetDir
}

// LoadConfig returns the effective configuration: defaults, overlaid by
// config.toml in the target .coursepilot/ directory, overlaid by
// COURSEPILOT_* environment variables. Callers always receive a
// fully-populated Config.
func (c *Configer) LoadConfig() (*Config, error) {
	v, err := InitViper(c.targetDir)
	if err != nil {
		return nil, err
	}

	if version := v.GetInt("version"); version != CurrentV {
		return nil, fmt.Errorf("unsupported config version %d (expected %d)", version, CurrentV)
	}

	return c.withDefaults(configFromViper(v)), nil
}

// loadFileConfig loads config.toml plus defaults with no environment
// overlay. SetConfigValue goes through it so environment overrides are
// never written back into the file.
func (c *Configer) loadFileConfig() (*Config, error) {
	if c.targetPath == "" {
		return c.withDefaults(NewDefaultConfig()), nil
	}

	data, err := os.ReadFile(c.targetPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c.withDefaults(NewDefaultConfig()), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg, err := ParseConfigTOML(data)
	if err != nil {
		return nil, err
	}

	return c.withDefaults(cfg), nil
}

// withDefaults fills zero-value fields in cfg from NewDefaultConfig() and
// resolves the sqlite path against the target directory.
func (c *Configer) withDefaults(cfg *Config) *Config {
	applyDefaults(cfg)

	if cfg.Storage.SQLitePath == "" && c.targetDir != "" {
		cfg.Storage.SQLitePath = filepath.Join(c.targetDir, dbFile)
	}

	return cfg
}

// applyDefaults fills zero-value fields in cfg with values from NewDefaultConfig().
func applyDefaults(cfg *Config) {
	defaults := NewDefaultConfig()

	if cfg.Version == 0 {
		cfg.Version = defaults.Version
	}

	if cfg.OpenAI.BaseURL == "" {
		cfg.OpenAI.BaseURL = defaults.OpenAI.BaseURL
	}

	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = defaults.Embedding.Model
	}
	if cfg.Embedding.BatchSize == 0 {
		cfg.Embedding.BatchSize = defaults.Embedding.BatchSize
	}
	if cfg.Embedding.BatchDelayMS == 0 {
		cfg.Embedding.BatchDelayMS = defaults.Embedding.BatchDelayMS
	}

	if cfg.Chat.Model == "" {
		cfg.Chat.Model = defaults.Chat.Model
	}
	if cfg.Chat.Temperature == 0 {
		cfg.Chat.Temperature = defaults.Chat.Temperature
	}
	if cfg.Chat.MaxTokens == 0 {
		cfg.Chat.MaxTokens = defaults.Chat.MaxTokens
	}

	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = defaults.Retrieval.TopK
	}
	if cfg.Retrieval.ChunkWords == 0 {
		cfg.Retrieval.ChunkWords = defaults.Retrieval.ChunkWords
	}
	if cfg.Retrieval.HistoryTurns == 0 {
		cfg.Retrieval.HistoryTurns = defaults.Retrieval.HistoryTurns
	}
	if cfg.Retrieval.ContextWords == 0 {
		cfg.Retrieval.ContextWords = defaults.Retrieval.ContextWords
	}

	if cfg.API.Listen == "" {
		cfg.API.Listen = defaults.API.Listen
	}
}

// SaveConfig persists the configuration to config.toml in the target
// .coursepilot/ directory.
func (c *Configer) SaveConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New("cannot save nil config")
	}

	if c.targetPath == "" {
		return errors.New("cannot save empty target path")
	}

	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(c.targetPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// SetConfigValue loads the config, sets the given key to the given value, and saves it.
// Returns an error if the key is not a valid config key.
func (c *Configer) SetConfigValue(key string, value string) error {
	info, ok := configKeys[key]
	if !ok {
		return fmt.Errorf("unknown config key: %q", key)
	}

	cfg, err := c.loadFileConfig()
	if err != nil {
		return err
	}

	if err := info.set(cfg, value); err != nil {
		return err
	}

	return c.SaveConfig(cfg)
}

// GetConfigValue loads the config and returns the string representation of
// the given key's effective value, environment overrides included.
// Returns an error if the key is not a valid config key.
func (c *Configer) GetConfigValue(key string) (string, error) {
	info, ok := configKeys[key]
	if !ok {
		return "", fmt.Errorf("unknown config key: %q", key)
	}

	cfg, err := c.LoadConfig()
	if err != nil {
		return "", err
	}

	return info.get(cfg), nil
}

// ParseConfigTOML parses raw TOML bytes into a Config.
// Returns an error if the version field is present and not equal to CurrentV.
func ParseConfigTOML(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config TOML: %w", err)
	}

	if cfg.Version != 0 && cfg.Version != CurrentV {
		return nil, fmt.Errorf("unsupported config version %d (expected %d)", cfg.Version, CurrentV)
	}

	return cfg, nil
}
