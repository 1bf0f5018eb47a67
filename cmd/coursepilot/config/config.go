// Package configcmder provides the config command for managing persistent
// coursepilot configuration stored in the .coursepilot/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent coursepilot configuration.

Configuration is stored as config.toml in the .coursepilot/ directory and
provides default values for command flags. CLI flags always take precedence
over config file values.

Keys use dotted notation matching the TOML section structure:
  storage.sqlite_path, openai.base_url,
  embedding.model, embedding.batch_size, embedding.batch_delay_ms,
  chat.model, chat.temperature, chat.max_tokens,
  retrieval.top_k, retrieval.chunk_words,
  retrieval.history_turns, retrieval.context_words,
  api.listen

Use subcommands to get, set, or list configuration values:
  coursepilot config set <key> <value>    Set a configuration value
  coursepilot config get <key>            Get a configuration value
  coursepilot config list                 List all configuration values

Examples:
  coursepilot config set chat.model gpt-4o-mini
  coursepilot config set retrieval.top_k 8
  coursepilot config get embedding.model
  coursepilot config list`

const configShortDesc string = "Manage persistent coursepilot configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
