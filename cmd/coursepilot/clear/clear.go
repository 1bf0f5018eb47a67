// Package clearcmder provides the clear command for deleting the stored
// index and conversation history.
package clearcmder

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oceanlabs/coursepilot/pkg/app"
	"github.com/oceanlabs/coursepilot/pkg/cliui"
	"github.com/oceanlabs/coursepilot/pkg/config"
	"github.com/oceanlabs/coursepilot/pkg/logger"
)

type clearCommander struct {
	index   bool
	history bool
	all     bool
}

const clearLongDesc string = `Delete the stored index, the conversation history, or both.

Clearing the index removes all embedded chunks; asking a question afterwards
reports that no material is indexed until the index is rebuilt. Clearing the
history starts the next conversation fresh.

Examples:
  coursepilot clear --index
  coursepilot clear --history
  coursepilot clear --all`

const clearShortDesc string = "Delete the stored index or conversation history"

func NewClearCmd() *cobra.Command {
	cmder := &clearCommander{}

	cmd := &cobra.Command{
		Use:   "clear",
		Short: clearShortDesc,
		Long:  clearLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			configDir, _ := cmd.Flags().GetString("config-dir")
			return cmder.run(debug, configDir)
		},
	}

	cmd.Flags().BoolVar(&cmder.index, "index", false, "Delete the search index")
	cmd.Flags().BoolVar(&cmder.history, "history", false, "Delete the conversation history")
	cmd.Flags().BoolVar(&cmder.all, "all", false, "Delete both the index and the history")

	return cmd
}

func (c *clearCommander) run(debug bool, configDir string) error {
	if !c.index && !c.history && !c.all {
		return errors.New("nothing to clear: pass --index, --history, or --all")
	}

	log := logger.NewLogger(debug)
	defer func() { _ = log.Sync() }()

	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	cfg, err := cfger.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	a, err := app.New(cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	fmt.Println()

	if c.index || c.all {
		if err := a.Store.Clear(ctx); err != nil {
			return fmt.Errorf("clearing index: %w", err)
		}
		fmt.Printf("  %s Index cleared\n", cliui.SuccessMark)
	}

	if c.history || c.all {
		if err := a.History.Clear(ctx); err != nil {
			return fmt.Errorf("clearing history: %w", err)
		}
		fmt.Printf("  %s History cleared\n", cliui.SuccessMark)
	}

	fmt.Println()
	return nil
}
