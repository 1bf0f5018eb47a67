// Package statuscmder provides the status command for displaying the current
// index and conversation state.
package statuscmder

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/oceanlabs/coursepilot/pkg/app"
	"github.com/oceanlabs/coursepilot/pkg/cliui"
	"github.com/oceanlabs/coursepilot/pkg/config"
	"github.com/oceanlabs/coursepilot/pkg/logger"
)

const statusLongDesc string = `Show the current index and conversation state.

Reads the local store to display whether an index has been built, how many
chunks and sources it holds, which embedding model produced it, and how many
conversation turns are recorded.

Examples:
  coursepilot status`

const statusShortDesc string = "Show index and conversation state"

func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: statusShortDesc,
		Long:  statusLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runStatus(debug, configDir)
		},
	}

	return cmd
}

func runStatus(debug bool, configDir string) error {
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

	stats, err := a.Store.Stats(ctx)
	if err != nil {
		return fmt.Errorf("reading index stats: %w", err)
	}

	history, err := a.History.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	fmt.Println()
	if !stats.Built {
		fmt.Printf("  %s No index built. Run %s first.\n",
			cliui.DimStyle.Render("●"),
			cliui.NameStyle.Render("coursepilot index --corpus <dir>"),
		)
	} else {
		fmt.Printf("  %s  %s chunks from %s sources\n",
			cliui.KeyStyle.Render("Index:  "),
			cliui.NameStyle.Render(strconv.Itoa(stats.Count)),
			cliui.NameStyle.Render(strconv.Itoa(len(stats.Sources))),
		)
		fmt.Printf("  %s  %s\n",
			cliui.KeyStyle.Render("Model:  "),
			cliui.ValueStyle.Render(stats.ModelID),
		)
		fmt.Printf("  %s  %s\n",
			cliui.KeyStyle.Render("Built:  "),
			cliui.DimStyle.Render(stats.BuiltAt.Local().Format("2006-01-02 15:04:05")),
		)
	}

	fmt.Printf("  %s  %s turns\n\n",
		cliui.KeyStyle.Render("History:"),
		cliui.NameStyle.Render(strconv.Itoa(len(history.Turns))),
	)

	if stats.Built && len(stats.Sources) > 0 {
		for i, name := range stats.Sources {
			fmt.Printf("  %s %s\n",
				cliui.DimStyle.Render(fmt.Sprintf("%d.", i+1)),
				cliui.ValueStyle.Render(name),
			)
		}
		fmt.Println()
	}

	return nil
}
