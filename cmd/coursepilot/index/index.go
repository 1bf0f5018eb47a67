// Package indexcmder provides the index command for building the course
// material search index.
package indexcmder

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/oceanlabs/coursepilot/pkg/app"
	"github.com/oceanlabs/coursepilot/pkg/cliui"
	"github.com/oceanlabs/coursepilot/pkg/config"
	"github.com/oceanlabs/coursepilot/pkg/corpus"
	"github.com/oceanlabs/coursepilot/pkg/logger"
	"github.com/oceanlabs/coursepilot/pkg/rag"
)

type indexCommander struct {
	corpusDir string
	configDir string
	debug     bool

	logger *zap.Logger
}

const indexLongDesc string = `Build the search index from a directory of course materials.

Scans the directory recursively for .txt and .md files, splits them into
fixed-size word chunks, embeds every chunk through the OpenAI embeddings
API, and stores the result. Rebuilding replaces any existing index.

Requires OPENAI_API_KEY in the environment or a .env file.

Examples:
  coursepilot index --corpus ./notes
  coursepilot index --corpus ~/uni/algorithms/transcripts`

const indexShortDesc string = "Build the search index from course materials"

func NewIndexCmd() *cobra.Command {
	cmder := &indexCommander{}

	cmd := &cobra.Command{
		Use:   "index",
		Short: indexShortDesc,
		Long:  indexLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			return cmder.run()
		},
	}

	cmd.Flags().StringVarP(&cmder.corpusDir, "corpus", "c", "", "Directory containing course materials (required)")
	_ = cmd.MarkFlagRequired("corpus")

	return cmd
}

func (c *indexCommander) run() error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	cfger, err := config.NewConfiger(c.configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	cfg, err := cfger.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	a, err := app.New(cfg, c.logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.ConnectOpenAI(); err != nil {
		return err
	}

	fmt.Println()

	var sources []corpus.Source
	err = cliui.Step(os.Stdout, fmt.Sprintf("Scanning %s", c.corpusDir), func() error {
		var err error
		sources, err = corpus.LoadDir(c.corpusDir)
		return err
	})
	if err != nil {
		return err
	}

	var result *rag.BuildResult
	err = cliui.Step(os.Stdout, "Embedding and indexing", func() error {
		var err error
		result, err = a.Indexer.BuildIndex(context.Background(), sources)
		return err
	})
	if err != nil {
		return err
	}

	fmt.Printf("\n  %s Indexed %s chunks from %s sources %s\n\n",
		cliui.SuccessMark,
		cliui.NameStyle.Render(fmt.Sprintf("%d", result.Chunks)),
		cliui.NameStyle.Render(fmt.Sprintf("%d", result.Sources)),
		cliui.DimStyle.Render(fmt.Sprintf("(%s)", cliui.FormatDuration(result.Duration))),
	)

	return nil
}
