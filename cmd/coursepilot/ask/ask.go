// Package askcmder provides the ask command for answering a single question
// against the stored index.
package askcmder

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/oceanlabs/coursepilot/pkg/app"
	"github.com/oceanlabs/coursepilot/pkg/cliui"
	"github.com/oceanlabs/coursepilot/pkg/config"
	"github.com/oceanlabs/coursepilot/pkg/logger"
	"github.com/oceanlabs/coursepilot/pkg/rag"
)

type askCommander struct {
	plain     bool
	configDir string
	debug     bool

	logger *zap.Logger
}

const askLongDesc string = `Ask a single question about your indexed course materials.

Retrieves the most relevant chunks from the index, sends them with the
question to the chat model, and prints the answer. The question and answer
are recorded in the conversation history so follow-up questions can refer
back to them.

Requires OPENAI_API_KEY in the environment or a .env file.

Examples:
  coursepilot ask "what is amortized analysis?"
  coursepilot ask --plain "summarize lecture 3"`

const askShortDesc string = "Ask a question about your course materials"

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: askShortDesc,
		Long:  askLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			return cmder.run(strings.Join(args, " "))
		},
	}

	cmd.Flags().BoolVar(&cmder.plain, "plain", false, "Print the raw answer without markdown rendering")

	return cmd
}

func (c *askCommander) run(question string) error {
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

	var answer *rag.Answer
	err = cliui.Step(os.Stderr, "Thinking", func() error {
		var err error
		answer, err = a.Pipeline.Ask(context.Background(), question)
		return err
	})
	if err != nil {
		return err
	}

	if answer.Outcome != rag.OutcomeAnswered || c.plain {
		fmt.Println()
		fmt.Println(answer.Text)
		return nil
	}

	rendered, err := cliui.RenderMarkdown(answer.Text)
	if err != nil {
		// Fall back to the raw text when the terminal renderer fails.
		c.logger.Debug("markdown rendering failed", zap.Error(err))
		fmt.Println()
		fmt.Println(answer.Text)
		return nil
	}

	fmt.Print(rendered)
	return nil
}
