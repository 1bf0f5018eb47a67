// Package chatcmder provides the chat command for an interactive streaming
// question-answering session.
package chatcmder

import (
	"bufio"
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
)

type chatCommander struct {
	configDir string
	debug     bool

	logger *zap.Logger
}

const chatLongDesc string = `Start an interactive chat session over your indexed course materials.

Each question is answered against the index with the chat model, streaming
tokens to the terminal as they arrive. The conversation history persists
across sessions; recent turns are included with each question so follow-ups
can refer back to earlier answers.

Requires OPENAI_API_KEY in the environment or a .env file.

Examples:
  coursepilot chat`

const chatShortDesc string = "Interactive chat over your course materials"

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
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

	return cmd
}

func (c *chatCommander) run() error {
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

	history, err := a.History.Load(context.Background())
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	fmt.Println()
	if len(history.Turns) > 0 {
		fmt.Printf("  %s Resuming session %s\n",
			cliui.SuccessMark,
			cliui.DimStyle.Render(fmt.Sprintf("(%d turns)", len(history.Turns))),
		)
	} else {
		fmt.Printf("  %s New conversation\n", cliui.DimStyle.Render("●"))
	}

	fmt.Printf("  %s %s\n\n",
		cliui.KeyStyle.Render("Model:"),
		cliui.NameStyle.Render(cfg.Chat.Model),
	)
	fmt.Printf("  %s\n\n", cliui.DimStyle.Render("Type your question and press Enter. /exit or Ctrl+D to quit."))

	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print(cliui.UserPrompt)
		if !scanner.Scan() {
			// EOF or error
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "/exit" {
			break
		}

		fmt.Print(cliui.AssistantPrompt)

		_, err := a.Pipeline.AskStream(context.Background(), input, os.Stdout)
		if err != nil {
			fmt.Fprintf(os.Stderr, "\n  %s %v\n", cliui.FailMark, err)
			// The failed question was not recorded; just ask again.
			continue
		}

		fmt.Println()
		fmt.Println()
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	fmt.Println()
	return nil
}
