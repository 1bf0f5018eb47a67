// Package servecmder provides the serve command for running the API server.
package servecmder

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/oceanlabs/coursepilot/api"
	"github.com/oceanlabs/coursepilot/pkg/app"
	"github.com/oceanlabs/coursepilot/pkg/config"
	"github.com/oceanlabs/coursepilot/pkg/logger"
)

type serveCommander struct {
	listen    string
	corpusDir string
	configDir string
	debug     bool

	logger *zap.Logger
}

const serveLongDesc string = `Run the coursepilot API server.

Exposes question answering and index management over HTTP:
  POST   /api/ask          Answer a question
  GET    /api/index/stats  Index statistics
  POST   /api/index/build  Rebuild the index from a corpus directory
  DELETE /api/index        Delete the index
  GET    /api/history      Conversation history
  DELETE /api/history      Clear conversation history

Requires OPENAI_API_KEY in the environment or a .env file.

Examples:
  coursepilot serve
  coursepilot serve --listen :9000 --corpus ./notes`

const serveShortDesc string = "Run the coursepilot API server"

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			cmder.configDir = configDir

			cfger, err := config.NewConfiger(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			cfg, err := cfger.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			if !cmd.Flags().Changed("listen") {
				cmder.listen = cfg.API.Listen
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			return cmder.run()
		},
	}

	defaults := config.NewDefaultConfig()
	cmd.Flags().StringVarP(&cmder.listen, "listen", "l", defaults.API.Listen, "Address for the API server to listen on")
	cmd.Flags().StringVarP(&cmder.corpusDir, "corpus", "c", "", "Corpus directory for the index build endpoint")

	return cmd
}

func (c *serveCommander) run() error {
	c.logger = logger.NewServerLogger(c.debug)
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

	server := api.NewServer(api.Config{
		ListenAddr: c.listen,
		CorpusDir:  c.corpusDir,
	}, a, c.logger)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("api server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("shutting down", zap.String("signal", sig.String()))
		return server.Shutdown()
	}
}
