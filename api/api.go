package api

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/oceanlabs/coursepilot/pkg/app"
)

// Server is the API server for querying and managing the coursepilot system.
type Server struct {
	config Config
	app    *app.App
	logger *zap.Logger
	fiber  *fiber.App
}

// NewServer creates a new API server. The app is injected so the server
// shares the same store and pipeline as the CLI commands.
func NewServer(config Config, a *app.App, logger *zap.Logger) *Server {
	f := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config: config,
		app:    a,
		logger: logger,
		fiber:  f,
	}

	f.Get("/ping", s.handlePing)
	f.Post("/api/ask", s.handleAsk)
	f.Get("/api/index/stats", s.handleIndexStats)
	f.Post("/api/index/build", s.handleIndexBuild)
	f.Delete("/api/index", s.handleIndexClear)
	f.Get("/api/history", s.handleHistory)
	f.Delete("/api/history", s.handleHistoryClear)

	return s
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		zap.String("listen", s.config.ListenAddr),
	)
	return s.fiber.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.fiber.Shutdown()
}
