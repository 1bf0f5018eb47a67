package api

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/oceanlabs/coursepilot/pkg/corpus"
	"github.com/oceanlabs/coursepilot/pkg/llm"
)

// AskRequest is the body of POST /api/ask.
type AskRequest struct {
	Question string `json:"question"`
}

// BuildRequest is the body of POST /api/index/build. Dir overrides the
// server's configured corpus directory.
type BuildRequest struct {
	Dir string `json:"dir,omitempty"`
}

// HistoryResponse contains the stored conversation history.
type HistoryResponse struct {
	SessionID string        `json:"session_id"`
	Turns     []HistoryTurn `json:"turns"`
}

// HistoryTurn is one conversation turn.
type HistoryTurn struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleAsk answers a question against the stored index.
func (s *Server) handleAsk(c *fiber.Ctx) error {
	var req AskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "invalid request body"})
	}

	question := strings.TrimSpace(req.Question)
	if question == "" {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "question is required"})
	}

	answer, err := s.app.Pipeline.Ask(c.Context(), question)
	if err != nil {
		s.logger.Error("ask failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(llm.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(answer)
}

// handleIndexStats returns statistics about the stored index.
func (s *Server) handleIndexStats(c *fiber.Ctx) error {
	stats, err := s.app.Store.Stats(c.Context())
	if err != nil {
		s.logger.Error("reading index stats", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to read index stats"})
	}

	return c.JSON(stats)
}

// handleIndexBuild rebuilds the index from a corpus directory.
func (s *Server) handleIndexBuild(c *fiber.Ctx) error {
	var req BuildRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "invalid request body"})
		}
	}

	dir := req.Dir
	if dir == "" {
		dir = s.config.CorpusDir
	}
	if dir == "" {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "no corpus directory configured"})
	}

	sources, err := corpus.LoadDir(dir)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: err.Error()})
	}

	result, err := s.app.Indexer.BuildIndex(c.Context(), sources)
	if err != nil {
		s.logger.Error("building index", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(llm.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(result)
}

// handleIndexClear deletes the stored index.
func (s *Server) handleIndexClear(c *fiber.Ctx) error {
	if err := s.app.Store.Clear(c.Context()); err != nil {
		s.logger.Error("clearing index", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to clear index"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// handleHistory returns the stored conversation history.
func (s *Server) handleHistory(c *fiber.Ctx) error {
	history, err := s.app.History.Load(c.Context())
	if err != nil {
		s.logger.Error("loading history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to load history"})
	}

	resp := HistoryResponse{
		SessionID: history.SessionID,
		Turns:     make([]HistoryTurn, 0, len(history.Turns)),
	}
	for _, t := range history.Turns {
		resp.Turns = append(resp.Turns, HistoryTurn{
			Role:      t.Role,
			Content:   t.Content,
			Timestamp: t.Timestamp.UTC().Format(time.RFC3339),
		})
	}

	return c.JSON(resp)
}

// handleHistoryClear deletes the stored conversation history.
func (s *Server) handleHistoryClear(c *fiber.Ctx) error {
	if err := s.app.History.Clear(c.Context()); err != nil {
		s.logger.Error("clearing history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to clear history"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
