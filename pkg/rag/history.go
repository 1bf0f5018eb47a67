package rag

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/oceanlabs/coursepilot/pkg/kv"
)

const historyKey = "history"

// Turn is one conversation turn, either the user's question or the
// assistant's answer.
type Turn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// History is the persisted, append-only conversation record for a session.
type History struct {
	SessionID string `json:"session_id"`
	Turns     []Turn `json:"turns"`
}

// HistoryStore persists conversation history through the kv contract.
// Turns are append-only during a session and survive across sessions until
// explicitly cleared.
type HistoryStore struct {
	mu     sync.Mutex
	kv     kv.Driver
	logger *zap.Logger
}

// NewHistoryStore creates a HistoryStore backed by the given kv driver.
func NewHistoryStore(driver kv.Driver, logger *zap.Logger) *HistoryStore {
	return &HistoryStore{kv: driver, logger: logger}
}

// Load returns the stored history. When none exists it returns an empty
// history with a fresh session id; nothing is persisted until the first
// Append.
func (h *HistoryStore) Load(ctx context.Context) (History, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.load(ctx)
}

// Recent returns the last n turns, oldest first. A n of zero or less
// returns nothing.
func (h *HistoryStore) Recent(ctx context.Context, n int) ([]Turn, error) {
	if n <= 0 {
		return nil, nil
	}

	history, err := h.Load(ctx)
	if err != nil {
		return nil, err
	}

	turns := history.Turns
	if len(turns) > n {
		turns = turns[len(turns)-n:]
	}

	return turns, nil
}

// Append adds turns to the stored history in order.
func (h *HistoryStore) Append(ctx context.Context, turns ...Turn) error {
	if len(turns) == 0 {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	history, err := h.load(ctx)
	if err != nil {
		return err
	}

	history.Turns = append(history.Turns, turns...)

	data, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}

	if err := h.kv.Set(ctx, historyKey, data); err != nil {
		return fmt.Errorf("persisting history: %w", err)
	}

	return nil
}

// Clear deletes the stored history. The next Load starts a new session.
func (h *HistoryStore) Clear(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.kv.Delete(ctx, historyKey); err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}

	h.logger.Info("conversation history cleared")

	return nil
}

func (h *HistoryStore) load(ctx context.Context) (History, error) {
	data, err := h.kv.Get(ctx, historyKey)
	switch {
	case errors.Is(err, kv.ErrNotFound):
		return History{SessionID: uuid.NewString()}, nil
	case err != nil:
		return History{}, fmt.Errorf("loading history: %w", err)
	}

	var history History
	if err := json.Unmarshal(data, &history); err != nil {
		return History{}, fmt.Errorf("decoding history: %w", err)
	}

	return history, nil
}
