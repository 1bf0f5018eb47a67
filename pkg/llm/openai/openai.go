// Package openai implements pkg/llm's Completer against OpenAI's chat
// completions API, in blocking and SSE-streaming modes.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/oceanlabs/coursepilot/pkg/llm"
)

const (
	// DefaultModel is the default chat model.
	DefaultModel = "gpt-4o"

	// DefaultBaseURL is the default OpenAI API URL.
	DefaultBaseURL = "https://api.openai.com"
)

// Client wraps OpenAI's chat completions API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// Config holds configuration for the OpenAI chat client.
type Config struct {
	// APIKey is the OpenAI API credential. Required.
	APIKey string

	// BaseURL is the API URL. Defaults to DefaultBaseURL if empty.
	BaseURL string

	// Timeout bounds blocking completion calls. Defaults to 180s.
	Timeout time.Duration
}

// NewClient creates a chat-completion client. It fails fast when no API key
// is configured.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, llm.ErrNoCredential
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 180 * time.Second
	}

	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}, nil
}

// Complete sends the request and blocks until the full answer is available.
// Any non-success response or transport error surfaces as llm.ErrService;
// no retry is attempted.
func (c *Client) Complete(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	resp, err := c.post(ctx, req, false)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", llm.ErrService, err)
	}

	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices returned", llm.ErrService)
	}

	choice := parsed.Choices[0]

	result := &llm.ChatResponse{
		Model:      parsed.Model,
		CreatedAt:  time.Unix(parsed.Created, 0),
		Message:    llm.NewMessage(llm.RoleAssistant, choice.Message.Content),
		StopReason: choice.FinishReason,
	}
	if parsed.Usage != nil {
		result.Usage = &llm.Usage{
			PromptTokens:     parsed.Usage.PromptTokens,
			CompletionTokens: parsed.Usage.CompletionTokens,
			TotalTokens:      parsed.Usage.TotalTokens,
		}
	}

	return result, nil
}

// Stream sends the request in streaming mode and returns a reader over the
// incremental answer fragments. Cancelling ctx or closing the stream closes
// the underlying connection.
func (c *Client) Stream(ctx context.Context, req llm.ChatRequest) (llm.StreamReader, error) {
	resp, err := c.post(ctx, req, true)
	if err != nil {
		return nil, err
	}

	return newStream(resp.Body), nil
}

// Close releases resources held by the client.
func (c *Client) Close() error {
	return nil
}

// post issues one chat-completions request and returns the raw response on
// 2xx, consuming and classifying the body otherwise.
func (c *Client) post(ctx context.Context, req llm.ChatRequest, stream bool) (*http.Response, error) {
	wire := chatRequest{
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if stream {
		wire.Stream = &stream
	}
	for _, m := range req.Messages {
		wire.Messages = append(wire.Messages, chatMessage{Role: m.Role, Content: m.Content})
	}

	body, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("%w: marshaling request: %v", llm.ErrService, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", llm.ErrService, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	// The blocking client enforces an overall timeout; streams are bounded
	// by ctx instead, since a healthy stream can legitimately outlive any
	// fixed request deadline.
	client := c.httpClient
	if stream {
		client = &http.Client{Transport: c.httpClient.Transport}
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: sending request: %v", llm.ErrService, err)
	}

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		c.logger.Warn("chat completion failed",
			zap.Int("status", resp.StatusCode),
		)
		return nil, fmt.Errorf("%w: status %d: %s", llm.ErrService,
			resp.StatusCode, apiErrorMessage(payload))
	}

	return resp, nil
}

var _ llm.Completer = (*Client)(nil)
