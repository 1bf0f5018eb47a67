// Package openai implements pkg/embeddings' Embedder against OpenAI's
// embeddings API, with request batching and bounded retry.
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

	"github.com/oceanlabs/coursepilot/pkg/embeddings"
)

const (
	// DefaultModel is the default embedding model.
	DefaultModel = "text-embedding-3-small"

	// DefaultBaseURL is the default OpenAI API URL.
	DefaultBaseURL = "https://api.openai.com"

	// DefaultBatchSize is the maximum number of texts per embedding request.
	DefaultBatchSize = 100

	// DefaultBatchDelay is the pause between successive batch requests,
	// keeping sustained indexing under the upstream rate limit.
	DefaultBatchDelay = 200 * time.Millisecond

	defaultMaxAttempts  = 5
	defaultRetryBackoff = 2 * time.Second
	defaultBackoffCap   = 30 * time.Second
	backoffMultiplier   = 1.7
)

// Client wraps OpenAI's embeddings API.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	batchSize  int
	batchDelay time.Duration

	maxAttempts  int
	retryBackoff time.Duration
	backoffCap   time.Duration

	httpClient *http.Client
	logger     *zap.Logger
}

// Config holds configuration for the OpenAI embedding client.
type Config struct {
	// APIKey is the OpenAI API credential. Required.
	APIKey string

	// BaseURL is the API URL. Defaults to DefaultBaseURL if empty.
	BaseURL string

	// Model is the embedding model. Defaults to DefaultModel if empty.
	Model string

	// BatchSize caps texts per request. Defaults to DefaultBatchSize.
	BatchSize int

	// BatchDelay is the pause between successive batch requests.
	// Defaults to DefaultBatchDelay; negative disables the delay.
	BatchDelay time.Duration

	// MaxAttempts bounds retries per batch on transient failures.
	MaxAttempts int

	// RetryBackoff is the initial backoff before the first retry. It grows
	// by 1.7x per attempt, capped at 30s.
	RetryBackoff time.Duration
}

// NewClient creates an embedding client. It fails fast when no API key is
// configured: no network call is ever attempted without a credential.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, embeddings.ErrNoCredential
	}

	c := &Client{
		apiKey:       cfg.APIKey,
		baseURL:      cfg.BaseURL,
		model:        cfg.Model,
		batchSize:    cfg.BatchSize,
		batchDelay:   cfg.BatchDelay,
		maxAttempts:  cfg.MaxAttempts,
		retryBackoff: cfg.RetryBackoff,
		backoffCap:   defaultBackoffCap,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		logger: logger,
	}

	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.model == "" {
		c.model = DefaultModel
	}
	if c.batchSize <= 0 {
		c.batchSize = DefaultBatchSize
	}
	if c.batchDelay == 0 {
		c.batchDelay = DefaultBatchDelay
	}
	if c.maxAttempts <= 0 {
		c.maxAttempts = defaultMaxAttempts
	}
	if c.retryBackoff <= 0 {
		c.retryBackoff = defaultRetryBackoff
	}

	return c, nil
}

// EmbedBatch converts texts into one vector per input, order preserved.
// Inputs are split into batches of at most the configured batch size; batches
// are issued sequentially with a small delay between them. Any batch failing
// after retries fails the whole call — no partial results are returned.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors := make([][]float32, 0, len(texts))

	for start := 0; start < len(texts); start += c.batchSize {
		if start > 0 && c.batchDelay > 0 {
			select {
			case <-time.After(c.batchDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		end := min(start+c.batchSize, len(texts))
		batch, err := c.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}

		vectors = append(vectors, batch...)
	}

	return vectors, nil
}

// Embed converts a single text into a vector embedding.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// Model returns the configured embedding model identifier.
func (c *Client) Model() string {
	return c.model
}

// Close releases resources held by the client.
func (c *Client) Close() error {
	// HTTP client doesn't require explicit cleanup
	return nil
}

// embedBatch issues one embeddings request for a single batch, retrying
// transient failures with exponential backoff.
func (c *Client) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	body, err := json.Marshal(embedRequest{
		Model: c.model,
		Input: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: marshaling request: %v", embeddings.ErrService, err)
	}

	backoff := c.retryBackoff
	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			c.logger.Debug("retrying embedding batch",
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff),
			)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			backoff = min(time.Duration(float64(backoff)*backoffMultiplier), c.backoffCap)
		}

		vectors, retryable, err := c.doEmbed(ctx, body, len(texts))
		if err == nil {
			return vectors, nil
		}

		lastErr = err
		if !retryable {
			return nil, lastErr
		}
	}

	return nil, fmt.Errorf("%w: retries exhausted: %v", embeddings.ErrService, lastErr)
}

// doEmbed performs one embeddings request. The second return value reports
// whether the failure is worth retrying (rate limit, 5xx, transport error).
func (c *Client) doEmbed(ctx context.Context, body []byte, want int) ([][]float32, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, false, fmt.Errorf("%w: creating request: %v", embeddings.ErrService, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		return nil, true, fmt.Errorf("%w: sending request: %v", embeddings.ErrService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		err := fmt.Errorf("%w: status %d: %s", embeddings.ErrService,
			resp.StatusCode, apiErrorMessage(payload))
		return nil, retryableStatus(resp.StatusCode), err
	}

	var parsed embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, false, fmt.Errorf("%w: decoding response: %v", embeddings.ErrService, err)
	}

	if len(parsed.Data) != want {
		return nil, false, fmt.Errorf("%w: got %d embeddings for %d inputs",
			embeddings.ErrService, len(parsed.Data), want)
	}

	// The API tags each embedding with its input index; place by index so
	// output order always matches input order.
	vectors := make([][]float32, want)
	for _, item := range parsed.Data {
		if item.Index < 0 || item.Index >= want {
			return nil, false, fmt.Errorf("%w: embedding index %d out of range",
				embeddings.ErrService, item.Index)
		}
		vectors[item.Index] = item.Embedding
	}

	return vectors, false, nil
}

// retryableStatus reports whether a status code indicates a transient
// condition.
func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

var _ embeddings.Embedder = (*Client)(nil)
