package llm

import (
	"context"
	"errors"
)

var (
	// ErrNoCredential is returned before any network call when no API key
	// is configured.
	ErrNoCredential = errors.New("no API credential configured (set OPENAI_API_KEY or add it to .env)")

	// ErrService is returned when the chat-completions endpoint fails.
	// Completions are never retried internally: silently repeating a
	// generation is not cost-safe, so retries belong to the caller.
	ErrService = errors.New("answer service failed")
)

// Completer produces chat completions.
type Completer interface {
	// Complete sends the request and blocks until the full answer and its
	// usage metadata are available.
	Complete(ctx context.Context, req ChatRequest) (*ChatResponse, error)

	// Stream sends the request and returns a stream of incremental answer
	// fragments. The stream is finite and non-restartable; the caller must
	// Close it when done consuming.
	Stream(ctx context.Context, req ChatRequest) (StreamReader, error)

	// Close releases any resources held by the completer.
	Close() error
}

// StreamReader yields the incremental text fragments of one streamed
// completion. Each fragment is a complete, appendable text unit.
type StreamReader interface {
	// Recv returns the next fragment, or io.EOF once the server signals the
	// end of the stream.
	Recv() (string, error)

	// Close terminates the stream early and closes the underlying
	// connection. Close is idempotent and safe after Recv returned io.EOF.
	Close() error
}
