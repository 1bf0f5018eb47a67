package embeddings

import "errors"

var (
	// ErrNoCredential is returned before any network call when no API key
	// is configured.
	ErrNoCredential = errors.New("no API credential configured (set OPENAI_API_KEY or add it to .env)")

	// ErrService is returned when the embeddings endpoint fails after
	// retries are exhausted, or with a non-retryable status.
	ErrService = errors.New("embedding service failed")
)
