// Package api provides an HTTP API server for asking questions and managing
// the course material index.
package api

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8275")
	ListenAddr string

	// CorpusDir is the directory scanned by the index build endpoint when
	// the request does not name one.
	CorpusDir string
}
