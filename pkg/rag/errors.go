package rag

import "errors"

// ErrNoContext is returned internally when ranking produced nothing to
// ground an answer in. Like vector.ErrNotBuilt it is a defined outcome:
// the pipeline maps it to a user-facing message and never calls the
// completion API with an empty context.
var ErrNoContext = errors.New("no relevant context")

// Fixed user-facing outcomes for the defined non-answer states.
const (
	// NoIndexMessage is returned when a question arrives before any
	// course material has been indexed.
	NoIndexMessage = `No course material has been indexed yet. Run "coursepilot index --corpus <dir>" first.`

	// NoContextMessage is returned when retrieval found nothing relevant.
	NoContextMessage = "I couldn't find anything relevant to that question in the indexed course material."
)
