package openai

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/oceanlabs/coursepilot/pkg/llm"
	"github.com/oceanlabs/coursepilot/pkg/sse"
)

// doneMarker is OpenAI's end-of-stream sentinel.
const doneMarker = "[DONE]"

// stream implements llm.StreamReader over an SSE response body.
type stream struct {
	body   io.ReadCloser
	reader *sse.Reader

	closeOnce sync.Once
	closeErr  error
}

func newStream(body io.ReadCloser) *stream {
	return &stream{
		body:   body,
		reader: sse.NewReader(body),
	}
}

// Recv returns the next non-empty text fragment, or io.EOF once the server
// signals the end of the stream. Fragments are whole SSE events, so a
// fragment is never cut mid-delta.
func (s *stream) Recv() (string, error) {
	for {
		ev, err := s.reader.Next()
		if err != nil {
			return "", fmt.Errorf("%w: reading stream: %v", llm.ErrService, err)
		}
		if ev == nil {
			// The server closed the stream before sending [DONE]; the
			// answer may be truncated, so report a failure rather than
			// a clean end.
			return "", fmt.Errorf("%w: stream ended without end marker", llm.ErrService)
		}
		if ev.Data == doneMarker {
			return "", io.EOF
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(ev.Data), &chunk); err != nil {
			return "", fmt.Errorf("%w: decoding stream chunk: %v", llm.ErrService, err)
		}

		if len(chunk.Choices) == 0 {
			continue
		}
		if chunk.Choices[0].Delta.Content == "" {
			// Role-only or finish-reason chunks carry no text.
			continue
		}

		return chunk.Choices[0].Delta.Content, nil
	}
}

// Close terminates the stream and closes the underlying connection.
func (s *stream) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.body.Close()
	})
	return s.closeErr
}

var _ llm.StreamReader = (*stream)(nil)
