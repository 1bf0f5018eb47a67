package openai

import "encoding/json"

// embedRequest is the request body for OpenAI's embeddings API.
type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// embedResponse is the response from OpenAI's embeddings API.
type embedResponse struct {
	Data []embedData `json:"data"`
}

// embedData is one embedding in an embeddings response, tagged with the
// index of the input it belongs to.
type embedData struct {
	Index     int       `json:"index"`
	Embedding []float32 `json:"embedding"`
}

// apiError is OpenAI's error envelope.
type apiError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// apiErrorMessage extracts the error message from an OpenAI error payload,
// falling back to the raw body when it isn't the expected envelope.
func apiErrorMessage(payload []byte) string {
	var parsed apiError
	if err := json.Unmarshal(payload, &parsed); err == nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	return string(payload)
}
