package rag

import "github.com/oceanlabs/coursepilot/pkg/llm"

// SystemInstructions is the fixed system prompt for answer generation.
const SystemInstructions = "You are a helpful assistant that answers questions " +
	"based on the user's course materials. Be concise and cite from the " +
	"provided context when relevant. If the context does not contain the " +
	"answer, say so instead of guessing."

// buildRequest assembles the two-message completion request: one system
// message carrying the fixed instructions plus recent history, and one user
// message carrying the retrieved context followed by the question.
func buildRequest(cfg PipelineConfig, question string, asm Assembled) llm.ChatRequest {
	system := SystemInstructions
	if asm.History != "" {
		system += "\n\nRecent conversation:\n" + asm.History
	}

	user := "Relevant course material:\n\n" + asm.Context +
		"\n\nQuestion: " + question

	temperature := cfg.Temperature
	maxTokens := cfg.MaxTokens

	req := llm.ChatRequest{
		Model: cfg.ChatModel,
		Messages: []llm.Message{
			llm.NewMessage(llm.RoleSystem, system),
			llm.NewMessage(llm.RoleUser, user),
		},
		Temperature: &temperature,
	}
	if maxTokens > 0 {
		req.MaxTokens = &maxTokens
	}

	return req
}
