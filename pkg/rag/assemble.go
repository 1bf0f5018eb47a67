package rag

import (
	"strings"

	"github.com/oceanlabs/coursepilot/pkg/llm"
	"github.com/oceanlabs/coursepilot/pkg/vector"
)

const (
	// ChunkSeparator delimits retrieved chunks inside the assembled
	// context. Chunks appear in ranked order, signaling descending
	// relevance to the model.
	ChunkSeparator = "\n\n---\n\n"

	// DefaultHistoryTurns is the default recent-history window.
	DefaultHistoryTurns = 4

	// DefaultContextWords bounds the assembled context size.
	DefaultContextWords = 6000
)

// Assembled is the context block and history block ready for prompting.
type Assembled struct {
	// Context holds the retrieved chunk texts in ranked order, joined with
	// ChunkSeparator and bounded by the word budget. Empty when nothing
	// was retrieved — callers short-circuit instead of prompting.
	Context string

	// History holds the recent turns formatted as "<Role>: <content>"
	// lines, oldest first. Empty when the conversation is fresh.
	History string
}

// Assemble builds the bounded context and history blocks for one query.
// Chunks are added in ranked order until the word budget is spent; the top
// chunk is always included even when it alone exceeds the budget.
func Assemble(results []vector.RankedResult, recent []Turn, maxTurns, contextWords int) Assembled {
	if maxTurns < 0 {
		maxTurns = DefaultHistoryTurns
	}
	if contextWords <= 0 {
		contextWords = DefaultContextWords
	}

	return Assembled{
		Context: assembleContext(results, contextWords),
		History: assembleHistory(recent, maxTurns),
	}
}

func assembleContext(results []vector.RankedResult, budget int) string {
	var parts []string
	words := 0

	for _, r := range results {
		text := r.Entry.Chunk.Text
		if text == "" {
			continue
		}

		n := len(strings.Fields(text))
		if len(parts) > 0 && words+n > budget {
			break
		}

		parts = append(parts, text)
		words += n
	}

	return strings.Join(parts, ChunkSeparator)
}

func assembleHistory(recent []Turn, maxTurns int) string {
	if maxTurns < len(recent) {
		recent = recent[len(recent)-maxTurns:]
	}

	lines := make([]string, 0, len(recent))
	for _, t := range recent {
		if t.Content == "" {
			continue
		}
		lines = append(lines, formatRole(t.Role)+": "+t.Content)
	}

	return strings.Join(lines, "\n")
}

func formatRole(role string) string {
	switch role {
	case llm.RoleUser:
		return "User"
	case llm.RoleAssistant:
		return "Assistant"
	case "":
		return "User"
	}
	return strings.ToUpper(role[:1]) + role[1:]
}
