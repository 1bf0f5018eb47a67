package rag_test

import (
	"fmt"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/oceanlabs/coursepilot/pkg/corpus"
	"github.com/oceanlabs/coursepilot/pkg/llm"
	"github.com/oceanlabs/coursepilot/pkg/rag"
	"github.com/oceanlabs/coursepilot/pkg/vector"
)

func ranked(texts ...string) []vector.RankedResult {
	results := make([]vector.RankedResult, len(texts))
	for i, t := range texts {
		results[i] = vector.RankedResult{
			Entry: vector.Entry{Chunk: corpus.Chunk{Text: t}},
			Score: 1 - float64(i)*0.1,
		}
	}
	return results
}

func turn(role, content string) rag.Turn {
	return rag.Turn{Role: role, Content: content}
}

var _ = Describe("Assemble", func() {
	It("joins chunks in ranked order with the separator", func() {
		asm := rag.Assemble(ranked("first", "second", "third"), nil, 4, 6000)
		Expect(asm.Context).To(Equal("first" + rag.ChunkSeparator + "second" + rag.ChunkSeparator + "third"))
	})

	It("returns an empty context for no results", func() {
		asm := rag.Assemble(nil, nil, 4, 6000)
		Expect(asm.Context).To(BeEmpty())
	})

	It("stops adding chunks once the word budget is spent", func() {
		five := "one two three four five"
		asm := rag.Assemble(ranked(five, five, five), nil, 4, 12)
		Expect(strings.Count(asm.Context, rag.ChunkSeparator)).To(Equal(1))
	})

	It("always includes the top chunk even when it exceeds the budget", func() {
		long := strings.Repeat("word ", 100)
		asm := rag.Assemble(ranked(strings.TrimSpace(long)), nil, 4, 10)
		Expect(asm.Context).NotTo(BeEmpty())
	})

	It("skips empty chunk texts", func() {
		asm := rag.Assemble(ranked("", "real"), nil, 4, 6000)
		Expect(asm.Context).To(Equal("real"))
	})

	It("formats history turns oldest first", func() {
		recent := []rag.Turn{
			turn(llm.RoleUser, "what is X?"),
			turn(llm.RoleAssistant, "X is a thing."),
		}

		asm := rag.Assemble(nil, recent, 4, 6000)
		Expect(asm.History).To(Equal("User: what is X?\nAssistant: X is a thing."))
	})

	It("keeps only the most recent turns within the window", func() {
		var recent []rag.Turn
		for i := 0; i < 6; i++ {
			recent = append(recent, turn(llm.RoleUser, fmt.Sprintf("q%d", i)))
		}

		asm := rag.Assemble(nil, recent, 2, 6000)
		Expect(asm.History).To(Equal("User: q4\nUser: q5"))
	})

	It("returns an empty history for a fresh conversation", func() {
		asm := rag.Assemble(nil, nil, 4, 6000)
		Expect(asm.History).To(BeEmpty())
	})
})
