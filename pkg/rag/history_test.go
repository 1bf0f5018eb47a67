package rag_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/oceanlabs/coursepilot/pkg/kv/inmemory"
	"github.com/oceanlabs/coursepilot/pkg/llm"
	"github.com/oceanlabs/coursepilot/pkg/rag"
)

var _ = Describe("HistoryStore", func() {
	var (
		store *rag.HistoryStore
		ctx   context.Context
	)

	stamped := func(role, content string) rag.Turn {
		return rag.Turn{Role: role, Content: content, Timestamp: time.Now().UTC()}
	}

	BeforeEach(func() {
		store = rag.NewHistoryStore(inmemory.NewDriver(), zap.NewNop())
		ctx = context.Background()
	})

	It("returns an empty history with a session id when nothing is stored", func() {
		history, err := store.Load(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(history.SessionID).NotTo(BeEmpty())
		Expect(history.Turns).To(BeEmpty())
	})

	It("appends turns in order and keeps the session id stable", func() {
		Expect(store.Append(ctx, stamped(llm.RoleUser, "q1"), stamped(llm.RoleAssistant, "a1"))).To(Succeed())

		first, err := store.Load(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(first.Turns).To(HaveLen(2))

		Expect(store.Append(ctx, stamped(llm.RoleUser, "q2"))).To(Succeed())

		second, err := store.Load(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(second.SessionID).To(Equal(first.SessionID))
		Expect(second.Turns).To(HaveLen(3))
		Expect(second.Turns[2].Content).To(Equal("q2"))
	})

	It("returns the last n turns oldest first", func() {
		Expect(store.Append(ctx,
			stamped(llm.RoleUser, "q1"),
			stamped(llm.RoleAssistant, "a1"),
			stamped(llm.RoleUser, "q2"),
			stamped(llm.RoleAssistant, "a2"),
		)).To(Succeed())

		recent, err := store.Recent(ctx, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(recent).To(HaveLen(2))
		Expect(recent[0].Content).To(Equal("q2"))
		Expect(recent[1].Content).To(Equal("a2"))
	})

	It("returns nothing for a window of zero", func() {
		Expect(store.Append(ctx, stamped(llm.RoleUser, "q"))).To(Succeed())

		recent, err := store.Recent(ctx, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(recent).To(BeEmpty())
	})

	It("starts a fresh session after Clear", func() {
		Expect(store.Append(ctx, stamped(llm.RoleUser, "q"))).To(Succeed())

		before, err := store.Load(ctx)
		Expect(err).NotTo(HaveOccurred())

		Expect(store.Clear(ctx)).To(Succeed())

		after, err := store.Load(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(after.Turns).To(BeEmpty())
		Expect(after.SessionID).NotTo(Equal(before.SessionID))
	})
})
