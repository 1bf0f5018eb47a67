package openai_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/oceanlabs/coursepilot/pkg/llm"
	"github.com/oceanlabs/coursepilot/pkg/llm/openai"
)

func TestOpenAI(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "OpenAI Chat Suite")
}

var _ = Describe("Client", func() {
	newClient := func(url string) *openai.Client {
		c, err := openai.NewClient(openai.Config{
			APIKey:  "test-key",
			BaseURL: url,
		}, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())
		return c
	}

	request := func() llm.ChatRequest {
		return llm.ChatRequest{
			Model: "gpt-4o",
			Messages: []llm.Message{
				llm.NewMessage(llm.RoleSystem, "be helpful"),
				llm.NewMessage(llm.RoleUser, "hello"),
			},
		}
	}

	It("fails fast without a credential", func() {
		_, err := openai.NewClient(openai.Config{}, zap.NewNop())
		Expect(err).To(MatchError(llm.ErrNoCredential))
	})

	Describe("Complete", func() {
		It("parses the answer, stop reason, and usage", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = fmt.Fprint(w, `{
					"model": "gpt-4o",
					"created": 1700000000,
					"choices": [{"message": {"role": "assistant", "content": "hi there"}, "finish_reason": "stop"}],
					"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
				}`)
			}))
			defer server.Close()

			resp, err := newClient(server.URL).Complete(context.Background(), request())
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Message.Content).To(Equal("hi there"))
			Expect(resp.Message.Role).To(Equal(llm.RoleAssistant))
			Expect(resp.StopReason).To(Equal("stop"))
			Expect(resp.Usage).NotTo(BeNil())
			Expect(resp.Usage.TotalTokens).To(Equal(15))
		})

		It("sends messages, model, and credential on the wire", func() {
			var got map[string]any
			var auth string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				auth = r.Header.Get("Authorization")
				body, _ := io.ReadAll(r.Body)
				_ = json.Unmarshal(body, &got)
				_, _ = fmt.Fprint(w, `{"choices":[{"message":{"content":"ok"}}]}`)
			}))
			defer server.Close()

			_, err := newClient(server.URL).Complete(context.Background(), request())
			Expect(err).NotTo(HaveOccurred())
			Expect(auth).To(Equal("Bearer test-key"))
			Expect(got["model"]).To(Equal("gpt-4o"))
			Expect(got["messages"]).To(HaveLen(2))
			Expect(got).NotTo(HaveKey("stream"))
		})

		It("maps non-success responses to ErrService without retrying", func() {
			var calls int
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = fmt.Fprint(w, `{"error":{"message":"upstream exploded"}}`)
			}))
			defer server.Close()

			_, err := newClient(server.URL).Complete(context.Background(), request())
			Expect(err).To(MatchError(llm.ErrService))
			Expect(err.Error()).To(ContainSubstring("upstream exploded"))
			Expect(calls).To(Equal(1))
		})

		It("fails when the response has no choices", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = fmt.Fprint(w, `{"choices":[]}`)
			}))
			defer server.Close()

			_, err := newClient(server.URL).Complete(context.Background(), request())
			Expect(err).To(MatchError(llm.ErrService))
		})
	})

	Describe("Stream", func() {
		sseChunk := func(content string) string {
			return fmt.Sprintf("data: {\"choices\":[{\"delta\":{\"content\":%q}}]}\n\n", content)
		}

		It("yields fragments in order and EOF at the done marker", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				var got map[string]any
				body, _ := io.ReadAll(r.Body)
				_ = json.Unmarshal(body, &got)
				Expect(got["stream"]).To(Equal(true))

				w.Header().Set("Content-Type", "text/event-stream")
				_, _ = fmt.Fprint(w, sseChunk("Hel"))
				_, _ = fmt.Fprint(w, sseChunk("lo "))
				_, _ = fmt.Fprint(w, sseChunk("world"))
				_, _ = fmt.Fprint(w, "data: [DONE]\n\n")
			}))
			defer server.Close()

			reader, err := newClient(server.URL).Stream(context.Background(), request())
			Expect(err).NotTo(HaveOccurred())
			defer reader.Close()

			var fragments []string
			for {
				fragment, err := reader.Recv()
				if err == io.EOF {
					break
				}
				Expect(err).NotTo(HaveOccurred())
				fragments = append(fragments, fragment)
			}

			Expect(fragments).To(Equal([]string{"Hel", "lo ", "world"}))
		})

		It("skips role-only and empty-delta chunks", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"role\":\"assistant\"}}]}\n\n")
				_, _ = fmt.Fprint(w, sseChunk("text"))
				_, _ = fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{},\"finish_reason\":\"stop\"}]}\n\n")
				_, _ = fmt.Fprint(w, "data: [DONE]\n\n")
			}))
			defer server.Close()

			reader, err := newClient(server.URL).Stream(context.Background(), request())
			Expect(err).NotTo(HaveOccurred())
			defer reader.Close()

			fragment, err := reader.Recv()
			Expect(err).NotTo(HaveOccurred())
			Expect(fragment).To(Equal("text"))

			_, err = reader.Recv()
			Expect(err).To(Equal(io.EOF))
		})

		It("reports a stream that ends without a done marker as a failure", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = fmt.Fprint(w, sseChunk("partial"))
			}))
			defer server.Close()

			reader, err := newClient(server.URL).Stream(context.Background(), request())
			Expect(err).NotTo(HaveOccurred())
			defer reader.Close()

			fragment, err := reader.Recv()
			Expect(err).NotTo(HaveOccurred())
			Expect(fragment).To(Equal("partial"))

			_, err = reader.Recv()
			Expect(err).To(MatchError(llm.ErrService))
			Expect(err.Error()).To(ContainSubstring("without end marker"))
		})

		It("surfaces non-success responses before any fragment", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = fmt.Fprint(w, `{"error":{"message":"slow down"}}`)
			}))
			defer server.Close()

			_, err := newClient(server.URL).Stream(context.Background(), request())
			Expect(err).To(MatchError(llm.ErrService))
		})

		It("tolerates closing twice", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = fmt.Fprint(w, "data: [DONE]\n\n")
			}))
			defer server.Close()

			reader, err := newClient(server.URL).Stream(context.Background(), request())
			Expect(err).NotTo(HaveOccurred())
			Expect(reader.Close()).To(Succeed())
			Expect(reader.Close()).To(Succeed())
		})
	})
})
