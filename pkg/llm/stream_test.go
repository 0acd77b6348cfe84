package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func sseServer(check func(r *http.Request), frames string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer GinkgoRecover()
		check(r)
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte(frames))
	}))
}

func collect(stream StreamFunc) (string, []string, error) {
	var deltas []string
	text, err := stream(context.Background(), Request{System: "sys", Prompt: "question"}, func(d string) {
		deltas = append(deltas, d)
	})
	return text, deltas, err
}

var _ = Describe("NewStreamer", func() {
	It("returns an error for unsupported provider", func() {
		_, err := NewStreamer(Config{Provider: "bedrock", APIKey: "k"})
		Expect(err).To(MatchError(ContainSubstring("unsupported provider")))
	})

	It("falls back to ollama without a key", func() {
		stream, err := NewStreamer(Config{Provider: "openai"})
		Expect(err).NotTo(HaveOccurred())
		Expect(stream).NotTo(BeNil())
	})
})

var _ = Describe("Gemini streamer", func() {
	It("reads candidate parts from each event", func() {
		server := sseServer(func(r *http.Request) {
			Expect(r.URL.Path).To(Equal("/v1beta/models/gemini-test:streamGenerateContent"))
			Expect(r.URL.Query().Get("alt")).To(Equal("sse"))
			Expect(r.Header.Get("x-goog-api-key")).To(Equal("k"))
		}, "data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"Hel\"}]}}]}\n\n"+
			"data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"lo\"}]}}]}\n\n")
		defer server.Close()

		stream, err := NewStreamer(Config{Provider: "gemini", APIKey: "k", Model: "gemini-test", BaseURL: server.URL})
		Expect(err).NotTo(HaveOccurred())

		text, deltas, err := collect(stream)
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("Hello"))
		Expect(deltas).To(Equal([]string{"Hel", "lo"}))
	})

	It("surfaces non-200 responses", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte("denied"))
		}))
		defer server.Close()

		stream, err := NewStreamer(Config{Provider: "gemini", APIKey: "k", BaseURL: server.URL})
		Expect(err).NotTo(HaveOccurred())

		_, _, err = collect(stream)
		Expect(err).To(MatchError(ContainSubstring("status 403")))
	})
})

var _ = Describe("OpenAI streamer", func() {
	It("reads deltas until the done sentinel", func() {
		server := sseServer(func(r *http.Request) {
			Expect(r.URL.Path).To(Equal("/v1/chat/completions"))
			var req openAIRequest
			Expect(json.NewDecoder(r.Body).Decode(&req)).To(Succeed())
			Expect(req.Stream).To(BeTrue())
			Expect(req.Messages).To(HaveLen(2))
		}, "data: {\"choices\":[{\"delta\":{\"role\":\"assistant\"}}]}\n\n"+
			"data: {\"choices\":[{\"delta\":{\"content\":\"Quorum\"}}]}\n\n"+
			"data: {\"choices\":[{\"delta\":{\"content\":\" reads\"}}]}\n\n"+
			"data: [DONE]\n\n"+
			"data: {\"choices\":[{\"delta\":{\"content\":\"ignored\"}}]}\n\n")
		defer server.Close()

		stream, err := NewStreamer(Config{Provider: "openai", APIKey: "k", BaseURL: server.URL})
		Expect(err).NotTo(HaveOccurred())

		text, deltas, err := collect(stream)
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("Quorum reads"))
		Expect(deltas).To(HaveLen(2))
	})
})

var _ = Describe("Anthropic streamer", func() {
	It("reads text deltas and stops at message_stop", func() {
		server := sseServer(func(r *http.Request) {
			Expect(r.Header.Get("anthropic-version")).To(Equal("2023-06-01"))
			var req anthropicRequest
			Expect(json.NewDecoder(r.Body).Decode(&req)).To(Succeed())
			Expect(req.Stream).To(BeTrue())
			Expect(req.System).To(Equal("sys"))
		}, "event: message_start\ndata: {\"type\":\"message_start\"}\n\n"+
			"event: content_block_delta\ndata: {\"type\":\"content_block_delta\",\"delta\":{\"type\":\"text_delta\",\"text\":\"Log \"}}\n\n"+
			"event: content_block_delta\ndata: {\"type\":\"content_block_delta\",\"delta\":{\"type\":\"text_delta\",\"text\":\"matching\"}}\n\n"+
			"event: message_stop\ndata: {\"type\":\"message_stop\"}\n\n")
		defer server.Close()

		stream, err := NewStreamer(Config{Provider: "anthropic", APIKey: "k", BaseURL: server.URL})
		Expect(err).NotTo(HaveOccurred())

		text, _, err := collect(stream)
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("Log matching"))
	})

	It("surfaces in-stream errors", func() {
		server := sseServer(func(_ *http.Request) {},
			"event: error\ndata: {\"type\":\"error\",\"error\":{\"message\":\"overloaded\"}}\n\n")
		defer server.Close()

		stream, err := NewStreamer(Config{Provider: "anthropic", APIKey: "k", BaseURL: server.URL})
		Expect(err).NotTo(HaveOccurred())

		_, _, err = collect(stream)
		Expect(err).To(MatchError(ContainSubstring("overloaded")))
	})
})

var _ = Describe("Ollama streamer", func() {
	It("reads newline-delimited chunks until done", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer GinkgoRecover()
			var req ollamaChatRequest
			Expect(json.NewDecoder(r.Body).Decode(&req)).To(Succeed())
			Expect(req.Stream).To(BeTrue())

			w.Write([]byte(`{"message":{"role":"assistant","content":"Term"},"done":false}
{"message":{"role":"assistant","content":"s"},"done":false}
{"message":{"role":"assistant","content":""},"done":true}
`))
		}))
		defer server.Close()

		stream, err := NewStreamer(Config{Provider: "ollama", BaseURL: server.URL})
		Expect(err).NotTo(HaveOccurred())

		text, deltas, err := collect(stream)
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("Terms"))
		Expect(deltas).To(Equal([]string{"Term", "s"}))
	})
})
