// Package llm provides single-shot and streaming completion callers for the hosted and local
// model providers verso can generate briefs and answers with.
package llm

import (
	"context"
	"strings"
	"time"
)

const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"

	defaultTimeout = 60 * time.Second
)

// Request is one completion request.
type Request struct {
	// System is an optional system instruction.
	System string

	// Prompt is the user turn.
	Prompt string

	// JSON asks the provider for a JSON object response.
	JSON bool

	// Schema is an optional response schema. Only providers with native
	// structured output use it; the others rely on the prompt.
	Schema map[string]any
}

// CallFunc sends a request to a model and returns the raw text reply.
type CallFunc func(ctx context.Context, req Request) (string, error)

// StreamFunc sends a request and calls onDelta with each chunk of the reply
// as it arrives. It returns the full reply.
type StreamFunc func(ctx context.Context, req Request, onDelta func(string)) (string, error)

// ExtractJSON trims any prose or markdown fences surrounding the first JSON
// object in s.
func ExtractJSON(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return s
	}
	return s[start : end+1]
}

// SupportedProviders lists the provider names NewCaller accepts.
func SupportedProviders() []string {
	return []string{ProviderGemini, ProviderOpenAI, ProviderAnthropic, ProviderOllama}
}
