package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/papercomputeco/verso/pkg/sse"
)

// readSSE feeds every data payload of body to handle until the stream ends,
// handle reports done, or the sentinel arrives.
func readSSE(body io.Reader, handle func(ev *sse.Event) (done bool, err error)) error {
	r := sse.NewReader(body)
	for {
		ev, err := r.Next()
		if err != nil {
			return err
		}
		if ev == nil || ev.Done() {
			return nil
		}
		if ev.Data == "" {
			continue
		}

		done, err := handle(ev)
		if err != nil || done {
			return err
		}
	}
}

func emit(text *strings.Builder, onDelta func(string), delta string) {
	if delta == "" {
		return
	}
	text.WriteString(delta)
	if onDelta != nil {
		onDelta(delta)
	}
}

func newGeminiStreamer(client *http.Client, apiKey, model, baseURL string) StreamFunc {
	return func(ctx context.Context, req Request, onDelta func(string)) (string, error) {
		url := fmt.Sprintf("%s/v1beta/models/%s:streamGenerateContent?alt=sse", baseURL, model)
		headers := map[string]string{"x-goog-api-key": apiKey}

		body, err := openStream(ctx, client, ProviderGemini, url, headers, newGeminiRequest(req))
		if err != nil {
			return "", err
		}
		defer body.Close()

		var text strings.Builder
		err = readSSE(body, func(ev *sse.Event) (bool, error) {
			var chunk geminiResponse
			if err := json.Unmarshal([]byte(ev.Data), &chunk); err != nil {
				return false, fmt.Errorf("unmarshal gemini chunk: %w", err)
			}
			if chunk.Error != nil {
				return false, fmt.Errorf("gemini error: %s", chunk.Error.Message)
			}
			emit(&text, onDelta, chunk.text())
			return false, nil
		})
		return text.String(), err
	}
}

type openAIStreamChunk struct {
	Choices []struct {
		Delta openAIMessage `json:"delta"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func newOpenAIStreamer(client *http.Client, apiKey, model, baseURL string) StreamFunc {
	return func(ctx context.Context, req Request, onDelta func(string)) (string, error) {
		payload := newOpenAIRequest(model, req)
		payload.Stream = true
		headers := map[string]string{"Authorization": "Bearer " + apiKey}

		body, err := openStream(ctx, client, ProviderOpenAI, baseURL+"/v1/chat/completions", headers, payload)
		if err != nil {
			return "", err
		}
		defer body.Close()

		var text strings.Builder
		err = readSSE(body, func(ev *sse.Event) (bool, error) {
			var chunk openAIStreamChunk
			if err := json.Unmarshal([]byte(ev.Data), &chunk); err != nil {
				return false, fmt.Errorf("unmarshal openai chunk: %w", err)
			}
			if chunk.Error != nil {
				return false, fmt.Errorf("openai error: %s", chunk.Error.Message)
			}
			for _, choice := range chunk.Choices {
				emit(&text, onDelta, choice.Delta.Content)
			}
			return false, nil
		})
		return text.String(), err
	}
}

type anthropicStreamEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func newAnthropicStreamer(client *http.Client, apiKey, model, baseURL string) StreamFunc {
	return func(ctx context.Context, req Request, onDelta func(string)) (string, error) {
		payload := newAnthropicRequest(model, req)
		payload.Stream = true

		body, err := openStream(ctx, client, ProviderAnthropic, baseURL+"/v1/messages", anthropicHeaders(apiKey), payload)
		if err != nil {
			return "", err
		}
		defer body.Close()

		var text strings.Builder
		err = readSSE(body, func(ev *sse.Event) (bool, error) {
			var event anthropicStreamEvent
			if err := json.Unmarshal([]byte(ev.Data), &event); err != nil {
				return false, fmt.Errorf("unmarshal anthropic event: %w", err)
			}
			switch event.Type {
			case "content_block_delta":
				if event.Delta.Type == "text_delta" {
					emit(&text, onDelta, event.Delta.Text)
				}
			case "error":
				msg := "unknown error"
				if event.Error != nil {
					msg = event.Error.Message
				}
				return false, fmt.Errorf("anthropic error: %s", msg)
			case "message_stop":
				return true, nil
			}
			return false, nil
		})
		return text.String(), err
	}
}

// newOllamaStreamer reads ollama's newline-delimited JSON stream.
func newOllamaStreamer(client *http.Client, model, baseURL string) StreamFunc {
	return func(ctx context.Context, req Request, onDelta func(string)) (string, error) {
		payload := newOllamaRequest(model, req)
		payload.Stream = true

		body, err := openStream(ctx, client, ProviderOllama, baseURL+"/api/chat", nil, payload)
		if err != nil {
			return "", err
		}
		defer body.Close()

		var text strings.Builder
		dec := json.NewDecoder(body)
		for {
			var chunk ollamaChatResponse
			err := dec.Decode(&chunk)
			if errors.Is(err, io.EOF) {
				return text.String(), nil
			}
			if err != nil {
				return text.String(), fmt.Errorf("decode ollama chunk: %w", err)
			}
			if chunk.Error != "" {
				return text.String(), fmt.Errorf("ollama error: %s", chunk.Error)
			}
			emit(&text, onDelta, chunk.Message.Content)
			if chunk.Done {
				return text.String(), nil
			}
		}
	}
}
