package llm

import (
	"context"
	"fmt"
	"net/http"
)

type ollamaChatRequest struct {
	Model    string              `json:"model"`
	Messages []ollamaChatMessage `json:"messages"`
	Stream   bool                `json:"stream"`
	Format   string              `json:"format,omitempty"`
}

type ollamaChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatResponse struct {
	Message ollamaChatMessage `json:"message"`
	Done    bool              `json:"done"`
	Error   string            `json:"error"`
}

func newOllamaCaller(client *http.Client, model, baseURL string) CallFunc {
	return func(ctx context.Context, req Request) (string, error) {
		body := newOllamaRequest(model, req)

		var result ollamaChatResponse
		if err := postJSON(ctx, client, ProviderOllama, baseURL+"/api/chat", nil, body, &result); err != nil {
			return "", err
		}

		if result.Error != "" {
			return "", fmt.Errorf("ollama error: %s", result.Error)
		}

		return result.Message.Content, nil
	}
}

func newOllamaRequest(model string, req Request) ollamaChatRequest {
	body := ollamaChatRequest{Model: model}
	if req.System != "" {
		body.Messages = append(body.Messages, ollamaChatMessage{Role: "system", Content: req.System})
	}
	body.Messages = append(body.Messages, ollamaChatMessage{Role: "user", Content: req.Prompt})
	if req.JSON {
		body.Format = "json"
	}
	return body
}
