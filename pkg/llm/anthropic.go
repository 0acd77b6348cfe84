package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

const anthropicMaxTokens = 2048

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
	Stream    bool               `json:"stream,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func newAnthropicCaller(client *http.Client, apiKey, model, baseURL string) CallFunc {
	return func(ctx context.Context, req Request) (string, error) {
		body := newAnthropicRequest(model, req)
		headers := anthropicHeaders(apiKey)

		var result anthropicResponse
		if err := postJSON(ctx, client, ProviderAnthropic, baseURL+"/v1/messages", headers, body, &result); err != nil {
			return "", err
		}

		if result.Error != nil {
			return "", fmt.Errorf("anthropic error: %s", result.Error.Message)
		}
		if len(result.Content) == 0 {
			return "", errors.New("anthropic returned no content")
		}

		return result.Content[0].Text, nil
	}
}

func newAnthropicRequest(model string, req Request) anthropicRequest {
	prompt := req.Prompt
	if req.JSON {
		prompt += "\n\nReturn ONLY valid JSON, no markdown or extra text."
	}

	return anthropicRequest{
		Model:     model,
		MaxTokens: anthropicMaxTokens,
		System:    req.System,
		Messages:  []anthropicMessage{{Role: "user", Content: prompt}},
	}
}

func anthropicHeaders(apiKey string) map[string]string {
	return map[string]string{
		"x-api-key":         apiKey,
		"anthropic-version": "2023-06-01",
	}
}
