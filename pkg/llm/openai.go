package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

type openAIRequest struct {
	Model          string            `json:"model"`
	Messages       []openAIMessage   `json:"messages"`
	ResponseFormat *openAIRespFormat `json:"response_format,omitempty"`
	Stream         bool              `json:"stream,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRespFormat struct {
	Type string `json:"type"`
}

type openAIResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func newOpenAICaller(client *http.Client, apiKey, model, baseURL string) CallFunc {
	return func(ctx context.Context, req Request) (string, error) {
		body := newOpenAIRequest(model, req)
		headers := map[string]string{"Authorization": "Bearer " + apiKey}

		var result openAIResponse
		if err := postJSON(ctx, client, ProviderOpenAI, baseURL+"/v1/chat/completions", headers, body, &result); err != nil {
			return "", err
		}

		if result.Error != nil {
			return "", fmt.Errorf("openai error: %s", result.Error.Message)
		}
		if len(result.Choices) == 0 {
			return "", errors.New("openai returned no choices")
		}

		return result.Choices[0].Message.Content, nil
	}
}

func newOpenAIRequest(model string, req Request) openAIRequest {
	body := openAIRequest{Model: model}
	if req.System != "" {
		body.Messages = append(body.Messages, openAIMessage{Role: "system", Content: req.System})
	}
	body.Messages = append(body.Messages, openAIMessage{Role: "user", Content: req.Prompt})
	if req.JSON {
		body.ResponseFormat = &openAIRespFormat{Type: "json_object"}
	}
	return body
}
