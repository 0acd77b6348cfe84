package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	ResponseMimeType string         `json:"responseMimeType,omitempty"`
	ResponseSchema   map[string]any `json:"responseSchema,omitempty"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	Contents          []geminiContent         `json:"contents"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func newGeminiCaller(client *http.Client, apiKey, model, baseURL string) CallFunc {
	return func(ctx context.Context, req Request) (string, error) {
		body := newGeminiRequest(req)
		url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", baseURL, model)
		headers := map[string]string{"x-goog-api-key": apiKey}

		var result geminiResponse
		if err := postJSON(ctx, client, ProviderGemini, url, headers, body, &result); err != nil {
			return "", err
		}

		if result.Error != nil {
			return "", fmt.Errorf("gemini error: %s", result.Error.Message)
		}
		if len(result.Candidates) == 0 {
			return "", errors.New("gemini returned no candidates")
		}

		return result.text(), nil
	}
}

func newGeminiRequest(req Request) geminiRequest {
	body := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: req.Prompt}}},
		},
	}
	if req.System != "" {
		body.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.System}}}
	}
	if req.JSON {
		body.GenerationConfig = &geminiGenerationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   req.Schema,
		}
	}
	return body
}

// text concatenates the parts of the first candidate.
func (r geminiResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var text strings.Builder
	for _, part := range r.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	return text.String()
}
