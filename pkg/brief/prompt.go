package brief

import (
	"fmt"

	"github.com/papercomputeco/verso/pkg/utils"
)

const chatSystemInstruction = "You are a professional research assistant. Answer accurately " +
	"from the provided page context and cite it where you can. If the page does not " +
	"contain the information, say so honestly."

// responseSchema is the structured-output schema sent to providers that
// support one natively.
var responseSchema = map[string]any{
	"type": "OBJECT",
	"properties": map[string]any{
		"summary": map[string]any{"type": "STRING", "description": "Core summary of the page"},
		"keyPoints": map[string]any{
			"type":        "ARRAY",
			"items":       map[string]any{"type": "STRING"},
			"description": "Key points",
		},
		"entities": map[string]any{
			"type": "ARRAY",
			"items": map[string]any{
				"type": "OBJECT",
				"properties": map[string]any{
					"name":        map[string]any{"type": "STRING", "description": "Entity name"},
					"type":        map[string]any{"type": "STRING", "description": "Kind: person, organization, place, ..."},
					"description": map[string]any{"type": "STRING", "description": "Short description"},
				},
				"required": []string{"name", "type", "description"},
			},
		},
		"metrics": map[string]any{
			"type": "OBJECT",
			"properties": map[string]any{
				"readingTime": map[string]any{"type": "NUMBER", "description": "Estimated reading minutes"},
				"complexity":  map[string]any{"type": "STRING", "enum": []string{"Simple", "Intermediate", "Advanced"}},
				"sentiment":   map[string]any{"type": "STRING", "description": "Tone: neutral, positive, negative, ..."},
			},
			"required": []string{"readingTime", "complexity", "sentiment"},
		},
	},
	"required": []string{"summary", "keyPoints", "entities", "metrics"},
}

func buildBriefPrompt(language, pageText string) string {
	return fmt.Sprintf(`Analyze the following web page and write a research brief in %s.

Return a JSON object with exactly these fields:
{
  "summary": "core summary of the page",
  "keyPoints": ["key point", "..."],
  "entities": [{"name": "entity name", "type": "person|organization|place|concept", "description": "short description"}],
  "metrics": {"readingTime": <minutes as a number>, "complexity": "Simple|Intermediate|Advanced", "sentiment": "neutral|positive|negative|..."}
}

Content:
%s`, language, utils.Truncate(pageText, MaxInputChars))
}

func buildChatPrompt(question, pageContext string) string {
	return fmt.Sprintf("Page context: %s\n\nQuestion: %s", utils.Truncate(pageContext, MaxContextChars), question)
}
