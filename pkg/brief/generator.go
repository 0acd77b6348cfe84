package brief

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/papercomputeco/verso/pkg/llm"
	"github.com/papercomputeco/verso/pkg/logger"
)

// Generator produces a Brief from page text.
type Generator interface {
	Generate(ctx context.Context, pageText string) (*Brief, error)
}

// Chatter answers a question using page text as context.
type Chatter interface {
	Ask(ctx context.Context, question, pageContext string) (string, error)
}

// StreamChatter is a Chatter that can deliver its answer incrementally.
type StreamChatter interface {
	Chatter
	AskStream(ctx context.Context, question, pageContext string, onDelta func(string)) (string, error)
}

// Config configures an Assistant.
type Config struct {
	// Call is the model caller. Required.
	Call llm.CallFunc

	// Stream is used by AskStream. Without it AskStream delivers the whole
	// answer as one delta.
	Stream llm.StreamFunc

	// Language the brief is written in. Defaults to "the language of the page".
	Language string

	Logger *slog.Logger
}

// Assistant is the llm-backed Generator and Chatter.
type Assistant struct {
	call     llm.CallFunc
	stream   llm.StreamFunc
	language string
	logger   *slog.Logger
}

var (
	_ Generator     = (*Assistant)(nil)
	_ Chatter       = (*Assistant)(nil)
	_ StreamChatter = (*Assistant)(nil)
)

// NewAssistant creates an Assistant.
func NewAssistant(cfg Config) (*Assistant, error) {
	if cfg.Call == nil {
		return nil, errors.New("llm caller is required")
	}

	a := &Assistant{
		call:     cfg.Call,
		stream:   cfg.Stream,
		language: cfg.Language,
		logger:   cfg.Logger,
	}
	if a.language == "" {
		a.language = "the language of the page"
	}
	if a.logger == nil {
		a.logger = logger.Nop()
	}

	return a, nil
}

// Generate asks the model for a brief of pageText. Text of MinTextLength
// characters or fewer yields ErrTextTooShort without calling the model.
func (a *Assistant) Generate(ctx context.Context, pageText string) (*Brief, error) {
	if utf8.RuneCountInString(pageText) <= MinTextLength {
		return nil, ErrTextTooShort
	}

	raw, err := a.call(ctx, llm.Request{
		Prompt: buildBriefPrompt(a.language, pageText),
		JSON:   true,
		Schema: responseSchema,
	})
	if err != nil {
		return nil, fmt.Errorf("generating brief: %w", err)
	}

	b, err := ParseBrief(raw)
	if err != nil {
		a.logger.Warn("model returned an unusable brief", "error", err)
		return nil, err
	}

	a.logger.Debug("brief generated",
		"key_points", len(b.KeyPoints),
		"entities", len(b.Entities),
		"complexity", string(b.Metrics.Complexity),
	)

	return b, nil
}

// Ask answers question from pageContext.
func (a *Assistant) Ask(ctx context.Context, question, pageContext string) (string, error) {
	if question == "" {
		return "", errors.New("question is required")
	}

	answer, err := a.call(ctx, llm.Request{
		System: chatSystemInstruction,
		Prompt: buildChatPrompt(question, pageContext),
	})
	if err != nil {
		return "", fmt.Errorf("asking model: %w", err)
	}

	return answer, nil
}

// AskStream is Ask with the answer passed to onDelta as it is generated.
func (a *Assistant) AskStream(ctx context.Context, question, pageContext string, onDelta func(string)) (string, error) {
	if a.stream == nil {
		answer, err := a.Ask(ctx, question, pageContext)
		if err == nil && onDelta != nil {
			onDelta(answer)
		}
		return answer, err
	}

	if question == "" {
		return "", errors.New("question is required")
	}

	answer, err := a.stream(ctx, llm.Request{
		System: chatSystemInstruction,
		Prompt: buildChatPrompt(question, pageContext),
	}, onDelta)
	if err != nil {
		return answer, fmt.Errorf("asking model: %w", err)
	}

	return answer, nil
}

// ParseBrief decodes a model reply, tolerating prose or code fences around the
// JSON object. A brief without a summary is rejected.
func ParseBrief(raw string) (*Brief, error) {
	var b Brief
	if err := json.Unmarshal([]byte(llm.ExtractJSON(raw)), &b); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedBrief, err)
	}

	if b.Summary == "" {
		return nil, fmt.Errorf("%w: missing summary", ErrMalformedBrief)
	}
	if b.KeyPoints == nil {
		b.KeyPoints = []string{}
	}
	if b.Entities == nil {
		b.Entities = []Entity{}
	}

	return &b, nil
}
