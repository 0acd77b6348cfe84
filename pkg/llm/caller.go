package llm

import (
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/papercomputeco/verso/pkg/logger"
)

// Config holds configuration for creating a CallFunc or StreamFunc.
type Config struct {
	Provider string // "gemini", "openai", "anthropic" or "ollama"
	Model    string // e.g. "gemini-2.5-flash", "gpt-4o-mini"
	APIKey   string
	BaseURL  string // override base URL

	// HTTPClient defaults to a client with a 60s timeout.
	HTTPClient *http.Client

	Logger *slog.Logger
}

// endpoint is a Config with provider fallback and defaults applied.
type endpoint struct {
	provider string
	model    string
	apiKey   string
	baseURL  string
	client   *http.Client
}

var defaultModels = map[string]string{
	ProviderGemini:    "gemini-2.5-flash",
	ProviderOpenAI:    "gpt-4o-mini",
	ProviderAnthropic: "claude-haiku-4-5-20251001",
	ProviderOllama:    "llama3.2",
}

var defaultBaseURLs = map[string]string{
	ProviderGemini:    "https://generativelanguage.googleapis.com",
	ProviderOpenAI:    "https://api.openai.com",
	ProviderAnthropic: "https://api.anthropic.com",
	ProviderOllama:    "http://localhost:11434",
}

// resolve applies defaults to cfg. When a keyed provider has no API key, it
// falls back to a local ollama.
func resolve(cfg Config) (endpoint, error) {
	provider := strings.ToLower(cfg.Provider)
	if provider == "" {
		provider = ProviderGemini
	}
	if !slices.Contains(SupportedProviders(), provider) {
		return endpoint{}, fmt.Errorf("unsupported provider: %s", provider)
	}

	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	ep := endpoint{
		provider: provider,
		model:    cfg.Model,
		apiKey:   cfg.APIKey,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		client:   cfg.HTTPClient,
	}
	if ep.client == nil {
		ep.client = &http.Client{Timeout: defaultTimeout}
	}

	if ep.apiKey == "" && provider != ProviderOllama {
		log.Warn("no API key found, falling back to ollama", "provider", provider)
		ep.provider = ProviderOllama
		ep.model = ""
		ep.baseURL = ""
	}

	ep.model = or(ep.model, defaultModels[ep.provider])
	ep.baseURL = or(ep.baseURL, defaultBaseURLs[ep.provider])
	return ep, nil
}

// NewCaller creates a CallFunc for the configured provider.
func NewCaller(cfg Config) (CallFunc, error) {
	ep, err := resolve(cfg)
	if err != nil {
		return nil, err
	}

	switch ep.provider {
	case ProviderGemini:
		return newGeminiCaller(ep.client, ep.apiKey, ep.model, ep.baseURL), nil
	case ProviderOpenAI:
		return newOpenAICaller(ep.client, ep.apiKey, ep.model, ep.baseURL), nil
	case ProviderAnthropic:
		return newAnthropicCaller(ep.client, ep.apiKey, ep.model, ep.baseURL), nil
	default:
		return newOllamaCaller(ep.client, ep.model, ep.baseURL), nil
	}
}

// NewStreamer creates a StreamFunc for the configured provider.
func NewStreamer(cfg Config) (StreamFunc, error) {
	ep, err := resolve(cfg)
	if err != nil {
		return nil, err
	}

	switch ep.provider {
	case ProviderGemini:
		return newGeminiStreamer(ep.client, ep.apiKey, ep.model, ep.baseURL), nil
	case ProviderOpenAI:
		return newOpenAIStreamer(ep.client, ep.apiKey, ep.model, ep.baseURL), nil
	case ProviderAnthropic:
		return newAnthropicStreamer(ep.client, ep.apiKey, ep.model, ep.baseURL), nil
	default:
		return newOllamaStreamer(ep.client, ep.model, ep.baseURL), nil
	}
}

func or(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
