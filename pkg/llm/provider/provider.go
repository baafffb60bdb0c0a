// Package provider constructs LLM adapters for the supported backends.
package provider

import (
	"fmt"

	"langops/pkg/llm"
	"langops/pkg/llm/provider/anthropic"
	"langops/pkg/llm/provider/google"
	"langops/pkg/llm/provider/ollama"
	"langops/pkg/llm/provider/openai"
)

// Provider name constants. The set of supported providers is closed.
const (
	NameAnthropic = "anthropic"
	NameOpenAI    = "openai"
	NameGoogle    = "google"
	NameOllama    = "ollama"
)

// Config carries the credentials and endpoints the factory may need.
// Only the selected provider's entry has to be populated.
type Config struct {
	AnthropicAPIKey string
	OpenAIAPIKey    string
	GoogleAPIKey    string
	OllamaHost      string
}

// New returns an adapter for the named provider and model. Unknown provider
// names and missing credentials are reported at construction time, before
// any request is sent.
func New(name, model string, cfg Config) (llm.Adapter, error) {
	switch name {
	case NameAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("anthropic provider requires an API key")
		}
		return anthropic.New(cfg.AnthropicAPIKey, model), nil
	case NameOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("openai provider requires an API key")
		}
		return openai.New(cfg.OpenAIAPIKey, model), nil
	case NameGoogle:
		if cfg.GoogleAPIKey == "" {
			return nil, fmt.Errorf("google provider requires an API key")
		}
		return google.New(cfg.GoogleAPIKey, model), nil
	case NameOllama:
		return ollama.New(cfg.OllamaHost, model), nil
	default:
		return nil, fmt.Errorf("unknown provider %q (supported: anthropic, openai, google, ollama)", name)
	}
}
