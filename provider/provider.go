package provider

import (
	"context"
	"errors"

	"github.com/skillscout/skillscout/config"
	"github.com/skillscout/skillscout/models"
	openai_provider "github.com/skillscout/skillscout/provider/openai"
)

// Client represents different LLM providers
type Client string

const (
	OpenAI Client = "openai"
)

// Provider is the interface all LLM implementations must satisfy. Complete
// returns the full response; Stream invokes onDelta for each incremental
// text fragment as it arrives and returns when the response is done.
type Provider interface {
	Complete(ctx context.Context, messages []models.Message) (string, error)
	Stream(ctx context.Context, messages []models.Message, onDelta func(delta string) error) error
}

// NewProvider creates a new LLM client based on the provided configuration.
// Any OpenAI-compatible endpoint (e.g. Gemini's compatibility layer) is
// reachable through the openai client via llm.base_url.
func NewProvider(cfg config.LLMConfig) (Provider, error) {
	switch Client(cfg.Provider) {
	case OpenAI:
		if cfg.APIKey == "" {
			return nil, errors.New("llm api key not set")
		}
		return openai_provider.NewClient(
			cfg.APIKey,
			cfg.BaseURL,
			cfg.Model,
			cfg.Temperature,
			cfg.MaxTokens,
			cfg.Timeout,
		), nil
	default:
		return nil, errors.New("unsupported LLM provider")
	}
}
