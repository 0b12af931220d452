package llm

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/vowsuite-inc/vowsuite-reports/pkg/config"
)

// NewGeneratorFromConfig builds the SQL generator for the configured
// provider. When cfg.Provider is empty the first provider with a
// credential wins, in order: openai, anthropic, gemini. Returns
// (nil, nil) when no provider is configured so the server can start
// degraded and reject report requests at the service layer.
func NewGeneratorFromConfig(cfg *config.AIConfig, logger *zap.Logger) (SQLGenerator, error) {
	provider := cfg.Provider
	if provider == "" {
		switch {
		case cfg.OpenAI.APIKey != "":
			provider = "openai"
		case cfg.Anthropic.APIKey != "":
			provider = "anthropic"
		case cfg.Gemini.APIKey != "":
			provider = "gemini"
		default:
			logger.Warn("no AI provider configured, report generation disabled")
			return nil, nil
		}
	}

	switch provider {
	case "openai":
		return NewOpenAIClient(&OpenAIConfig{
			APIKey:   cfg.OpenAI.APIKey,
			Model:    cfg.OpenAI.Model,
			BaseURL:  cfg.OpenAI.BaseURL,
			Provider: "openai",
		}, logger)
	case "anthropic":
		return NewAnthropicClient(&AnthropicConfig{
			APIKey: cfg.Anthropic.APIKey,
			Model:  cfg.Anthropic.Model,
		}, logger)
	case "gemini":
		// Gemini speaks the OpenAI chat completion protocol on its
		// compatibility endpoint.
		return NewOpenAIClient(&OpenAIConfig{
			APIKey:   cfg.Gemini.APIKey,
			Model:    cfg.Gemini.Model,
			BaseURL:  cfg.Gemini.BaseURL,
			Provider: "gemini",
		}, logger)
	default:
		return nil, fmt.Errorf("unknown AI provider %q", provider)
	}
}
