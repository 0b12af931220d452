package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIClient generates SQL through any OpenAI-compatible chat
// completion endpoint. Gemini is served by the same client via its
// OpenAI-compatible base URL.
type OpenAIClient struct {
	client   *openai.Client
	provider string
	model    string
	logger   *zap.Logger
}

// OpenAIConfig holds settings for an OpenAI-compatible endpoint.
type OpenAIConfig struct {
	APIKey   string
	Model    string
	BaseURL  string // e.g. "https://api.openai.com/v1"
	Provider string // name used in logs: "openai" or "gemini"
}

// NewOpenAIClient creates a client for an OpenAI-compatible endpoint.
func NewOpenAIClient(cfg *OpenAIConfig, logger *zap.Logger) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}

	provider := cfg.Provider
	if provider == "" {
		provider = "openai"
	}

	return &OpenAIClient{
		client:   openai.NewClientWithConfig(clientConfig),
		provider: provider,
		model:    cfg.Model,
		logger:   logger.Named("llm"),
	}, nil
}

// GenerateSQL performs a single chat completion with temperature 0:
// the report pipeline wants the most deterministic translation the
// model can give.
func (c *OpenAIClient) GenerateSQL(ctx context.Context, systemPrompt, question string) (string, error) {
	c.logger.Debug("SQL generation request",
		zap.String("provider", c.provider),
		zap.String("model", c.model),
		zap.Int("question_len", len(question)))

	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: question},
		},
		Temperature: 0,
	})
	if err != nil {
		c.logger.Error("SQL generation failed",
			zap.String("provider", c.provider),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", ClassifyError(err)
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}

	content := resp.Choices[0].Message.Content

	c.logger.Info("SQL generation completed",
		zap.String("provider", c.provider),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("elapsed", time.Since(start)))

	return content, nil
}

// Provider returns the provider name.
func (c *OpenAIClient) Provider() string {
	return c.provider
}

// Model returns the configured model name.
func (c *OpenAIClient) Model() string {
	return c.model
}
