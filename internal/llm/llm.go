// Package llm wraps the hosted text-generation providers used to phrase
// chat replies.
package llm

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Skufu/symptomcheck/internal/config"
)

// Client generates a completion for a single prompt.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// New builds the configured provider client wrapped in a circuit breaker.
// It returns a nil Client and no error when no API key is configured.
func New(ctx context.Context, cfg config.LLMConfig, logger *logrus.Logger) (Client, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	var (
		client Client
		err    error
	)
	switch cfg.Provider {
	case "gemini":
		client, err = NewGeminiClient(ctx, cfg.APIKey, cfg.Model)
	case "openai":
		client = NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.BaseURL)
	case "claude":
		client = NewClaudeClient(cfg.APIKey, cfg.Model, cfg.BaseURL)
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s client: %w", cfg.Provider, err)
	}

	logger.WithFields(logrus.Fields{
		"provider": cfg.Provider,
		"model":    cfg.Model,
	}).Info("LLM client configured")
	return NewGuarded(cfg.Provider, client, cfg.Timeout, logger), nil
}
