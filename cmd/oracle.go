package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/interviewer/internal/ai"
	"github.com/spigell/interviewer/internal/ai/gemini"
	"github.com/spigell/interviewer/internal/ai/openai"
	"github.com/spigell/interviewer/internal/logger"
	"github.com/spigell/interviewer/internal/secrets"
)

// newOracle builds the configured backend wrapped in the retry policy.
func newOracle(ctx context.Context, cfg *AIConfig, log *zap.Logger) (ai.Oracle, error) {
	if cfg == nil {
		return nil, errors.New("ai section is required")
	}

	var (
		backend ai.Oracle
		model   string
	)

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	switch provider {
	case "", "gemini":
		provider = "gemini"
		if cfg.Gemini == nil {
			cfg.Gemini = &GeminiConfig{}
		}

		apiKey, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			Value: cfg.Gemini.APIKey,
			File:  cfg.Gemini.APIKeyFile,
			Env:   "GEMINI_API_KEY",
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
		}

		generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, gemini.Options{
			Temperature:     cfg.Gemini.Temperature,
			MaxOutputTokens: cfg.Gemini.MaxOutputTokens,
			MaxLogLength:    cfg.Gemini.MaxLogLength,
		}, log)
		if err != nil {
			return nil, err
		}
		backend, model = generator, generator.Model()

	case "openai", "groq":
		if cfg.OpenAI == nil {
			cfg.OpenAI = &OpenAIConfig{}
		}

		apiKey, err := secrets.Load(secrets.Source{
			Name:  "openai api key",
			Value: cfg.OpenAI.APIKey,
			File:  cfg.OpenAI.APIKeyFile,
			Env:   "OPENAI_API_KEY",
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.openai.api-key-file or OPENAI_API_KEY)", err)
		}

		client, err := openai.New(openai.Config{
			APIKey:       apiKey,
			BaseURL:      cfg.OpenAI.BaseURL,
			Model:        cfg.OpenAI.Model,
			Temperature:  cfg.OpenAI.Temperature,
			MaxTokens:    cfg.OpenAI.MaxTokens,
			TopP:         cfg.OpenAI.TopP,
			MaxLogLength: cfg.OpenAI.MaxLogLength,
		}, log)
		if err != nil {
			return nil, err
		}
		backend, model = client, client.Model()

	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	retry := cfg.Retry
	if retry == nil {
		retry = &RetryConfig{}
	}

	retryLogger := logger.WithFields(
		logger.WithCommonFields(log, provider, model),
		zap.Int("ai_retry_attempts", retry.MaxAttempts),
	)

	return ai.NewRetryOracle(backend, retry.MaxAttempts, retry.BaseDelay, retryLogger), nil
}
