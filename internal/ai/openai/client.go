// Package openai implements ai.Oracle against any OpenAI-compatible chat
// completions endpoint, such as OpenAI itself or Groq.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/interviewer/internal/ai"
	"github.com/spigell/interviewer/internal/logger"
	"github.com/spigell/interviewer/internal/utils"
)

const (
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	defaultModel   = "llama-3.3-70b-versatile"
	contentType    = "application/json"
)

type Config struct {
	APIKey       string
	BaseURL      string
	Model        string
	Temperature  float64
	MaxTokens    int
	TopP         float64
	MaxLogLength int
}

type Client struct {
	HTTPClient *http.Client

	cfg    Config
	logger *zap.Logger
}

var _ ai.Oracle = (*Client)(nil)

type chatRequest struct {
	Model       string       `json:"model"`
	Messages    []ai.Message `json:"messages"`
	Temperature float64      `json:"temperature,omitempty"`
	MaxTokens   int          `json:"max_tokens,omitempty"`
	TopP        float64      `json:"top_p,omitempty"`
	Stream      bool         `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message ai.Message `json:"message"`
	} `json:"choices"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

func New(cfg Config, log *zap.Logger) (*Client, error) {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key is required")
	}
	if cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model = strings.TrimSpace(cfg.Model); cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.MaxLogLength <= 0 {
		cfg.MaxLogLength = 200
	}

	return &Client{
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
		cfg:        cfg,
		logger:     logger.WithCommonFields(log, "openai", cfg.Model),
	}, nil
}

func (c *Client) Model() string { return c.cfg.Model }

func (c *Client) Complete(ctx context.Context, messages []ai.Message) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
		TopP:        c.cfg.TopP,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.cfg.APIKey))

	c.logger.Debug("make chat completion request",
		zap.String("url", req.URL.String()),
		zap.Int("messages", len(messages)),
	)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", ai.Transient(fmt.Errorf("chat completion request: %w", err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", ai.Transient(fmt.Errorf("read chat completion response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("bad status: %s: %s", resp.Status, utils.TruncateForLog(string(data), c.cfg.MaxLogLength))
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			return "", ai.Transient(err)
		}
		return "", err
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("parse chat completion response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("api error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", ai.Transient(errors.New("empty choices in chat completion response"))
	}

	output := strings.TrimSpace(parsed.Choices[0].Message.Content)
	c.logger.Debug("got chat completion response",
		zap.String("response_preview", utils.TruncateForLog(output, c.cfg.MaxLogLength)),
	)

	return output, nil
}
