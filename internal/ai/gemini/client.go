package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/interviewer/internal/ai"
	"github.com/spigell/interviewer/internal/logger"
	"github.com/spigell/interviewer/internal/utils"
)

const (
	defaultModel        = "gemini-2.5-flash"
	defaultMaxLogLength = 200
)

type chatSession interface {
	SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type chatCreator interface {
	Create(ctx context.Context, model string, config *genai.GenerateContentConfig, history []*genai.Content) (chatSession, error)
}

type genaiChats struct {
	chats *genai.Chats
}

func (c genaiChats) Create(ctx context.Context, model string, config *genai.GenerateContentConfig, history []*genai.Content) (chatSession, error) {
	chat, err := c.chats.Create(ctx, model, config, history)
	if err != nil {
		return nil, err
	}
	return chat, nil
}

// Options tune generation. Zero values keep the backend defaults.
type Options struct {
	Temperature     float32
	MaxOutputTokens int32
	MaxLogLength    int
}

// Generator implements ai.Oracle on top of the Google GenAI chat API.
// Every Complete call opens a fresh chat, so no conversation state leaks
// between calls.
type Generator struct {
	chats     chatCreator
	model     string
	opts      Options
	logger    *zap.Logger
	maxLogLen int
}

var _ ai.Oracle = (*Generator)(nil)

// NewGenerator creates a new Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, apiKey, model string, opts Options, log *zap.Logger) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}

	return newGenerator(genaiChats{chats: client.Chats}, model, opts, log), nil
}

func newGenerator(chats chatCreator, model string, opts Options, log *zap.Logger) *Generator {
	maxLogLen := opts.MaxLogLength
	if maxLogLen <= 0 {
		maxLogLen = defaultMaxLogLength
	}

	return &Generator{
		chats:     chats,
		model:     model,
		opts:      opts,
		logger:    logger.WithCommonFields(log, "gemini", model),
		maxLogLen: maxLogLen,
	}
}

// Complete sends system messages as the system instruction and user
// messages as chat parts, returning the joined text of all candidates.
func (g *Generator) Complete(ctx context.Context, messages []ai.Message) (string, error) {
	if g == nil || g.chats == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	var system []string
	var parts []genai.Part
	for _, msg := range messages {
		content := strings.TrimSpace(msg.Content)
		if content == "" {
			continue
		}
		if msg.Role == ai.RoleSystem {
			system = append(system, content)
			continue
		}
		parts = append(parts, genai.Part{Text: content})
	}

	if len(parts) == 0 {
		return "", errors.New("prompt must not be empty")
	}

	config := g.config(strings.Join(system, "\n\n"))

	g.logger.Debug("gemini generate content request",
		zap.Int("parts", len(parts)),
		zap.String("prompt_preview", utils.TruncateForLog(parts[len(parts)-1].Text, g.maxLogLen)),
	)

	chat, err := g.chats.Create(ctx, g.model, config, nil)
	if err != nil {
		return "", fmt.Errorf("create chat: %w", err)
	}

	resp, err := chat.SendMessage(ctx, parts...)
	if err != nil {
		return "", classify(err)
	}

	output := responseText(resp)
	if output == "" {
		return "", ai.Transient(errors.New("gemini api returned empty response"))
	}

	g.logger.Debug("gemini generate content response",
		zap.Int("response_length", utf8.RuneCountInString(output)),
		zap.String("response_preview", utils.TruncateForLog(output, g.maxLogLen)),
	)

	return output, nil
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}

func (g *Generator) config(system string) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if system != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}
	if g.opts.Temperature > 0 {
		temperature := g.opts.Temperature
		cfg.Temperature = &temperature
	}
	if g.opts.MaxOutputTokens > 0 {
		cfg.MaxOutputTokens = g.opts.MaxOutputTokens
	}
	return cfg
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	return strings.TrimSpace(builder.String())
}

func classify(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError {
			return ai.Transient(fmt.Errorf("generate content: %w", err))
		}
		return fmt.Errorf("generate content: %w", err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ai.Transient(fmt.Errorf("generate content: %w", err))
	}
	return fmt.Errorf("generate content: %w", err)
}
