package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
)

// Anthropic generates text with the Messages API.
type Anthropic struct {
	client    *anthropic.Client
	model     string
	maxTokens int
	timeout   time.Duration
}

// NewAnthropic creates a client for apiKey.
func NewAnthropic(apiKey string, cfg Config) *Anthropic {
	opts := []anthropicopt.RequestOption{
		anthropicopt.WithAPIKey(apiKey),
		anthropicopt.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, anthropicopt.WithBaseURL(cfg.BaseURL))
	}
	cl := anthropic.NewClient(opts...)
	return &Anthropic{
		client:    &cl,
		model:     cfg.model(DefaultAnthropicModel),
		maxTokens: cfg.maxTokens(),
		timeout:   cfg.timeout(),
	}
}

// Generate concatenates the text blocks of the reply.
func (a *Anthropic) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	msg, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: int64(a.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic generate: %w", err)
	}
	var b strings.Builder
	for _, cb := range msg.Content {
		if tb, ok := cb.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(tb.Text)
		}
	}
	if b.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return b.String(), nil
}
