package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Gemini generates text with a Google Gemini model.
type Gemini struct {
	client    *genai.Client
	model     string
	maxTokens int32
	timeout   time.Duration
}

// NewGemini creates a Gemini client for apiKey.
func NewGemini(ctx context.Context, apiKey string, cfg Config) (*Gemini, error) {
	opts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(cfg.BaseURL))
	}
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gemini init: %w", err)
	}
	return &Gemini{
		client:    client,
		model:     cfg.model(DefaultGeminiModel),
		maxTokens: int32(cfg.maxTokens()),
		timeout:   cfg.timeout(),
	}, nil
}

// Generate returns the text parts of the first candidate.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	model := g.client.GenerativeModel(g.model)
	model.SetMaxOutputTokens(g.maxTokens)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return b.String(), nil
}

// Close releases the client.
func (g *Gemini) Close() error { return g.client.Close() }
