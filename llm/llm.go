// Package llm generates text with hosted language models. Generators for
// Gemini, OpenAI and Anthropic share the TextGenerator interface; Fallback
// tries an ordered list of them, typically one per API key.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// TextGenerator produces a completion for a prompt.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function into a TextGenerator.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Kind names a generation backend.
type Kind string

const (
	KindNone      Kind = "none"
	KindGemini    Kind = "gemini"
	KindOpenAI    Kind = "openai"
	KindAnthropic Kind = "anthropic"
)

// Default models per backend.
const (
	DefaultGeminiModel    = "gemini-1.5-flash"
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultAnthropicModel = "claude-3-5-haiku-latest"
	DefaultMaxTokens      = 2048
	DefaultTimeout        = 60 * time.Second
)

var (
	// ErrDisabled is returned by New when generation is turned off.
	ErrDisabled = errors.New("llm: generation disabled")
	// ErrEmptyResponse is returned when a model answers with no text.
	ErrEmptyResponse = errors.New("llm: empty response")
)

// Config selects a backend and its credentials.
type Config struct {
	Kind      Kind
	Model     string
	APIKeys   []string
	BaseURL   string
	Timeout   time.Duration
	MaxTokens int
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

func (c Config) maxTokens() int {
	if c.MaxTokens <= 0 {
		return DefaultMaxTokens
	}
	return c.MaxTokens
}

func (c Config) model(def string) string {
	if c.Model == "" {
		return def
	}
	return c.Model
}

// New builds one generator per API key; several keys are wrapped in a
// Fallback in the given order.
func New(ctx context.Context, cfg Config, logger zerolog.Logger) (TextGenerator, error) {
	kind := Kind(strings.ToLower(string(cfg.Kind)))
	if kind == "" || kind == KindNone {
		return nil, ErrDisabled
	}
	keys := make([]string, 0, len(cfg.APIKeys))
	for _, k := range cfg.APIKeys {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("llm: no API key configured for %s", kind)
	}
	generators := make([]TextGenerator, 0, len(keys))
	for _, key := range keys {
		var (
			g   TextGenerator
			err error
		)
		switch kind {
		case KindGemini:
			g, err = NewGemini(ctx, key, cfg)
		case KindOpenAI:
			g = NewOpenAI(key, cfg)
		case KindAnthropic:
			g = NewAnthropic(key, cfg)
		default:
			return nil, fmt.Errorf("llm: unknown provider %q", cfg.Kind)
		}
		if err != nil {
			return nil, err
		}
		generators = append(generators, g)
	}
	if len(generators) == 1 {
		return generators[0], nil
	}
	return NewFallback(generators, logger), nil
}
