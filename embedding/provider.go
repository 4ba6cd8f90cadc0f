package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Provider converts text into an embedding vector.
type Provider interface {
	// Embed returns a vector of exactly Dimension() floats.
	Embed(ctx context.Context, text string) ([]float32, error)
	// Dimension returns the vector length, 0 while it is still unknown.
	Dimension() int
}

// ErrEmptyText is returned for blank input; no upstream call is made.
var ErrEmptyText = errors.New("embedding: empty text")

// Kind names a provider implementation.
type Kind string

const (
	KindOpenAI Kind = "openai"
	KindGemini Kind = "gemini"
	KindOllama Kind = "ollama"
	KindHash   Kind = "hash"
)

const (
	// DefaultTimeout bounds a single upstream call.
	DefaultTimeout = 30 * time.Second
	// DefaultMaxRetries is the number of retries after the first attempt.
	DefaultMaxRetries = 1
	// DefaultHashDimension is used by HashProvider when no dimension is set.
	DefaultHashDimension = 256
)

// Config selects and configures a provider.
type Config struct {
	Kind      Kind
	Model     string
	APIKey    string
	BaseURL   string
	Dimension int
	Timeout   time.Duration
	// MaxRetries is the retry count for transient failures; negative disables
	// retries and zero selects DefaultMaxRetries.
	MaxRetries int
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

func (c Config) maxRetries() int {
	switch {
	case c.MaxRetries < 0:
		return 0
	case c.MaxRetries == 0:
		return DefaultMaxRetries
	}
	return c.MaxRetries
}

// Option configures provider construction.
type Option func(*options)

type options struct {
	logger       zerolog.Logger
	initialDelay time.Duration
}

// WithLogger sets the logger used to report retries.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithRetryDelay sets the delay before the first retry.
func WithRetryDelay(d time.Duration) Option {
	return func(o *options) { o.initialDelay = d }
}

func newOptions(opts []Option) options {
	o := options{logger: zerolog.Nop(), initialDelay: 500 * time.Millisecond}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// New builds the provider selected by cfg.Kind.
func New(ctx context.Context, cfg Config, opts ...Option) (Provider, error) {
	switch Kind(strings.ToLower(string(cfg.Kind))) {
	case KindOpenAI:
		return NewOpenAIProvider(cfg, opts...), nil
	case KindGemini:
		return NewGeminiProvider(ctx, cfg, opts...)
	case KindOllama:
		return NewOllamaProvider(cfg, opts...)
	case KindHash, "":
		return NewHashProvider(cfg.Dimension), nil
	}
	return nil, fmt.Errorf("embedding: unknown provider %q", cfg.Kind)
}

func blank(text string) bool { return strings.TrimSpace(text) == "" }
