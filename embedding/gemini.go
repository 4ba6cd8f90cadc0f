package embedding

import (
	"context"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultGeminiModel is the Gemini embedding model used when none is set.
const DefaultGeminiModel = "embedding-001"

// GeminiProvider embeds text with a Google Gemini embedding model.
type GeminiProvider struct {
	client *genai.Client
	model  *genai.EmbeddingModel
	dim    dimension
	retry  retrier
}

// NewGeminiProvider creates a Gemini client authenticated with cfg.APIKey.
func NewGeminiProvider(ctx context.Context, cfg Config, opts ...Option) (*GeminiProvider, error) {
	clientOpts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(cfg.BaseURL))
	}
	client, err := genai.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, NewServiceError(string(KindGemini), "connect", 0, "failed to create client", err)
	}
	model := cfg.Model
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiProvider{
		client: client,
		model:  client.EmbeddingModel(model),
		dim:    dimension{dim: cfg.Dimension},
		retry:  newRetrier(cfg, newOptions(opts)),
	}, nil
}

func (p *GeminiProvider) Dimension() int { return p.dim.get() }

// Embed generates the embedding of a single text.
func (p *GeminiProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if blank(text) {
		return nil, ErrEmptyText
	}
	var vec []float32
	err := p.retry.do(ctx, string(KindGemini), func(ctx context.Context) error {
		resp, err := p.model.EmbedContent(ctx, genai.Text(text))
		if err != nil {
			return err
		}
		if resp == nil || resp.Embedding == nil {
			return NewServiceError(string(KindGemini), "embed", 0, "empty embedding response", nil)
		}
		vec = resp.Embedding.Values
		return nil
	})
	if err != nil {
		return nil, wrapError(string(KindGemini), "embed", err)
	}
	if err := p.dim.accept(string(KindGemini), vec); err != nil {
		return nil, err
	}
	return vec, nil
}

// Close releases the underlying client.
func (p *GeminiProvider) Close() error { return p.client.Close() }

var _ Provider = (*GeminiProvider)(nil)
