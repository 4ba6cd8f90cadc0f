package embedding

import (
	"context"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultOpenAIModel is the embedding model used when none is configured.
const DefaultOpenAIModel = "text-embedding-3-small"

// OpenAIProvider embeds text through the OpenAI embeddings API or any
// compatible endpoint.
type OpenAIProvider struct {
	client    *openai.Client
	model     string
	requested int
	dim       dimension
	retry     retrier
}

// NewOpenAIProvider creates a provider from cfg. A configured dimension is
// sent as the "dimensions" request parameter.
func NewOpenAIProvider(cfg Config, opts ...Option) *OpenAIProvider {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	config.HTTPClient = &http.Client{Timeout: cfg.timeout()}
	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAIProvider{
		client:    openai.NewClientWithConfig(config),
		model:     model,
		requested: cfg.Dimension,
		dim:       dimension{dim: cfg.Dimension},
		retry:     newRetrier(cfg, newOptions(opts)),
	}
}

func (p *OpenAIProvider) Dimension() int { return p.dim.get() }

// Embed generates the embedding of a single text.
func (p *OpenAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if blank(text) {
		return nil, ErrEmptyText
	}
	req := openai.EmbeddingRequest{
		Model:      openai.EmbeddingModel(p.model),
		Input:      []string{text},
		Dimensions: p.requested,
	}
	var vec []float32
	err := p.retry.do(ctx, string(KindOpenAI), func(ctx context.Context) error {
		resp, err := p.client.CreateEmbeddings(ctx, req)
		if err != nil {
			return err
		}
		if len(resp.Data) != 1 {
			return NewServiceError(string(KindOpenAI), "embed", 0, fmt.Sprintf("got %d vectors for 1 text", len(resp.Data)), nil)
		}
		vec = resp.Data[0].Embedding
		return nil
	})
	if err != nil {
		return nil, wrapError(string(KindOpenAI), "embed", err)
	}
	if err := p.dim.accept(string(KindOpenAI), vec); err != nil {
		return nil, err
	}
	return vec, nil
}

var _ Provider = (*OpenAIProvider)(nil)
