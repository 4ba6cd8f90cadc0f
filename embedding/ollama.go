package embedding

import (
	"context"
	"net/http"
	"net/url"

	ollama "github.com/ollama/ollama/api"
)

const (
	// DefaultOllamaHost is used when no base URL is configured.
	DefaultOllamaHost = "http://localhost:11434"
	// DefaultOllamaModel is a commonly available local embedding model.
	DefaultOllamaModel = "nomic-embed-text"
)

// OllamaProvider embeds text with a local Ollama server.
type OllamaProvider struct {
	client *ollama.Client
	model  string
	dim    dimension
	retry  retrier
}

// NewOllamaProvider creates a provider for the server at cfg.BaseURL.
func NewOllamaProvider(cfg Config, opts ...Option) (*OllamaProvider, error) {
	host := cfg.BaseURL
	if host == "" {
		host = DefaultOllamaHost
	}
	u, err := url.Parse(host)
	if err != nil {
		return nil, NewServiceError(string(KindOllama), "connect", 0, "invalid host "+host, err)
	}
	model := cfg.Model
	if model == "" {
		model = DefaultOllamaModel
	}
	return &OllamaProvider{
		client: ollama.NewClient(u, &http.Client{Timeout: cfg.timeout()}),
		model:  model,
		dim:    dimension{dim: cfg.Dimension},
		retry:  newRetrier(cfg, newOptions(opts)),
	}, nil
}

func (p *OllamaProvider) Dimension() int { return p.dim.get() }

// Embed generates the embedding of a single text.
func (p *OllamaProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if blank(text) {
		return nil, ErrEmptyText
	}
	var vec []float32
	err := p.retry.do(ctx, string(KindOllama), func(ctx context.Context) error {
		res, err := p.client.Embed(ctx, &ollama.EmbedRequest{Model: p.model, Input: text})
		if err != nil {
			return err
		}
		if res == nil || len(res.Embeddings) == 0 {
			return NewServiceError(string(KindOllama), "embed", 0, "empty embedding response", nil)
		}
		vec = res.Embeddings[0]
		return nil
	})
	if err != nil {
		return nil, wrapError(string(KindOllama), "embed", err)
	}
	if err := p.dim.accept(string(KindOllama), vec); err != nil {
		return nil, err
	}
	return vec, nil
}

var _ Provider = (*OllamaProvider)(nil)
