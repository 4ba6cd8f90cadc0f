// Package retrieve resolves a free-text question to the identifiers of the
// most relevant tables.
package retrieve

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/viant/nlsql/embedding"
	"github.com/viant/nlsql/store"
)

// DefaultTopK is used when a caller passes topK <= 0.
const DefaultTopK = 3

// Searcher ranks stored tables by distance to a query vector.
type Searcher interface {
	Search(ctx context.Context, query []float32, topK int) (store.SearchResult, error)
}

// Retriever embeds questions and searches the store.
type Retriever struct {
	provider embedding.Provider
	searcher Searcher
	logger   zerolog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever)

// WithLogger sets the logger used to report failures.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Retriever) { r.logger = l }
}

// New returns a Retriever.
func New(provider embedding.Provider, searcher Searcher, opts ...Option) *Retriever {
	r := &Retriever{provider: provider, searcher: searcher, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Search returns ranked matches with distances.
func (r *Retriever) Search(ctx context.Context, query string, topK int) (store.SearchResult, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if strings.TrimSpace(query) == "" {
		return nil, embedding.ErrEmptyText
	}
	vec, err := r.provider.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	return r.searcher.Search(ctx, vec, topK)
}

// FindRelevant returns the identifiers of the topK closest tables. It fails
// open: any error is logged and yields an empty slice.
func (r *Retriever) FindRelevant(ctx context.Context, query string, topK int) []string {
	result, err := r.Search(ctx, query, topK)
	if err != nil {
		r.logger.Error().Err(err).Str("query", query).Msg("retrieval failed, returning no tables")
		return []string{}
	}
	ids := result.IDs()
	r.logger.Debug().Str("query", query).Strs("tables", ids).Msg("retrieved tables")
	return ids
}
