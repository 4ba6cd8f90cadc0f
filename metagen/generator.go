// Package metagen asks a language model to describe introspected tables,
// producing the raw metadata consumed by the metadata encoder.
package metagen

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/viant/nlsql/llm"
	"github.com/viant/nlsql/metadata"
	"github.com/viant/nlsql/schema"
)

// Generator produces metadata for tables.
type Generator struct {
	llm         llm.TextGenerator
	parallelism int
	logger      zerolog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithParallelism bounds concurrent generation calls; n < 1 means 1.
func WithParallelism(n int) Option {
	return func(g *Generator) { g.parallelism = n }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// New returns a Generator. A nil text generator yields columns-only
// metadata for every table.
func New(gen llm.TextGenerator, opts ...Option) *Generator {
	g := &Generator{llm: gen, parallelism: 1, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(g)
	}
	if g.parallelism < 1 {
		g.parallelism = 1
	}
	return g
}

// Generate returns one RawTable per table in input order. A failed
// generation degrades to the table's introspected columns.
func (g *Generator) Generate(ctx context.Context, tables []schema.Table) ([]metadata.RawTable, error) {
	out := make([]metadata.RawTable, len(tables))
	if g.llm == nil {
		for i, table := range tables {
			out[i] = metadata.RawTable{ID: table.Name, Value: table.Document()}
		}
		return out, nil
	}
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(g.parallelism)
	for i, table := range tables {
		group.Go(func() error {
			text, err := g.llm.Generate(ctx, Prompt(table))
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				g.logger.Warn().Err(err).Str("table", table.Name).Msg("metadata generation failed, using columns only")
				out[i] = metadata.RawTable{ID: table.Name, Value: table.Document()}
				return nil
			}
			g.logger.Debug().Str("table", table.Name).Msg("generated metadata")
			out[i] = metadata.RawTable{ID: table.Name, Value: text}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
