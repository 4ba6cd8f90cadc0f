package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/viant/nlsql/internal/log"
	"github.com/viant/nlsql/metadata"
	"github.com/viant/nlsql/metagen"
	"github.com/viant/nlsql/schema"
	"github.com/viant/nlsql/store"
)

// Source lists the tables to train on.
type Source interface {
	Snapshot(ctx context.Context) ([]schema.Table, error)
}

// Builder publishes encoded records.
type Builder interface {
	Build(ctx context.Context, records []metadata.TableRecord) (store.Manifest, error)
}

// TrainResult summarises a training run.
type TrainResult struct {
	CorrelationID string         `json:"correlation_id"`
	Tables        int            `json:"tables"`
	Embedded      int            `json:"embedded"`
	Manifest      store.Manifest `json:"manifest"`
}

// Trainer runs introspection, metadata generation, encoding and build.
type Trainer struct {
	source  Source
	gen     *metagen.Generator
	encoder *metadata.Encoder
	builder Builder
	logger  zerolog.Logger
}

// Option configures a Trainer or an Assistant.
type Option func(*options)

type options struct {
	logger zerolog.Logger
	topK   int
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithTopK sets how many tables an Assistant retrieves.
func WithTopK(k int) Option {
	return func(o *options) { o.topK = k }
}

func newOptions(opts []Option) options {
	o := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewTrainer returns a Trainer. A nil gen uses introspected columns only.
func NewTrainer(source Source, gen *metagen.Generator, encoder *metadata.Encoder, builder Builder, opts ...Option) *Trainer {
	o := newOptions(opts)
	if gen == nil {
		gen = metagen.New(nil)
	}
	return &Trainer{source: source, gen: gen, encoder: encoder, builder: builder, logger: o.logger}
}

// Train rebuilds the store from the source. store.ErrEmptyIndex is
// returned, with the counts filled in, when no table could be embedded.
func (t *Trainer) Train(ctx context.Context) (TrainResult, error) {
	logger, id := log.WithCorrelationID(t.logger)
	result := TrainResult{CorrelationID: id}

	tables, err := t.source.Snapshot(ctx)
	if err != nil {
		return result, fmt.Errorf("pipeline: introspect: %w", err)
	}
	result.Tables = len(tables)
	logger.Info().Int("tables", len(tables)).Msg("introspected schema")

	raw, err := t.gen.Generate(ctx, tables)
	if err != nil {
		return result, fmt.Errorf("pipeline: generate metadata: %w", err)
	}
	records, err := t.encoder.EncodeAll(ctx, raw)
	if err != nil {
		return result, fmt.Errorf("pipeline: encode: %w", err)
	}
	for _, rec := range records {
		if rec.Embedded() {
			result.Embedded++
		}
	}

	manifest, err := t.builder.Build(ctx, records)
	if err != nil {
		if errors.Is(err, store.ErrEmptyIndex) {
			logger.Warn().Int("tables", result.Tables).Msg("no table could be embedded")
		}
		return result, err
	}
	result.Manifest = manifest
	logger.Info().
		Str("generation", manifest.Generation).
		Int("embedded", result.Embedded).
		Int("indexed", manifest.Indexed).
		Msg("training complete")
	return result, nil
}
