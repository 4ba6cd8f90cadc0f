package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/viant/nlsql/embedding"
)

// Encoder turns raw table metadata into embedded TableRecords.
type Encoder struct {
	provider embedding.Provider
	logger   zerolog.Logger
}

// Option configures an Encoder.
type Option func(*Encoder)

// WithLogger sets the logger used for per-record warnings.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Encoder) { e.logger = l }
}

// NewEncoder returns an Encoder embedding with provider.
func NewEncoder(provider embedding.Provider, opts ...Option) *Encoder {
	e := &Encoder{provider: provider, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Encode normalises raw into a record and embeds its canonical text. On any
// failure the record is still returned, unembedded, together with an
// *EncodingError or the provider's *embedding.ServiceError.
func (e *Encoder) Encode(ctx context.Context, id string, raw any) (TableRecord, error) {
	id = strings.TrimSpace(id)
	record := TableRecord{ID: id, Name: id}
	if id == "" {
		err := &EncodingError{Reason: "blank table identifier"}
		e.logger.Warn().Err(err).Msg("skipping record")
		return record, err
	}
	p, err := parse(id, raw)
	if err != nil {
		record.Raw = rawText(raw)
		e.logger.Warn().Err(err).Str("table", id).Msg("malformed metadata, record left unembedded")
		return record, err
	}
	record.Name = p.doc.name(id)
	record.Summary = p.doc.summary()
	record.Columns = p.doc.Columns
	if !p.structured {
		record.Raw = p.text
	}
	record.EmbeddingText = p.canonical(id)

	vec, err := e.provider.Embed(ctx, record.EmbeddingText)
	if err != nil {
		e.logger.Warn().Err(err).Str("table", id).Msg("embedding failed, record left unembedded")
		return record, fmt.Errorf("metadata: embed table %q: %w", id, err)
	}
	record.Embedding = vec
	return record, nil
}

// EncodeAll encodes tables in order. Per-record failures are logged and
// leave that record unembedded; only context cancellation is returned.
func (e *Encoder) EncodeAll(ctx context.Context, tables []RawTable) ([]TableRecord, error) {
	records := make([]TableRecord, 0, len(tables))
	skipped := 0
	for _, table := range tables {
		if err := ctx.Err(); err != nil {
			return records, err
		}
		record, err := e.Encode(ctx, table.ID, table.Value)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
				return records, ctxErr
			}
			skipped++
		}
		records = append(records, record)
	}
	e.logger.Info().Int("tables", len(tables)).Int("embedded", len(tables)-skipped).Int("skipped", skipped).Msg("encoded metadata")
	return records, nil
}

func rawText(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case json.RawMessage:
		return string(v)
	}
	return ""
}
