package pipeline

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/viant/nlsql/answer"
	"github.com/viant/nlsql/metadata"
	"github.com/viant/nlsql/retrieve"
)

// Finder ranks table identifiers for a question.
type Finder interface {
	FindRelevant(ctx context.Context, query string, topK int) []string
}

// RecordLoader loads stored records by identifier.
type RecordLoader interface {
	Records(ctx context.Context, ids []string) ([]metadata.TableRecord, error)
}

// Reply is the outcome of Ask.
type Reply struct {
	Question string        `json:"question"`
	Tables   []string      `json:"tables"`
	Answer   answer.Answer `json:"answer"`
}

// Assistant answers questions from the retrieved tables.
type Assistant struct {
	finder      Finder
	records     RecordLoader
	synthesizer *answer.Synthesizer
	topK        int
	logger      zerolog.Logger
}

// NewAssistant returns an Assistant.
func NewAssistant(finder Finder, records RecordLoader, synthesizer *answer.Synthesizer, opts ...Option) *Assistant {
	o := newOptions(opts)
	if o.topK <= 0 {
		o.topK = retrieve.DefaultTopK
	}
	return &Assistant{finder: finder, records: records, synthesizer: synthesizer, topK: o.topK, logger: o.logger}
}

// Ask retrieves tables for question and synthesizes an answer. Records
// that cannot be loaded are logged and leave the context empty. On a synthesis
// error the reply still carries the retrieved tables.
func (a *Assistant) Ask(ctx context.Context, question string) (Reply, error) {
	reply := Reply{Question: question, Tables: a.finder.FindRelevant(ctx, question, a.topK)}

	var records []metadata.TableRecord
	if len(reply.Tables) > 0 {
		loaded, err := a.records.Records(ctx, reply.Tables)
		if err != nil {
			a.logger.Warn().Err(err).Strs("tables", reply.Tables).Msg("records unavailable, answering without context")
		} else {
			records = loaded
		}
	}

	ans, err := a.synthesizer.Answer(ctx, question, records)
	if err != nil {
		return reply, err
	}
	reply.Answer = ans
	return reply, nil
}
