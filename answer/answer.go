// Package answer turns a question and the metadata of the retrieved tables
// into SQL plus an explanation. The generated SQL is never executed.
package answer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/viant/nlsql/llm"
	"github.com/viant/nlsql/metadata"
)

// Answer is a model reply split into its parts.
type Answer struct {
	Text        string `json:"text" yaml:"text"`
	SQL         string `json:"sql,omitempty" yaml:"sql,omitempty"`
	Explanation string `json:"explanation,omitempty" yaml:"explanation,omitempty"`
}

// Synthesizer prompts a language model with table context.
type Synthesizer struct {
	llm    llm.TextGenerator
	logger zerolog.Logger
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Synthesizer) { s.logger = l }
}

// NewSynthesizer returns a Synthesizer using gen.
func NewSynthesizer(gen llm.TextGenerator, opts ...Option) *Synthesizer {
	s := &Synthesizer{llm: gen, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Answer asks the model to answer question from records. An empty record
// list is valid; the model is then told no table matched.
func (s *Synthesizer) Answer(ctx context.Context, question string, records []metadata.TableRecord) (Answer, error) {
	if strings.TrimSpace(question) == "" {
		return Answer{}, errors.New("answer: empty question")
	}
	if s.llm == nil {
		return Answer{}, llm.ErrDisabled
	}
	prompt, err := Prompt(question, records)
	if err != nil {
		return Answer{}, err
	}
	s.logger.Debug().Int("tables", len(records)).Msg("generating answer")
	text, err := s.llm.Generate(ctx, prompt)
	if err != nil {
		return Answer{}, fmt.Errorf("answer: %w", err)
	}
	return Parse(text), nil
}

// contextTable is the YAML shape of a record in the prompt.
type contextTable struct {
	Table       string            `yaml:"table"`
	Description string            `yaml:"description,omitempty"`
	Summary     string            `yaml:"summary,omitempty"`
	Columns     []metadata.Column `yaml:"columns,omitempty"`
	Raw         string            `yaml:"raw,omitempty"`
}

// Prompt renders the answer prompt.
func Prompt(question string, records []metadata.TableRecord) (string, error) {
	var tableContext string
	if len(records) == 0 {
		tableContext = "(no matching tables were found)\n"
	} else {
		tables := make([]contextTable, len(records))
		for i, r := range records {
			tables[i] = contextTable{Table: r.Name, Description: r.Summary, Columns: r.Columns, Raw: r.Raw}
			if r.EmbeddingText != r.Summary && r.Raw == "" {
				tables[i].Summary = r.EmbeddingText
			}
		}
		data, err := yaml.Marshal(tables)
		if err != nil {
			return "", fmt.Errorf("answer: render context: %w", err)
		}
		tableContext = string(data)
	}
	var sb strings.Builder
	sb.WriteString("Context (table metadata information):\n")
	sb.WriteString(tableContext)
	sb.WriteString("\nQuestion: ")
	sb.WriteString(strings.TrimSpace(question))
	sb.WriteString("\n\nWrite one SQL query that answers the question inside a ```sql code block, then explain it briefly.\n")
	sb.WriteString("If the tables above cannot answer the question, say so instead of guessing.\n\n")
	sb.WriteString("Answer based only on the table information provided above:\n")
	return sb.String(), nil
}

// Parse splits the first ```sql fenced block out of text. The remaining
// text, trimmed, is the explanation.
func Parse(text string) Answer {
	a := Answer{Text: text}
	const open = "```sql"
	start := strings.Index(strings.ToLower(text), open)
	if start < 0 {
		a.Explanation = strings.TrimSpace(text)
		return a
	}
	body := text[start+len(open):]
	end := strings.Index(body, "```")
	if end < 0 {
		a.SQL = strings.TrimSpace(body)
		a.Explanation = strings.TrimSpace(text[:start])
		return a
	}
	a.SQL = strings.TrimSpace(body[:end])
	before := strings.TrimSpace(text[:start])
	after := strings.TrimSpace(body[end+3:])
	a.Explanation = strings.TrimSpace(before + "\n\n" + after)
	return a
}
