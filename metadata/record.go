package metadata

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Column describes one table column.
type Column struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type,omitempty" yaml:"type,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Nullable    bool   `json:"nullable,omitempty" yaml:"nullable,omitempty"`
	Key         string `json:"key,omitempty" yaml:"key,omitempty"`
}

// UnmarshalJSON accepts nullable as a boolean or as the "YES"/"NO" strings
// reported by DESCRIBE.
func (c *Column) UnmarshalJSON(data []byte) error {
	type plain Column
	var aux struct {
		plain
		Nullable json.RawMessage `json:"nullable"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*c = Column(aux.plain)
	if len(aux.Nullable) == 0 || string(aux.Nullable) == "null" {
		return nil
	}
	if err := json.Unmarshal(aux.Nullable, &c.Nullable); err == nil {
		return nil
	}
	var s string
	if err := json.Unmarshal(aux.Nullable, &s); err != nil {
		return fmt.Errorf("column %q: nullable must be a boolean or string", c.Name)
	}
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "YES", "TRUE", "Y":
		c.Nullable = true
	case "NO", "FALSE", "N", "":
		c.Nullable = false
	default:
		return fmt.Errorf("column %q: invalid nullable %q", c.Name, s)
	}
	return nil
}

// Document is the structured metadata shape produced by metadata
// generation.
type Document struct {
	TableName         string   `json:"table_name,omitempty"`
	SchemaDescription string   `json:"schema_description,omitempty"`
	Description       string   `json:"description,omitempty"`
	Columns           []Column `json:"columns,omitempty"`
	EmbeddingText     string   `json:"embedding_text,omitempty"`
}

// TableRecord is the normalised unit of retrieval. Only Embedding is set
// after creation.
type TableRecord struct {
	ID            string    `json:"id" yaml:"id"`
	Name          string    `json:"name" yaml:"name"`
	Summary       string    `json:"summary,omitempty" yaml:"summary,omitempty"`
	Columns       []Column  `json:"columns,omitempty" yaml:"columns,omitempty"`
	EmbeddingText string    `json:"embedding_text,omitempty" yaml:"embedding_text,omitempty"`
	Raw           string    `json:"raw,omitempty" yaml:"raw,omitempty"`
	Embedding     []float32 `json:"-" yaml:"-"`
}

// Embedded reports whether the record carries a vector.
func (r *TableRecord) Embedded() bool { return len(r.Embedding) > 0 }

// RawTable pairs a table identifier with its unparsed metadata.
type RawTable struct {
	ID    string
	Value any
}

// EncodingError reports metadata that could not be turned into a record.
type EncodingError struct {
	Table  string
	Reason string
	Err    error
}

func (e *EncodingError) Error() string {
	msg := fmt.Sprintf("metadata: table %q: %s", e.Table, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *EncodingError) Unwrap() error { return e.Err }
