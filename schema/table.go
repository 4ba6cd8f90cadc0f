package schema

import (
	"fmt"
	"strings"

	"github.com/viant/nlsql/metadata"
)

// Table is an introspected table.
type Table struct {
	Name    string            `json:"name" yaml:"name"`
	Columns []metadata.Column `json:"columns" yaml:"columns"`
}

// Document returns the columns-only metadata of t.
func (t *Table) Document() metadata.Document {
	return metadata.Document{TableName: t.Name, Columns: t.Columns}
}

// DDL renders t as a CREATE TABLE statement.
func (t *Table) DDL() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "CREATE TABLE %s (\n", t.Name)
	var keys []string
	for i, c := range t.Columns {
		sb.WriteString("  ")
		sb.WriteString(c.Name)
		if c.Type != "" {
			sb.WriteString(" ")
			sb.WriteString(c.Type)
		}
		if !c.Nullable {
			sb.WriteString(" NOT NULL")
		}
		switch strings.ToUpper(c.Key) {
		case "PRI":
			keys = append(keys, c.Name)
		case "UNI":
			sb.WriteString(" UNIQUE")
		}
		if i < len(t.Columns)-1 || len(keys) > 0 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	if len(keys) > 0 {
		fmt.Fprintf(&sb, "  PRIMARY KEY (%s)\n", strings.Join(keys, ", "))
	}
	sb.WriteString(");")
	return sb.String()
}
