package metagen

import (
	"strings"
	"text/template"

	"github.com/viant/nlsql/schema"
)

var promptTemplate = template.Must(template.New("metadata").Parse(`[INSTRUCTION]
You are a database schema metadata generator. Based on the provided schema definition, generate a JSON object that includes structured metadata and a natural-language description of the table.
Stick to the data format and structure shown in the example.
Table and column names must be taken from the schema definition exactly.

[CONTEXT]
- The output must be a valid JSON object (no markdown formatting, no code fences).
- Include the table name, a short description of the table, a list of columns with name, type and description, and a flattened natural-language summary of the table for use in embedding.
- Keep column descriptions concise and meaningful.
- The "embedding_text" field should describe the table and all its columns in a readable sentence.

[INPUT DATA]
Table name: {{.Name}}
DDL:
{{.DDL}}

[OUTPUT FORMAT]
{
  "table_name": "string",
  "schema_description": "string",
  "columns": [
    {"name": "string", "type": "string", "description": "string"}
  ],
  "embedding_text": "string"
}

[EXAMPLE]
{
  "table_name": "users",
  "schema_description": "A table to store user details including identity, name, contact, and creation timestamp.",
  "columns": [
    {"name": "id", "type": "INTEGER", "description": "Unique identifier for each user."},
    {"name": "name", "type": "VARCHAR(100)", "description": "Full name of the user."},
    {"name": "email", "type": "VARCHAR(100)", "description": "Optional email address of the user."},
    {"name": "created_at", "type": "TIMESTAMP", "description": "Timestamp when the user record was created."}
  ],
  "embedding_text": "The 'users' table contains user details including an ID, full name, optional email address, and a creation timestamp."
}
`))

// Prompt renders the metadata generation prompt for table.
func Prompt(table schema.Table) string {
	var sb strings.Builder
	_ = promptTemplate.Execute(&sb, struct {
		Name string
		DDL  string
	}{Name: table.Name, DDL: table.DDL()})
	return sb.String()
}
