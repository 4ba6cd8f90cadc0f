package metadata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// parsed is the normalised view of one input value.
type parsed struct {
	doc        Document
	structured bool
	// text is the verbatim input for unstructured values, or the
	// deterministic JSON of a structured one.
	text string
}

// CanonicalText returns the text embedded for a table, first match wins:
//  1. a non-blank embedding_text;
//  2. "Table {name}: {description}" when a non-blank schema_description
//     (or description) exists, name falling back to id;
//  3. the raw text, or the deterministic JSON of structured metadata;
//  4. "Table {id}".
func CanonicalText(id string, raw any) (string, error) {
	p, err := parse(id, raw)
	if err != nil {
		return "", err
	}
	return p.canonical(id), nil
}

func (p *parsed) canonical(id string) string {
	if text := strings.TrimSpace(p.doc.EmbeddingText); text != "" {
		return text
	}
	if desc := p.doc.summary(); desc != "" {
		return fmt.Sprintf("Table %s: %s", p.doc.name(id), desc)
	}
	if text := strings.TrimSpace(p.text); text != "" && text != "{}" && text != "null" {
		return text
	}
	return "Table " + strings.TrimSpace(id)
}

func (d *Document) summary() string {
	if s := strings.TrimSpace(d.SchemaDescription); s != "" {
		return s
	}
	return strings.TrimSpace(d.Description)
}

func (d *Document) name(id string) string {
	if n := strings.TrimSpace(d.TableName); n != "" {
		return n
	}
	return strings.TrimSpace(id)
}

func parse(id string, raw any) (*parsed, error) {
	switch v := raw.(type) {
	case nil:
		return &parsed{}, nil
	case string:
		return parseText(id, v)
	case []byte:
		return parseText(id, string(v))
	case json.RawMessage:
		return parseText(id, string(v))
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, &EncodingError{Table: id, Reason: "unmarshalable metadata", Err: err}
	}
	if !isObject(data) {
		return &parsed{text: string(data)}, nil
	}
	return parseObject(id, data)
}

func parseText(id, text string) (*parsed, error) {
	text = stripFences(strings.TrimSpace(text))
	if strings.HasPrefix(text, `"`) {
		var inner string
		if json.Unmarshal([]byte(text), &inner) == nil {
			text = stripFences(strings.TrimSpace(inner))
		}
	}
	if isObject([]byte(text)) && json.Valid([]byte(text)) {
		return parseObject(id, []byte(text))
	}
	return &parsed{text: text}, nil
}

// parseObject decodes a JSON object, rejecting known fields of the wrong
// type.
func parseObject(id string, data []byte) (*parsed, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, &EncodingError{Table: id, Reason: "invalid JSON object", Err: err}
	}
	p := &parsed{structured: true}
	for key, dest := range map[string]*string{
		"table_name":         &p.doc.TableName,
		"schema_description": &p.doc.SchemaDescription,
		"description":        &p.doc.Description,
		"embedding_text":     &p.doc.EmbeddingText,
	} {
		value, ok := fields[key]
		if !ok || string(value) == "null" {
			continue
		}
		if err := json.Unmarshal(value, dest); err != nil {
			return nil, &EncodingError{Table: id, Reason: fmt.Sprintf("field %s must be a string", key), Err: err}
		}
	}
	if value, ok := fields["columns"]; ok && string(value) != "null" {
		if err := json.Unmarshal(value, &p.doc.Columns); err != nil {
			return nil, &EncodingError{Table: id, Reason: "field columns must be a list of objects", Err: err}
		}
	}
	canonical, err := json.Marshal(fields) // map keys are sorted
	if err != nil {
		return nil, &EncodingError{Table: id, Reason: "unmarshalable metadata", Err: err}
	}
	p.text = string(canonical)
	return p, nil
}

// stripFences removes a surrounding markdown code fence such as ```json.
func stripFences(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	body := text[3:]
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	} else {
		body = strings.TrimLeft(body, "abcdefghijklmnopqrstuvwxyz")
	}
	body = strings.TrimSpace(body)
	body = strings.TrimSuffix(body, "```")
	return strings.TrimSpace(body)
}

func isObject(data []byte) bool {
	return bytes.HasPrefix(bytes.TrimSpace(data), []byte("{"))
}
