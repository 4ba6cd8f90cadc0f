// Package metadata normalises heterogeneous table descriptions into
// TableRecords and attaches their embeddings.
//
// Input may be a Document, any JSON-marshalable value, or serialized text
// (JSON, fenced JSON, a JSON string literal, or free text). Each record gets
// one canonical text that is fed to the embedding provider; see
// CanonicalText for the precedence rules.
package metadata
