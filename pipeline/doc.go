// Package pipeline wires the training and question-answering flows.
//
// Training introspects a database, optionally asks a language model to
// describe each table, encodes the metadata and publishes a new store
// generation. Asking retrieves the closest tables for a question, loads
// their records and hands them to the answer synthesizer.
package pipeline
