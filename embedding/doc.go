// Package embedding turns text into fixed-length float32 vectors.
//
// Providers wrap a remote model (OpenAI, Gemini, Ollama) or compute vectors
// locally (HashProvider, Func). Every provider validates its output: a vector
// must be non-empty, finite and of the provider dimension. A provider without
// a configured dimension adopts the length of its first successful response.
package embedding
