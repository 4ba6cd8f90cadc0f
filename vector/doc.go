// Package vector holds the small numeric toolkit shared by the index, the
// store and the embedding providers:
//   - BLOB encoding of float32 embeddings for SQLite
//   - squared/plain Euclidean and cosine distance
//   - validation of provider output (dimension, NaN, Inf)
package vector
