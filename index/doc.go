// Package index defines the positional vector index used by the store. An
// index holds vectors in build order and answers k-nearest-neighbour queries
// with positions; mapping positions back to table identifiers is the
// caller's job. Two implementations exist: an exact flat scan and a cover
// tree.
package index
