// Package flat provides an exact vector index that answers kNN queries by
// scanning every vector and scoring by squared Euclidean distance.
package flat
