// Package cover provides an index backed by a cover tree under Euclidean
// distance. Results are exact and reported as squared L2, so the index is
// interchangeable with the flat index; it persists in the same format and
// rebuilds the tree on load.
package cover
