package index

import (
	"errors"
	"fmt"
)

// Index defines a vector index with basic lifecycle methods. Vectors are
// addressed by their build position.
type Index interface {
	// Build replaces the index content with vectors. All vectors must share
	// one non-zero dimension.
	Build(vectors [][]float32) error

	// Search returns up to k neighbours of query ordered by ascending squared
	// Euclidean distance; equal distances are ordered by position.
	Search(query []float32, k int) ([]Neighbor, error)

	// Len returns the number of indexed vectors.
	Len() int

	// Dim returns the vector dimension, 0 for an empty index.
	Dim() int

	// Vector returns the vector stored at position pos.
	Vector(pos int) ([]float32, bool)

	// MarshalBinary serializes the index into a byte slice.
	MarshalBinary() ([]byte, error)

	// UnmarshalBinary reconstructs the index from a serialized byte slice.
	UnmarshalBinary(data []byte) error
}

// Neighbor is a single search hit.
type Neighbor struct {
	Position int
	Distance float32 // squared L2
}

// Kind names an index implementation.
type Kind string

const (
	KindFlat  Kind = "flat"
	KindCover Kind = "cover"
)

var (
	// ErrDimensionMismatch is returned when a query or vector does not match
	// the index dimension.
	ErrDimensionMismatch = errors.New("index: dimension mismatch")
	// ErrInvalidData is returned by UnmarshalBinary for corrupt input.
	ErrInvalidData = errors.New("index: invalid data")
)

// ParseKind validates s as an index kind; blank selects KindFlat.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case "", KindFlat:
		return KindFlat, nil
	case KindCover:
		return KindCover, nil
	}
	return "", fmt.Errorf("index: unknown kind %q (want %s or %s)", s, KindFlat, KindCover)
}
