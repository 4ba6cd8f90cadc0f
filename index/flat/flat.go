package flat

import (
	"fmt"
	"sort"

	"github.com/viant/nlsql/index"
	"github.com/viant/nlsql/vector"
)

// Index is a brute-force squared-L2 index.
type Index struct {
	vecs [][]float32
	dim  int
}

// New returns an empty index.
func New() *Index { return &Index{} }

// Build copies vectors into the index.
func (i *Index) Build(vectors [][]float32) error {
	dim, err := index.CheckVectors(vectors)
	if err != nil {
		return fmt.Errorf("flat: %w", err)
	}
	vecs := make([][]float32, len(vectors))
	for j, v := range vectors {
		vecs[j] = vector.Clone(v)
	}
	i.vecs, i.dim = vecs, dim
	return nil
}

// Search scores every vector and returns the k closest.
func (i *Index) Search(query []float32, k int) ([]index.Neighbor, error) {
	if k <= 0 || len(i.vecs) == 0 {
		return nil, nil
	}
	if len(query) != i.dim {
		return nil, fmt.Errorf("flat: %w: query %d, index %d", index.ErrDimensionMismatch, len(query), i.dim)
	}
	scored := make([]index.Neighbor, len(i.vecs))
	for j, v := range i.vecs {
		d, err := vector.SquaredL2(query, v)
		if err != nil {
			return nil, err
		}
		scored[j] = index.Neighbor{Position: j, Distance: float32(d)}
	}
	sort.SliceStable(scored, func(a, b int) bool { return index.Less(scored[a], scored[b]) })
	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k], nil
}

func (i *Index) Len() int { return len(i.vecs) }

func (i *Index) Dim() int { return i.dim }

func (i *Index) Vector(pos int) ([]float32, bool) {
	if pos < 0 || pos >= len(i.vecs) {
		return nil, false
	}
	return i.vecs[pos], true
}

// MarshalBinary stores the vectors in index.EncodeVectors format.
func (i *Index) MarshalBinary() ([]byte, error) {
	return index.EncodeVectors(i.dim, i.vecs), nil
}

// UnmarshalBinary restores the index from bytes.
func (i *Index) UnmarshalBinary(data []byte) error {
	vecs, err := index.DecodeVectors(data)
	if err != nil {
		return fmt.Errorf("flat: %w", err)
	}
	return i.Build(vecs)
}

var _ index.Index = (*Index)(nil)
