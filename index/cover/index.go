package cover

import (
	"fmt"
	"sort"

	"github.com/viant/nlsql/index"
	"github.com/viant/nlsql/internal/cover/tree"
	"github.com/viant/nlsql/vector"
)

// DefaultBase is the cover tree expansion base.
const DefaultBase = 1.3

// Index implements a squared-L2 kNN index using a cover tree to prune search.
type Index struct {
	base float32
	vecs [][]float32
	dim  int
	tree *tree.Tree[int]
}

// New returns an empty index; base <= 1 selects DefaultBase.
func New(base float32) *Index {
	if base <= 1 {
		base = DefaultBase
	}
	return &Index{base: base}
}

// Build inserts vectors in order, so tree insertion index equals position.
func (i *Index) Build(vectors [][]float32) error {
	dim, err := index.CheckVectors(vectors)
	if err != nil {
		return fmt.Errorf("cover: %w", err)
	}
	t := tree.NewTree[int](i.base)
	vecs := make([][]float32, len(vectors))
	for pos, v := range vectors {
		vecs[pos] = vector.Clone(v)
		t.Insert(pos, tree.NewPoint(vecs[pos]...))
	}
	i.vecs, i.dim, i.tree = vecs, dim, t
	return nil
}

// Search returns up to k positions ordered by ascending squared distance.
func (i *Index) Search(query []float32, k int) ([]index.Neighbor, error) {
	if k <= 0 || len(i.vecs) == 0 {
		return nil, nil
	}
	if len(query) != i.dim {
		return nil, fmt.Errorf("cover: %w: query %d, index %d", index.ErrDimensionMismatch, len(query), i.dim)
	}
	if k > len(i.vecs) {
		k = len(i.vecs)
	}
	found := i.tree.KNearestNeighbors(tree.NewPoint(query...), k)
	result := make([]index.Neighbor, 0, len(found))
	for _, n := range found {
		pos := i.tree.Value(n.Point)
		d, err := vector.SquaredL2(query, i.vecs[pos])
		if err != nil {
			return nil, err
		}
		result = append(result, index.Neighbor{Position: pos, Distance: float32(d)})
	}
	sort.SliceStable(result, func(a, b int) bool { return index.Less(result[a], result[b]) })
	return result, nil
}

func (i *Index) Len() int { return len(i.vecs) }

func (i *Index) Dim() int { return i.dim }

func (i *Index) Vector(pos int) ([]float32, bool) {
	if pos < 0 || pos >= len(i.vecs) {
		return nil, false
	}
	return i.vecs[pos], true
}

// MarshalBinary stores the vectors; the tree is rebuilt on load.
func (i *Index) MarshalBinary() ([]byte, error) {
	return index.EncodeVectors(i.dim, i.vecs), nil
}

// UnmarshalBinary loads vectors and rebuilds the tree.
func (i *Index) UnmarshalBinary(data []byte) error {
	vecs, err := index.DecodeVectors(data)
	if err != nil {
		return fmt.Errorf("cover: %w", err)
	}
	if i.base <= 1 {
		i.base = DefaultBase
	}
	return i.Build(vecs)
}

var _ index.Index = (*Index)(nil)
