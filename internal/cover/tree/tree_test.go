package tree

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTree_KNearestNeighbors(t *testing.T) {
	tr := NewTree[string](0)
	for i, v := range [][]float32{{0, 0}, {1, 0}, {5, 5}, {1, 0}} {
		idx := tr.Insert(string(rune('a'+i)), NewPoint(v...))
		assert.Equal(t, int32(i), idx)
	}
	require.Equal(t, 4, tr.Len())

	got := tr.KNearestNeighbors(NewPoint(1, 0), 3)
	require.Len(t, got, 3)
	assert.Equal(t, "b", tr.Value(got[0].Point))
	assert.Equal(t, "d", tr.Value(got[1].Point))
	assert.Equal(t, "a", tr.Value(got[2].Point))
	assert.Equal(t, float32(0), got[0].Distance)
}

func TestTree_MatchesExhaustiveSearch(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	tr := NewTree[int](1.3)
	points := make([]*Point, 200)
	for i := range points {
		v := make([]float32, 8)
		for j := range v {
			v[j] = rng.Float32()*2 - 1
		}
		points[i] = NewPoint(v...)
		tr.Insert(i, points[i])
	}
	for q := 0; q < 20; q++ {
		query := make([]float32, 8)
		for j := range query {
			query[j] = rng.Float32()*2 - 1
		}
		qp := NewPoint(query...)
		want := make([]Neighbor, len(points))
		for i, p := range points {
			want[i] = Neighbor{Point: p, Distance: distance(qp, p)}
		}
		sort.Slice(want, func(a, b int) bool { return want[b].worse(want[a]) })

		got := tr.KNearestNeighbors(qp, 5)
		require.Len(t, got, 5)
		for i := range got {
			assert.Equal(t, want[i].Point.Index(), got[i].Point.Index())
		}
	}
}

func TestTree_Empty(t *testing.T) {
	tr := NewTree[int](1.3)
	assert.Nil(t, tr.KNearestNeighbors(NewPoint(1), 3))
	assert.Zero(t, tr.Len())
	assert.Equal(t, 0, tr.Value(NewPoint(1)))
}
