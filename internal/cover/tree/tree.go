package tree

// Adapted from github.com/viant/gds/tree/cover.

import (
	"container/heap"
	"math"
	"sort"
	"sync"
)

// pruneSlack absorbs float32 rounding in triangle-inequality bounds so that
// an exact neighbour is never pruned.
const pruneSlack = 1e-4

// Tree is a cover tree answering exact kNN queries under Euclidean distance.
type Tree[T any] struct {
	root    *Node
	base    float32
	values  values[T]
	size    int
	version uint64
	mu      sync.Mutex
}

// NewTree constructs a cover tree with the provided base; base <= 1
// selects 1.3.
func NewTree[T any](base float32) *Tree[T] {
	if base <= 1 {
		base = 1.3
	}
	return &Tree[T]{base: base}
}

// Len returns the number of inserted points.
func (t *Tree[T]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.size
}

// Insert adds a new value/vector pair to the tree and returns its index.
// Indexes are assigned sequentially from 0.
func (t *Tree[T]) Insert(value T, point *Point) int32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	point.index = t.values.put(value)
	t.size++
	if t.root == nil {
		node := NewNode(point, 0)
		t.root = &node
	} else {
		t.insert(t.root, point, 0)
	}
	t.version++
	return point.index
}

// Value returns the stored value for the given point.
func (t *Tree[T]) Value(point *Point) T {
	var zero T
	if point == nil || !point.HasValue() {
		return zero
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.values.value(point.index)
}

func (t *Tree[T]) insert(node *Node, point *Point, level int32) {
	for {
		baseLevel := float32(math.Pow(float64(t.base), float64(level)))
		if distance(point, node.point) < baseLevel {
			inserted := false
			for i := range node.children {
				child := &node.children[i]
				if distance(point, child.point) < baseLevel {
					node = child
					level--
					inserted = true
					break
				}
			}
			if !inserted {
				node.children = append(node.children, NewNode(point, level-1))
				return
			}
			continue
		}
		level++
		if level > node.level {
			newRoot := NewNode(point, level)
			newRoot.children = append(newRoot.children, *t.root)
			t.root = &newRoot
			return
		}
	}
}

// KNearestNeighbors runs a depth-first kNN search and returns up to k
// neighbours ordered by ascending distance, ties by insertion index.
func (t *Tree[T]) KNearestNeighbors(point *Point, k int) []Neighbor {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.root == nil || k <= 0 {
		return nil
	}
	h := &Neighbors{}
	t.kNearestNeighbors(t.root, point, k, h)
	result := make([]Neighbor, h.Len())
	for i := len(result) - 1; i >= 0; i-- {
		result[i] = heap.Pop(h).(Neighbor)
	}
	return result
}

func (t *Tree[T]) kNearestNeighbors(node *Node, point *Point, k int, h *Neighbors) {
	candidate := Neighbor{Point: node.point, Distance: distance(point, node.point)}
	if h.Len() < k {
		heap.Push(h, candidate)
	} else if (*h)[0].worse(candidate) {
		(*h)[0] = candidate
		heap.Fix(h, 0)
	}
	if len(node.children) == 0 {
		return
	}
	type childDist struct {
		child *Node
		dist  float32
	}
	cds := make([]childDist, 0, len(node.children))
	for i := range node.children {
		child := &node.children[i]
		cds = append(cds, childDist{child: child, dist: distance(point, child.point)})
	}
	sort.Slice(cds, func(i, j int) bool { return cds[i].dist < cds[j].dist })
	for _, cd := range cds {
		if h.Len() == k {
			worst := (*h)[0].Distance
			if cd.dist-t.ensureRadius(cd.child) > worst+pruneSlack*(1+worst) {
				continue
			}
		}
		t.kNearestNeighbors(cd.child, point, k, h)
	}
}

// ensureRadius returns an upper bound of the distance from n to any point of
// its subtree, cached per tree version.
func (t *Tree[T]) ensureRadius(n *Node) float32 {
	if n.radiusComputed == t.version {
		return n.radius
	}
	maxR := float32(0)
	for i := range n.children {
		child := &n.children[i]
		if d := distance(n.point, child.point) + t.ensureRadius(child); d > maxR {
			maxR = d
		}
	}
	n.radius = maxR
	n.radiusComputed = t.version
	return maxR
}
