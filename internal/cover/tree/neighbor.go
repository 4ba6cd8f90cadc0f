package tree

// Neighbor describes a candidate returned by a kNN search.
type Neighbor struct {
	Point    *Point
	Distance float32
}

// worse reports whether a ranks after b: larger distance, then larger
// insertion index.
func (a Neighbor) worse(b Neighbor) bool {
	if a.Distance != b.Distance {
		return a.Distance > b.Distance
	}
	return a.Point.index > b.Point.index
}

// Neighbors is a max-heap keeping the worst candidate on top.
type Neighbors []Neighbor

func (h Neighbors) Len() int           { return len(h) }
func (h Neighbors) Less(i, j int) bool { return h[i].worse(h[j]) }
func (h Neighbors) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *Neighbors) Push(x interface{}) {
	*h = append(*h, x.(Neighbor))
}

func (h *Neighbors) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
