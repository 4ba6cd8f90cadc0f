package tree

// Point represents a vector in the cover tree.
type Point struct {
	index  int32
	Vector []float32
}

// Index returns the insertion index assigned by Tree.Insert, -1 before.
func (p *Point) Index() int32 {
	if p == nil {
		return -1
	}
	return p.index
}

// HasValue reports whether the point has an associated value.
func (p *Point) HasValue() bool {
	return p != nil && p.index >= 0
}

// NewPoint constructs a point for the given vector.
func NewPoint(vector ...float32) *Point {
	return &Point{index: -1, Vector: vector}
}
