package tree

import "github.com/viant/vec/search"

// distance returns the Euclidean distance between two points.
func distance(p1, p2 *Point) float32 {
	return search.Float32s(p1.Vector).EuclideanDistance(p2.Vector)
}
