package vector

import (
	"errors"
	"fmt"
	"math"
)

// ErrDimensionMismatch reports vectors of different lengths.
var ErrDimensionMismatch = errors.New("vector: dimension mismatch")

// SquaredL2 returns the squared Euclidean distance between a and b. It is the
// ranking metric of the store; accumulation is done in float64.
func SquaredL2(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum, nil
}

// Validate checks that v is usable as an embedding: non-empty, of the
// expected dimension when dim > 0, and free of NaN/Inf components.
func Validate(v []float32, dim int) error {
	if len(v) == 0 {
		return errors.New("vector: empty embedding")
	}
	if dim > 0 && len(v) != dim {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(v), dim)
	}
	for i, x := range v {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("vector: non-finite component at %d", i)
		}
	}
	return nil
}

// Normalize scales v in place to unit length. Zero vectors are left as is.
func Normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	inv := 1 / math.Sqrt(sum)
	for i := range v {
		v[i] = float32(float64(v[i]) * inv)
	}
}
