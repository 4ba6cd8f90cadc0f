package index

import (
	"encoding/binary"
	"fmt"
	"math"
)

// EncodeVectors writes dim(uint32), n(uint32) and then n*dim little-endian
// float32 values. Every implementation persists in this format so an
// index.bin can be reloaded as any kind.
func EncodeVectors(dim int, vectors [][]float32) []byte {
	out := make([]byte, 8, 8+4*dim*len(vectors))
	binary.LittleEndian.PutUint32(out[0:4], uint32(dim))
	binary.LittleEndian.PutUint32(out[4:8], uint32(len(vectors)))
	for _, vec := range vectors {
		for _, v := range vec {
			out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v))
		}
	}
	return out
}

// DecodeVectors reverses EncodeVectors.
func DecodeVectors(data []byte) ([][]float32, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("%w: header too short", ErrInvalidData)
	}
	dim := int(binary.LittleEndian.Uint32(data[0:4]))
	n := int(binary.LittleEndian.Uint32(data[4:8]))
	if n > 0 && dim == 0 {
		return nil, fmt.Errorf("%w: zero dimension with %d vectors", ErrInvalidData, n)
	}
	if want := 8 + 4*dim*n; len(data) != want {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidData, len(data), want)
	}
	off := 8
	vectors := make([][]float32, n)
	for i := range vectors {
		vec := make([]float32, dim)
		for j := range vec {
			vec[j] = math.Float32frombits(binary.LittleEndian.Uint32(data[off:]))
			off += 4
		}
		vectors[i] = vec
	}
	return vectors, nil
}

// CheckVectors returns the shared dimension of vectors.
func CheckVectors(vectors [][]float32) (int, error) {
	if len(vectors) == 0 {
		return 0, nil
	}
	dim := len(vectors[0])
	if dim == 0 {
		return 0, fmt.Errorf("%w: empty vector at 0", ErrDimensionMismatch)
	}
	for i, v := range vectors {
		if len(v) != dim {
			return 0, fmt.Errorf("%w: vector %d has %d, want %d", ErrDimensionMismatch, i, len(v), dim)
		}
	}
	return dim, nil
}

// Less orders neighbours by distance then position.
func Less(a, b Neighbor) bool {
	if a.Distance != b.Distance {
		return a.Distance < b.Distance
	}
	return a.Position < b.Position
}
