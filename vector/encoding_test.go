package vector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeEmbedding_RoundTrip(t *testing.T) {
	orig := []float32{0.0, 1.5, -2.25, 3.75}

	b := EncodeEmbedding(orig)
	require.Len(t, b, 16)

	decoded, err := DecodeEmbedding(b)
	require.NoError(t, err)
	assert.Equal(t, orig, decoded)
}

func TestEncodeDecodeEmbedding_Empty(t *testing.T) {
	assert.Nil(t, EncodeEmbedding(nil))
	assert.Nil(t, EncodeEmbedding([]float32{}))

	vec, err := DecodeEmbedding(nil)
	require.NoError(t, err)
	assert.Empty(t, vec)
}

func TestDecodeEmbedding_InvalidLength(t *testing.T) {
	_, err := DecodeEmbedding([]byte{1, 2, 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not multiple of 4")
}

func TestClone(t *testing.T) {
	orig := []float32{1, 2}
	c := Clone(orig)
	c[0] = 9
	assert.Equal(t, float32(1), orig[0])
	assert.Nil(t, Clone(nil))
}
