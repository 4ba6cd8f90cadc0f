package embedding

import (
	"context"
	"hash/fnv"
	"strings"
	"unicode"

	"github.com/viant/nlsql/vector"
)

// HashProvider computes deterministic embeddings offline by hashing
// lower-cased word tokens into signed buckets. Texts sharing words land
// close to each other, which is enough for table names and column lists.
type HashProvider struct {
	dim int
}

// NewHashProvider returns a provider of the given dimension; dim <= 0
// selects DefaultHashDimension.
func NewHashProvider(dim int) *HashProvider {
	if dim <= 0 {
		dim = DefaultHashDimension
	}
	return &HashProvider{dim: dim}
}

func (p *HashProvider) Dimension() int { return p.dim }

// Embed returns the L2-normalised hashed bag of words of text.
func (p *HashProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if blank(text) {
		return nil, ErrEmptyText
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vec := make([]float32, p.dim)
	tokens := tokenize(text)
	if len(tokens) == 0 {
		tokens = []string{strings.TrimSpace(text)}
	}
	for _, token := range tokens {
		bucket, sign := p.bucket(token)
		vec[bucket] += sign
	}
	if zero(vec) {
		// Colliding tokens cancelled out; keep the text distinguishable.
		bucket, _ := p.bucket(strings.Join(tokens, " "))
		vec[bucket] = 1
	}
	vector.Normalize(vec)
	if err := vector.Validate(vec, p.dim); err != nil {
		return nil, NewServiceError("hash", "embed", 0, err.Error(), err)
	}
	return vec, nil
}

// bucket maps token to a dimension and a sign taken from the hash's top bit.
func (p *HashProvider) bucket(token string) (int, float32) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(token))
	sum := h.Sum64()
	sign := float32(1)
	if sum>>63 == 1 {
		sign = -1
	}
	return int(sum % uint64(p.dim)), sign
}

func zero(vec []float32) bool {
	for _, x := range vec {
		if x != 0 {
			return false
		}
	}
	return true
}

// tokenize splits on anything that is not a letter or digit, so snake_case
// identifiers contribute each part.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

var _ Provider = (*HashProvider)(nil)
