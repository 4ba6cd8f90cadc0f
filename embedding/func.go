package embedding

import "context"

// Func adapts a plain function into a Provider. Output is validated like
// any remote provider's; errors are reported as ServiceError.
type Func struct {
	name string
	fn   func(ctx context.Context, text string) ([]float32, error)
	dim  dimension
}

// NewFunc returns a Provider calling fn; dim <= 0 locks the dimension on
// the first successful call.
func NewFunc(dim int, fn func(ctx context.Context, text string) ([]float32, error)) *Func {
	if dim < 0 {
		dim = 0
	}
	return &Func{name: "func", fn: fn, dim: dimension{dim: dim}}
}

func (f *Func) Dimension() int { return f.dim.get() }

// Embed calls the wrapped function.
func (f *Func) Embed(ctx context.Context, text string) ([]float32, error) {
	if blank(text) {
		return nil, ErrEmptyText
	}
	vec, err := f.fn(ctx, text)
	if err != nil {
		return nil, wrapError(f.name, "embed", err)
	}
	if err := f.dim.accept(f.name, vec); err != nil {
		return nil, err
	}
	return vec, nil
}

var _ Provider = (*Func)(nil)
