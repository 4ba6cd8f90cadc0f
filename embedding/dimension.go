package embedding

import (
	"sync"

	"github.com/viant/nlsql/vector"
)

// dimension holds a provider's vector length, fixed on first success when
// not configured.
type dimension struct {
	mu  sync.Mutex
	dim int
}

func (d *dimension) get() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dim
}

// accept validates vec and locks the dimension if still unset.
func (d *dimension) accept(provider string, vec []float32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := vector.Validate(vec, d.dim); err != nil {
		return NewServiceError(provider, "embed", 0, "malformed embedding", err)
	}
	if d.dim == 0 {
		d.dim = len(vec)
	}
	return nil
}
