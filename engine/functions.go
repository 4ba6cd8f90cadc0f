package engine

import (
	"database/sql/driver"
	"fmt"
	"sync"

	"github.com/viant/nlsql/vector"
	sqlite "modernc.org/sqlite"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterVectorFunctions registers vec_l2sq with the driver. Functions are
// only visible on connections opened after the first call; Open calls it
// before opening anything, so callers rarely need to.
func RegisterVectorFunctions() error {
	registerOnce.Do(func() {
		funcs := []struct {
			name string
			fn   func(a, b []float32) (float64, error)
		}{
			{"vec_l2sq", vector.SquaredL2},
		}
		for _, f := range funcs {
			if err := sqlite.RegisterDeterministicScalarFunction(f.name, 2, binaryVectorFunc(f.name, f.fn)); err != nil {
				registerErr = fmt.Errorf("engine: register %s: %w", f.name, err)
				return
			}
		}
	})
	return registerErr
}

func binaryVectorFunc(name string, fn func(a, b []float32) (float64, error)) func(*sqlite.FunctionContext, []driver.Value) (driver.Value, error) {
	return func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("%s: expected 2 arguments, got %d", name, len(args))
		}
		a, err := asEmbedding(name, args[0])
		if err != nil {
			return nil, err
		}
		b, err := asEmbedding(name, args[1])
		if err != nil {
			return nil, err
		}
		if a == nil || b == nil {
			return nil, nil
		}
		return fn(a, b)
	}
}

func asEmbedding(name string, arg driver.Value) ([]float32, error) {
	switch v := arg.(type) {
	case nil:
		return nil, nil
	case []byte:
		return vector.DecodeEmbedding(v)
	default:
		return nil, fmt.Errorf("%s: unsupported argument type %T for embedding; want BLOB", name, arg)
	}
}
