package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// Fallback tries generators in order until one succeeds.
type Fallback struct {
	generators []TextGenerator
	logger     zerolog.Logger
}

// NewFallback returns a Fallback over generators.
func NewFallback(generators []TextGenerator, logger zerolog.Logger) *Fallback {
	return &Fallback{generators: generators, logger: logger}
}

// Generate returns the first successful completion. When every generator
// fails the errors are joined in order.
func (f *Fallback) Generate(ctx context.Context, prompt string) (string, error) {
	if len(f.generators) == 0 {
		return "", errors.New("llm: no generators configured")
	}
	var errs []error
	for i, g := range f.generators {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := g.Generate(ctx, prompt)
		if err == nil {
			if i > 0 {
				f.logger.Info().Int("credential", i+1).Msg("generation succeeded with backup credential")
			}
			return text, nil
		}
		f.logger.Warn().Err(err).Int("credential", i+1).Msg("generation failed")
		errs = append(errs, fmt.Errorf("credential %d: %w", i+1, err))
	}
	return "", fmt.Errorf("llm: all %d credentials failed: %w", len(f.generators), errors.Join(errs...))
}

var _ TextGenerator = (*Fallback)(nil)
