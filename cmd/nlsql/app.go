package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/viant/nlsql/answer"
	"github.com/viant/nlsql/embedding"
	"github.com/viant/nlsql/internal/config"
	"github.com/viant/nlsql/internal/log"
	"github.com/viant/nlsql/llm"
	"github.com/viant/nlsql/pipeline"
	"github.com/viant/nlsql/retrieve"
	"github.com/viant/nlsql/store"
)

// app holds the collaborators shared by commands.
type app struct {
	cfg      config.AppConfig
	logger   zerolog.Logger
	store    *store.Store
	provider embedding.Provider
	closers  []io.Closer
}

func newApp(ctx context.Context, envFile string) (*app, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger := log.New(cfg.LogLevel, string(cfg.LogFormat), os.Stderr)
	st, err := store.New(cfg.DataDir, store.WithKind(cfg.IndexKind), store.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	provider, err := embedding.New(ctx, cfg.Embedding, embedding.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger, store: st, provider: provider}
	a.track(provider)
	return a, nil
}

func (a *app) track(v any) {
	if c, ok := v.(io.Closer); ok {
		a.closers = append(a.closers, c)
	}
}

func (a *app) Close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("close failed")
		}
	}
}

// generator returns the configured text generator, or nil when generation
// is disabled.
func (a *app) generator(ctx context.Context) (llm.TextGenerator, error) {
	gen, err := llm.New(ctx, a.cfg.Generation, a.logger)
	if errors.Is(err, llm.ErrDisabled) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	a.track(gen)
	return gen, nil
}

func (a *app) retriever() *retrieve.Retriever {
	return retrieve.New(a.provider, a.store, retrieve.WithLogger(a.logger))
}

func (a *app) assistant(ctx context.Context) (*pipeline.Assistant, error) {
	gen, err := a.generator(ctx)
	if err != nil {
		return nil, err
	}
	synth := answer.NewSynthesizer(gen, answer.WithLogger(a.logger))
	return pipeline.NewAssistant(a.retriever(), a.store, synth,
		pipeline.WithTopK(a.cfg.TopK), pipeline.WithLogger(a.logger)), nil
}
