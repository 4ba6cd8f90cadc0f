package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/viant/nlsql/metadata"
	"github.com/viant/nlsql/metagen"
	"github.com/viant/nlsql/pipeline"
	"github.com/viant/nlsql/schema"
)

func trainCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "train",
		Short: "Introspect the database and publish a new index",
		Long: `Introspect the configured database, describe each table (with the
generation model when one is configured), embed the descriptions and publish
a new index generation.

Environment variables:
  NLSQL_DATABASE_DRIVER        mysql, postgres or sqlite
  NLSQL_DATABASE_DSN           Connection string
  NLSQL_GENERATION_PROVIDER    none, gemini, openai or anthropic (default: none)
  NLSQL_EMBEDDING_PROVIDER     openai, gemini, ollama or hash (default: hash)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, *envFile)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.cfg.DatabaseDriver == "" || a.cfg.DatabaseDSN == "" {
				return errors.New("train: NLSQL_DATABASE_DRIVER and NLSQL_DATABASE_DSN are required")
			}
			source, err := schema.Open(ctx, a.cfg.DatabaseDriver, a.cfg.DatabaseDSN, schema.WithLogger(a.logger))
			if err != nil {
				return err
			}
			defer source.Close()

			gen, err := a.generator(ctx)
			if err != nil {
				return err
			}
			trainer := pipeline.NewTrainer(source,
				metagen.New(gen, metagen.WithParallelism(a.cfg.Parallelism), metagen.WithLogger(a.logger)),
				metadata.NewEncoder(a.provider, metadata.WithLogger(a.logger)),
				a.store,
				pipeline.WithLogger(a.logger))
			result, err := trainer.Train(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "generation %s: %d tables, %d embedded, %d indexed\n",
				result.Manifest.Generation, result.Tables, result.Embedded, result.Manifest.Indexed)
			return nil
		},
	}
}
