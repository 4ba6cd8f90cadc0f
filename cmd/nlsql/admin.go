package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/viant/nlsql/index"
)

func reindexCmd(envFile *string) *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the index from stored records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, *envFile)
			if err != nil {
				return err
			}
			defer a.Close()

			k := a.cfg.IndexKind
			if kind != "" {
				if k, err = index.ParseKind(kind); err != nil {
					return err
				}
			}
			manifest, err := a.store.Reindex(ctx, k)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "generation %s: %s index, %d vectors\n", manifest.Generation, manifest.Kind, manifest.Indexed)
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "Index kind: flat or cover (default: NLSQL_INDEX_KIND)")
	return cmd
}

func verifyCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check the index against the stored records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, *envFile)
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.store.Verify(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, p := range report.Problems {
				fmt.Fprintln(out, p)
			}
			if !report.OK() {
				return fmt.Errorf("verify: generation %s has %d problems", report.Generation, len(report.Problems))
			}
			fmt.Fprintf(out, "generation %s: %d vectors consistent\n", report.Generation, report.Indexed)
			return nil
		},
	}
}

func statsCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the published generation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, *envFile)
			if err != nil {
				return err
			}
			defer a.Close()

			stats, err := a.store.Stats(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "generation: %s\nkind:       %s\ndimension:  %d\nindexed:    %d\nrecords:    %d\ncreated:    %s\n",
				stats.Generation, stats.Kind, stats.Dimension, stats.Indexed, stats.Records, stats.CreatedAt.Format("2006-01-02 15:04:05"))
			return nil
		},
	}
}
