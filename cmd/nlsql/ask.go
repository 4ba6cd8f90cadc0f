package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/viant/nlsql/llm"
)

func askCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Write SQL answering a question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, *envFile)
			if err != nil {
				return err
			}
			defer a.Close()

			assistant, err := a.assistant(ctx)
			if err != nil {
				return err
			}
			reply, err := assistant.Ask(ctx, strings.Join(args, " "))
			out := cmd.OutOrStdout()
			if errors.Is(err, llm.ErrDisabled) {
				fmt.Fprintf(out, "tables: %s\n", strings.Join(reply.Tables, ", "))
				return errors.New("ask: NLSQL_GENERATION_PROVIDER is not configured")
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "tables: %s\n\n", strings.Join(reply.Tables, ", "))
			if reply.Answer.SQL != "" {
				fmt.Fprintf(out, "%s\n\n", reply.Answer.SQL)
			}
			fmt.Fprintln(out, reply.Answer.Explanation)
			return nil
		},
	}
}

func searchCmd(envFile *string) *cobra.Command {
	var topK int
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Rank tables by relevance to a query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, *envFile)
			if err != nil {
				return err
			}
			defer a.Close()

			if topK <= 0 {
				topK = a.cfg.TopK
			}
			result, err := a.retriever().Search(ctx, strings.Join(args, " "), topK)
			if err != nil {
				return err
			}
			for i, m := range result {
				fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\t%.6f\n", i+1, m.ID, m.Distance)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "Number of tables (default: NLSQL_TOP_K)")
	return cmd
}
