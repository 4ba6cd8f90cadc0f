package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func describeCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "describe <table>...",
		Short: "Print stored metadata for tables as YAML",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, *envFile)
			if err != nil {
				return err
			}
			defer a.Close()

			records, err := a.store.Records(ctx, args)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				return fmt.Errorf("describe: no stored table matches %v", args)
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(records)
		},
	}
}
