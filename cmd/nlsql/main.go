// Package main is the entry point for the nlsql CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set via ldflags during build.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var envFile string
	cmd := &cobra.Command{
		Use:   "nlsql",
		Short: "Answer natural-language questions over a relational database",
		Long: `nlsql learns the tables of a database, retrieves the ones relevant to a
question and asks a language model to write SQL answering it.

Configuration is read from NLSQL_ prefixed environment variables, optionally
seeded from a .env file.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")

	cmd.AddCommand(trainCmd(&envFile))
	cmd.AddCommand(askCmd(&envFile))
	cmd.AddCommand(searchCmd(&envFile))
	cmd.AddCommand(describeCmd(&envFile))
	cmd.AddCommand(reindexCmd(&envFile))
	cmd.AddCommand(verifyCmd(&envFile))
	cmd.AddCommand(statsCmd(&envFile))
	cmd.AddCommand(serveCmd(&envFile))
	cmd.AddCommand(versionCmd())
	return cmd
}
