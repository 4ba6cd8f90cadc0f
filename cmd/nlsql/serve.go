package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/viant/nlsql/api"
)

func serveCmd(envFile *string) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server.

Endpoints:
  GET  /healthz
  POST /api/v1/search   {"query": "...", "top_k": 3}
  POST /api/v1/ask      {"question": "..."}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, *envFile)
			if err != nil {
				return err
			}
			defer a.Close()

			assistant, err := a.assistant(ctx)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = a.cfg.HTTPAddr
			}
			server := api.NewServer(addr, api.NewHandler(a.retriever(), assistant, a.cfg.TopK), a.logger)

			errCh := make(chan error, 1)
			go func() { errCh <- server.Start() }()
			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: NLSQL_HTTP_ADDR)")
	return cmd
}
