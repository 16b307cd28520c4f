package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/aoflow/internal/presentation/tui"
	httpAdapter "github.com/aretw0/aoflow/pkg/adapters/http"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves code generation over a JSON API described by /openapi.yaml.
Graph changes are streamed on /events when the graph source can be watched,
and Prometheus metrics are exposed on /metrics.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = cfg.Server.Addr
		}

		return withApp(prometheus.DefaultRegisterer, func(a *app) error {
			opts := []httpAdapter.Option{
				httpAdapter.WithLogger(logger),
				httpAdapter.WithGatherer(prometheus.DefaultGatherer),
			}
			if a.executes {
				opts = append(opts, httpAdapter.WithRunner(a.compiler))
			}
			if a.compiler.Watchable() {
				opts = append(opts, httpAdapter.WithWatcher(a.compiler))
			}

			handler, err := httpAdapter.NewHandler(a.compiler, opts...)
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:              addr,
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			}

			if isTerminal(os.Stderr) {
				tui.PrintBanner(os.Stderr)
			}

			serverErrors := make(chan error, 1)
			go func() {
				logger.Info("Starting aoflow server", "addr", srv.Addr, "graph", a.compiler.Name)
				serverErrors <- srv.ListenAndServe()
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			select {
			case err := <-serverErrors:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return fmt.Errorf("server error: %w", err)
			case <-ctx.Done():
				logger.Info("Shutdown signal received")

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()

				if err := srv.Shutdown(shutdownCtx); err != nil {
					logger.Error("Graceful shutdown did not complete", "err", err)
					return srv.Close()
				}
				logger.Info("aoflow server stopped gracefully")
				return nil
			}
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "listen address (default server.addr)")
}
