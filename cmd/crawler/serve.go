package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alvmarrod/web-spider/internal/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// NewServeCmd creates the serve command
func NewServeCmd(opts *rootOptions) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the crawl graph over HTTP",
		Long: `Serve listens for GET /webState?url=<seed>. Each request seeds the
frontier, takes steps_per_request crawl steps and answers with the domain
graph as JSON. Prometheus metrics are served at /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if listen != "" {
				opts.cfg.ListenAddr = listen
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, opts)
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", "Listen address (overrides listen_addr)")

	return cmd
}

// newHTTPServer wires a crawl session into an HTTP server
func newHTTPServer(opts *rootOptions) (*http.Server, *session, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	s, err := newSession(opts, reg)
	if err != nil {
		return nil, nil, err
	}

	srv := &http.Server{
		Addr:              opts.cfg.ListenAddr,
		Handler:           server.NewHandler(s.crawler, opts.cfg.StepsPerRequest, reg, opts.log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return srv, s, nil
}

func runServe(ctx context.Context, opts *rootOptions) error {
	srv, s, err := newHTTPServer(opts)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		opts.log.Infof("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		opts.log.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	return s.finish("signal")
}
