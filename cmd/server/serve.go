package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"koomy/portal/internal/api"
	"koomy/portal/internal/logging"
	"koomy/portal/internal/metrics"
	"koomy/portal/internal/routes"
	"koomy/portal/internal/workers"
)

const shutdownTimeout = 15 * time.Second

func serveRun(cmd *cobra.Command) error {
	cfg, err := configFrom(cmd)
	if err != nil {
		return err
	}

	if err := logging.Init(cfg.Environment, cfg.Debug); err != nil {
		return err
	}
	defer logging.Close()

	logging.Info("Koomy portal starting up",
		"environment", cfg.Environment,
		"api_base_url", cfg.APIBaseURL,
		"timestamp", time.Now().Format(time.RFC3339),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewMetricsRegistry(reg)

	deps, err := api.InitDependencies(ctx, cfg, m)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	defer deps.Close()

	var ledger workers.OrphanReporter
	if deps.Repo.Uploads != nil {
		ledger = deps.Repo.Uploads
	}
	wc := workers.InitWorkers(ctx, cfg, ledger, deps.Repo.Sessions, m)
	defer wc.Stop()

	router := routes.RegisterRoutes(deps, promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	logging.Info("Prometheus metrics endpoint registered at /metrics")

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("Server starting", "addr", cfg.ListenAddr, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logging.Info("Shutting down", "timeout", shutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

func serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Run the portal HTTP server",
		PreRunE: withConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveRun(cmd)
		},
	}
	return cmd
}
