// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/salerec/internal/api"
	"github.com/tomtom215/salerec/internal/ingest"
	"github.com/tomtom215/salerec/internal/logging"
	"github.com/tomtom215/salerec/internal/metrics"
	"github.com/tomtom215/salerec/internal/recommend"
	"github.com/tomtom215/salerec/internal/supervisor"
	"github.com/tomtom215/salerec/internal/supervisor/services"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	var (
		port     int
		withNATS bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API, the model refresh loop and NATS ingestion",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port = port
			}
			if cmd.Flags().Changed("nats") {
				a.cfg.NATS.Enabled = withNATS
			}
			return runServe(cmd.Context(), a)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "HTTP port (overrides server.port)")
	cmd.Flags().BoolVar(&withNATS, "nats", false, "Consume sale events from NATS (overrides nats.enabled)")
	return cmd
}

func runServe(parent context.Context, a *app) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.logger.Info().
		Str("version", version).
		Str("mode", a.cfg.Recommend.Mode).
		Str("model", a.cfg.Recommend.Model).
		Str("metric", a.cfg.Recommend.Metric).
		Bool("nats_enabled", a.cfg.NATS.Enabled).
		Msg("Starting salerec with supervisor tree")

	metrics.SetAppInfo(version, runtime.Version())

	if err := a.openDatabase(ctx); err != nil {
		return err
	}
	defer a.close()

	engine, err := a.newEngine()
	if err != nil {
		return err
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  a.cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	// Data layer: periodic and on-demand model rebuilds.
	tree.AddDataService(services.NewRefreshService(
		engine,
		services.RefreshServiceConfigFrom(a.cfg.Recommend.Refresh),
		logging.WithComponent("refresh"),
	))

	// Messaging layer: sale events from JetStream.
	if a.cfg.NATS.Enabled {
		if err := addIngest(tree, a, engine); err != nil {
			return err
		}
	}

	// API layer.
	server := newHTTPServer(a, engine)
	tree.AddAPIService(services.NewHTTPServerService(server, a.cfg.Server.ShutdownTimeout))
	a.logger.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	errCh := tree.ServeBackground(ctx)
	select {
	case <-ctx.Done():
		a.logger.Info().Msg("Shutdown signal received, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Error().Err(err).Msg("Supervisor tree error")
		}
	}
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		a.logger.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			a.logger.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	a.logger.Info().Msg("Application stopped gracefully")
	return nil
}

func newHTTPServer(a *app, engine *recommend.Engine) *http.Server {
	handler := api.NewHandler(engine, a.db, api.HandlerOptions{
		Version:        version,
		RequestTimeout: a.cfg.Server.Timeout,
		RefreshTimeout: a.cfg.Recommend.Refresh.Timeout,
	}, logging.WithComponent("api"))

	mw := api.NewChiMiddleware(api.ChiMiddlewareConfigFromServer(&a.cfg.Server))
	router := api.NewRouter(handler, mw)

	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port),
		Handler:           router.SetupChi(),
		ReadTimeout:       a.cfg.Server.Timeout,
		ReadHeaderTimeout: 10 * time.Second,
		// Refresh may run up to its own timeout inside a request.
		WriteTimeout: max(a.cfg.Server.Timeout, a.cfg.Recommend.Refresh.Timeout),
		IdleTimeout:  60 * time.Second,
	}
}

func addIngest(tree *supervisor.SupervisorTree, a *app, engine *recommend.Engine) error {
	logger := logging.WithComponent("ingest")

	sub, err := ingest.NewNATSSubscriber(a.cfg.NATS, logging.NewWatermillAdapter(logger))
	if err != nil {
		return fmt.Errorf("create NATS subscriber: %w", err)
	}

	topic := a.cfg.NATS.Topic
	if topic == "" {
		topic = ingest.DefaultTopic
	}

	handler := ingest.NewHandler(a.db, engine, a.cfg.NATS, logger)
	consumer := ingest.NewConsumer(sub, topic, handler, logger)
	tree.AddMessagingService(services.NewIngestService(consumer, logger))

	a.logger.Info().
		Str("url", a.cfg.NATS.URL).
		Str("topic", topic).
		Msg("NATS ingest service added")
	return nil
}
