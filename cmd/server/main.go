// Sensorgate - Environmental Sensor Telemetry Ingestion Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorgate

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

	"github.com/tomtom215/sensorgate/internal/api"
	"github.com/tomtom215/sensorgate/internal/auth"
	"github.com/tomtom215/sensorgate/internal/config"
	"github.com/tomtom215/sensorgate/internal/logging"
	"github.com/tomtom215/sensorgate/internal/sink"
	"github.com/tomtom215/sensorgate/internal/supervisor"
	"github.com/tomtom215/sensorgate/internal/supervisor/services"
)

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("Sensorgate stopped with an error")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().
		Str("sink", cfg.Sink.Driver).
		Str("auth_mode", cfg.Security.AuthMode).
		Str("environment", cfg.Server.Environment).
		Bool("breaker", cfg.Sink.BreakerEnabled).
		Msg("Starting Sensorgate")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bootCtx, cancelBoot := context.WithTimeout(ctx, 30*time.Second)
	s, err := sink.Open(bootCtx, cfg)
	cancelBoot()
	if err != nil {
		return fmt.Errorf("open sink: %w", err)
	}
	defer func() {
		if err := s.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing sink")
		}
	}()
	logging.Info().Str("driver", cfg.Sink.Driver).Msg("Sink ready")

	authenticator, err := auth.NewAuthenticator(&cfg.Security)
	if err != nil {
		return fmt.Errorf("configure authentication: %w", err)
	}

	writer := sink.NewWriter(s, sink.WithVerify(cfg.Sink.VerifyWrites))
	handler := api.NewHandler(writer, s)
	router := api.NewRouter(cfg, handler, api.NewAuthMiddleware(authenticator))

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadTimeout:       cfg.Server.Timeout,
		ReadHeaderTimeout: cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}
	tree.AddDataService(services.NewSinkProbeService(s, cfg.Sink.ProbeInterval, 0))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	var treeErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for services to stop")
		treeErr = <-errCh
	case treeErr = <-errCh:
	}
	if treeErr != nil && errors.Is(treeErr, context.Canceled) {
		treeErr = nil
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	if treeErr != nil {
		return fmt.Errorf("supervisor tree: %w", treeErr)
	}
	logging.Info().Msg("Sensorgate stopped")
	return nil
}
