// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package main

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-auth-service/internal/config"
	handler "github.com/MKhiriev/go-auth-service/internal/handler/http"
	"github.com/MKhiriev/go-auth-service/internal/limiter"
	"github.com/MKhiriev/go-auth-service/internal/logger"
	"github.com/MKhiriev/go-auth-service/internal/metrics"
	"github.com/MKhiriev/go-auth-service/internal/notifier"
	"github.com/MKhiriev/go-auth-service/internal/server"
	"github.com/MKhiriev/go-auth-service/internal/service"
	"github.com/MKhiriev/go-auth-service/internal/store"
	"github.com/MKhiriev/go-auth-service/internal/workers"
	"github.com/MKhiriev/go-auth-service/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	buildInfo := models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)
	fmt.Print(buildInfo)

	log := logger.NewLogger("go-auth-server")
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}
	if cfg.App.Version == "" {
		cfg.App.Version = buildInfo.BuildVersion()
	}

	log.Debug().
		Str("address", cfg.Server.HTTPAddress).
		Str("storage_driver", cfg.Storage.DB.Driver).
		Bool("limiter", cfg.Storage.Redis.Address != "").
		Bool("amqp", cfg.Notifier.AMQPURL != "").
		Bool("rotate_refresh_tokens", cfg.App.RotateRefreshTokens).
		Bool("conceal_reset_token", cfg.App.ConcealResetToken).
		Msg("received configs")

	if err = run(context.Background(), cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
}

func run(ctx context.Context, cfg *config.StructuredConfig, log *logger.Logger) error {
	m := metrics.New()

	storages, err := store.NewStorages(ctx, cfg.Storage.DB, log)
	if err != nil {
		return fmt.Errorf("error creating storages: %w", err)
	}
	defer storages.Close()

	loginLimiter, closeLimiter, err := limiter.New(ctx, cfg.Storage.Redis, cfg.Limiter, log)
	if err != nil {
		return fmt.Errorf("error creating login limiter: %w", err)
	}
	defer closeLimiter()

	resetNotifier, closeNotifier, err := newResetNotifier(cfg.Notifier, m, log)
	if err != nil {
		return fmt.Errorf("error creating reset notifier: %w", err)
	}
	defer closeNotifier()

	services, err := service.NewServices(storages, resetNotifier, m, cfg.App, log)
	if err != nil {
		return fmt.Errorf("error creating services: %w", err)
	}

	h := handler.NewHandler(services, loginLimiter, m, cfg, log)
	sweeper := workers.NewTokenSweeper(storages.UserRepository, cfg.Workers.SweepInterval, m, log)

	srv, err := server.NewServer(h.Init(), workers.NewWorkers(sweeper), cfg.Server, log)
	if err != nil {
		return fmt.Errorf("error creating server: %w", err)
	}

	return srv.RunServer(ctx)
}

// newResetNotifier publishes reset requests to AMQP when a broker URL is
// configured and only logs them otherwise.
func newResetNotifier(cfg config.Notifier, m *metrics.Metrics, log *logger.Logger) (service.ResetNotifier, func() error, error) {
	if cfg.AMQPURL == "" {
		log.Warn().Msg("no AMQP broker configured, reset tokens are only logged")
		return notifier.NewLogNotifier(m), func() error { return nil }, nil
	}

	n, err := notifier.DialAMQP(cfg.AMQPURL, cfg.Queue, m, log)
	if err != nil {
		return nil, nil, err
	}
	return n, n.Close, nil
}
