// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/MKhiriev/go-auth-service/internal/config"
	"github.com/MKhiriev/go-auth-service/internal/logger"
	"github.com/MKhiriev/go-auth-service/internal/workers"
)

type server struct {
	httpServer      *httpServer
	workers         *workers.Workers
	shutdownTimeout time.Duration

	// started is closed once the listener is bound; addr is valid after that.
	started chan struct{}
	addr    net.Addr

	logger *logger.Logger
}

// NewServer builds the server. bg may be nil when no background workers run.
func NewServer(handler http.Handler, bg *workers.Workers, cfg config.Server, logger *logger.Logger) (Server, error) {
	logger.Info().Msg("creating new server...")

	if cfg.HTTPAddress == "" {
		return nil, errNoListenAddress
	}
	if handler == nil {
		return nil, errNoHandler
	}
	if bg == nil {
		bg = workers.NewWorkers()
	}

	return &server{
		httpServer:      newHTTPServer(handler, cfg),
		workers:         bg,
		shutdownTimeout: cfg.ShutdownTimeout,
		started:         make(chan struct{}),
		logger:          logger,
	}, nil
}

func (s *server) RunServer(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	ln, err := s.httpServer.listen()
	if err != nil {
		return fmt.Errorf("error listening on %s: %w", s.httpServer.server.Addr, err)
	}
	s.addr = ln.Addr()
	close(s.started)

	serveErr := make(chan error, 1)
	s.logger.Info().Str("address", s.addr.String()).Msg("Launching HTTP server")
	go func() { serveErr <- s.httpServer.serve(ln) }()

	workersDone := make(chan struct{})
	go func() {
		s.workers.Run(ctx)
		close(workersDone)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info().Msg("stop signal received")
	case err = <-serveErr:
		stop()
		<-workersDone
		if err != nil {
			return fmt.Errorf("http server stopped: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := s.shutdownContext()
	defer cancel()

	err = s.Shutdown(shutdownCtx)
	<-workersDone
	if err != nil {
		return err
	}
	if err = <-serveErr; err != nil {
		return err
	}

	s.logger.Info().Msg("server Shutdown gracefully")
	return nil
}

func (s *server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("HTTP server Shutdown")
	if err := s.httpServer.shutdown(ctx); err != nil {
		s.logger.Err(err).Str("func", "*server.Shutdown").Msg("error shutting down http server")
		return err
	}
	return nil
}

func (s *server) shutdownContext() (context.Context, context.CancelFunc) {
	if s.shutdownTimeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), s.shutdownTimeout)
}
