// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"
	"time"

	"github.com/MKhiriev/go-auth-service/internal/config"
	"github.com/MKhiriev/go-auth-service/internal/limiter"
	"github.com/MKhiriev/go-auth-service/internal/logger"
	"github.com/MKhiriev/go-auth-service/internal/service"
)

// Recorder collects request metrics and serves them on /metrics.
type Recorder interface {
	ObserveHTTPRequest(method, route string, status int, took time.Duration)
	IncRateLimited()
	Handler() http.Handler
}

type Handler struct {
	services *service.Services
	limiter  limiter.Limiter
	metrics  Recorder

	concealResetToken bool
	requestTimeout    time.Duration

	logger *logger.Logger
}

// NewHandler wires the HTTP handler. A nil limiter disables login throttling.
func NewHandler(services *service.Services, lim limiter.Limiter, recorder Recorder, cfg *config.StructuredConfig, logger *logger.Logger) *Handler {
	if lim == nil {
		lim = limiter.NopLimiter{}
	}

	logger.Info().Msg("http handler created")
	return &Handler{
		services:          services,
		limiter:           lim,
		metrics:           recorder,
		concealResetToken: cfg.App.ConcealResetToken,
		requestTimeout:    cfg.Server.RequestTimeout,
		logger:            logger,
	}
}
