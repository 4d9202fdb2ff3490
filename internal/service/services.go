// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"github.com/MKhiriev/go-auth-service/internal/config"
	"github.com/MKhiriev/go-auth-service/internal/logger"
	"github.com/MKhiriev/go-auth-service/internal/store"
)

type Services struct {
	AuthService    AuthService
	AppInfoService AppInfoService
}

// NewServices wires the auth service chain: metrics, then validation, then
// the service itself.
func NewServices(storages *store.Storages, notifier ResetNotifier, recorder OperationRecorder, cfg config.App, logger *logger.Logger) (*Services, error) {
	appInfo, err := NewAppInfoService(cfg, logger)
	if err != nil {
		return nil, err
	}

	tokens := NewTokenService(storages.UserRepository, cfg, logger)
	hasher := NewPasswordHasher(cfg.BcryptCost)
	auth := NewAuthService(storages.UserRepository, tokens, hasher, notifier, cfg.RotateRefreshTokens, logger)

	return &Services{
		AuthService:    NewAuthMetricsService(recorder).Wrap(NewAuthValidationService().Wrap(auth)),
		AppInfoService: appInfo,
	}, nil
}
