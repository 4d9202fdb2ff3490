// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Supported values of [DB.Driver].
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

const (
	defaultTokenIssuer          = "go-auth-service"
	defaultAccessTokenDuration  = 15 * time.Minute
	defaultRefreshTokenDuration = 7 * 24 * time.Hour
	defaultResetTokenDuration   = 10 * time.Minute
	defaultBcryptCost           = bcrypt.DefaultCost
	defaultHTTPAddress          = "localhost:8080"
	defaultRequestTimeout       = 5 * time.Second
	defaultShutdownTimeout      = 10 * time.Second
	defaultLoginAttempts        = 5
	defaultLimiterWindow        = 15 * time.Minute
	defaultNotifierQueue        = "auth.password_reset"
	defaultSweepInterval        = 10 * time.Minute
)

// setDefaults fills every zero-valued field that has a sensible default.
// Sign keys have none and must always be provided.
func (cfg *StructuredConfig) setDefaults() {
	if cfg.App.TokenIssuer == "" {
		cfg.App.TokenIssuer = defaultTokenIssuer
	}
	if cfg.App.AccessTokenDuration == 0 {
		cfg.App.AccessTokenDuration = defaultAccessTokenDuration
	}
	if cfg.App.RefreshTokenDuration == 0 {
		cfg.App.RefreshTokenDuration = defaultRefreshTokenDuration
	}
	if cfg.App.ResetTokenDuration == 0 {
		cfg.App.ResetTokenDuration = defaultResetTokenDuration
	}
	if cfg.App.BcryptCost == 0 {
		cfg.App.BcryptCost = defaultBcryptCost
	}

	if cfg.Storage.DB.Driver == "" {
		cfg.Storage.DB.Driver = driverFromDSN(cfg.Storage.DB.DSN)
	}

	if cfg.Server.HTTPAddress == "" {
		cfg.Server.HTTPAddress = defaultHTTPAddress
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = defaultRequestTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.Limiter.LoginAttempts == 0 {
		cfg.Limiter.LoginAttempts = defaultLoginAttempts
	}
	if cfg.Limiter.Window == 0 {
		cfg.Limiter.Window = defaultLimiterWindow
	}

	if cfg.Notifier.Queue == "" {
		cfg.Notifier.Queue = defaultNotifierQueue
	}

	if cfg.Workers.SweepInterval == 0 {
		cfg.Workers.SweepInterval = defaultSweepInterval
	}
}

// driverFromDSN guesses the storage driver from the DSN scheme.
func driverFromDSN(dsn string) string {
	switch {
	case dsn == "":
		return DriverMemory
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return DriverPostgres
	case strings.HasPrefix(dsn, "file:"), strings.HasSuffix(dsn, ".db"), strings.HasSuffix(dsn, ".sqlite"):
		return DriverSQLite
	default:
		return DriverPostgres
	}
}

// validate checks that the final merged [StructuredConfig] satisfies all
// invariants before it is used at startup.
func (cfg *StructuredConfig) validate() error {
	if cfg.App.AccessTokenSignKey == "" || cfg.App.RefreshTokenSignKey == "" {
		return fmt.Errorf("%w: access and refresh token sign keys are required", ErrInvalidAppConfigs)
	}
	if cfg.App.AccessTokenSignKey == cfg.App.RefreshTokenSignKey {
		return fmt.Errorf("%w: access and refresh token sign keys must differ", ErrInvalidAppConfigs)
	}
	if cfg.App.BcryptCost < bcrypt.MinCost || cfg.App.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("%w: bcrypt cost must be in range %d..%d", ErrInvalidAppConfigs, bcrypt.MinCost, bcrypt.MaxCost)
	}
	if cfg.App.AccessTokenDuration < 0 || cfg.App.RefreshTokenDuration < 0 || cfg.App.ResetTokenDuration < 0 {
		return fmt.Errorf("%w: token durations must be positive", ErrInvalidAppConfigs)
	}

	switch cfg.Storage.DB.Driver {
	case DriverMemory:
	case DriverPostgres, DriverSQLite:
		if cfg.Storage.DB.DSN == "" {
			return fmt.Errorf("%w: driver %q requires a DSN", ErrInvalidStorageConfigs, cfg.Storage.DB.Driver)
		}
	default:
		return fmt.Errorf("%w: unknown driver %q", ErrInvalidStorageConfigs, cfg.Storage.DB.Driver)
	}

	if cfg.Limiter.LoginAttempts < 0 || cfg.Limiter.Window < 0 {
		return ErrInvalidLimiterConfigs
	}

	return nil
}

func (cfg *ClientConfig) validate() error {
	if cfg.Adapter.HTTPAddress == "" || cfg.Adapter.RequestTimeout <= 0 {
		return ErrInvalidAdapterConfigs
	}

	return nil
}
