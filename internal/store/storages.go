// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-auth-service/internal/config"
	"github.com/MKhiriev/go-auth-service/internal/logger"
)

// Storages groups the repositories used by the service layer.
type Storages struct {
	UserRepository UserRepository

	db *DB
}

// NewStorages opens the backend selected by cfg.Driver, applies migrations
// for SQL backends and wires the repositories.
func NewStorages(ctx context.Context, cfg config.DB, log *logger.Logger) (*Storages, error) {
	var (
		db  *DB
		err error
	)

	switch cfg.Driver {
	case config.DriverMemory:
		log.Warn().Msg("using in-memory storage, data will be lost on restart")
		return &Storages{UserRepository: NewMemoryUserRepository(log)}, nil
	case config.DriverPostgres:
		db, err = NewConnectPostgres(ctx, cfg, log)
	case config.DriverSQLite:
		db, err = NewConnectSQLite(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err = db.Migrate(); err != nil {
		log.Err(err).Str("func", "NewStorages").Msg("error migrating database")
		_ = db.Close()
		return nil, err
	}

	return &Storages{
		UserRepository: NewUserRepository(db, log),
		db:             db,
	}, nil
}

// Close releases the database connection, if any.
func (s *Storages) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
