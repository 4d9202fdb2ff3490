// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-auth-service/internal/logger"
	"github.com/MKhiriev/go-auth-service/migrations"
)

// retryDelays are the pauses between attempts of a statement that failed
// with a [Retryable] error. Their count is the number of retries.
var retryDelays = []time.Duration{100 * time.Millisecond, 300 * time.Millisecond}

// DB is a *sql.DB bound to one SQL dialect.
type DB struct {
	*sql.DB
	dialect            migrations.Dialect
	placeholder        sq.PlaceholderFormat
	errorClassificator ErrorClassificator
	logger             *logger.Logger
}

// Migrate applies all pending schema migrations for the DB's dialect.
func (db *DB) Migrate() error {
	return migrations.Migrate(db.DB, db.dialect)
}

func (db *DB) classify(err error) ErrorClassification {
	if db.errorClassificator == nil {
		return NonRetryable
	}
	return db.errorClassificator.Classify(err)
}

// withRetry runs op and repeats it while it fails with a [Retryable] error,
// up to len(retryDelays) more times or until ctx is done.
func (db *DB) withRetry(ctx context.Context, op func() error) error {
	err := op()
	for _, delay := range retryDelays {
		if err == nil || db.classify(err) != Retryable {
			return err
		}

		db.logger.Warn().Err(err).Dur("delay", delay).Msg("retrying statement after transient error")

		select {
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		case <-time.After(delay):
		}

		err = op()
	}

	return err
}
