// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-auth-service/internal/logger"
	"github.com/MKhiriev/go-auth-service/internal/utils"
	"github.com/MKhiriev/go-auth-service/models"
)

// userRepository is the SQL implementation of [UserRepository] working on
// the "users" table for both PostgreSQL and SQLite.
//
// All methods obtain a context-scoped logger via [logger.FromContext].
type userRepository struct {
	db     *DB
	ids    *utils.UUIDGenerator
	logger *logger.Logger
}

// NewUserRepository constructs a [UserRepository] backed by db.
func NewUserRepository(db *DB, logger *logger.Logger) UserRepository {
	logger.Debug().Msg("creating user repository")
	return &userRepository{
		db:     db,
		ids:    utils.NewUUIDGenerator(),
		logger: logger,
	}
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	return r.findOne(ctx, "*userRepository.FindByEmail", sq.Eq{"email": email})
}

func (r *userRepository) FindByRefreshToken(ctx context.Context, tokenHash string) (models.User, error) {
	return r.findOne(ctx, "*userRepository.FindByRefreshToken", sq.Eq{"refresh_token": tokenHash})
}

func (r *userRepository) FindByResetTokenHash(ctx context.Context, hash string, notExpiredAsOf time.Time) (models.User, error) {
	return r.findOne(ctx, "*userRepository.FindByResetTokenHash", sq.And{
		sq.Eq{"reset_password_token": hash},
		sq.Gt{"reset_password_expires": notExpiredAsOf.UTC()},
	})
}

func (r *userRepository) findOne(ctx context.Context, fn string, where sq.Sqlizer) (models.User, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildFindUserQuery(r.db.placeholder, where)
	if err != nil {
		log.Err(err).Str("func", fn).Msg("error building query")
		return models.User{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var user models.User
	err = r.db.withRetry(ctx, func() error {
		return scanUser(r.db.QueryRowContext(ctx, query, args...), &user)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNoUserWasFound
	}
	if err != nil {
		log.Err(err).Str("func", fn).Msg("error querying user")
		return models.User{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return user, nil
}

// Create assigns a UUIDv7 when user.UserID is empty and fills missing
// timestamps before inserting.
//
// Error handling:
//   - unique violation → [ErrEmailAlreadyExists].
//   - any other driver error → wrapped [ErrExecutingStatement].
func (r *userRepository) Create(ctx context.Context, user models.User) (models.User, error) {
	log := logger.FromContext(ctx)

	if user.UserID == "" {
		user.UserID = r.ids.Generate()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = user.CreatedAt
	}

	query, args, err := buildInsertUserQuery(r.db.placeholder, user)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.Create").Msg("error building query")
		return models.User{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	err = r.db.withRetry(ctx, func() error {
		_, execErr := r.db.ExecContext(ctx, query, args...)
		return execErr
	})
	if err != nil {
		if r.db.classify(err) == Conflict {
			return models.User{}, ErrEmailAlreadyExists
		}
		log.Err(err).Str("func", "*userRepository.Create").Msg("error inserting user")
		return models.User{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return user, nil
}

func (r *userRepository) SaveSession(ctx context.Context, id, tokenHash string, expires, at time.Time) error {
	query, args, err := buildSaveSessionQuery(r.db.placeholder, id, tokenHash, expires, at)
	return r.updateOne(ctx, "*userRepository.SaveSession", query, args, err)
}

func (r *userRepository) ClearSession(ctx context.Context, id, tokenHash string, at time.Time) error {
	query, args, err := buildClearSessionQuery(r.db.placeholder, id, tokenHash, at)
	return r.updateOne(ctx, "*userRepository.ClearSession", query, args, err)
}

func (r *userRepository) SetPasswordReset(ctx context.Context, id, tokenHash string, expires, at time.Time) error {
	query, args, err := buildSetPasswordResetQuery(r.db.placeholder, id, tokenHash, expires, at)
	return r.updateOne(ctx, "*userRepository.SetPasswordReset", query, args, err)
}

func (r *userRepository) ResetPassword(ctx context.Context, id, tokenHash, passwordHash string, at time.Time) error {
	query, args, err := buildResetPasswordQuery(r.db.placeholder, id, tokenHash, passwordHash, at)
	return r.updateOne(ctx, "*userRepository.ResetPassword", query, args, err)
}

// updateOne runs a single-row UPDATE built by one of the build*Query
// helpers. A statement that matches no row returns [ErrNoUserWasFound].
func (r *userRepository) updateOne(ctx context.Context, fn, query string, args []any, buildErr error) error {
	log := logger.FromContext(ctx)

	if buildErr != nil {
		log.Err(buildErr).Str("func", fn).Msg("error building query")
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, buildErr)
	}

	var res sql.Result
	err := r.db.withRetry(ctx, func() error {
		var execErr error
		res, execErr = r.db.ExecContext(ctx, query, args...)
		return execErr
	})
	if err != nil {
		log.Err(err).Str("func", fn).Msg("error updating user")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return ErrNoUserWasFound
	}

	return nil
}

// ClearExpiredTokens clears expired refresh and reset token pairs in one
// transaction and returns the number of pairs cleared.
func (r *userRepository) ClearExpiredTokens(ctx context.Context, asOf time.Time) (int64, error) {
	log := logger.FromContext(ctx)

	refreshQuery, refreshArgs, err := buildClearExpiredRefreshTokensQuery(r.db.placeholder, asOf)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	resetQuery, resetArgs, err := buildClearExpiredResetTokensQuery(r.db.placeholder, asOf)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var cleared int64
	err = r.db.withRetry(ctx, func() error {
		cleared = 0

		tx, txErr := r.db.BeginTx(ctx, nil)
		if txErr != nil {
			return txErr
		}
		defer func() { _ = tx.Rollback() }()

		for _, stmt := range []struct {
			query string
			args  []any
		}{
			{refreshQuery, refreshArgs},
			{resetQuery, resetArgs},
		} {
			res, execErr := tx.ExecContext(ctx, stmt.query, stmt.args...)
			if execErr != nil {
				return execErr
			}
			n, execErr := res.RowsAffected()
			if execErr != nil {
				return execErr
			}
			cleared += n
		}

		return tx.Commit()
	})
	if err != nil {
		log.Err(err).Str("func", "*userRepository.ClearExpiredTokens").Msg("error clearing expired tokens")
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return cleared, nil
}
