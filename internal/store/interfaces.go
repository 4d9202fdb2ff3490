// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"time"

	"github.com/MKhiriev/go-auth-service/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/user_repository_mock.go -package=mock

// UserRepository is the credential store. Emails passed to it are expected
// to be normalised by the caller.
//
// Lookups that match nothing return [ErrNoUserWasFound].
type UserRepository interface {
	// FindByEmail returns the user registered with email.
	FindByEmail(ctx context.Context, email string) (models.User, error)

	// FindByRefreshToken returns the user whose stored refresh token digest
	// equals tokenHash. Expiry is not checked.
	FindByRefreshToken(ctx context.Context, tokenHash string) (models.User, error)

	// FindByResetTokenHash returns the user whose stored reset token digest
	// equals hash and whose reset expiry is after notExpiredAsOf.
	FindByResetTokenHash(ctx context.Context, hash string, notExpiredAsOf time.Time) (models.User, error)

	// Create inserts a new user. It returns [ErrEmailAlreadyExists] when the
	// email is taken.
	Create(ctx context.Context, user models.User) (models.User, error)

	// SaveSession stores the refresh token digest and expiry of user id,
	// replacing any previous session. No other column is written.
	SaveSession(ctx context.Context, id, tokenHash string, expires, at time.Time) error

	// ClearSession removes the session of user id only while its stored
	// refresh digest still equals tokenHash; otherwise it returns
	// [ErrNoUserWasFound].
	ClearSession(ctx context.Context, id, tokenHash string, at time.Time) error

	// SetPasswordReset stores a pending reset token digest and expiry for
	// user id, replacing any previous one.
	SetPasswordReset(ctx context.Context, id, tokenHash string, expires, at time.Time) error

	// ResetPassword replaces the password hash of user id and clears the
	// pending reset in one conditional update. It succeeds only while the
	// stored reset digest equals tokenHash and expires after at, so a reset
	// token can be spent once; otherwise it returns [ErrNoUserWasFound].
	ResetPassword(ctx context.Context, id, tokenHash, passwordHash string, at time.Time) error

	// ClearExpiredTokens removes refresh and reset token pairs that expired
	// at or before asOf and returns how many pairs were cleared.
	ClearExpiredTokens(ctx context.Context, asOf time.Time) (int64, error)
}
