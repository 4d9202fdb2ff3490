// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-auth-service/models"
)

const usersTable = "users"

// userColumns is the column order used by every SELECT and INSERT; scanUser
// relies on it.
var userColumns = []string{
	"id",
	"name",
	"email",
	"password_hash",
	"role",
	"refresh_token",
	"refresh_token_expires",
	"reset_password_token",
	"reset_password_expires",
	"created_at",
	"updated_at",
}

func buildFindUserQuery(ph sq.PlaceholderFormat, where sq.Sqlizer) (string, []any, error) {
	return sq.Select(userColumns...).
		From(usersTable).
		Where(where).
		Limit(1).
		PlaceholderFormat(ph).
		ToSql()
}

func buildInsertUserQuery(ph sq.PlaceholderFormat, user models.User) (string, []any, error) {
	return sq.Insert(usersTable).
		Columns(userColumns...).
		Values(
			user.UserID,
			user.Name,
			user.Email,
			user.PasswordHash,
			user.Role,
			nullString(user.RefreshToken),
			nullTime(user.RefreshTokenExpires),
			nullString(user.ResetPasswordToken),
			nullTime(user.ResetPasswordExpires),
			user.CreatedAt.UTC(),
			user.UpdatedAt.UTC(),
		).
		PlaceholderFormat(ph).
		ToSql()
}

func buildSaveSessionQuery(ph sq.PlaceholderFormat, id, tokenHash string, expires, at time.Time) (string, []any, error) {
	return sq.Update(usersTable).
		Set("refresh_token", tokenHash).
		Set("refresh_token_expires", expires.UTC()).
		Set("updated_at", at.UTC()).
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(ph).
		ToSql()
}

// buildClearSessionQuery only matches while the session is still the one
// being revoked.
func buildClearSessionQuery(ph sq.PlaceholderFormat, id, tokenHash string, at time.Time) (string, []any, error) {
	return sq.Update(usersTable).
		Set("refresh_token", nil).
		Set("refresh_token_expires", nil).
		Set("updated_at", at.UTC()).
		Where(sq.Eq{"id": id, "refresh_token": tokenHash}).
		PlaceholderFormat(ph).
		ToSql()
}

func buildSetPasswordResetQuery(ph sq.PlaceholderFormat, id, tokenHash string, expires, at time.Time) (string, []any, error) {
	return sq.Update(usersTable).
		Set("reset_password_token", tokenHash).
		Set("reset_password_expires", expires.UTC()).
		Set("updated_at", at.UTC()).
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(ph).
		ToSql()
}

// buildResetPasswordQuery is guarded by the reset digest and its expiry, so
// of two racing resets with the same token only one updates a row.
func buildResetPasswordQuery(ph sq.PlaceholderFormat, id, tokenHash, passwordHash string, at time.Time) (string, []any, error) {
	return sq.Update(usersTable).
		Set("password_hash", passwordHash).
		Set("reset_password_token", nil).
		Set("reset_password_expires", nil).
		Set("updated_at", at.UTC()).
		Where(sq.And{
			sq.Eq{"id": id},
			sq.Eq{"reset_password_token": tokenHash},
			sq.Gt{"reset_password_expires": at.UTC()},
		}).
		PlaceholderFormat(ph).
		ToSql()
}

func buildClearExpiredRefreshTokensQuery(ph sq.PlaceholderFormat, asOf time.Time) (string, []any, error) {
	return sq.Update(usersTable).
		Set("refresh_token", nil).
		Set("refresh_token_expires", nil).
		Set("updated_at", asOf.UTC()).
		Where(sq.And{
			sq.NotEq{"refresh_token": nil},
			sq.LtOrEq{"refresh_token_expires": asOf.UTC()},
		}).
		PlaceholderFormat(ph).
		ToSql()
}

func buildClearExpiredResetTokensQuery(ph sq.PlaceholderFormat, asOf time.Time) (string, []any, error) {
	return sq.Update(usersTable).
		Set("reset_password_token", nil).
		Set("reset_password_expires", nil).
		Set("updated_at", asOf.UTC()).
		Where(sq.And{
			sq.NotEq{"reset_password_token": nil},
			sq.LtOrEq{"reset_password_expires": asOf.UTC()},
		}).
		PlaceholderFormat(ph).
		ToSql()
}

// scanUser reads one row in userColumns order.
func scanUser(row interface{ Scan(dest ...any) error }, user *models.User) error {
	var (
		refreshToken, resetToken     sql.NullString
		refreshExpires, resetExpires sql.NullTime
	)

	if err := row.Scan(
		&user.UserID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&refreshToken,
		&refreshExpires,
		&resetToken,
		&resetExpires,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return err
	}

	user.RefreshToken = refreshToken.String
	user.RefreshTokenExpires = timePtr(refreshExpires)
	user.ResetPasswordToken = resetToken.String
	user.ResetPasswordExpires = timePtr(resetExpires)

	return nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}
