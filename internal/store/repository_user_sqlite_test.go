// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-auth-service/internal/config"
	"github.com/MKhiriev/go-auth-service/internal/logger"
	"github.com/MKhiriev/go-auth-service/models"
)

// newSQLiteStorages opens a migrated SQLite database in a temp dir.
func newSQLiteStorages(t *testing.T) *Storages {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "auth.db")

	s, err := NewStorages(context.Background(), config.DB{Driver: config.DriverSQLite, DSN: dsn}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// TestSQLiteAndMemory_BehaveAlike runs the same scenario against both
// backends.
func TestSQLiteAndMemory_BehaveAlike(t *testing.T) {
	backends := map[string]func(t *testing.T) UserRepository{
		"sqlite": func(t *testing.T) UserRepository { return newSQLiteStorages(t).UserRepository },
		"memory": func(*testing.T) UserRepository { return NewMemoryUserRepository(logger.Nop()) },
	}

	for name, newRepo := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := newRepo(t)
			now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

			created, err := repo.Create(ctx, models.User{
				Name:         "Ann",
				Email:        "ann@example.com",
				PasswordHash: "hash",
				Role:         models.DefaultRole,
				CreatedAt:    now,
				UpdatedAt:    now,
			})
			require.NoError(t, err)
			require.NotEmpty(t, created.UserID)

			_, err = repo.Create(ctx, models.User{Name: "Dup", Email: "ann@example.com", PasswordHash: "x", Role: "user"})
			assert.ErrorIs(t, err, ErrEmailAlreadyExists)

			found, err := repo.FindByEmail(ctx, "ann@example.com")
			require.NoError(t, err)
			assert.Equal(t, created.UserID, found.UserID)
			assert.False(t, found.HasSession())

			require.NoError(t, repo.SaveSession(ctx, found.UserID, "refresh-digest", now.Add(time.Hour), now))
			require.NoError(t, repo.SetPasswordReset(ctx, found.UserID, "reset-digest", now.Add(10*time.Minute), now))

			byRefresh, err := repo.FindByRefreshToken(ctx, "refresh-digest")
			require.NoError(t, err)
			assert.Equal(t, created.UserID, byRefresh.UserID)
			require.NotNil(t, byRefresh.RefreshTokenExpires)
			assert.True(t, now.Add(time.Hour).Equal(*byRefresh.RefreshTokenExpires))

			_, err = repo.FindByResetTokenHash(ctx, "reset-digest", now.Add(9*time.Minute))
			assert.NoError(t, err)
			_, err = repo.FindByResetTokenHash(ctx, "reset-digest", now.Add(10*time.Minute))
			assert.ErrorIs(t, err, ErrNoUserWasFound)
			_, err = repo.FindByResetTokenHash(ctx, "other-digest", now)
			assert.ErrorIs(t, err, ErrNoUserWasFound)

			cleared, err := repo.ClearExpiredTokens(ctx, now.Add(30*time.Minute))
			require.NoError(t, err)
			assert.Equal(t, int64(1), cleared)

			after, err := repo.FindByEmail(ctx, "ann@example.com")
			require.NoError(t, err)
			assert.True(t, after.HasSession())
			assert.Empty(t, after.ResetPasswordToken)
			assert.Nil(t, after.ResetPasswordExpires)

			assert.ErrorIs(t, repo.SaveSession(ctx, "missing", "d", now, now), ErrNoUserWasFound)
		})
	}
}

// TestSQLiteAndMemory_GuardedUpdates checks that session and reset updates
// leave unrelated columns alone and that a reset token is spent once.
func TestSQLiteAndMemory_GuardedUpdates(t *testing.T) {
	backends := map[string]func(t *testing.T) UserRepository{
		"sqlite": func(t *testing.T) UserRepository { return newSQLiteStorages(t).UserRepository },
		"memory": func(*testing.T) UserRepository { return NewMemoryUserRepository(logger.Nop()) },
	}

	for name, newRepo := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := newRepo(t)
			now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

			u, err := repo.Create(ctx, models.User{Name: "Ann", Email: "ann@example.com", PasswordHash: "old-hash", Role: models.DefaultRole})
			require.NoError(t, err)

			require.NoError(t, repo.SetPasswordReset(ctx, u.UserID, "reset-digest", now.Add(10*time.Minute), now))
			require.NoError(t, repo.ResetPassword(ctx, u.UserID, "reset-digest", "new-hash", now.Add(time.Minute)))

			// a session saved from a snapshot taken before the reset
			require.NoError(t, repo.SaveSession(ctx, u.UserID, "refresh-digest", now.Add(time.Hour), now.Add(2*time.Minute)))

			got, err := repo.FindByEmail(ctx, "ann@example.com")
			require.NoError(t, err)
			assert.Equal(t, "new-hash", got.PasswordHash)
			assert.Empty(t, got.ResetPasswordToken)
			assert.True(t, got.HasSession())

			assert.ErrorIs(t, repo.ResetPassword(ctx, u.UserID, "reset-digest", "other-hash", now.Add(time.Minute)), ErrNoUserWasFound)

			require.NoError(t, repo.SetPasswordReset(ctx, u.UserID, "late-digest", now.Add(10*time.Minute), now))
			assert.ErrorIs(t, repo.ResetPassword(ctx, u.UserID, "late-digest", "other-hash", now.Add(10*time.Minute)), ErrNoUserWasFound)

			assert.ErrorIs(t, repo.ClearSession(ctx, u.UserID, "stale-digest", now), ErrNoUserWasFound)
			require.NoError(t, repo.ClearSession(ctx, u.UserID, "refresh-digest", now))

			got, err = repo.FindByEmail(ctx, "ann@example.com")
			require.NoError(t, err)
			assert.False(t, got.HasSession())
			assert.Equal(t, "new-hash", got.PasswordHash)
		})
	}
}

func TestNewStorages_Memory(t *testing.T) {
	s, err := NewStorages(context.Background(), config.DB{Driver: config.DriverMemory}, logger.Nop())
	require.NoError(t, err)
	assert.NotNil(t, s.UserRepository)
	assert.NoError(t, s.Close())
}

func TestNewStorages_UnknownDriver(t *testing.T) {
	_, err := NewStorages(context.Background(), config.DB{Driver: "mysql"}, logger.Nop())
	assert.ErrorIs(t, err, ErrUnknownDriver)
}
