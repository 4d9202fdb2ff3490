// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MKhiriev/go-auth-service/internal/logger"
	"github.com/MKhiriev/go-auth-service/internal/mock"
	"github.com/MKhiriev/go-auth-service/internal/store"
	"github.com/MKhiriev/go-auth-service/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fakeRecorder struct {
	swept atomic.Int64
}

func (f *fakeRecorder) AddSweptTokens(n int64) { f.swept.Add(n) }

func TestTokenSweeper_Sweep(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockUserRepository(ctrl)
	rec := &fakeRecorder{}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	s := NewTokenSweeper(repo, time.Minute, rec, logger.Nop())
	s.now = func() time.Time { return now }

	repo.EXPECT().ClearExpiredTokens(gomock.Any(), now).Return(int64(3), nil)

	assert.Equal(t, int64(3), s.Sweep(context.Background()))
	assert.Equal(t, int64(3), rec.swept.Load())
}

func TestTokenSweeper_Sweep_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockUserRepository(ctrl)
	rec := &fakeRecorder{}

	repo.EXPECT().ClearExpiredTokens(gomock.Any(), gomock.Any()).Return(int64(0), store.ErrExecutingStatement)

	s := NewTokenSweeper(repo, time.Minute, rec, logger.Nop())
	assert.Zero(t, s.Sweep(context.Background()))
	assert.Zero(t, rec.swept.Load())
}

func TestTokenSweeper_Sweep_NilRecorder(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockUserRepository(ctrl)
	repo.EXPECT().ClearExpiredTokens(gomock.Any(), gomock.Any()).Return(int64(1), nil)

	s := NewTokenSweeper(repo, time.Minute, nil, logger.Nop())
	assert.Equal(t, int64(1), s.Sweep(context.Background()))
}

// TestTokenSweeper_Run_SweepsUntilCancelled verifies that Run sweeps on start,
// keeps sweeping on every tick and returns once the context is cancelled.
func TestTokenSweeper_Run_SweepsUntilCancelled(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockUserRepository(ctrl)
	ctx, cancel := context.WithCancel(context.Background())

	var calls atomic.Int32
	repo.EXPECT().ClearExpiredTokens(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, time.Time) (int64, error) {
			if calls.Add(1) == 3 {
				cancel()
			}
			return 0, nil
		}).MinTimes(3)

	s := NewTokenSweeper(repo, 5*time.Millisecond, nil, logger.Nop())

	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop")
	}
	assert.GreaterOrEqual(t, calls.Load(), int32(3))
}

func TestTokenSweeper_Run_Disabled(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockUserRepository(ctrl)

	s := NewTokenSweeper(repo, 0, nil, logger.Nop())
	s.Run(context.Background())
}

// TestTokenSweeper_ClearsExpiredReset exercises the sweeper against the
// in-memory store: an expired reset token is gone after one pass while a
// live refresh token survives.
func TestTokenSweeper_ClearsExpiredReset(t *testing.T) {
	ctx := context.Background()
	repo := store.NewMemoryUserRepository(logger.Nop())
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	u, err := repo.Create(ctx, models.User{Name: "Ann", Email: "ann@example.com", PasswordHash: "h", Role: models.DefaultRole})
	require.NoError(t, err)

	refreshExp := now.Add(time.Hour)
	resetExp := now.Add(-time.Minute)
	require.NoError(t, repo.SaveSession(ctx, u.UserID, "live-refresh", refreshExp, now))
	require.NoError(t, repo.SetPasswordReset(ctx, u.UserID, "stale-reset", resetExp, now))

	rec := &fakeRecorder{}
	s := NewTokenSweeper(repo, time.Minute, rec, logger.Nop())
	s.now = func() time.Time { return now }

	assert.Equal(t, int64(1), s.Sweep(ctx))
	assert.Equal(t, int64(1), rec.swept.Load())

	_, err = repo.FindByResetTokenHash(ctx, "stale-reset", now.Add(-time.Hour))
	assert.ErrorIs(t, err, store.ErrNoUserWasFound)

	got, err := repo.FindByRefreshToken(ctx, "live-refresh")
	require.NoError(t, err)
	assert.Equal(t, u.UserID, got.UserID)
}
