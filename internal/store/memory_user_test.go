// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-auth-service/internal/logger"
	"github.com/MKhiriev/go-auth-service/models"
)

// TestMemory_ReturnsCopies verifies that mutating a returned user does not
// change the stored record.
func TestMemory_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository(logger.Nop())

	exp := time.Now().Add(time.Hour)
	u := models.User{Email: "a@example.com", PasswordHash: "h", Role: "user"}
	u.SetSession("digest", exp)
	created, err := repo.Create(ctx, u)
	require.NoError(t, err)

	*created.RefreshTokenExpires = time.Time{}
	created.Name = "changed"

	stored, err := repo.FindByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.True(t, exp.Equal(*stored.RefreshTokenExpires))
	assert.Empty(t, stored.Name)
}

// TestMemory_ConcurrentResetSpendsTokenOnce verifies that of many racing
// resets with the same token exactly one changes the password.
func TestMemory_ConcurrentResetSpendsTokenOnce(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository(logger.Nop())
	now := time.Now()

	u, err := repo.Create(ctx, models.User{Email: "a@example.com", PasswordHash: "old"})
	require.NoError(t, err)
	require.NoError(t, repo.SetPasswordReset(ctx, u.UserID, "digest", now.Add(time.Minute), now))

	var (
		wg      sync.WaitGroup
		success atomic.Int32
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if repo.ResetPassword(ctx, u.UserID, "digest", fmt.Sprint("hash-", i), now) == nil {
				success.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), success.Load())
}

func TestMemory_EmptyTokenNeverMatches(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository(logger.Nop())
	_, _ = repo.Create(ctx, models.User{Email: "a@example.com", PasswordHash: "h"})

	_, err := repo.FindByRefreshToken(ctx, "")
	assert.ErrorIs(t, err, ErrNoUserWasFound)
	_, err = repo.FindByResetTokenHash(ctx, "", time.Now())
	assert.ErrorIs(t, err, ErrNoUserWasFound)
}

// TestMemory_ConcurrentCreateSameEmail verifies that exactly one of many
// concurrent signups with the same email wins.
func TestMemory_ConcurrentCreateSameEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository(logger.Nop())

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.Create(ctx, models.User{Name: fmt.Sprint(i), Email: "same@example.com", PasswordHash: "h"})
			if err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, success)
}
