// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"sync"
	"time"

	"github.com/MKhiriev/go-auth-service/internal/logger"
	"github.com/MKhiriev/go-auth-service/internal/utils"
	"github.com/MKhiriev/go-auth-service/models"
)

// memoryUserRepository keeps users in process memory. It backs the "memory"
// driver for local runs and tests; nothing survives a restart.
type memoryUserRepository struct {
	mu      sync.RWMutex
	users   map[string]models.User // by id
	byEmail map[string]string      // email -> id
	ids     *utils.UUIDGenerator
}

// NewMemoryUserRepository returns an empty in-memory [UserRepository].
func NewMemoryUserRepository(logger *logger.Logger) UserRepository {
	logger.Debug().Msg("creating in-memory user repository")
	return &memoryUserRepository{
		users:   make(map[string]models.User),
		byEmail: make(map[string]string),
		ids:     utils.NewUUIDGenerator(),
	}
}

func (r *memoryUserRepository) FindByEmail(_ context.Context, email string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return models.User{}, ErrNoUserWasFound
	}
	return cloneUser(r.users[id]), nil
}

func (r *memoryUserRepository) FindByRefreshToken(_ context.Context, tokenHash string) (models.User, error) {
	return r.findFirst(func(u models.User) bool {
		return tokenHash != "" && u.RefreshToken == tokenHash
	})
}

func (r *memoryUserRepository) FindByResetTokenHash(_ context.Context, hash string, notExpiredAsOf time.Time) (models.User, error) {
	return r.findFirst(func(u models.User) bool {
		return hash != "" &&
			u.ResetPasswordToken == hash &&
			u.ResetPasswordExpires != nil &&
			u.ResetPasswordExpires.After(notExpiredAsOf)
	})
}

func (r *memoryUserRepository) findFirst(match func(models.User) bool) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if match(u) {
			return cloneUser(u), nil
		}
	}
	return models.User{}, ErrNoUserWasFound
}

func (r *memoryUserRepository) Create(_ context.Context, user models.User) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[user.Email]; taken {
		return models.User{}, ErrEmailAlreadyExists
	}

	if user.UserID == "" {
		user.UserID = r.ids.Generate()
	}
	if _, taken := r.users[user.UserID]; taken {
		return models.User{}, ErrEmailAlreadyExists
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = user.CreatedAt
	}

	stored := cloneUser(user)
	r.users[stored.UserID] = stored
	r.byEmail[stored.Email] = stored.UserID

	return cloneUser(stored), nil
}

func (r *memoryUserRepository) SaveSession(_ context.Context, id, tokenHash string, expires, at time.Time) error {
	return r.update(id, func(u *models.User) bool {
		u.SetSession(tokenHash, expires)
		return true
	}, at)
}

func (r *memoryUserRepository) ClearSession(_ context.Context, id, tokenHash string, at time.Time) error {
	return r.update(id, func(u *models.User) bool {
		if tokenHash == "" || u.RefreshToken != tokenHash {
			return false
		}
		u.ClearSession()
		return true
	}, at)
}

func (r *memoryUserRepository) SetPasswordReset(_ context.Context, id, tokenHash string, expires, at time.Time) error {
	return r.update(id, func(u *models.User) bool {
		u.SetPasswordReset(tokenHash, expires)
		return true
	}, at)
}

func (r *memoryUserRepository) ResetPassword(_ context.Context, id, tokenHash, passwordHash string, at time.Time) error {
	return r.update(id, func(u *models.User) bool {
		if tokenHash == "" ||
			u.ResetPasswordToken != tokenHash ||
			u.ResetPasswordExpires == nil ||
			!u.ResetPasswordExpires.After(at) {
			return false
		}
		u.PasswordHash = passwordHash
		u.ClearPasswordReset()
		return true
	}, at)
}

// update applies change to the stored user id under the write lock. A
// change that reports false leaves the record untouched and the call
// returns ErrNoUserWasFound, mirroring an UPDATE whose WHERE matched nothing.
func (r *memoryUserRepository) update(id string, change func(*models.User) bool, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return ErrNoUserWasFound
	}
	u = cloneUser(u)
	if !change(&u) {
		return ErrNoUserWasFound
	}
	u.UpdatedAt = at.UTC()
	r.users[id] = u

	return nil
}

func (r *memoryUserRepository) ClearExpiredTokens(_ context.Context, asOf time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var cleared int64
	for id, u := range r.users {
		changed := false
		if u.RefreshTokenExpires != nil && !u.RefreshTokenExpires.After(asOf) {
			u.ClearSession()
			cleared++
			changed = true
		}
		if u.ResetPasswordExpires != nil && !u.ResetPasswordExpires.After(asOf) {
			u.ClearPasswordReset()
			cleared++
			changed = true
		}
		if changed {
			u.UpdatedAt = asOf
			r.users[id] = u
		}
	}

	return cleared, nil
}

// cloneUser copies the expiry pointers so callers never share state with the
// stored record.
func cloneUser(u models.User) models.User {
	if u.RefreshTokenExpires != nil {
		t := *u.RefreshTokenExpires
		u.RefreshTokenExpires = &t
	}
	if u.ResetPasswordExpires != nil {
		t := *u.ResetPasswordExpires
		u.ResetPasswordExpires = &t
	}
	return u
}
