// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/MKhiriev/go-auth-service/internal/config"
	"github.com/MKhiriev/go-auth-service/internal/logger"
	"github.com/MKhiriev/go-auth-service/internal/store"
	"github.com/MKhiriev/go-auth-service/models"
	"golang.org/x/crypto/bcrypt"
)

// fakeClock is a manually advanced clock shared by the services under test.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// recordingNotifier keeps every reset token it is handed.
type recordingNotifier struct {
	mu     sync.Mutex
	tokens []models.ResetToken
}

func (n *recordingNotifier) NotifyPasswordReset(_ context.Context, _ models.User, token models.ResetToken) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.tokens = append(n.tokens, token)
	return nil
}

func testAppConfig() config.App {
	return config.App{
		AccessTokenSignKey:   "access-secret",
		RefreshTokenSignKey:  "refresh-secret",
		TokenIssuer:          "go-auth-service-test",
		AccessTokenDuration:  15 * time.Minute,
		RefreshTokenDuration: 7 * 24 * time.Hour,
		ResetTokenDuration:   10 * time.Minute,
		BcryptCost:           bcrypt.MinCost,
		Version:              "test",
	}
}

type testEnv struct {
	auth     *authService
	tokens   *tokenService
	repo     store.UserRepository
	clock    *fakeClock
	notifier *recordingNotifier
}

// newTestEnv wires the real services over the in-memory store.
func newTestEnv(t *testing.T, rotate bool) *testEnv {
	t.Helper()

	cfg := testAppConfig()
	clock := newFakeClock()
	repo := store.NewMemoryUserRepository(logger.Nop())
	tokens := newTokenService(repo, cfg, clock.Now, logger.Nop())
	notifier := &recordingNotifier{}

	auth := NewAuthService(repo, tokens, NewPasswordHasher(cfg.BcryptCost), notifier, rotate, logger.Nop()).(*authService)
	auth.now = clock.Now

	return &testEnv{auth: auth, tokens: tokens, repo: repo, clock: clock, notifier: notifier}
}

func (e *testEnv) signup(t *testing.T, email, password string) models.UserProfile {
	t.Helper()
	profile, err := e.auth.Signup(context.Background(), models.SignupInput{Name: "Test", Email: email, Password: password})
	if err != nil {
		t.Fatalf("signup %s: %v", email, err)
	}
	return profile
}

func (e *testEnv) login(t *testing.T, email, password string) models.TokenPair {
	t.Helper()
	pair, err := e.auth.Login(context.Background(), models.LoginInput{Email: email, Password: password})
	if err != nil {
		t.Fatalf("login %s: %v", email, err)
	}
	return pair
}

func storagesFor(env *testEnv) *store.Storages {
	return &store.Storages{UserRepository: env.repo}
}
