// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/MKhiriev/go-auth-service/internal/logger"
	"github.com/MKhiriev/go-auth-service/internal/store"
	"github.com/MKhiriev/go-auth-service/internal/utils"
	"github.com/MKhiriev/go-auth-service/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Signup ───────────────────────────────────────────────────────────────────

// TestSignup_StoresHashNotPassword verifies that the stored record never
// holds the raw password and that the profile exposes no credentials.
func TestSignup_StoresHashNotPassword(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	for _, tc := range []struct{ email, password string }{
		{"ann@example.com", "secret1"},
		{"bob@example.com", "another-password"},
		{"cy@example.com", "пароль-123"},
	} {
		profile := env.signup(t, tc.email, tc.password)
		assert.NotEmpty(t, profile.ID)
		assert.Equal(t, tc.email, profile.Email)

		stored, err := env.repo.FindByEmail(ctx, tc.email)
		require.NoError(t, err)
		assert.NotEmpty(t, stored.PasswordHash)
		assert.NotEqual(t, tc.password, stored.PasswordHash)
		assert.Equal(t, models.DefaultRole, stored.Role)
		assert.False(t, stored.HasSession())
	}
}

func TestSignup_EmailTaken(t *testing.T) {
	env := newTestEnv(t, false)
	env.signup(t, "ann@example.com", "secret1")

	_, err := env.auth.Signup(context.Background(), models.SignupInput{Name: "Ann", Email: "ann@example.com", Password: "other1"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestSignup_EmailIsCaseInsensitive(t *testing.T) {
	env := newTestEnv(t, false)
	profile := env.signup(t, "  Ann@Example.COM ", "secret1")
	assert.Equal(t, "ann@example.com", profile.Email)

	_, err := env.auth.Signup(context.Background(), models.SignupInput{Name: "Ann", Email: "ANN@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	env.login(t, "ANN@EXAMPLE.COM", "secret1")
}

func TestSignup_EmptyPassword(t *testing.T) {
	env := newTestEnv(t, false)
	_, err := env.auth.Signup(context.Background(), models.SignupInput{Name: "Ann", Email: "ann@example.com"})
	assert.ErrorIs(t, err, ErrInvalidDataProvided)
}

func TestSignup_MultibytePasswordOverByteLimit(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	in := models.SignupInput{Name: "Ann", Email: "ann@example.com", Password: strings.Repeat("é", 40)}

	_, err := env.auth.Signup(ctx, in)
	assert.ErrorIs(t, err, ErrInvalidDataProvided)
	assert.NotErrorIs(t, err, ErrInternal)

	_, err = NewAuthValidationService().Wrap(env.auth).Signup(ctx, in)
	assert.ErrorIs(t, err, ErrInvalidDataProvided)
	assert.NotErrorIs(t, err, ErrInternal)

	_, err = env.repo.FindByEmail(ctx, "ann@example.com")
	assert.Error(t, err)
}

// ── Login ────────────────────────────────────────────────────────────────────

// TestLogin_SecondLoginInvalidatesFirst verifies the single-session model.
func TestLogin_SecondLoginInvalidatesFirst(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	env.signup(t, "ann@example.com", "secret1")

	first := env.login(t, "ann@example.com", "secret1")
	second := env.login(t, "ann@example.com", "secret1")
	require.NotEqual(t, first.RefreshToken.SignedString, second.RefreshToken.SignedString)

	_, err := env.auth.RefreshAccessToken(ctx, models.RefreshInput{RefreshToken: first.RefreshToken.SignedString})
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	pair, err := env.auth.RefreshAccessToken(ctx, models.RefreshInput{RefreshToken: second.RefreshToken.SignedString})
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken.SignedString)
}

func TestLogin_PersistsRefreshDigest(t *testing.T) {
	env := newTestEnv(t, false)
	env.signup(t, "ann@example.com", "secret1")
	pair := env.login(t, "ann@example.com", "secret1")

	stored, err := env.repo.FindByEmail(context.Background(), "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, utils.HashToken(pair.RefreshToken.SignedString), stored.RefreshToken)
	require.NotNil(t, stored.RefreshTokenExpires)
	assert.True(t, pair.RefreshToken.ExpiresAt.Equal(*stored.RefreshTokenExpires))
	assert.Equal(t, env.clock.Now().Add(7*24*time.Hour), pair.RefreshToken.ExpiresAt)
	assert.Equal(t, env.clock.Now().Add(15*time.Minute), pair.AccessToken.ExpiresAt)
	assert.Equal(t, env.clock.Now(), stored.UpdatedAt)
}

func TestLogin_WrongPasswordIssuesNoTokens(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	env.signup(t, "ann@example.com", "secret1")

	for _, password := range []string{"secret2", "Secret1", "secret1 ", "x"} {
		pair, err := env.auth.Login(ctx, models.LoginInput{Email: "ann@example.com", Password: password})
		assert.ErrorIs(t, err, ErrInvalidPassword)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Empty(t, pair.AccessToken.SignedString)
		assert.Empty(t, pair.RefreshToken.SignedString)
	}

	stored, err := env.repo.FindByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.False(t, stored.HasSession())
}

func TestLogin_UnknownEmail(t *testing.T) {
	env := newTestEnv(t, false)

	_, err := env.auth.Login(context.Background(), models.LoginInput{Email: "nobody@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidEmail)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

// ── RefreshAccessToken / Logout ──────────────────────────────────────────────

func TestRefresh_NeverIssuedToken(t *testing.T) {
	env := newTestEnv(t, false)

	_, err := env.auth.RefreshAccessToken(context.Background(), models.RefreshInput{RefreshToken: "never-issued"})
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestRefresh_AfterLogout(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	env.signup(t, "ann@example.com", "secret1")
	pair := env.login(t, "ann@example.com", "secret1")
	in := models.RefreshInput{RefreshToken: pair.RefreshToken.SignedString}

	require.NoError(t, env.auth.Logout(ctx, in))

	_, err := env.auth.RefreshAccessToken(ctx, in)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	assert.ErrorIs(t, env.auth.Logout(ctx, in), ErrInvalidRefreshToken)

	stored, err := env.repo.FindByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.False(t, stored.HasSession())
}

// TestRefresh_KeepsRefreshTokenByDefault verifies asymmetric rotation.
func TestRefresh_KeepsRefreshTokenByDefault(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	env.signup(t, "ann@example.com", "secret1")
	pair := env.login(t, "ann@example.com", "secret1")
	in := models.RefreshInput{RefreshToken: pair.RefreshToken.SignedString}

	env.clock.Advance(time.Hour)
	for range 3 {
		got, err := env.auth.RefreshAccessToken(ctx, in)
		require.NoError(t, err)
		assert.Empty(t, got.RefreshToken.SignedString)

		claims, err := env.auth.VerifyAccess(ctx, got.AccessToken.SignedString)
		require.NoError(t, err)
		assert.Equal(t, "ann@example.com", claims.Email)
	}
}

func TestRefresh_AfterSevenDays(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	env.signup(t, "ann@example.com", "secret1")
	pair := env.login(t, "ann@example.com", "secret1")
	in := models.RefreshInput{RefreshToken: pair.RefreshToken.SignedString}

	env.clock.Advance(7*24*time.Hour - time.Second)
	_, err := env.auth.RefreshAccessToken(ctx, in)
	require.NoError(t, err)

	env.clock.Advance(2 * time.Second)
	_, err = env.auth.RefreshAccessToken(ctx, in)
	assert.ErrorIs(t, err, ErrRefreshTokenExpired)
}

func TestRefresh_StrictRotation(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()
	env.signup(t, "ann@example.com", "secret1")
	pair := env.login(t, "ann@example.com", "secret1")

	rotated, err := env.auth.RefreshAccessToken(ctx, models.RefreshInput{RefreshToken: pair.RefreshToken.SignedString})
	require.NoError(t, err)
	require.NotEmpty(t, rotated.RefreshToken.SignedString)
	assert.NotEqual(t, pair.RefreshToken.SignedString, rotated.RefreshToken.SignedString)

	_, err = env.auth.RefreshAccessToken(ctx, models.RefreshInput{RefreshToken: pair.RefreshToken.SignedString})
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	_, err = env.auth.RefreshAccessToken(ctx, models.RefreshInput{RefreshToken: rotated.RefreshToken.SignedString})
	assert.NoError(t, err)
}

// ── ForgotPassword / ResetPassword ───────────────────────────────────────────

func TestResetPassword_WithinWindow(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	env.signup(t, "ann@example.com", "secret1")

	reset, err := env.auth.ForgotPassword(ctx, models.ForgotPasswordInput{Email: "Ann@example.com"})
	require.NoError(t, err)
	assert.Len(t, reset.Raw, 64)
	assert.Equal(t, utils.HashToken(reset.Raw), reset.Hash)
	require.Len(t, env.notifier.tokens, 1)
	assert.Equal(t, reset.Raw, env.notifier.tokens[0].Raw)

	stored, err := env.repo.FindByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, reset.Hash, stored.ResetPasswordToken)
	assert.NotEqual(t, reset.Raw, stored.ResetPasswordToken)

	env.clock.Advance(9 * time.Minute)
	in := models.ResetPasswordInput{Token: reset.Raw, NewPassword: "brand-new"}
	require.NoError(t, env.auth.ResetPassword(ctx, in))

	env.login(t, "ann@example.com", "brand-new")
	_, err = env.auth.Login(ctx, models.LoginInput{Email: "ann@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidPassword)

	assert.ErrorIs(t, env.auth.ResetPassword(ctx, in), ErrInvalidOrExpiredToken)

	stored, err = env.repo.FindByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Empty(t, stored.ResetPasswordToken)
	assert.Nil(t, stored.ResetPasswordExpires)
}

func TestResetPassword_AfterTenMinutes(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	env.signup(t, "ann@example.com", "secret1")

	reset, err := env.auth.ForgotPassword(ctx, models.ForgotPasswordInput{Email: "ann@example.com"})
	require.NoError(t, err)

	env.clock.Advance(10*time.Minute + time.Second)
	err = env.auth.ResetPassword(ctx, models.ResetPasswordInput{Token: reset.Raw, NewPassword: "brand-new"})
	assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)

	env.login(t, "ann@example.com", "secret1")
}

func TestResetPassword_NewRequestReplacesOld(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	env.signup(t, "ann@example.com", "secret1")

	first, err := env.auth.ForgotPassword(ctx, models.ForgotPasswordInput{Email: "ann@example.com"})
	require.NoError(t, err)
	second, err := env.auth.ForgotPassword(ctx, models.ForgotPasswordInput{Email: "ann@example.com"})
	require.NoError(t, err)

	err = env.auth.ResetPassword(ctx, models.ResetPasswordInput{Token: first.Raw, NewPassword: "brand-new"})
	assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)
	assert.NoError(t, env.auth.ResetPassword(ctx, models.ResetPasswordInput{Token: second.Raw, NewPassword: "brand-new"}))
}

func TestResetPassword_MalformedTokenIsRejectedAsInvalid(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	env.signup(t, "ann@example.com", "secret1")
	_, err := env.auth.ForgotPassword(ctx, models.ForgotPasswordInput{Email: "ann@example.com"})
	require.NoError(t, err)

	svc := NewAuthValidationService().Wrap(env.auth)
	for _, token := range []string{"not-a-token", "zz", "💥"} {
		err := svc.ResetPassword(ctx, models.ResetPasswordInput{Token: token, NewPassword: "brand-new"})
		assert.ErrorIs(t, err, ErrInvalidOrExpiredToken, token)
		assert.NotErrorIs(t, err, ErrInvalidDataProvided, token)
	}
	env.login(t, "ann@example.com", "secret1")
}

func TestForgotPassword_UnknownEmail(t *testing.T) {
	env := newTestEnv(t, false)

	_, err := env.auth.ForgotPassword(context.Background(), models.ForgotPasswordInput{Email: "nobody@example.com"})
	assert.ErrorIs(t, err, ErrEmailNotFound)
	assert.Empty(t, env.notifier.tokens)
}

// ── VerifyAccess / Me ────────────────────────────────────────────────────────

func TestVerifyAccess_ExpiresAfterFifteenMinutes(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	profile := env.signup(t, "ann@example.com", "secret1")
	pair := env.login(t, "ann@example.com", "secret1")

	claims, err := env.auth.VerifyAccess(ctx, pair.AccessToken.SignedString)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, claims.UserID)
	assert.Equal(t, profile.ID, claims.Subject)
	assert.Equal(t, models.DefaultRole, claims.Role)
	assert.Equal(t, "go-auth-service-test", claims.Issuer)

	env.clock.Advance(15*time.Minute + time.Second)
	_, err = env.auth.VerifyAccess(ctx, pair.AccessToken.SignedString)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestMe(t *testing.T) {
	env := newTestEnv(t, false)

	_, err := env.auth.Me(context.Background())
	assert.ErrorIs(t, err, ErrNoClaims)

	ctx := utils.WithClaims(context.Background(), &models.Claims{UserID: "u-1", Email: "ann@example.com", Role: "admin"})
	user, err := env.auth.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.SessionUser{ID: "u-1", Email: "ann@example.com", Role: "admin"}, user)
}

// ── Interleaved operations ───────────────────────────────────────────────────

// pausingRepository holds the first FindByEmail caller until release is
// closed, so another flow can run between its read and its write.
type pausingRepository struct {
	store.UserRepository

	once    sync.Once
	reached chan struct{}
	release chan struct{}
}

func (r *pausingRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	user, err := r.UserRepository.FindByEmail(ctx, email)
	r.once.Do(func() {
		close(r.reached)
		<-r.release
	})
	return user, err
}

// TestResetPassword_SurvivesConcurrentLogin verifies that a login which read
// the user before a password reset completed cannot write the old password
// hash back when it stores its session.
func TestResetPassword_SurvivesConcurrentLogin(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	env.signup(t, "ann@example.com", "oldpass1")

	paused := &pausingRepository{
		UserRepository: env.repo,
		reached:        make(chan struct{}),
		release:        make(chan struct{}),
	}
	slowAuth := NewAuthService(paused, env.tokens, NewPasswordHasher(testAppConfig().BcryptCost), env.notifier, false, logger.Nop()).(*authService)
	slowAuth.now = env.clock.Now

	loginErr := make(chan error, 1)
	go func() {
		_, err := slowAuth.Login(ctx, models.LoginInput{Email: "ann@example.com", Password: "oldpass1"})
		loginErr <- err
	}()
	<-paused.reached

	reset, err := env.auth.ForgotPassword(ctx, models.ForgotPasswordInput{Email: "ann@example.com"})
	require.NoError(t, err)
	require.NoError(t, env.auth.ResetPassword(ctx, models.ResetPasswordInput{Token: reset.Raw, NewPassword: "newpass1"}))

	close(paused.release)
	require.NoError(t, <-loginErr)

	_, err = env.auth.Login(ctx, models.LoginInput{Email: "ann@example.com", Password: "newpass1"})
	assert.NoError(t, err)
	_, err = env.auth.Login(ctx, models.LoginInput{Email: "ann@example.com", Password: "oldpass1"})
	assert.ErrorIs(t, err, ErrInvalidPassword)
}

// TestResetPassword_ConcurrentUseSucceedsOnce verifies that a reset token
// presented by several requests at once changes the password only once.
func TestResetPassword_ConcurrentUseSucceedsOnce(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	env.signup(t, "ann@example.com", "oldpass1")

	reset, err := env.auth.ForgotPassword(ctx, models.ForgotPasswordInput{Email: "ann@example.com"})
	require.NoError(t, err)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := env.auth.ResetPassword(ctx, models.ResetPasswordInput{Token: reset.Raw, NewPassword: "newpass1"})
			if err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, accepted)
}
