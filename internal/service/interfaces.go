// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"

	"github.com/MKhiriev/go-auth-service/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock

// AuthService orchestrates the credential and token lifecycle of a user.
type AuthService interface {
	// Signup registers a new account and returns its public profile.
	// No token is issued.
	Signup(ctx context.Context, input models.SignupInput) (models.UserProfile, error)

	// Login checks the credentials and starts a new session, replacing any
	// previous one.
	Login(ctx context.Context, input models.LoginInput) (models.TokenPair, error)

	// RefreshAccessToken exchanges a refresh token for a new access token.
	// RefreshToken in the result is only set when strict rotation is on.
	RefreshAccessToken(ctx context.Context, input models.RefreshInput) (models.TokenPair, error)

	// Logout ends the session identified by the refresh token.
	Logout(ctx context.Context, input models.RefreshInput) error

	// ForgotPassword issues a reset token for the account and hands it to
	// the ResetNotifier. The raw token is returned to the caller.
	ForgotPassword(ctx context.Context, input models.ForgotPasswordInput) (models.ResetToken, error)

	// ResetPassword consumes a reset token and replaces the password.
	ResetPassword(ctx context.Context, input models.ResetPasswordInput) error

	// VerifyAccess validates an access token and returns its claims.
	VerifyAccess(ctx context.Context, accessToken string) (*models.Claims, error)

	// Me returns the identity of the caller from the verified claims stored
	// in ctx.
	Me(ctx context.Context) (models.SessionUser, error)
}

// TokenService issues and verifies access, refresh and reset tokens.
type TokenService interface {
	IssueAccess(ctx context.Context, user models.User) (models.Token, error)
	VerifyAccess(ctx context.Context, accessToken string) (*models.Claims, error)

	IssueRefresh(ctx context.Context, userID string) (models.Token, error)

	// Rotate validates a refresh token against the store and returns its
	// owner together with a new access token.
	Rotate(ctx context.Context, refreshToken string) (models.User, models.Token, error)

	IssueReset(ctx context.Context) (models.ResetToken, error)

	// ConsumeReset returns the user holding an unexpired reset token whose
	// digest matches raw. Clearing the token is left to the caller.
	ConsumeReset(ctx context.Context, raw string) (models.User, error)
}

// PasswordHasher is a one-way salted password hash.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)

	// Verify reports whether plaintext matches hash. A mismatch is not an
	// error; a malformed hash is.
	Verify(plaintext, hash string) (bool, error)
}

// ResetNotifier hands a freshly issued reset token to a delivery channel.
type ResetNotifier interface {
	NotifyPasswordReset(ctx context.Context, user models.User, token models.ResetToken) error
}

// AppInfoService exposes build metadata of the running server.
type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
}
