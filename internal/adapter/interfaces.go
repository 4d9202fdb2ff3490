// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides the client side of the auth service REST API.
//
// [ServerAdapter] decouples callers such as the command-line client from the
// transport. Non-2xx responses are mapped by mapHTTPError to the sentinel
// errors in errors.go, so callers can use [errors.Is] (e.g. [ErrForbidden]
// for an invalid refresh token, [ErrTooManyRequests] for a throttled login).
package adapter

import (
	"context"

	"github.com/MKhiriev/go-auth-service/models"
)

// ServerAdapter talks to the auth server.
type ServerAdapter interface {
	// SetToken stores the access token attached to authenticated requests.
	SetToken(token string)

	// Token returns the stored access token, or "" if none is set.
	Token() string

	Signup(ctx context.Context, input models.SignupInput) (models.UserProfile, error)

	// Login stores the returned access token via SetToken.
	Login(ctx context.Context, input models.LoginInput) (models.LoginResponse, error)

	// Refresh stores the new access token via SetToken.
	Refresh(ctx context.Context, input models.RefreshInput) (models.RefreshResponse, error)

	// Logout clears the stored access token on success.
	Logout(ctx context.Context, input models.RefreshInput) error

	ForgotPassword(ctx context.Context, input models.ForgotPasswordInput) (models.ForgotPasswordResponse, error)
	ResetPassword(ctx context.Context, input models.ResetPasswordInput) error

	// Me requires a token set via SetToken or a previous Login.
	Me(ctx context.Context) (models.SessionUser, error)

	// Version returns the plain-text server version.
	Version(ctx context.Context) (string, error)
}
