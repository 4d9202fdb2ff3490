// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// MessageResponse is the minimal success body: {"message": "..."}.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the body of every failed request: {"error": "..."}.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SignupResponse is returned by POST /auth/signup.
type SignupResponse struct {
	Message string      `json:"message"`
	User    UserProfile `json:"user"`
}

// LoginResponse is returned by POST /auth/login.
type LoginResponse struct {
	Message      string `json:"message"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RefreshResponse is returned by POST /auth/refresh. RefreshToken is only
// populated when strict rotation is enabled.
type RefreshResponse struct {
	Message      string `json:"message"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// ForgotPasswordResponse is returned by POST /auth/forgot-password. Token is
// only populated when the server is configured to hand the raw token back.
type ForgotPasswordResponse struct {
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`
}

// MeResponse is returned by GET /auth/me.
type MeResponse struct {
	User SessionUser `json:"user"`
}

// SessionUser is the identity decoded from a verified access token.
type SessionUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}
