// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the auth services. They are wrapped with
// fmt.Errorf("%w: %w") around the underlying cause and matched with
// [errors.Is] by the HTTP layer.
var (
	// ErrInvalidDataProvided is returned when an input fails validation.
	ErrInvalidDataProvided = errors.New("invalid data provided")

	// ErrEmailTaken is returned by Signup when the email is registered.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials is the common parent of ErrInvalidEmail and
	// ErrInvalidPassword. Clients only ever see this one.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidEmail       = fmt.Errorf("%w: unknown email", ErrInvalidCredentials)
	ErrInvalidPassword    = fmt.Errorf("%w: password mismatch", ErrInvalidCredentials)

	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	// ErrInvalidSignature covers every access or refresh token that cannot be
	// verified: bad signature, wrong algorithm, wrong issuer or malformed.
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrExpiredToken     = errors.New("token is expired")

	// ErrNoClaims is returned by Me when the context carries no verified
	// access token claims.
	ErrNoClaims = errors.New("no access token claims in context")

	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	ErrEmailNotFound         = errors.New("email not found")

	// ErrInternal wraps hashing, signing, storage and notification failures.
	ErrInternal = errors.New("internal error")

	ErrVersionIsNotSpecified = errors.New("app version is not specified")
)
