// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package utils provides general-purpose helpers used across the service:
// typed context keys, token hashing and random generation, bcrypt wrappers,
// HS256 JWT signing and parsing, JSON response writing, the resty client
// constructor and the UUID generator.
package utils

import (
	"context"

	"github.com/MKhiriev/go-auth-service/models"
)

// contextKey is a private type for context keys.
type contextKey string

// String implements fmt.Stringer.
func (c contextKey) String() string {
	return string(c)
}

// ClaimsCtxKey is the key under which the auth middleware stores the
// verified access token claims.
var ClaimsCtxKey = contextKey("claims")

// WithClaims returns a copy of ctx carrying claims.
func WithClaims(ctx context.Context, claims *models.Claims) context.Context {
	return context.WithValue(ctx, ClaimsCtxKey, claims)
}

// GetClaimsFromContext retrieves the access token claims stored by
// WithClaims. ok is false when nothing (or a value of another type) is stored.
func GetClaimsFromContext(ctx context.Context) (*models.Claims, bool) {
	claims, ok := ctx.Value(ClaimsCtxKey).(*models.Claims)
	return claims, ok && claims != nil
}
