// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload carried by an access token.
//
// It embeds [jwt.RegisteredClaims] for the standard claim set (sub, exp, iat,
// iss, jti) and adds the identity fields every protected handler needs, so
// no store lookup is required to authorize a request.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`

	jwt.RegisteredClaims
}

// RefreshClaims is the payload carried by a refresh token. It only names the
// owner; the rest of the session state lives in the store.
type RefreshClaims struct {
	UserID string `json:"user_id"`

	jwt.RegisteredClaims
}

// Token is a signed token together with its expiry.
type Token struct {
	// SignedString is the compact JWS representation
	// (base64url-encoded header.payload.signature).
	SignedString string

	// ExpiresAt is the moment after which the token is rejected.
	ExpiresAt time.Time
}

// String returns the compact JWS serialization of the token.
// It implements the [fmt.Stringer] interface.
func (t Token) String() string {
	return t.SignedString
}

// TokenPair is the result of a successful login.
type TokenPair struct {
	AccessToken  Token
	RefreshToken Token
}

// ResetToken is a freshly issued password reset token.
//
// Raw is handed to the caller for out-of-band delivery and is never stored;
// Hash and ExpiresAt are persisted on the user record.
type ResetToken struct {
	Raw       string
	Hash      string
	ExpiresAt time.Time
}
