// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ErrUnexpectedSigningMethod is returned by ParseJWT when the token header
// names an algorithm other than HS256.
var ErrUnexpectedSigningMethod = errors.New("unexpected signing method")

// SignJWT signs claims with HMAC-SHA256 and returns the compact token string.
//
// Example usage:
//
//	signed, err := utils.SignJWT(&models.Claims{UserID: id}, "secret")
func SignJWT(claims jwt.Claims, signKey string) (string, error) {
	if signKey == "" {
		return "", errors.New("empty sign key")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(signKey))
	if err != nil {
		return "", fmt.Errorf("error occurred during signing JWT token: %w", err)
	}

	return signed, nil
}

// ParseJWT verifies tokenString with signKey and decodes it into claims.
//
// Only HS256 is accepted. Extra parser options (issuer, clock, leeway) are
// passed through to the jwt parser. The returned error wraps the jwt/v5
// sentinel errors (jwt.ErrTokenExpired, jwt.ErrTokenSignatureInvalid, ...)
// so callers can classify it with errors.Is.
func ParseJWT(tokenString, signKey string, claims jwt.Claims, opts ...jwt.ParserOption) error {
	opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: %v", ErrUnexpectedSigningMethod, token.Header["alg"])
		}
		return []byte(signKey), nil
	}, opts...)
	if err != nil {
		return fmt.Errorf("error occurred validating and parsing token: %w", err)
	}

	return nil
}

// ParseBearerToken extracts the token from an "Authorization: Bearer <token>"
// header value. The scheme is matched case-insensitively.
func ParseBearerToken(authorizationHeader string) (string, error) {
	parts := strings.Fields(authorizationHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization header")
	}
	return parts[1], nil
}
