// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"

	"github.com/MKhiriev/go-auth-service/internal/utils"
)

// auth is an HTTP middleware that enforces access token authentication.
//
// It extracts the bearer token from the "Authorization" header, verifies it
// via [service.AuthService.VerifyAccess] and, on success, stores the claims
// in the request context (see [utils.WithClaims]) before delegating to the
// next handler.
//
// Requests are rejected with 401 Unauthorized when the header is absent or
// malformed, or when the token is expired, forged or signed with another key.
func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, r, ErrEmptyAuthorizationHeader)
			return
		}

		tokenString, err := utils.ParseBearerToken(authHeader)
		if err != nil {
			writeError(w, r, ErrInvalidAuthorizationHeader)
			return
		}

		ctx := r.Context()
		claims, err := h.services.AuthService.VerifyAccess(ctx, tokenString)
		if err != nil {
			writeError(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(utils.WithClaims(ctx, claims)))
	})
}
