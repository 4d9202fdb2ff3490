// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-auth-service/internal/logger"
	"github.com/MKhiriev/go-auth-service/internal/service"
	"github.com/MKhiriev/go-auth-service/internal/utils"
)

const messageInvalidCredentials = "invalid email or password"

type errorMapping struct {
	target  error
	status  int
	message string
}

// errorStatusMap is ordered: the first matching target wins. An empty
// message means the error text itself is safe to return.
var errorStatusMap = []errorMapping{
	{target: ErrInvalidJSON, status: http.StatusBadRequest},
	{target: service.ErrInvalidDataProvided, status: http.StatusBadRequest},
	{target: service.ErrInvalidCredentials, status: http.StatusBadRequest, message: messageInvalidCredentials},
	{target: service.ErrEmailTaken, status: http.StatusBadRequest, message: "email already exists"},
	{target: service.ErrEmailNotFound, status: http.StatusBadRequest, message: "email not found"},

	{target: ErrEmptyAuthorizationHeader, status: http.StatusUnauthorized},
	{target: ErrInvalidAuthorizationHeader, status: http.StatusUnauthorized},
	{target: service.ErrExpiredToken, status: http.StatusUnauthorized, message: "access token expired"},
	{target: service.ErrInvalidSignature, status: http.StatusUnauthorized, message: "invalid access token"},
	{target: service.ErrNoClaims, status: http.StatusUnauthorized, message: http.StatusText(http.StatusUnauthorized)},

	{target: service.ErrInvalidRefreshToken, status: http.StatusForbidden, message: "invalid refresh token"},
	{target: service.ErrRefreshTokenExpired, status: http.StatusForbidden, message: "refresh token expired"},
	{target: service.ErrInvalidOrExpiredToken, status: http.StatusForbidden, message: "invalid or expired token"},

	{target: ErrTooManyLoginAttempts, status: http.StatusTooManyRequests},
}

// statusFromError returns the status code and the client-facing message for
// err. Unknown errors map to 500 with a generic message.
func statusFromError(err error) (int, string) {
	for _, m := range errorStatusMap {
		if errors.Is(err, m.target) {
			if m.message == "" {
				return m.status, err.Error()
			}
			return m.status, m.message
		}
	}
	return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
}

// writeError logs err with the request logger and writes the {error} body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := statusFromError(err)

	log := logger.FromRequest(r)
	if status >= http.StatusInternalServerError {
		log.Err(err).Int("status", status).Msg("request failed")
	} else {
		log.Warn().Err(err).Int("status", status).Msg("request rejected")
	}

	utils.WriteError(w, message, status)
}
