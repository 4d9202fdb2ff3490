// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"

	"github.com/MKhiriev/go-auth-service/internal/limiter"
	"github.com/MKhiriev/go-auth-service/internal/logger"
	"github.com/MKhiriev/go-auth-service/internal/service"
	"github.com/MKhiriev/go-auth-service/internal/utils"
	"github.com/MKhiriev/go-auth-service/models"
)

const (
	maxBodyBytes = 1 << 20

	messageForgotConcealed = "if the email is registered, a reset link has been sent"
)

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	var input models.SignupInput
	if err := decodeJSON(w, r, &input); err != nil {
		writeError(w, r, err)
		return
	}

	profile, err := h.services.AuthService.Signup(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, models.SignupResponse{Message: "user created successfully", User: profile}, http.StatusOK)
}

// login is throttled per email and client address. The counter is cleared
// after a successful login, so only failed attempts accumulate.
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var input models.LoginInput
	if err := decodeJSON(w, r, &input); err != nil {
		writeError(w, r, err)
		return
	}

	key := loginKey(input.Email, r)
	decision, err := h.limiter.Allow(ctx, key)
	if err != nil {
		log.Err(err).Msg("login limiter unavailable, attempt allowed")
	}
	if !decision.Allowed {
		h.metrics.IncRateLimited()
		w.Header().Set("Retry-After", retryAfterSeconds(decision))
		writeError(w, r, ErrTooManyLoginAttempts)
		return
	}

	pair, err := h.services.AuthService.Login(ctx, input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err = h.limiter.Reset(ctx, key); err != nil {
		log.Warn().Err(err).Msg("error resetting login limiter")
	}

	utils.WriteJSON(w, models.LoginResponse{
		Message:      "Login successful",
		AccessToken:  pair.AccessToken.SignedString,
		RefreshToken: pair.RefreshToken.SignedString,
	}, http.StatusOK)
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	var input models.RefreshInput
	if err := decodeJSON(w, r, &input); err != nil {
		writeError(w, r, err)
		return
	}

	pair, err := h.services.AuthService.RefreshAccessToken(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, models.RefreshResponse{
		Message:      "token refreshed",
		AccessToken:  pair.AccessToken.SignedString,
		RefreshToken: pair.RefreshToken.SignedString,
	}, http.StatusOK)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	var input models.RefreshInput
	if err := decodeJSON(w, r, &input); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.services.AuthService.Logout(r.Context(), input); err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, models.MessageResponse{Message: "logged out successfully"}, http.StatusOK)
}

// forgotPassword hands the raw reset token back unless the handler is
// configured to conceal it. In concealed mode an unknown email gets the same
// response as a known one.
func (h *Handler) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var input models.ForgotPasswordInput
	if err := decodeJSON(w, r, &input); err != nil {
		writeError(w, r, err)
		return
	}

	token, err := h.services.AuthService.ForgotPassword(r.Context(), input)
	if h.concealResetToken && (err == nil || errors.Is(err, service.ErrEmailNotFound)) {
		if err != nil {
			logger.FromRequest(r).Debug().Msg("reset requested for unknown email")
		}
		utils.WriteJSON(w, models.ForgotPasswordResponse{Message: messageForgotConcealed}, http.StatusOK)
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, models.ForgotPasswordResponse{
		Message: "reset token generated",
		Token:   token.Raw,
	}, http.StatusOK)
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var input models.ResetPasswordInput
	if err := decodeJSON(w, r, &input); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.services.AuthService.ResetPassword(r.Context(), input); err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, models.MessageResponse{Message: "password reset successful"}, http.StatusOK)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	user, err := h.services.AuthService.Me(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, models.MeResponse{User: user}, http.StatusOK)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}
	return nil
}

func loginKey(email string, r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return models.NormalizeEmail(email) + "|" + host
}

func retryAfterSeconds(d limiter.Decision) string {
	return strconv.Itoa(max(1, int(math.Ceil(d.RetryAfter.Seconds()))))
}
