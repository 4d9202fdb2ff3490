// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/MKhiriev/go-auth-service/internal/config"
	"github.com/MKhiriev/go-auth-service/internal/logger"
	"github.com/MKhiriev/go-auth-service/internal/utils"
	"github.com/MKhiriev/go-auth-service/models"
	"github.com/go-resty/resty/v2"
)

type httpServerAdapter struct {
	client *utils.HTTPClient

	mu    sync.RWMutex
	token string

	logger *logger.Logger
}

// NewHTTPServerAdapter constructs the REST implementation of [ServerAdapter].
// The base URL from cfg.HTTPAddress is normalised; a missing scheme defaults
// to http.
func NewHTTPServerAdapter(cfg config.ClientAdapter, logger *logger.Logger) (ServerAdapter, error) {
	baseURL, err := normalizeBaseURL(cfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}

	return &httpServerAdapter{
		client: utils.NewHTTPClient(baseURL, cfg.RequestTimeout),
		logger: logger,
	}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

func (h *httpServerAdapter) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = strings.TrimSpace(token)
}

func (h *httpServerAdapter) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

func (h *httpServerAdapter) Signup(ctx context.Context, input models.SignupInput) (models.UserProfile, error) {
	var out models.SignupResponse
	if err := h.post(ctx, "/auth/signup", input, &out); err != nil {
		return models.UserProfile{}, fmt.Errorf("signup request: %w", err)
	}
	return out.User, nil
}

func (h *httpServerAdapter) Login(ctx context.Context, input models.LoginInput) (models.LoginResponse, error) {
	var out models.LoginResponse
	if err := h.post(ctx, "/auth/login", input, &out); err != nil {
		return models.LoginResponse{}, fmt.Errorf("login request: %w", err)
	}

	h.SetToken(out.AccessToken)
	return out, nil
}

func (h *httpServerAdapter) Refresh(ctx context.Context, input models.RefreshInput) (models.RefreshResponse, error) {
	var out models.RefreshResponse
	if err := h.post(ctx, "/auth/refresh", input, &out); err != nil {
		return models.RefreshResponse{}, fmt.Errorf("refresh request: %w", err)
	}

	h.SetToken(out.AccessToken)
	return out, nil
}

func (h *httpServerAdapter) Logout(ctx context.Context, input models.RefreshInput) error {
	if err := h.post(ctx, "/auth/logout", input, nil); err != nil {
		return fmt.Errorf("logout request: %w", err)
	}

	h.SetToken("")
	return nil
}

func (h *httpServerAdapter) ForgotPassword(ctx context.Context, input models.ForgotPasswordInput) (models.ForgotPasswordResponse, error) {
	var out models.ForgotPasswordResponse
	if err := h.post(ctx, "/auth/forgot-password", input, &out); err != nil {
		return models.ForgotPasswordResponse{}, fmt.Errorf("forgot password request: %w", err)
	}
	return out, nil
}

func (h *httpServerAdapter) ResetPassword(ctx context.Context, input models.ResetPasswordInput) error {
	if err := h.post(ctx, "/auth/reset-password", input, nil); err != nil {
		return fmt.Errorf("reset password request: %w", err)
	}
	return nil
}

func (h *httpServerAdapter) Me(ctx context.Context) (models.SessionUser, error) {
	var out models.MeResponse

	resp, err := h.authedRequest(ctx).SetResult(&out).Get("/auth/me")
	if err != nil {
		return models.SessionUser{}, fmt.Errorf("me request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.SessionUser{}, fmt.Errorf("me request: %w", err)
	}

	return out.User, nil
}

func (h *httpServerAdapter) Version(ctx context.Context) (string, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Accept", "text/plain").
		Get("/version")
	if err != nil {
		return "", fmt.Errorf("version request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return "", fmt.Errorf("version request: %w", err)
	}

	return strings.TrimSpace(resp.String()), nil
}

// post sends body as JSON and decodes a 2xx response into result when it is
// not nil.
func (h *httpServerAdapter) post(ctx context.Context, path string, body, result any) error {
	req := h.client.R().SetContext(ctx).SetBody(body)
	if result != nil {
		req.SetResult(result)
	}

	resp, err := req.Post(path)
	if err != nil {
		return err
	}
	if err = mapHTTPError(resp); err != nil {
		h.logger.Debug().Str("path", path).Int("status", resp.StatusCode()).Msg("request rejected by server")
		return err
	}
	return nil
}

func (h *httpServerAdapter) authedRequest(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if token := h.Token(); token != "" {
		req.SetAuthToken(token)
	}
	return req
}
