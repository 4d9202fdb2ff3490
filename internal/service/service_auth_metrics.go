// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"

	"github.com/MKhiriev/go-auth-service/internal/metrics"
	"github.com/MKhiriev/go-auth-service/models"
)

// OperationRecorder counts auth operations by outcome.
type OperationRecorder interface {
	ObserveAuthOperation(operation, result string)
}

// AuthMetricsService records the outcome of every call to the wrapped
// AuthService. Failures caused by the caller count as rejected, everything
// wrapping ErrInternal (or unknown) as error.
type AuthMetricsService struct {
	inner    AuthService
	recorder OperationRecorder
}

func NewAuthMetricsService(recorder OperationRecorder) AuthServiceWrapper {
	return &AuthMetricsService{recorder: recorder}
}

func (m *AuthMetricsService) Signup(ctx context.Context, input models.SignupInput) (models.UserProfile, error) {
	profile, err := m.inner.Signup(ctx, input)
	m.observe("signup", err)
	return profile, err
}

func (m *AuthMetricsService) Login(ctx context.Context, input models.LoginInput) (models.TokenPair, error) {
	pair, err := m.inner.Login(ctx, input)
	m.observe("login", err)
	return pair, err
}

func (m *AuthMetricsService) RefreshAccessToken(ctx context.Context, input models.RefreshInput) (models.TokenPair, error) {
	pair, err := m.inner.RefreshAccessToken(ctx, input)
	m.observe("refresh", err)
	return pair, err
}

func (m *AuthMetricsService) Logout(ctx context.Context, input models.RefreshInput) error {
	err := m.inner.Logout(ctx, input)
	m.observe("logout", err)
	return err
}

func (m *AuthMetricsService) ForgotPassword(ctx context.Context, input models.ForgotPasswordInput) (models.ResetToken, error) {
	reset, err := m.inner.ForgotPassword(ctx, input)
	m.observe("forgot_password", err)
	return reset, err
}

func (m *AuthMetricsService) ResetPassword(ctx context.Context, input models.ResetPasswordInput) error {
	err := m.inner.ResetPassword(ctx, input)
	m.observe("reset_password", err)
	return err
}

func (m *AuthMetricsService) VerifyAccess(ctx context.Context, accessToken string) (*models.Claims, error) {
	claims, err := m.inner.VerifyAccess(ctx, accessToken)
	m.observe("verify_access", err)
	return claims, err
}

// Me is not counted; every call is preceded by a counted VerifyAccess.
func (m *AuthMetricsService) Me(ctx context.Context) (models.SessionUser, error) {
	return m.inner.Me(ctx)
}

func (m *AuthMetricsService) Wrap(wrapper AuthService) AuthService {
	m.inner = wrapper
	return m
}

func (m *AuthMetricsService) observe(operation string, err error) {
	m.recorder.ObserveAuthOperation(operation, resultOf(err))
}

var rejections = []error{
	ErrInvalidDataProvided,
	ErrEmailTaken,
	ErrInvalidCredentials,
	ErrInvalidRefreshToken,
	ErrRefreshTokenExpired,
	ErrInvalidSignature,
	ErrExpiredToken,
	ErrInvalidOrExpiredToken,
	ErrEmailNotFound,
}

func resultOf(err error) string {
	if err == nil {
		return metrics.ResultSuccess
	}
	if errors.Is(err, ErrInternal) {
		return metrics.ResultError
	}
	for _, target := range rejections {
		if errors.Is(err, target) {
			return metrics.ResultRejected
		}
	}
	return metrics.ResultError
}
