// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-auth-service/internal/validators"
	"github.com/MKhiriev/go-auth-service/models"
)

// AuthValidationService rejects malformed inputs before they reach the
// wrapped AuthService. Emails are normalised first, so " Ann@Example.com"
// passes validation and reaches the store as "ann@example.com".
type AuthValidationService struct {
	inner     AuthService
	validator validators.Validator
}

func NewAuthValidationService() AuthServiceWrapper {
	return &AuthValidationService{
		validator: validators.NewAuthValidator(),
	}
}

func (v *AuthValidationService) Signup(ctx context.Context, input models.SignupInput) (models.UserProfile, error) {
	input.Email = models.NormalizeEmail(input.Email)
	if err := v.validate(ctx, input); err != nil {
		return models.UserProfile{}, err
	}

	return v.inner.Signup(ctx, input)
}

func (v *AuthValidationService) Login(ctx context.Context, input models.LoginInput) (models.TokenPair, error) {
	input.Email = models.NormalizeEmail(input.Email)
	if err := v.validate(ctx, input); err != nil {
		return models.TokenPair{}, err
	}

	return v.inner.Login(ctx, input)
}

func (v *AuthValidationService) RefreshAccessToken(ctx context.Context, input models.RefreshInput) (models.TokenPair, error) {
	if err := v.validate(ctx, input); err != nil {
		return models.TokenPair{}, err
	}

	return v.inner.RefreshAccessToken(ctx, input)
}

func (v *AuthValidationService) Logout(ctx context.Context, input models.RefreshInput) error {
	if err := v.validate(ctx, input); err != nil {
		return err
	}

	return v.inner.Logout(ctx, input)
}

func (v *AuthValidationService) ForgotPassword(ctx context.Context, input models.ForgotPasswordInput) (models.ResetToken, error) {
	input.Email = models.NormalizeEmail(input.Email)
	if err := v.validate(ctx, input); err != nil {
		return models.ResetToken{}, err
	}

	return v.inner.ForgotPassword(ctx, input)
}

func (v *AuthValidationService) ResetPassword(ctx context.Context, input models.ResetPasswordInput) error {
	if err := v.validate(ctx, input); err != nil {
		return err
	}

	return v.inner.ResetPassword(ctx, input)
}

func (v *AuthValidationService) VerifyAccess(ctx context.Context, accessToken string) (*models.Claims, error) {
	if accessToken == "" {
		return nil, ErrInvalidSignature
	}

	return v.inner.VerifyAccess(ctx, accessToken)
}

func (v *AuthValidationService) Me(ctx context.Context) (models.SessionUser, error) {
	return v.inner.Me(ctx)
}

func (v *AuthValidationService) Wrap(wrapper AuthService) AuthService {
	v.inner = wrapper
	return v
}

func (v *AuthValidationService) validate(ctx context.Context, input any) error {
	if err := v.validator.Validate(ctx, input); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}
	return nil
}
