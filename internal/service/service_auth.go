// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-auth-service/internal/logger"
	"github.com/MKhiriev/go-auth-service/internal/store"
	"github.com/MKhiriev/go-auth-service/internal/utils"
	"github.com/MKhiriev/go-auth-service/models"
)

// authService is the concrete implementation of AuthService.
// It keeps no session state of its own: everything lives in the
// UserRepository, tokens come from the TokenService and passwords go through
// the PasswordHasher.
type authService struct {
	// userRepository is the data-access layer used to create, look up and
	// update users.
	userRepository store.UserRepository

	tokens TokenService
	hasher PasswordHasher

	// notifier receives every issued reset token.
	notifier ResetNotifier

	// rotateRefreshTokens makes RefreshAccessToken replace the presented
	// refresh token with a new one.
	rotateRefreshTokens bool

	// now stamps UpdatedAt on every write and bounds reset token expiry.
	now func() time.Time

	// logger is the structured logger used for diagnostic and error output.
	logger *logger.Logger
}

// NewAuthService constructs an AuthService from its collaborators.
//
// The returned service is safe for concurrent use; all state is read-only
// after construction.
func NewAuthService(
	userRepository store.UserRepository,
	tokens TokenService,
	hasher PasswordHasher,
	notifier ResetNotifier,
	rotateRefreshTokens bool,
	logger *logger.Logger,
) AuthService {
	return &authService{
		userRepository:      userRepository,
		tokens:              tokens,
		hasher:              hasher,
		notifier:            notifier,
		rotateRefreshTokens: rotateRefreshTokens,
		now:                 time.Now,
		logger:              logger,
	}
}

// Signup creates an account with the default role.
//
// Returns the public profile of the new user or:
//   - ErrEmailTaken if the email is already registered.
//   - ErrInvalidDataProvided if the password is empty.
//   - ErrInternal on hashing or storage failures.
func (a *authService) Signup(ctx context.Context, input models.SignupInput) (models.UserProfile, error) {
	log := logger.FromContext(ctx)
	email := models.NormalizeEmail(input.Email)

	_, err := a.userRepository.FindByEmail(ctx, email)
	switch {
	case err == nil:
		log.Info().Str("email", email).Msg("signup with a registered email")
		return models.UserProfile{}, ErrEmailTaken
	case !errors.Is(err, store.ErrNoUserWasFound):
		log.Err(err).Str("func", "*authService.Signup").Msg("user search by email failed")
		return models.UserProfile{}, fmt.Errorf("%w: %w", ErrInternal, err)
	}

	hash, err := a.hasher.Hash(input.Password)
	if err != nil {
		log.Err(err).Str("func", "*authService.Signup").Msg("password hashing failed")
		return models.UserProfile{}, err
	}

	user, err := a.userRepository.Create(ctx, models.User{
		Name:         input.Name,
		Email:        email,
		PasswordHash: hash,
		Role:         models.DefaultRole,
	})
	if errors.Is(err, store.ErrEmailAlreadyExists) {
		return models.UserProfile{}, fmt.Errorf("%w: %w", ErrEmailTaken, err)
	}
	if err != nil {
		log.Err(err).Str("func", "*authService.Signup").Msg("user creation ended with error")
		return models.UserProfile{}, fmt.Errorf("%w: %w", ErrInternal, err)
	}

	log.Info().Str("user_id", user.UserID).Msg("user registered")
	return user.Profile(), nil
}

// Login authenticates the user and starts a new session. The refresh token
// digest replaces whatever session the user had before.
//
// Returns both tokens or:
//   - ErrInvalidEmail if no user has the email.
//   - ErrInvalidPassword if the password does not match.
//   - ErrInternal on hashing, signing or storage failures.
//
// Both credential errors wrap ErrInvalidCredentials.
func (a *authService) Login(ctx context.Context, input models.LoginInput) (models.TokenPair, error) {
	log := logger.FromContext(ctx)
	email := models.NormalizeEmail(input.Email)

	user, err := a.userRepository.FindByEmail(ctx, email)
	if errors.Is(err, store.ErrNoUserWasFound) {
		log.Info().Str("email", email).Msg("login with unknown email")
		return models.TokenPair{}, ErrInvalidEmail
	}
	if err != nil {
		log.Err(err).Str("func", "*authService.Login").Msg("user search by email failed")
		return models.TokenPair{}, fmt.Errorf("%w: %w", ErrInternal, err)
	}

	ok, err := a.hasher.Verify(input.Password, user.PasswordHash)
	if err != nil {
		log.Err(err).Str("user_id", user.UserID).Msg("stored password hash is unusable")
		return models.TokenPair{}, err
	}
	if !ok {
		log.Info().Str("user_id", user.UserID).Msg("wrong password")
		return models.TokenPair{}, ErrInvalidPassword
	}

	pair, err := a.startSession(ctx, &user)
	if err != nil {
		return models.TokenPair{}, err
	}

	log.Info().Str("user_id", user.UserID).Msg("user logged in")
	return pair, nil
}

// RefreshAccessToken rotates the refresh token into a new access token.
// With strict rotation a new refresh token is issued as well and the
// presented one stops working.
func (a *authService) RefreshAccessToken(ctx context.Context, input models.RefreshInput) (models.TokenPair, error) {
	user, access, err := a.tokens.Rotate(ctx, input.RefreshToken)
	if err != nil {
		return models.TokenPair{}, err
	}

	if !a.rotateRefreshTokens {
		return models.TokenPair{AccessToken: access}, nil
	}

	return a.startSession(ctx, &user)
}

// Logout clears the session matching the refresh token. A second logout with
// the same token, or one racing a newer login, fails with
// ErrInvalidRefreshToken.
func (a *authService) Logout(ctx context.Context, input models.RefreshInput) error {
	log := logger.FromContext(ctx)
	digest := utils.HashToken(input.RefreshToken)

	user, err := a.userRepository.FindByRefreshToken(ctx, digest)
	if errors.Is(err, store.ErrNoUserWasFound) {
		return ErrInvalidRefreshToken
	}
	if err != nil {
		log.Err(err).Str("func", "*authService.Logout").Msg("refresh token lookup failed")
		return fmt.Errorf("%w: %w", ErrInternal, err)
	}

	err = a.userRepository.ClearSession(ctx, user.UserID, digest, a.now().UTC())
	if errors.Is(err, store.ErrNoUserWasFound) {
		return ErrInvalidRefreshToken
	}
	if err != nil {
		log.Err(err).Str("func", "*authService.Logout").Str("user_id", user.UserID).Msg("error clearing session")
		return fmt.Errorf("%w: %w", ErrInternal, err)
	}

	log.Info().Str("user_id", user.UserID).Msg("user logged out")
	return nil
}

// ForgotPassword stores the digest of a new reset token on the account and
// passes the raw token to the notifier.
//
// Returns the reset token or:
//   - ErrEmailNotFound if no user has the email.
//   - ErrInternal on token generation, storage or notification failures.
func (a *authService) ForgotPassword(ctx context.Context, input models.ForgotPasswordInput) (models.ResetToken, error) {
	log := logger.FromContext(ctx)
	email := models.NormalizeEmail(input.Email)

	user, err := a.userRepository.FindByEmail(ctx, email)
	if errors.Is(err, store.ErrNoUserWasFound) {
		log.Info().Str("email", email).Msg("password reset for unknown email")
		return models.ResetToken{}, ErrEmailNotFound
	}
	if err != nil {
		log.Err(err).Str("func", "*authService.ForgotPassword").Msg("user search by email failed")
		return models.ResetToken{}, fmt.Errorf("%w: %w", ErrInternal, err)
	}

	reset, err := a.tokens.IssueReset(ctx)
	if err != nil {
		return models.ResetToken{}, err
	}

	user.SetPasswordReset(reset.Hash, reset.ExpiresAt)
	err = a.userRepository.SetPasswordReset(ctx, user.UserID, reset.Hash, reset.ExpiresAt, a.now().UTC())
	if err != nil {
		log.Err(err).Str("func", "*authService.ForgotPassword").Str("user_id", user.UserID).Msg("error saving reset token")
		return models.ResetToken{}, fmt.Errorf("%w: %w", ErrInternal, err)
	}

	if err = a.notifier.NotifyPasswordReset(ctx, user, reset); err != nil {
		log.Err(err).Str("func", "*authService.ForgotPassword").Str("user_id", user.UserID).Msg("error handing over reset token")
		return models.ResetToken{}, fmt.Errorf("%w: %w", ErrInternal, err)
	}

	log.Info().Str("user_id", user.UserID).Time("expires", reset.ExpiresAt).Msg("password reset issued")
	return reset, nil
}

// ResetPassword replaces the password of the user holding the reset token
// and clears the token in the same update. Only the password and reset
// columns are written, so a session saved concurrently cannot bring the old
// password back.
func (a *authService) ResetPassword(ctx context.Context, input models.ResetPasswordInput) error {
	log := logger.FromContext(ctx)

	user, err := a.tokens.ConsumeReset(ctx, input.Token)
	if err != nil {
		return err
	}

	hash, err := a.hasher.Hash(input.NewPassword)
	if err != nil {
		log.Err(err).Str("func", "*authService.ResetPassword").Msg("password hashing failed")
		return err
	}

	err = a.userRepository.ResetPassword(ctx, user.UserID, utils.HashToken(input.Token), hash, a.now().UTC())
	if errors.Is(err, store.ErrNoUserWasFound) {
		log.Info().Str("user_id", user.UserID).Msg("reset token spent or expired before the update")
		return ErrInvalidOrExpiredToken
	}
	if err != nil {
		log.Err(err).Str("func", "*authService.ResetPassword").Str("user_id", user.UserID).Msg("error saving new password")
		return fmt.Errorf("%w: %w", ErrInternal, err)
	}

	log.Info().Str("user_id", user.UserID).Msg("password reset")
	return nil
}

func (a *authService) VerifyAccess(ctx context.Context, accessToken string) (*models.Claims, error) {
	return a.tokens.VerifyAccess(ctx, accessToken)
}

func (a *authService) Me(ctx context.Context) (models.SessionUser, error) {
	claims, ok := utils.GetClaimsFromContext(ctx)
	if !ok {
		return models.SessionUser{}, ErrNoClaims
	}

	return models.SessionUser{ID: claims.UserID, Email: claims.Email, Role: claims.Role}, nil
}

// startSession issues an access and a refresh token for user and persists
// the refresh token digest.
func (a *authService) startSession(ctx context.Context, user *models.User) (models.TokenPair, error) {
	access, err := a.tokens.IssueAccess(ctx, *user)
	if err != nil {
		return models.TokenPair{}, err
	}

	refresh, err := a.tokens.IssueRefresh(ctx, user.UserID)
	if err != nil {
		return models.TokenPair{}, err
	}

	user.SetSession(utils.HashToken(refresh.SignedString), refresh.ExpiresAt)
	err = a.userRepository.SaveSession(ctx, user.UserID, user.RefreshToken, refresh.ExpiresAt, a.now().UTC())
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "*authService.startSession").
			Str("user_id", user.UserID).
			Msg("error saving session")
		return models.TokenPair{}, fmt.Errorf("%w: %w", ErrInternal, err)
	}

	return models.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
