// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-auth-service/internal/config"
	"github.com/MKhiriev/go-auth-service/internal/logger"
	"github.com/MKhiriev/go-auth-service/internal/store"
	"github.com/MKhiriev/go-auth-service/internal/utils"
	"github.com/MKhiriev/go-auth-service/models"
	"github.com/golang-jwt/jwt/v5"
)

// resetTokenBytes is the amount of randomness in a raw reset token.
const resetTokenBytes = 32

// tokenService is the concrete implementation of TokenService.
//
// Access and refresh tokens are HS256 JWTs signed with separate secrets.
// Reset tokens are random hex strings of which only the SHA-256 digest is
// stored.
type tokenService struct {
	// userRepository backs the stateful part of refresh and reset tokens.
	userRepository store.UserRepository

	accessSignKey  string
	refreshSignKey string

	// issuer is the "iss" claim of every token. Tokens carrying another
	// issuer are rejected.
	issuer string

	accessDuration  time.Duration
	refreshDuration time.Duration
	resetDuration   time.Duration

	ids *utils.UUIDGenerator

	// now is the clock used for issuing and verifying tokens.
	now func() time.Time

	logger *logger.Logger
}

// NewTokenService constructs a TokenService from the token secrets and
// lifetimes in cfg.
func NewTokenService(userRepository store.UserRepository, cfg config.App, logger *logger.Logger) TokenService {
	return newTokenService(userRepository, cfg, time.Now, logger)
}

func newTokenService(userRepository store.UserRepository, cfg config.App, now func() time.Time, logger *logger.Logger) *tokenService {
	return &tokenService{
		userRepository:  userRepository,
		accessSignKey:   cfg.AccessTokenSignKey,
		refreshSignKey:  cfg.RefreshTokenSignKey,
		issuer:          cfg.TokenIssuer,
		accessDuration:  cfg.AccessTokenDuration,
		refreshDuration: cfg.RefreshTokenDuration,
		resetDuration:   cfg.ResetTokenDuration,
		ids:             utils.NewUUIDGenerator(),
		now:             now,
		logger:          logger,
	}
}

// IssueAccess signs an access token carrying the user's id, email and role.
func (t *tokenService) IssueAccess(ctx context.Context, user models.User) (models.Token, error) {
	issuedAt, expiresAt := t.window(t.accessDuration)

	claims := models.Claims{
		UserID: user.UserID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   user.UserID,
			ID:        t.ids.Generate(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := utils.SignJWT(claims, t.accessSignKey)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*tokenService.IssueAccess").Msg("error signing access token")
		return models.Token{}, fmt.Errorf("%w: %w", ErrInternal, err)
	}

	return models.Token{SignedString: signed, ExpiresAt: expiresAt}, nil
}

// VerifyAccess checks signature, issuer and expiry of an access token.
// Expired tokens yield ErrExpiredToken, every other failure
// ErrInvalidSignature.
func (t *tokenService) VerifyAccess(ctx context.Context, accessToken string) (*models.Claims, error) {
	claims := &models.Claims{}
	if err := utils.ParseJWT(accessToken, t.accessSignKey, claims, t.parserOptions()...); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", ErrExpiredToken, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}

	if claims.UserID == "" {
		return nil, ErrInvalidSignature
	}

	return claims, nil
}

// IssueRefresh signs a refresh token for userID. Every token carries a fresh
// jti, so two tokens issued within the same second still differ.
func (t *tokenService) IssueRefresh(ctx context.Context, userID string) (models.Token, error) {
	issuedAt, expiresAt := t.window(t.refreshDuration)

	claims := models.RefreshClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   userID,
			ID:        t.ids.Generate(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := utils.SignJWT(claims, t.refreshSignKey)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*tokenService.IssueRefresh").Msg("error signing refresh token")
		return models.Token{}, fmt.Errorf("%w: %w", ErrInternal, err)
	}

	return models.Token{SignedString: signed, ExpiresAt: expiresAt}, nil
}

// Rotate validates refreshToken in three steps: the stored digest must
// match, the stored expiry must not have passed, and the signature must
// verify. On success it returns the owner and a new access token.
func (t *tokenService) Rotate(ctx context.Context, refreshToken string) (models.User, models.Token, error) {
	log := logger.FromContext(ctx).With().Str("func", "*tokenService.Rotate").Logger()

	user, err := t.userRepository.FindByRefreshToken(ctx, utils.HashToken(refreshToken))
	if errors.Is(err, store.ErrNoUserWasFound) {
		return models.User{}, models.Token{}, ErrInvalidRefreshToken
	}
	if err != nil {
		log.Err(err).Msg("error looking up refresh token")
		return models.User{}, models.Token{}, fmt.Errorf("%w: %w", ErrInternal, err)
	}

	if user.RefreshTokenExpires == nil || t.now().After(*user.RefreshTokenExpires) {
		log.Debug().Str("user_id", user.UserID).Msg("refresh token expired")
		return models.User{}, models.Token{}, ErrRefreshTokenExpired
	}

	claims := &models.RefreshClaims{}
	if err = utils.ParseJWT(refreshToken, t.refreshSignKey, claims, t.parserOptions()...); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return models.User{}, models.Token{}, ErrRefreshTokenExpired
		}
		log.Warn().Err(err).Str("user_id", user.UserID).Msg("refresh token failed verification")
		return models.User{}, models.Token{}, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	if claims.UserID != user.UserID {
		log.Warn().Str("user_id", user.UserID).Msg("refresh token issued for another user")
		return models.User{}, models.Token{}, ErrInvalidRefreshToken
	}

	access, err := t.IssueAccess(ctx, user)
	if err != nil {
		return models.User{}, models.Token{}, err
	}

	return user, access, nil
}

// IssueReset generates a reset token valid for the configured duration.
func (t *tokenService) IssueReset(ctx context.Context) (models.ResetToken, error) {
	raw, err := utils.RandomHex(resetTokenBytes)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*tokenService.IssueReset").Msg("error generating reset token")
		return models.ResetToken{}, fmt.Errorf("%w: %w", ErrInternal, err)
	}

	return models.ResetToken{
		Raw:       raw,
		Hash:      utils.HashToken(raw),
		ExpiresAt: t.now().UTC().Add(t.resetDuration),
	}, nil
}

// ConsumeReset finds the user holding an unexpired reset token matching raw.
func (t *tokenService) ConsumeReset(ctx context.Context, raw string) (models.User, error) {
	user, err := t.userRepository.FindByResetTokenHash(ctx, utils.HashToken(raw), t.now().UTC())
	if errors.Is(err, store.ErrNoUserWasFound) {
		return models.User{}, ErrInvalidOrExpiredToken
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*tokenService.ConsumeReset").Msg("error looking up reset token")
		return models.User{}, fmt.Errorf("%w: %w", ErrInternal, err)
	}

	return user, nil
}

// window returns the issue and expiry instants of a token living for d.
// Both are cut to whole seconds, the precision of JWT numeric dates, so that
// the expiry stored next to a refresh token equals its "exp" claim.
func (t *tokenService) window(d time.Duration) (time.Time, time.Time) {
	issuedAt := t.now().UTC().Truncate(jwt.TimePrecision)
	return issuedAt, issuedAt.Add(d)
}

func (t *tokenService) parserOptions() []jwt.ParserOption {
	return []jwt.ParserOption{
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	}
}
