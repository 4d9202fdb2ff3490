// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"errors"
	"fmt"

	"github.com/MKhiriev/go-auth-service/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

type bcryptHasher struct {
	cost int
}

// NewPasswordHasher returns a bcrypt PasswordHasher with the given work
// factor.
func NewPasswordHasher(cost int) PasswordHasher {
	return &bcryptHasher{cost: cost}
}

func (h *bcryptHasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrInvalidDataProvided
	}
	if len(plaintext) > utils.MaxPasswordBytes {
		return "", fmt.Errorf("%w: %w", ErrInvalidDataProvided, bcrypt.ErrPasswordTooLong)
	}

	hash, err := utils.HashPassword(plaintext, h.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInternal, err)
	}

	return hash, nil
}

func (h *bcryptHasher) Verify(plaintext, hash string) (bool, error) {
	ok, err := utils.ComparePassword(plaintext, hash)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrInternal, err)
	}

	return ok, nil
}
