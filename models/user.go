// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"strings"
	"time"
)

// DefaultRole is assigned to every account created through signup.
const DefaultRole = "user"

// User represents an account entity used for authentication and authorization.
// It contains identity attributes and credential-related state.
// Sensitive fields are never serialized; use [User.Profile] for responses.
type User struct {
	// UserID is the opaque unique identifier assigned at creation (UUIDv7).
	// It never changes after the record is created.
	UserID string `json:"id"`

	// Name is the display name of the user.
	Name string `json:"name"`

	// Email is the unique login identifier. It is stored normalised
	// (trimmed, lower-case).
	Email string `json:"email"`

	// PasswordHash is the bcrypt output of the user's password.
	// It is never the plaintext password and never empty after creation.
	PasswordHash string `json:"-"`

	// Role is a free-form tag, "user" unless set otherwise by an operator.
	Role string `json:"role"`

	// RefreshToken holds the SHA-256 digest of the currently active refresh
	// token. Empty when the user has no active session.
	RefreshToken string `json:"-"`

	// RefreshTokenExpires is meaningful only when RefreshToken is set.
	RefreshTokenExpires *time.Time `json:"-"`

	// ResetPasswordToken holds the SHA-256 digest of a pending password reset
	// token. Empty when no reset is pending.
	ResetPasswordToken string `json:"-"`

	// ResetPasswordExpires is meaningful only when ResetPasswordToken is set.
	ResetPasswordExpires *time.Time `json:"-"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp of the last persisted change.
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the name of the database table
// associated with the User model.
func (u User) TableName() string {
	return "users"
}

// HasSession reports whether the user has an active refresh token.
func (u User) HasSession() bool {
	return u.RefreshToken != "" && u.RefreshTokenExpires != nil
}

// SetSession stores the refresh token digest together with its expiry.
func (u *User) SetSession(tokenHash string, expires time.Time) {
	u.RefreshToken = tokenHash
	u.RefreshTokenExpires = &expires
}

// ClearSession removes the refresh token pair.
func (u *User) ClearSession() {
	u.RefreshToken = ""
	u.RefreshTokenExpires = nil
}

// SetPasswordReset stores the reset token digest together with its expiry.
func (u *User) SetPasswordReset(tokenHash string, expires time.Time) {
	u.ResetPasswordToken = tokenHash
	u.ResetPasswordExpires = &expires
}

// ClearPasswordReset removes the reset token pair.
func (u *User) ClearPasswordReset() {
	u.ResetPasswordToken = ""
	u.ResetPasswordExpires = nil
}

// Profile returns the public projection of the user.
func (u User) Profile() UserProfile {
	return UserProfile{
		ID:    u.UserID,
		Name:  u.Name,
		Email: u.Email,
	}
}

// UserProfile is the part of a [User] that may leave the server.
type UserProfile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NormalizeEmail returns the canonical form of an email address: surrounding
// whitespace removed and lower-cased. Every store lookup uses this form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
