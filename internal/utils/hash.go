// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// HashToken returns the hex-encoded SHA-256 digest of token.
//
// Refresh and reset tokens are stored only in this form, so a leaked users
// table does not hand out usable credentials.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// RandomHex returns n cryptographically random bytes encoded as a
// 2n-character hex string.
func RandomHex(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("invalid random length %d", n)
	}

	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("error reading random bytes: %w", err)
	}

	return hex.EncodeToString(buf), nil
}
