// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package validators checks request bodies before they reach the auth
// service. Rules live in the `validate` struct tags of the models input
// types and are enforced through go-playground/validator.
package validators

import "context"

// Validator checks v. When fields are given, only those struct fields are
// validated.
type Validator interface {
	Validate(ctx context.Context, v any, fields ...string) error
}
