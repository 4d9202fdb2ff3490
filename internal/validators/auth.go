// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/MKhiriev/go-auth-service/models"
	"github.com/go-playground/validator/v10"
)

// Field names accepted by AuthValidator.Validate. They match the JSON names
// of the request bodies.
const (
	FieldName         = "name"
	FieldEmail        = "email"
	FieldPassword     = "password"
	FieldRefreshToken = "refreshToken"
	FieldToken        = "token"
	FieldNewPassword  = "newPassword"
)

// FieldError describes a single rejected field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every rejected field of one input.
// It wraps ErrInvalidInput.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, fmt.Sprintf("field '%s' %s", f.Field, f.Message))
	}
	return strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// AuthValidator validates the request bodies of the auth endpoints.
type AuthValidator struct {
	validate *validator.Validate
}

// NewAuthValidator returns a Validator for the models.*Input types.
func NewAuthValidator() Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)
	if err := v.RegisterValidation("maxbytes", maxBytes); err != nil {
		panic(err)
	}

	return &AuthValidator{validate: v}
}

// Validate checks obj against its `validate` tags. When fields are given only
// errors on those fields are reported; naming a field the input does not have
// returns ErrUnknownField.
func (v *AuthValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch obj.(type) {
	case models.SignupInput, *models.SignupInput,
		models.LoginInput, *models.LoginInput,
		models.RefreshInput, *models.RefreshInput,
		models.ForgotPasswordInput, *models.ForgotPasswordInput,
		models.ResetPasswordInput, *models.ResetPasswordInput:
	default:
		return ErrUnsupportedType
	}

	if rv := reflect.ValueOf(obj); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return ErrUnsupportedType
	}

	known := fieldNames(obj)
	for _, f := range fields {
		if !slices.Contains(known, f) {
			return fmt.Errorf("%w: %s", ErrUnknownField, f)
		}
	}

	err := v.validate.StructCtx(ctx, obj)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	result := &ValidationError{}
	for _, fe := range fieldErrs {
		if len(fields) > 0 && !slices.Contains(fields, fe.Field()) {
			continue
		}
		result.Fields = append(result.Fields, FieldError{Field: fe.Field(), Message: messageForTag(fe)})
	}
	if len(result.Fields) == 0 {
		return nil
	}

	return result
}

func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// maxBytes implements the "maxbytes=N" tag: the UTF-8 encoding of a string
// field may not exceed N bytes. Passwords use it because bcrypt limits input
// by bytes, not runes.
func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}

func fieldNames(obj any) []string {
	t := reflect.TypeOf(obj)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	names := make([]string, 0, t.NumField())
	for i := range t.NumField() {
		names = append(names, jsonFieldName(t.Field(i)))
	}
	return names
}

func messageForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "maxbytes":
		return fmt.Sprintf("must be at most %s bytes long", fe.Param())
	default:
		return fmt.Sprintf("failed on '%s' validation", fe.Tag())
	}
}
