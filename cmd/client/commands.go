// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/MKhiriev/go-auth-service/internal/adapter"
	"github.com/MKhiriev/go-auth-service/models"
)

var (
	errUsage          = errors.New("usage")
	errUnknownCommand = errors.New("unknown command")
	errMissingFlag    = errors.New("missing required flag")
)

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, fs *flag.FlagSet, args []string, a adapter.ServerAdapter) (any, error)
}

var commands = []command{
	{name: "signup", summary: "register a new account", run: signup},
	{name: "login", summary: "exchange credentials for a token pair", run: login},
	{name: "refresh", summary: "get a new access token for a refresh token", run: refresh},
	{name: "logout", summary: "revoke a refresh token", run: logout},
	{name: "forgot", summary: "request a password reset token", run: forgot},
	{name: "reset", summary: "set a new password with a reset token", run: reset},
	{name: "me", summary: "show the identity behind an access token", run: me},
	{name: "version", summary: "print the server version", run: version},
}

// run dispatches args[0] to its command and writes the result to out as
// indented JSON.
func run(ctx context.Context, args []string, a adapter.ServerAdapter, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	for _, c := range commands {
		if c.name != args[0] {
			continue
		}

		fs := flag.NewFlagSet(c.name, flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		result, err := c.run(ctx, fs, args[1:], a)
		if err != nil {
			return fmt.Errorf("%s: %w", c.name, err)
		}
		return printJSON(out, result)
	}

	return fmt.Errorf("%w: %q", errUnknownCommand, args[0])
}

func printJSON(out io.Writer, v any) error {
	if s, ok := v.(string); ok {
		_, err := fmt.Fprintln(out, s)
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// required returns errMissingFlag naming an empty value, if any.
func required(values map[string]string) error {
	for name, v := range values {
		if v == "" {
			return fmt.Errorf("%w: -%s", errMissingFlag, name)
		}
	}
	return nil
}

func signup(ctx context.Context, fs *flag.FlagSet, args []string, a adapter.ServerAdapter) (any, error) {
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := required(map[string]string{"name": *name, "email": *email, "password": *password}); err != nil {
		return nil, err
	}

	return a.Signup(ctx, models.SignupInput{Name: *name, Email: *email, Password: *password})
}

func login(ctx context.Context, fs *flag.FlagSet, args []string, a adapter.ServerAdapter) (any, error) {
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := required(map[string]string{"email": *email, "password": *password}); err != nil {
		return nil, err
	}

	return a.Login(ctx, models.LoginInput{Email: *email, Password: *password})
}

func refresh(ctx context.Context, fs *flag.FlagSet, args []string, a adapter.ServerAdapter) (any, error) {
	token := fs.String("refresh-token", "", "refresh token issued by login")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := required(map[string]string{"refresh-token": *token}); err != nil {
		return nil, err
	}

	return a.Refresh(ctx, models.RefreshInput{RefreshToken: *token})
}

func logout(ctx context.Context, fs *flag.FlagSet, args []string, a adapter.ServerAdapter) (any, error) {
	token := fs.String("refresh-token", "", "refresh token to revoke")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := required(map[string]string{"refresh-token": *token}); err != nil {
		return nil, err
	}

	if err := a.Logout(ctx, models.RefreshInput{RefreshToken: *token}); err != nil {
		return nil, err
	}
	return models.MessageResponse{Message: "logged out"}, nil
}

func forgot(ctx context.Context, fs *flag.FlagSet, args []string, a adapter.ServerAdapter) (any, error) {
	email := fs.String("email", "", "account email")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := required(map[string]string{"email": *email}); err != nil {
		return nil, err
	}

	return a.ForgotPassword(ctx, models.ForgotPasswordInput{Email: *email})
}

func reset(ctx context.Context, fs *flag.FlagSet, args []string, a adapter.ServerAdapter) (any, error) {
	token := fs.String("token", "", "reset token")
	password := fs.String("new-password", "", "new account password")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := required(map[string]string{"token": *token, "new-password": *password}); err != nil {
		return nil, err
	}

	if err := a.ResetPassword(ctx, models.ResetPasswordInput{Token: *token, NewPassword: *password}); err != nil {
		return nil, err
	}
	return models.MessageResponse{Message: "password reset"}, nil
}

func me(ctx context.Context, fs *flag.FlagSet, args []string, a adapter.ServerAdapter) (any, error) {
	token := fs.String("access-token", "", "access token issued by login or refresh")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := required(map[string]string{"access-token": *token}); err != nil {
		return nil, err
	}

	a.SetToken(*token)
	user, err := a.Me(ctx)
	if err != nil {
		return nil, err
	}
	return models.MeResponse{User: user}, nil
}

func version(ctx context.Context, fs *flag.FlagSet, args []string, a adapter.ServerAdapter) (any, error) {
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return a.Version(ctx)
}
