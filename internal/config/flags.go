// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// parseFlags parses all server configuration flags from args into a fresh
// [StructuredConfig]. Unset flags leave zero values so they do not override
// other sources during merging.
//
// Flags:
//
//	-a server address in format [host]:[port]
//	-d database DSN
//	-db-driver database driver (postgres, sqlite, memory)
//	-c/-config json file path with configs
//	-access-token-sign-key access token signing key
//	-refresh-token-sign-key refresh token signing key
//	-token-issuer token issuer name
//	-access-token-duration access token lifetime (e.g. "15m")
//	-refresh-token-duration refresh token lifetime (e.g. "168h")
//	-reset-token-duration reset token lifetime (e.g. "10m")
//	-bcrypt-cost bcrypt work factor
//	-rotate-refresh-tokens issue a new refresh token on every refresh
//	-conceal-reset-token do not return reset tokens over HTTP
//	-request-timeout request timeout (e.g. "30s", "1m")
//	-redis-address redis address for the login limiter
//	-amqp-url AMQP broker URL for reset notifications
func parseFlags(fs *flag.FlagSet, args []string) (*StructuredConfig, error) {
	var serverAddress NetAddress
	var databaseDSN, databaseDriver string
	var jsonConfigPath string
	var accessKey, refreshKey, tokenIssuer string
	var accessDuration, refreshDuration, resetDuration time.Duration
	var bcryptCost int
	var rotate, conceal bool
	var requestTimeout time.Duration
	var redisAddress, amqpURL string

	fs.Var(&serverAddress, "a", "Net address host:port")
	fs.StringVar(&databaseDSN, "d", "", "Database DSN")
	fs.StringVar(&databaseDriver, "db-driver", "", "Database driver (postgres, sqlite, memory)")
	fs.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	fs.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	fs.StringVar(&accessKey, "access-token-sign-key", "", "Access token signing key")
	fs.StringVar(&refreshKey, "refresh-token-sign-key", "", "Refresh token signing key")
	fs.StringVar(&tokenIssuer, "token-issuer", "", "Token issuer")
	fs.DurationVar(&accessDuration, "access-token-duration", 0, "Access token duration (e.g., 15m)")
	fs.DurationVar(&refreshDuration, "refresh-token-duration", 0, "Refresh token duration (e.g., 168h)")
	fs.DurationVar(&resetDuration, "reset-token-duration", 0, "Reset token duration (e.g., 10m)")
	fs.IntVar(&bcryptCost, "bcrypt-cost", 0, "Bcrypt cost")
	fs.BoolVar(&rotate, "rotate-refresh-tokens", false, "Rotate refresh tokens on refresh")
	fs.BoolVar(&conceal, "conceal-reset-token", false, "Do not return reset tokens over HTTP")
	fs.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")
	fs.StringVar(&redisAddress, "redis-address", "", "Redis address host:port")
	fs.StringVar(&amqpURL, "amqp-url", "", "AMQP broker URL")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("error parsing flags: %w", err)
	}

	return &StructuredConfig{
		App: App{
			AccessTokenSignKey:   accessKey,
			RefreshTokenSignKey:  refreshKey,
			TokenIssuer:          tokenIssuer,
			AccessTokenDuration:  accessDuration,
			RefreshTokenDuration: refreshDuration,
			ResetTokenDuration:   resetDuration,
			BcryptCost:           bcryptCost,
			RotateRefreshTokens:  rotate,
			ConcealResetToken:    conceal,
		},
		Storage: Storage{
			DB: DB{
				Driver: databaseDriver,
				DSN:    databaseDSN,
			},
			Redis: Redis{
				Address: redisAddress,
			},
		},
		Server: Server{
			HTTPAddress:    serverAddress.String(),
			RequestTimeout: requestTimeout,
		},
		Notifier: Notifier{
			AMQPURL: amqpURL,
		},
		JSONFilePath: jsonConfigPath,
	}, nil
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns an empty string.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is
// "localhost" or empty, and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 || port > 65535 {
		return errors.New("port number must be in range 1..65535")
	}

	if host != "localhost" && host != "" {
		ip := net.ParseIP(host)
		if ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
