// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"time"
)

const defaultClientTimeout = 10 * time.Second

// ClientAdapter holds network settings used by the client transport layer.
type ClientAdapter struct {
	// HTTPAddress is the base URL of the auth server
	// (e.g. "http://localhost:8080").
	// Env: ADAPTER_HTTP_ADDRESS
	HTTPAddress string `env:"HTTP_ADDRESS"`
	// RequestTimeout is the default timeout for outbound client requests.
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// ClientConfig is the configuration of the command-line client.
type ClientConfig struct {
	// Adapter contains the server address and request timeout.
	Adapter ClientAdapter `envPrefix:"ADAPTER_"`
}

// GetClientConfig reads the client configuration from the environment,
// applies defaults and validates it.
func GetClientConfig() (*ClientConfig, error) {
	cfg := &ClientConfig{}
	if err := parseEnv(cfg); err != nil {
		return nil, fmt.Errorf("error get client config: %w", err)
	}

	if cfg.Adapter.HTTPAddress == "" {
		cfg.Adapter.HTTPAddress = "http://" + defaultHTTPAddress
	}
	if cfg.Adapter.RequestTimeout == 0 {
		cfg.Adapter.RequestTimeout = defaultClientTimeout
	}

	return cfg, cfg.validate()
}
