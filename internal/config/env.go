// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// parseEnv fills cfg from the process environment following the `env` and
// `envPrefix` tags, e.g. APP_ACCESS_TOKEN_SIGN_KEY or STORAGE_REDIS_ADDRESS.
// Unset variables leave fields at their zero value; defaults are applied
// later by setDefaults.
func parseEnv(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("error parsing environment: %w", err)
	}
	return nil
}
