// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package server

import "errors"

var (
	errNoListenAddress = errors.New("http listen address is not configured")
	errNoHandler       = errors.New("no http handler to serve")
)
