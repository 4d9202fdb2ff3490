// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package server

import "context"

// Server defines the lifecycle contract of the process.
type Server interface {
	// RunServer starts serving requests and blocks until ctx is cancelled,
	// a stop signal arrives or the listener fails. It then shuts down
	// gracefully.
	RunServer(ctx context.Context) error

	// Shutdown stops accepting requests and waits for in-flight ones until
	// ctx expires.
	Shutdown(ctx context.Context) error
}
