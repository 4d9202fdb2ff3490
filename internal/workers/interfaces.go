// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package workers runs the background jobs of the auth service.
// It defines the Worker interface, a Workers aggregate that runs several
// workers until their context is cancelled, and the TokenSweeper that clears
// expired refresh and reset tokens.
package workers

import "context"

// Worker is a background job. Run blocks until ctx is cancelled.
type Worker interface {
	Run(ctx context.Context)
}

// SweepRecorder receives the number of token pairs cleared by a sweep.
type SweepRecorder interface {
	AddSweptTokens(n int64)
}
