// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"time"

	"github.com/MKhiriev/go-auth-service/internal/logger"
	"github.com/MKhiriev/go-auth-service/internal/store"
)

// TokenSweeper periodically clears refresh and reset tokens whose expiry has
// passed, so stale digests do not linger until the owner's next request.
type TokenSweeper struct {
	userRepository store.UserRepository
	interval       time.Duration
	recorder       SweepRecorder
	now            func() time.Time
	logger         *logger.Logger
}

func NewTokenSweeper(repo store.UserRepository, interval time.Duration, recorder SweepRecorder, log *logger.Logger) *TokenSweeper {
	child := log.GetChildLogger()
	child.Logger = child.With().Str("worker", "token_sweeper").Logger()

	return &TokenSweeper{
		userRepository: repo,
		interval:       interval,
		recorder:       recorder,
		now:            time.Now,
		logger:         child,
	}
}

// Run sweeps once on start and then every interval until ctx is cancelled.
// A non-positive interval disables the sweeper.
func (s *TokenSweeper) Run(ctx context.Context) {
	if s.interval <= 0 {
		s.logger.Info().Msg("token sweeper disabled")
		return
	}

	s.logger.Info().Dur("interval", s.interval).Msg("token sweeper started")
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.Sweep(ctx)

		select {
		case <-ctx.Done():
			s.logger.Info().Msg("token sweeper stopped")
			return
		case <-ticker.C:
		}
	}
}

// Sweep runs a single pass and returns the number of cleared token pairs.
func (s *TokenSweeper) Sweep(ctx context.Context) int64 {
	cleared, err := s.userRepository.ClearExpiredTokens(ctx, s.now().UTC())
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Err(err).Str("func", "*TokenSweeper.Sweep").Msg("error clearing expired tokens")
		}
		return 0
	}

	if cleared > 0 {
		s.logger.Debug().Int64("cleared", cleared).Msg("expired tokens cleared")
		if s.recorder != nil {
			s.recorder.AddSweptTokens(cleared)
		}
	}
	return cleared
}
