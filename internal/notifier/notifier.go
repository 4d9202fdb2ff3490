// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package notifier hands issued password reset tokens over to whatever
// delivers them to the user. The server never sends email itself.
//
// Two implementations exist:
//   - LogNotifier records that a reset was issued. It is the default.
//   - AMQPNotifier publishes a JSON message to a durable RabbitMQ queue for
//     a mail worker to pick up.
package notifier

import (
	"context"
	"time"

	"github.com/MKhiriev/go-auth-service/internal/logger"
	"github.com/MKhiriev/go-auth-service/internal/metrics"
	"github.com/MKhiriev/go-auth-service/models"
)

// Channel names used as metric labels.
const (
	ChannelLog  = "log"
	ChannelAMQP = "amqp"
)

// Recorder counts notification outcomes.
type Recorder interface {
	ObserveResetNotification(channel, result string)
}

// PasswordResetMessage is the payload handed to the delivery channel.
type PasswordResetMessage struct {
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func newPasswordResetMessage(user models.User, token models.ResetToken) PasswordResetMessage {
	return PasswordResetMessage{
		UserID:    user.UserID,
		Name:      user.Name,
		Email:     user.Email,
		Token:     token.Raw,
		ExpiresAt: token.ExpiresAt.UTC(),
	}
}

// LogNotifier only logs that a reset was issued. The raw token is not logged.
type LogNotifier struct {
	recorder Recorder
}

func NewLogNotifier(recorder Recorder) *LogNotifier {
	return &LogNotifier{recorder: recorder}
}

func (n *LogNotifier) NotifyPasswordReset(ctx context.Context, user models.User, token models.ResetToken) error {
	logger.FromContext(ctx).Info().
		Str("user_id", user.UserID).
		Time("expires_at", token.ExpiresAt).
		Msg("password reset token issued, no delivery channel configured")

	if n.recorder != nil {
		n.recorder.ObserveResetNotification(ChannelLog, metrics.ResultSuccess)
	}
	return nil
}
