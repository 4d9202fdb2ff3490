// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/MKhiriev/go-auth-service/internal/logger"
	"github.com/MKhiriev/go-auth-service/internal/metrics"
	"github.com/MKhiriev/go-auth-service/models"
	amqp "github.com/rabbitmq/amqp091-go"
)

var (
	ErrDialBroker    = errors.New("error connecting to amqp broker")
	ErrDeclareQueue  = errors.New("error declaring amqp queue")
	ErrPublish       = errors.New("error publishing password reset")
	ErrEncodeMessage = errors.New("error encoding password reset message")
)

// Channel is the subset of *amqp.Channel used for publishing.
type Channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPNotifier publishes every reset as a persistent JSON message to a
// durable queue on the default exchange.
type AMQPNotifier struct {
	ch    Channel
	conn  io.Closer
	queue string

	recorder Recorder
	now      func() time.Time
}

// DialAMQP connects to the broker at url and declares queue.
func DialAMQP(url, queue string, recorder Recorder, log *logger.Logger) (*AMQPNotifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDialBroker, err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: %w", ErrDialBroker, err)
	}

	n, err := NewAMQPNotifier(ch, queue, recorder)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	n.conn = conn

	log.Info().Str("queue", queue).Msg("amqp notifier connected")
	return n, nil
}

// NewAMQPNotifier declares queue on ch and returns a notifier publishing to it.
func NewAMQPNotifier(ch Channel, queue string, recorder Recorder) (*AMQPNotifier, error) {
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrDeclareQueue, queue, err)
	}

	return &AMQPNotifier{
		ch:       ch,
		queue:    queue,
		recorder: recorder,
		now:      time.Now,
	}, nil
}

func (n *AMQPNotifier) NotifyPasswordReset(ctx context.Context, user models.User, token models.ResetToken) error {
	log := logger.FromContext(ctx)

	body, err := json.Marshal(newPasswordResetMessage(user, token))
	if err != nil {
		n.observe(metrics.ResultError)
		return fmt.Errorf("%w: %w", ErrEncodeMessage, err)
	}

	err = n.ch.PublishWithContext(ctx, "", n.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    n.now().UTC(),
		MessageId:    token.Hash,
		Body:         body,
	})
	if err != nil {
		n.observe(metrics.ResultError)
		log.Err(err).Str("func", "*AMQPNotifier.NotifyPasswordReset").Str("queue", n.queue).Msg("publish failed")
		return fmt.Errorf("%w: %w", ErrPublish, err)
	}

	n.observe(metrics.ResultSuccess)
	log.Debug().Str("user_id", user.UserID).Str("queue", n.queue).Msg("password reset published")
	return nil
}

// Close closes the channel and, when the notifier dialed it, the connection.
func (n *AMQPNotifier) Close() error {
	err := n.ch.Close()
	if n.conn != nil {
		err = errors.Join(err, n.conn.Close())
	}
	return err
}

func (n *AMQPNotifier) observe(result string) {
	if n.recorder != nil {
		n.recorder.ObserveResetNotification(ChannelAMQP, result)
	}
}
