// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package eventprocessor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/cadence/internal/logging"
	"github.com/tomtom215/cadence/internal/metrics"
	"github.com/tomtom215/cadence/internal/models"
)

// ErrPublisherClosed is returned by Publish after Close.
var ErrPublisherClosed = errors.New("publisher is closed")

// Publisher sends PlaylistsUpdated events through a watermill publisher,
// guarded by a circuit breaker.
type Publisher struct {
	publisher      message.Publisher
	subject        string
	circuitBreaker *gobreaker.CircuitBreaker[any]

	mu     sync.RWMutex
	closed bool
}

// NewPublisher wraps any watermill publisher. A nil breaker publishes
// unguarded.
func NewPublisher(pub message.Publisher, subject string, cb *gobreaker.CircuitBreaker[any]) (*Publisher, error) {
	if pub == nil {
		return nil, errors.New("watermill publisher is required")
	}
	if subject == "" {
		subject = DefaultSubject
	}
	return &Publisher{
		publisher:      pub,
		subject:        subject,
		circuitBreaker: cb,
	}, nil
}

// NewNATSPublisher connects a core NATS publisher with reconnect handling.
// Playlist updates are notifications, so JetStream persistence is not used.
func NewNATSPublisher(cfg PublisherConfig, cb *gobreaker.CircuitBreaker[any], logger watermill.LoggerAdapter) (*Publisher, error) {
	if logger == nil {
		logger = NewWatermillLogger(logging.WithComponent("events"))
	}

	natsOpts := []natsgo.Option{
		natsgo.Name("cadence"),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.ReconnectBufSize(cfg.ReconnectBuffer),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         cfg.URL,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream:   wmNats.JetStreamConfig{Disabled: true},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}

	return NewPublisher(pub, cfg.Subject, cb)
}

// Subject returns the subject events are published to.
func (p *Publisher) Subject() string {
	return p.subject
}

// Publish encodes and sends a playlist update. It satisfies the pipeline's
// Publisher interface.
func (p *Publisher) Publish(ctx context.Context, event *models.PlaylistsUpdated) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}

	msg, err := NewMessage(event)
	if err != nil {
		metrics.RecordEventPublish("invalid")
		return err
	}
	msg.SetContext(ctx)

	if p.circuitBreaker != nil {
		_, err = p.circuitBreaker.Execute(func() (any, error) {
			return nil, p.publisher.Publish(p.subject, msg)
		})
	} else {
		err = p.publisher.Publish(p.subject, msg)
	}

	switch {
	case err == nil:
		metrics.RecordEventPublish("success")
		logging.Ctx(ctx).Debug().
			Str("subject", p.subject).
			Str("event_id", event.EventID).
			Msg("Published playlists update")
		return nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordEventPublish("rejected")
	default:
		metrics.RecordEventPublish("error")
	}
	return fmt.Errorf("publish to %s: %w", p.subject, err)
}

// Close shuts down the underlying publisher. It is safe to call twice.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	return p.publisher.Close()
}
