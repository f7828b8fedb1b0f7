// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package services

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
)

// NATSServer is the lifecycle subset of *eventprocessor.EmbeddedServer.
type NATSServer interface {
	Shutdown(ctx context.Context) error
	IsRunning() bool
}

// NATSService owns the messaging resources of a serve process: an
// optional embedded NATS server and the event publisher connected to it.
// Both are started before the tree (the pipeline needs the publisher at
// construction), so Serve only watches them and tears them down in order:
// publisher first, then the server it is connected to.
type NATSService struct {
	server          NATSServer
	publisher       io.Closer
	shutdownTimeout time.Duration
	logger          zerolog.Logger
	name            string
}

// NewNATSService creates the service. server may be nil when an external
// NATS is used; publisher may be nil when events are disabled.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewNATSService(server NATSServer, publisher io.Closer, shutdownTimeout time.Duration, logger zerolog.Logger) *NATSService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &NATSService{
		server:          server,
		publisher:       publisher,
		shutdownTimeout: shutdownTimeout,
		logger:          logger.With().Str("service", "nats").Logger(),
		name:            "nats",
	}
}

// Serve implements suture.Service. The resources cannot be recreated from
// here, so an embedded server that is already down stops the service for
// good instead of triggering restarts.
func (s *NATSService) Serve(ctx context.Context) error {
	if s.server != nil && !s.server.IsRunning() {
		s.logger.Error().Msg("embedded NATS server is not running")
		return suture.ErrDoNotRestart
	}

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	var errs []error
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.server != nil {
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		s.logger.Warn().Err(err).Msg("NATS shutdown incomplete")
	}

	return ctx.Err()
}

// String implements fmt.Stringer for suture's logs.
func (s *NATSService) String() string {
	return s.name
}
