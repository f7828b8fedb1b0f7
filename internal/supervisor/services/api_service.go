// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// HTTPServer is the lifecycle subset of *http.Server.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// APIService runs the playlist API server under the supervisor. Serve
// blocks until the listener fails or ctx is canceled; in-flight playlist
// reads then get drainTimeout to finish.
type APIService struct {
	server       HTTPServer
	addr         string
	drainTimeout time.Duration
	logger       zerolog.Logger
}

// NewAPIService wraps server, which listens on addr. A non-positive
// drainTimeout means 10s.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewAPIService(server HTTPServer, addr string, drainTimeout time.Duration, logger zerolog.Logger) *APIService {
	if drainTimeout <= 0 {
		drainTimeout = 10 * time.Second
	}
	return &APIService{
		server:       server,
		addr:         addr,
		drainTimeout: drainTimeout,
		logger:       logger.With().Str("component", "api").Str("addr", addr).Logger(),
	}
}

// Serve implements suture.Service. A listener error is returned so the
// supervisor restarts the service with backoff.
func (s *APIService) Serve(ctx context.Context) error {
	listenErr := make(chan error, 1)
	go func() {
		err := s.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		listenErr <- err
	}()
	s.logger.Info().Msg("Playlist API listening")

	select {
	case err := <-listenErr:
		if err == nil {
			s.logger.Info().Msg("Playlist API closed")
			return nil
		}
		s.logger.Error().Err(err).Msg("Playlist API listener failed")
		return fmt.Errorf("api listener on %s: %w", s.addr, err)

	case <-ctx.Done():
	}

	// ctx is already canceled; the drain gets its own deadline.
	drainCtx, cancel := context.WithTimeout(context.Background(), s.drainTimeout)
	defer cancel()

	start := time.Now()
	if err := s.server.Shutdown(drainCtx); err != nil {
		s.logger.Warn().Err(err).Dur("drain_timeout", s.drainTimeout).Msg("Playlist API drain incomplete")
		return fmt.Errorf("api drain on %s: %w", s.addr, err)
	}
	<-listenErr
	s.logger.Info().Dur("drained_in", time.Since(start)).Msg("Playlist API stopped")
	return ctx.Err()
}

// String names the service in supervisor events.
func (s *APIService) String() string {
	return "api"
}
