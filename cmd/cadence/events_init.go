// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package main

import (
	"context"
	"fmt"

	"github.com/tomtom215/cadence/internal/config"
	"github.com/tomtom215/cadence/internal/eventprocessor"
	"github.com/tomtom215/cadence/internal/logging"
)

// EventComponents holds the optional event infrastructure.
type EventComponents struct {
	Server    *eventprocessor.EmbeddedServer
	Publisher *eventprocessor.Publisher
}

// initEvents starts the embedded NATS server (if configured) and connects
// the playlist event publisher. Returns nil when events are disabled.
func initEvents(cfg *config.Config) (*EventComponents, error) {
	if !cfg.Events.Enabled {
		logging.Info().Msg("Playlist events disabled")
		return nil, nil
	}

	pubCfg, srvCfg, cbCfg, err := eventprocessor.FromConfig(&cfg.Events)
	if err != nil {
		return nil, fmt.Errorf("invalid events config: %w", err)
	}

	comps := &EventComponents{}
	if cfg.Events.EmbeddedServer {
		comps.Server, err = eventprocessor.NewEmbeddedServer(&srvCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to start embedded NATS server: %w", err)
		}
		pubCfg.URL = comps.Server.ClientURL()
		logging.Info().Str("url", pubCfg.URL).Msg("Embedded NATS server started")
	}

	logger := eventprocessor.NewWatermillLogger(logging.WithComponent("events"))
	comps.Publisher, err = eventprocessor.NewNATSPublisher(pubCfg, eventprocessor.NewCircuitBreaker(cbCfg), logger)
	if err != nil {
		comps.Shutdown(context.Background())
		return nil, fmt.Errorf("failed to create event publisher: %w", err)
	}
	logging.Info().
		Str("url", pubCfg.URL).
		Str("subject", comps.Publisher.Subject()).
		Msg("Playlist event publisher connected")

	return comps, nil
}

// Shutdown closes the publisher, then the server it talks to.
func (c *EventComponents) Shutdown(ctx context.Context) {
	if c == nil {
		return
	}
	if c.Publisher != nil {
		closeWithLog(c.Publisher, "event publisher")
	}
	if c.Server != nil {
		if err := c.Server.Shutdown(ctx); err != nil {
			logging.Error().Err(err).Msg("Embedded NATS shutdown failed")
		}
	}
}
