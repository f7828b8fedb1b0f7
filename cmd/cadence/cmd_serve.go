// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/cadence/internal/api"
	"github.com/tomtom215/cadence/internal/config"
	"github.com/tomtom215/cadence/internal/logging"
	"github.com/tomtom215/cadence/internal/recommend/pipeline"
	"github.com/tomtom215/cadence/internal/supervisor"
	"github.com/tomtom215/cadence/internal/supervisor/services"
)

// serveCommand runs the read API and the scheduled pipeline under one
// supervisor tree until the context is canceled.
func serveCommand(ctx context.Context, args []string) error {
	fs := newFlagSet("serve")
	var common commonFlags
	common.register(fs)
	noSchedule := fs.Bool("no-schedule", false, "serve the API only, never run the pipeline")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := common.setup()
	if err != nil {
		return err
	}
	if cfg.HasWildcardCORS() {
		logging.Warn().Msg("CORS allows any origin; set server.cors_origins for production")
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer closeWithLog(db, "database")

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.DefaultTreeConfig())
	if err != nil {
		return fmt.Errorf("failed to create supervisor tree: %w", err)
	}

	var (
		p        *pipeline.Pipeline
		schedule services.PipelineServiceConfig
	)
	if !*noSchedule {
		checkpoints, err := openCheckpoints(cfg)
		if err != nil {
			return err
		}
		if checkpoints != nil {
			defer closeWithLog(checkpoints, "checkpoint store")
		}

		events, err := initEvents(cfg)
		if err != nil {
			return err
		}
		if events != nil {
			tree.AddMessagingService(natsService(events))
		}

		p, err = buildPipeline(cfg, db, checkpoints, events)
		if err != nil {
			events.Shutdown(context.Background())
			return err
		}
		schedule = services.PipelineServiceConfig{
			RunOnStartup: cfg.Schedule.RunOnStartup,
			Interval:     cfg.Schedule.Interval,
			Timeout:      cfg.Schedule.Timeout,
		}
	}

	handler := newHandler(cfg, db, p)
	if p != nil {
		schedule.OnComplete = handler.OnRunCompleted
		tree.AddPipelineService(services.NewPipelineService(p, schedule, logging.Logger()))
	}
	srv := newHTTPServer(cfg, handler)
	tree.AddAPIService(services.NewAPIService(srv, srv.Addr, 10*time.Second, logging.Logger()))

	logging.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Bool("schedule", !*noSchedule).
		Msg("Starting supervisor tree")

	errCh := tree.ServeBackground(ctx)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Cadence stopped")
	return nil
}

// natsService builds the messaging service, keeping nil pointers out of
// its interfaces.
func natsService(events *EventComponents) *services.NATSService {
	var server services.NATSServer
	if events.Server != nil {
		server = events.Server
	}
	return services.NewNATSService(server, events.Publisher, 10*time.Second, logging.Logger())
}

// newHandler builds the read API handler. p may be nil when the pipeline
// is not scheduled in this process.
func newHandler(cfg *config.Config, store api.Store, p *pipeline.Pipeline) *api.Handler {
	hcfg := api.DefaultHandlerConfig()
	hcfg.DefaultLimit = cfg.Recommend.ListLength
	hcfg.CacheTTL = cfg.Server.CacheTTL
	if cfg.Server.CacheSize > 0 {
		hcfg.CacheSize = cfg.Server.CacheSize
	}

	var monitor api.RunMonitor
	if p != nil {
		monitor = p
	}
	return api.NewHandler(store, monitor, hcfg)
}

// newHTTPServer builds the read API server.
func newHTTPServer(cfg *config.Config, handler *api.Handler) *http.Server {
	router := api.NewRouter(handler, api.MiddlewareConfigFromServer(&cfg.Server))
	return api.NewServer(&cfg.Server, router.SetupChi())
}
