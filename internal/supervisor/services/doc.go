// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

/*
Package services provides suture.Service wrappers for Cadence components.

Each wrapper turns a component lifecycle into suture's context-aware
Serve(ctx) error and names itself through fmt.Stringer:

  - PipelineService: runs the recommendation pipeline on startup and on a
    fixed interval, each run bounded by a timeout
  - APIService: runs the playlist API server and drains it on shutdown
  - NATSService: closes the event publisher and the embedded NATS server on
    shutdown

Example:

	tree.AddPipelineService(services.NewPipelineService(pipe, services.PipelineServiceConfig{
	    RunOnStartup: cfg.Schedule.RunOnStartup,
	    Interval:     cfg.Schedule.Interval,
	    Timeout:      cfg.Schedule.Timeout,
	}, logging.Logger()))
	tree.AddAPIService(services.NewAPIService(srv, srv.Addr, 10*time.Second, logging.Logger()))
*/
package services
