// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

/*
Package supervisor provides process supervision for Cadence using suture v4.

The serve command runs three long-lived services under one tree:

	cadence
	├── pipeline-layer
	│   └── PipelineService   scheduled recommendation runs
	├── messaging-layer
	│   └── NATSService       publisher + embedded NATS (if events enabled)
	└── api-layer
	    └── APIService        read API

Each layer is its own supervisor, so restarts and backoff in one layer do
not disturb the others. Supervisor events (starts, failures, backoff) are
logged through sutureslog, backed by the zerolog slog adapter:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddPipelineService(pipelineSvc)
	tree.AddAPIService(httpSvc)
	return tree.Serve(ctx)

Shutdown is driven by context cancellation; services that miss
TreeConfig.ShutdownTimeout are listed by UnstoppedServiceReport.
*/
package supervisor
