// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

/*
Package api serves the read side of Cadence over HTTP.

The batch pipeline writes ranked playlists to the store; this package lets a
UI read them back:

	GET /api/v1/users/{userID}/playlist?limit=N   ranked entries with song names
	GET /api/v1/users/{userID}/friends            followed user ids
	GET /api/v1/runs/latest                       last pipeline run summary
	GET /api/v1/health, /health/live, /health/ready
	GET /metrics                                  Prometheus exposition

Every response uses the models.APIResponse envelope. Errors carry a machine
code: INVALID_USER_ID, VALIDATION_ERROR, NOT_FOUND, DATABASE_ERROR,
SERVICE_UNAVAILABLE or RATE_LIMIT_EXCEEDED.

Store reads run through a gobreaker circuit breaker. After repeated store
failures the breaker opens and requests fail fast with 503 until a probe
succeeds. Not-found results do not count as failures.

Usage:

	handler := api.NewHandler(db, pipe, api.DefaultHandlerConfig())
	router := api.NewRouter(handler, api.MiddlewareConfigFromServer(&cfg.Server))
	srv := api.NewServer(&cfg.Server, router.SetupChi())
*/
package api
