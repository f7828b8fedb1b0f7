// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cadence/internal/recommend/pipeline"
)

// PipelineRunner runs one recommendation batch. *pipeline.Pipeline
// satisfies it.
type PipelineRunner interface {
	Run(ctx context.Context) (*pipeline.RunStats, error)
}

// PipelineServiceConfig holds scheduler settings.
type PipelineServiceConfig struct {
	// RunOnStartup triggers a run as soon as the service starts.
	RunOnStartup bool

	// Interval between scheduled runs. Zero disables periodic runs.
	Interval time.Duration

	// Timeout bounds a single run. Default: 30m
	Timeout time.Duration

	// OnComplete, if set, is called after every successful run.
	OnComplete func(*pipeline.RunStats)
}

// PipelineService runs the recommendation pipeline on a fixed schedule.
// Run failures are logged and retried at the next tick; they never crash
// the service.
type PipelineService struct {
	runner PipelineRunner
	config PipelineServiceConfig
	logger zerolog.Logger
	name   string
}

// NewPipelineService creates the scheduler service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewPipelineService(runner PipelineRunner, cfg PipelineServiceConfig, logger zerolog.Logger) *PipelineService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Minute
	}
	return &PipelineService{
		runner: runner,
		config: cfg,
		logger: logger.With().Str("service", "pipeline").Logger(),
		name:   "pipeline-scheduler",
	}
}

// Serve implements suture.Service.
func (s *PipelineService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("run_on_startup", s.config.RunOnStartup).
		Dur("interval", s.config.Interval).
		Dur("timeout", s.config.Timeout).
		Msg("pipeline scheduler starting")

	if s.config.RunOnStartup {
		s.run(ctx, "startup")
	}

	// A nil channel never fires, leaving only shutdown.
	var tick <-chan time.Time
	if s.config.Interval > 0 {
		ticker := time.NewTicker(s.config.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("pipeline scheduler shutting down")
			return ctx.Err()

		case <-tick:
			s.run(ctx, "schedule")
		}
	}
}

// run executes one batch under the run timeout.
func (s *PipelineService) run(ctx context.Context, trigger string) {
	runCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	s.logger.Debug().Str("trigger", trigger).Msg("pipeline run triggered")

	stats, err := s.runner.Run(runCtx)
	switch {
	case errors.Is(err, pipeline.ErrRunInProgress):
		s.logger.Info().Str("trigger", trigger).Msg("pipeline run skipped, previous run still active")
	case err != nil:
		// The pipeline logs its own failure detail.
		s.logger.Warn().Err(err).Str("trigger", trigger).Msg("pipeline run failed, will retry on schedule")
	default:
		s.logger.Info().
			Str("trigger", trigger).
			Str("run_id", stats.RunID).
			Dur("duration", stats.Duration()).
			Int("rows_written", stats.RowsWritten).
			Msg("pipeline run complete")
		if s.config.OnComplete != nil {
			s.config.OnComplete(stats)
		}
	}
}

// String returns the service name for logging.
func (s *PipelineService) String() string {
	return s.name
}
