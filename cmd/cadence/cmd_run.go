// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cadence/internal/logging"
	"github.com/tomtom215/cadence/internal/recommend"
)

var (
	errUsage  = errors.New("usage error")
	errNoData = errors.New("no data")
)

// runCommand executes one pipeline batch and prints the run summary as
// JSON on stdout.
func runCommand(ctx context.Context, args []string, stdout io.Writer) error {
	fs := newFlagSet("run")
	var common commonFlags
	common.register(fs)
	timeout := fs.Duration("timeout", 0, "run timeout (default: schedule.timeout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: unexpected arguments %v", errUsage, fs.Args())
	}

	cfg, err := common.setup()
	if err != nil {
		return err
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer closeWithLog(db, "database")

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
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		events.Shutdown(shutdownCtx)
	}()

	p, err := buildPipeline(cfg, db, checkpoints, events)
	if err != nil {
		return err
	}

	runTimeout := cfg.Schedule.Timeout
	if *timeout > 0 {
		runTimeout = *timeout
	}
	runCtx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	stats, runErr := p.Run(runCtx)
	if stats != nil {
		out, err := json.MarshalIndent(stats.Summary(), "", "  ")
		if err != nil {
			return fmt.Errorf("encode run summary: %w", err)
		}
		if _, err := fmt.Fprintln(stdout, string(out)); err != nil {
			logging.Warn().Err(err).Msg("Failed to write run summary")
		}
	}

	if errors.Is(runErr, recommend.ErrDataInsufficient) {
		return fmt.Errorf("%w: %w", errNoData, runErr)
	}
	return runErr
}
