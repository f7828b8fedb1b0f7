// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/cadence/internal/config"
	"github.com/tomtom215/cadence/internal/logging"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
	exitNoData  = 3
)

const usageText = `Usage: cadence <command> [flags]

Commands:
  run     run the recommendation pipeline once and exit
  serve   serve the read API and run the pipeline on a schedule
  load    import songs, listening counts and friendships into the store

Run 'cadence <command> -h' for command flags.
Configuration is read from cadence.yaml (or CONFIG_PATH) and CADENCE_* env vars.
`

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

// run dispatches to a subcommand and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usageText)
		return exitUsage
	}

	var err error
	switch args[0] {
	case "run":
		err = runCommand(ctx, args[1:], stdout)
	case "serve":
		err = serveCommand(ctx, args[1:])
	case "load":
		err = loadCommand(ctx, args[1:], stdout)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usageText)
		return exitOK
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usageText)
		return exitUsage
	}

	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, flag.ErrHelp):
		return exitOK
	case errors.Is(err, errUsage):
		fmt.Fprintln(stderr, err)
		return exitUsage
	case errors.Is(err, errNoData):
		logging.Warn().Err(err).Msg("Nothing to recommend")
		return exitNoData
	default:
		logging.Error().Err(err).Msg("Command failed")
		return exitFailure
	}
}

// commonFlags registers the flags every command shares.
type commonFlags struct {
	configPath string
	logLevel   string
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "config file (overrides "+config.ConfigPathEnvVar+")")
	fs.StringVar(&c.logLevel, "log-level", "", "log level override: trace, debug, info, warn, error")
}

// setup loads configuration and initializes logging.
func (c *commonFlags) setup() (*config.Config, error) {
	if c.configPath != "" {
		if err := os.Setenv(config.ConfigPathEnvVar, c.configPath); err != nil {
			return nil, fmt.Errorf("set config path: %w", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if c.logLevel != "" {
		cfg.Logging.Level = c.logLevel
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	return cfg, nil
}

// newFlagSet creates a subcommand flag set that reports errors instead of
// exiting.
func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet("cadence "+name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}
