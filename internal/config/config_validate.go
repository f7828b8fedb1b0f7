// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package config

import (
	"fmt"

	"github.com/tomtom215/cadence/internal/validation"
)

// validLogLevels defines the accepted log levels.
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats defines the accepted log formats.
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// Validate checks that the configuration is complete and consistent.
// Field-level rules come from validate struct tags; the rest are
// cross-field checks.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return verr
	}

	if err := c.validateRecommend(); err != nil {
		return err
	}

	if err := c.validateCheckpoint(); err != nil {
		return err
	}

	if err := c.validateEvents(); err != nil {
		return err
	}

	if err := c.validateServer(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validateRecommend reuses the pipeline's own checks so the two can't drift.
func (c *Config) validateRecommend() error {
	return c.Recommend.ToRecommendConfig().Validate()
}

func (c *Config) validateCheckpoint() error {
	if c.Checkpoint.Enabled && !c.Checkpoint.InMemory && c.Checkpoint.Path == "" {
		return fmt.Errorf("checkpoint.path is required when checkpoints are enabled and not in memory")
	}
	return nil
}

func (c *Config) validateEvents() error {
	if !c.Events.Enabled {
		return nil
	}
	if c.Events.Subject == "" {
		return fmt.Errorf("events.subject is required when events are enabled")
	}
	if err := validateNATSURL(c.Events.URL); err != nil {
		return fmt.Errorf("events.url is invalid: %w", err)
	}
	if c.Events.BreakerTimeout <= 0 {
		return fmt.Errorf("events.breaker_timeout must be positive")
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.RateLimitReqs > 0 && c.Server.RateLimitWindow <= 0 {
		return fmt.Errorf("server.rate_limit_window must be positive when rate limiting is enabled")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, console")
	}
	return nil
}

// HasWildcardCORS reports whether any origin is allowed.
func (c *Config) HasWildcardCORS() bool {
	for _, origin := range c.Server.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}
