// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package eventprocessor

import (
	"time"

	"github.com/tomtom215/cadence/internal/config"
)

// DefaultSubject is the subject playlist updates are published to.
const DefaultSubject = "playlists.updated"

// PublisherConfig holds publisher configuration.
type PublisherConfig struct {
	URL     string
	Subject string

	MaxReconnects   int
	ReconnectWait   time.Duration
	ReconnectBuffer int
}

// DefaultPublisherConfig returns production defaults for the publisher.
func DefaultPublisherConfig(url string) PublisherConfig {
	return PublisherConfig{
		URL:             url,
		Subject:         DefaultSubject,
		MaxReconnects:   -1, // Unlimited
		ReconnectWait:   2 * time.Second,
		ReconnectBuffer: 8 * 1024 * 1024, // 8MB
	}
}

// ServerConfig holds embedded NATS server configuration.
type ServerConfig struct {
	Host string
	Port int

	// ReadyTimeout bounds how long startup waits for the listener.
	ReadyTimeout time.Duration
}

// DefaultServerConfig returns defaults for the embedded server.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "127.0.0.1",
		Port:         4222,
		ReadyTimeout: 30 * time.Second,
	}
}

// CircuitBreakerConfig holds circuit breaker settings.
type CircuitBreakerConfig struct {
	Name             string
	MaxRequests      uint32        // Requests allowed in half-open state
	Interval         time.Duration // Cyclic period for clearing counts in closed state
	Timeout          time.Duration // Open state duration before half-open
	FailureThreshold uint32        // Consecutive failures to trip
}

// DefaultCircuitBreakerConfig returns defaults for a named breaker.
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             name,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// FromConfig derives publisher, server and breaker settings from the
// application's events section.
func FromConfig(cfg *config.EventsConfig) (PublisherConfig, ServerConfig, CircuitBreakerConfig, error) {
	pub := DefaultPublisherConfig(cfg.URL)
	if cfg.Subject != "" {
		pub.Subject = cfg.Subject
	}

	srv := DefaultServerConfig()
	host, port, err := cfg.NATSHostPort()
	if err != nil {
		return PublisherConfig{}, ServerConfig{}, CircuitBreakerConfig{}, err
	}
	srv.Host, srv.Port = host, port

	cb := DefaultCircuitBreakerConfig("nats-publisher")
	if cfg.BreakerMaxFailures > 0 {
		cb.FailureThreshold = cfg.BreakerMaxFailures
	}
	if cfg.BreakerTimeout > 0 {
		cb.Timeout = cfg.BreakerTimeout
	}

	return pub, srv, cb, nil
}
