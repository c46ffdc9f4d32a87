// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Functions accept context.Context as the first parameter.
// - Load and validation failures wrap this package's sentinel errors.
package config

import (
	"context"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// BackendURL is the GraphQL endpoint every operation is sent to.
	BackendURL string `koanf:"backend_url"`

	// BackendSecretHeader names the header carrying BackendSecret.
	BackendSecretHeader string `koanf:"backend_secret_header"`

	// BackendSecret is the static admin credential for the backend.
	BackendSecret string `koanf:"backend_secret"`

	// BackendTimeoutMS bounds a single backend round trip. Zero means no
	// client-side timeout.
	BackendTimeoutMS int `koanf:"backend_timeout_ms"`

	// MCPEnabled mounts the MCP tool endpoint at /mcp.
	MCPEnabled bool `koanf:"mcp_enabled"`
}

// New creates a Config populated with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		BackendURL:          "http://localhost:8080/v1/graphql",
		BackendSecretHeader: "X-Hasura-Admin-Secret",
		BackendTimeoutMS:    0,
		MCPEnabled:          false,
	}
}

// BackendTimeout returns BackendTimeoutMS as a duration.
func (c *Config) BackendTimeout() time.Duration {
	return time.Duration(c.BackendTimeoutMS) * time.Millisecond
}
