// Sensorgate - Environmental Sensor Telemetry Ingestion Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorgate

package config

import (
	"fmt"
	"strings"
	"time"
)

const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = 24 * time.Hour
	minJWTSecretLength   = 32
)

var (
	validDrivers = map[string]bool{
		DriverInfluxDB: true,
		DriverDuckDB:   true,
	}

	validAuthModes = map[string]bool{
		AuthModeAPIKey: true,
		AuthModeJWT:    true,
		AuthModeHMAC:   true,
		AuthModeNone:   true,
	}

	validPrecisions = map[string]bool{
		"ns": true, "u": true, "ms": true, "s": true, "m": true, "h": true,
	}

	validLogLevels = map[string]bool{
		"trace": true, "debug": true, "info": true, "warn": true, "error": true,
	}

	validLogFormats = map[string]bool{
		"json":    true,
		"console": true,
	}
)

// Validate checks that required configuration is present and valid.
//
// All missing required settings are reported together, one per line, so an
// operator can fix the environment in a single pass.
func (c *Config) Validate() error {
	if missing := c.missingRequired(); len(missing) > 0 {
		return fmt.Errorf("missing required configuration:\n%s", strings.Join(missing, "\n"))
	}

	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateSink(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	return c.validateLogging()
}

// missingRequired returns the message for every required setting that is
// empty, in a stable order.
func (c *Config) missingRequired() []string {
	var missing []string

	if c.Sink.Driver == DriverInfluxDB {
		if c.Influx.Database == "" {
			missing = append(missing, "Database name is required")
		}
		if c.Influx.Host == "" {
			missing = append(missing, "Database host is required")
		}
	}

	switch c.Security.AuthMode {
	case AuthModeAPIKey:
		if c.Security.APIKey == "" {
			missing = append(missing, "API key is required for authentication")
		}
	case AuthModeJWT:
		if c.Security.JWTSecret == "" {
			missing = append(missing, "JWT_SECRET is required when AUTH_MODE is jwt")
		}
	case AuthModeHMAC:
		if c.Security.HMACSecret == "" {
			missing = append(missing, "HMAC_SECRET is required when AUTH_MODE is hmac")
		}
	}

	return missing
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("SERVER_TIMEOUT must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateSink() error {
	if !validDrivers[c.Sink.Driver] {
		return fmt.Errorf("SINK_DRIVER must be one of: influxdb, duckdb")
	}

	if c.Sink.Driver == DriverInfluxDB {
		if err := c.validateInflux(); err != nil {
			return err
		}
	}

	if c.Sink.Driver == DriverDuckDB && c.DuckDB.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required when SINK_DRIVER is duckdb")
	}

	if c.Sink.BreakerEnabled {
		if c.Sink.BreakerFailures == 0 {
			return fmt.Errorf("sink.breaker_failures must be at least 1")
		}
		if c.Sink.BreakerTimeout <= 0 {
			return fmt.Errorf("sink.breaker_timeout must be positive")
		}
	}

	if c.Sink.ProbeInterval <= 0 {
		return fmt.Errorf("SINK_PROBE_INTERVAL must be positive")
	}
	return nil
}

func (c *Config) validateInflux() error {
	if c.Influx.Port < 1 || c.Influx.Port > 65535 {
		return fmt.Errorf("INFLUX_PORT must be between 1 and 65535")
	}
	if c.Influx.Scheme != "http" && c.Influx.Scheme != "https" {
		return fmt.Errorf("INFLUX_SCHEME must be http or https")
	}
	if !validPrecisions[c.Influx.Precision] {
		return fmt.Errorf("INFLUX_PRECISION must be one of: ns, u, ms, s, m, h")
	}
	if c.Influx.Timeout <= 0 {
		return fmt.Errorf("INFLUX_TIMEOUT must be positive")
	}
	if strings.ContainsAny(c.Influx.Database, "\"\n") {
		return fmt.Errorf("INFLUX_DB contains invalid characters")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if err := c.validateAuthMode(); err != nil {
		return err
	}

	if c.Security.AuthMode == AuthModeJWT && len(c.Security.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters for security", minJWTSecretLength)
	}

	return c.validateRateLimits()
}

// validateAuthMode rejects unknown modes, and AUTH_MODE=none in production.
func (c *Config) validateAuthMode() error {
	if !validAuthModes[c.Security.AuthMode] {
		return fmt.Errorf("AUTH_MODE must be one of: api_key, jwt, hmac, none")
	}

	if c.Security.AuthMode == AuthModeNone && c.IsProduction() {
		return fmt.Errorf("AUTH_MODE=none is not allowed when ENVIRONMENT=production")
	}
	return nil
}

func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}

	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

// IsProduction reports whether ENVIRONMENT is production.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "production" || env == "prod"
}
