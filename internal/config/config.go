// Sensorgate - Environmental Sensor Telemetry Ingestion Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorgate

package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: built-in values for every optional setting
//  2. Config File: optional YAML file (config.yaml or CONFIG_PATH)
//  3. Environment Variables: override any mapped setting
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Influx   InfluxConfig   `koanf:"influx"`
	Sink     SinkConfig     `koanf:"sink"`
	DuckDB   DuckDBConfig   `koanf:"duckdb"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"` // read and write timeout
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // "development", "staging", "production"
}

// Addr returns host:port for http.Server.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// InfluxConfig holds the InfluxDB 1.x connection used by the influxdb sink driver.
type InfluxConfig struct {
	Host           string        `koanf:"host"`
	Port           int           `koanf:"port"`
	Database       string        `koanf:"database"`
	Username       string        `koanf:"username"`
	Password       string        `koanf:"password"`
	Scheme         string        `koanf:"scheme"`
	Precision      string        `koanf:"precision"`
	Timeout        time.Duration `koanf:"timeout"`
	CreateDatabase bool          `koanf:"create_database"`
}

// URL returns the base address of the InfluxDB HTTP API, e.g. http://influx:8086.
func (i InfluxConfig) URL() string {
	return i.Scheme + "://" + net.JoinHostPort(i.Host, strconv.Itoa(i.Port))
}

// SinkConfig selects and tunes the time-series sink.
type SinkConfig struct {
	Driver          string        `koanf:"driver"` // "influxdb" or "duckdb"
	VerifyWrites    bool          `koanf:"verify_writes"`
	BreakerEnabled  bool          `koanf:"breaker_enabled"`
	BreakerFailures uint32        `koanf:"breaker_failures"`
	BreakerTimeout  time.Duration `koanf:"breaker_timeout"`
	ProbeInterval   time.Duration `koanf:"probe_interval"`
}

// DuckDBConfig holds the embedded sink settings.
type DuckDBConfig struct {
	Path      string `koanf:"path"`
	Threads   int    `koanf:"threads"` // 0 = DuckDB default
	MaxMemory string `koanf:"max_memory"`
}

// SecurityConfig holds authentication, rate limiting and CORS settings.
type SecurityConfig struct {
	AuthMode          string        `koanf:"auth_mode"` // "api_key", "jwt", "hmac", "none"
	APIKey            string        `koanf:"api_key"`
	JWTSecret         string        `koanf:"jwt_secret"`
	HMACSecret        string        `koanf:"hmac_secret"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	TrustProxy        bool          `koanf:"trust_proxy"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Sink driver names.
const (
	DriverInfluxDB = "influxdb"
	DriverDuckDB   = "duckdb"
)

// Authentication modes.
const (
	AuthModeAPIKey = "api_key"
	AuthModeJWT    = "jwt"
	AuthModeHMAC   = "hmac"
	AuthModeNone   = "none"
)

// Load reads configuration from defaults, an optional config file and the
// environment, then validates it.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
