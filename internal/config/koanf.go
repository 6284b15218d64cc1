// Sensorgate - Environmental Sensor Telemetry Ingestion Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorgate

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/sensorgate/config.yaml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            3030,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		Influx: InfluxConfig{
			Port:           8086,
			Scheme:         "http",
			Precision:      "ns",
			Timeout:        10 * time.Second,
			CreateDatabase: true,
		},
		Sink: SinkConfig{
			Driver:          DriverInfluxDB,
			VerifyWrites:    false,
			BreakerEnabled:  true,
			BreakerFailures: 5,
			BreakerTimeout:  30 * time.Second,
			ProbeInterval:   30 * time.Second,
		},
		DuckDB: DuckDBConfig{
			Path:      "/data/sensorgate.duckdb",
			Threads:   0,
			MaxMemory: "512MB",
		},
		Security: SecurityConfig{
			AuthMode:          AuthModeAPIKey,
			RateLimitReqs:     70,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			TrustProxy:        true,
			CORSOrigins:       []string{},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns CONFIG_PATH if it exists, else the first existing
// default path, else "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths are koanf paths that accept comma-separated env values.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			// nil, or already a slice from the YAML file
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to koanf paths.
// Variables not listed here are ignored.
var envMappings = map[string]string{
	// Server
	"port":             "server.port",
	"host":             "server.host",
	"server_timeout":   "server.timeout",
	"shutdown_timeout": "server.shutdown_timeout",
	"environment":      "server.environment",

	// InfluxDB 1.x
	"influx_host":            "influx.host",
	"influx_port":            "influx.port",
	"influx_db":              "influx.database",
	"influx_username":        "influx.username",
	"influx_password":        "influx.password",
	"influx_scheme":          "influx.scheme",
	"influx_precision":       "influx.precision",
	"influx_timeout":         "influx.timeout",
	"influx_create_database": "influx.create_database",

	// Sink
	"sink_driver":           "sink.driver",
	"sink_verify_writes":    "sink.verify_writes",
	"sink_breaker_enabled":  "sink.breaker_enabled",
	"sink_breaker_failures": "sink.breaker_failures",
	"sink_breaker_timeout":  "sink.breaker_timeout",
	"sink_probe_interval":   "sink.probe_interval",

	// DuckDB
	"duckdb_path":       "duckdb.path",
	"duckdb_threads":    "duckdb.threads",
	"duckdb_max_memory": "duckdb.max_memory",

	// Security
	"auth_mode":           "security.auth_mode",
	"api_key":             "security.api_key",
	"jwt_secret":          "security.jwt_secret",
	"hmac_secret":         "security.hmac_secret",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"trust_proxy":         "security.trust_proxy",
	"cors_origins":        "security.cors_origins",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc returns the koanf path for an environment variable, or ""
// so that unrelated variables never leak into the config.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
