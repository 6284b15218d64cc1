// Sensorgate - Environmental Sensor Telemetry Ingestion Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorgate

/*
Package config loads and validates Sensorgate configuration.

Values are layered with Koanf v2: struct defaults, then an optional YAML
file, then environment variables. Only the variables listed below are read;
anything else in the environment is ignored.

# Environment Variables

Server:
  - PORT: listen port (default: 3030)
  - HOST: bind address (default: 0.0.0.0)
  - SERVER_TIMEOUT: read/write timeout (default: 30s)
  - SHUTDOWN_TIMEOUT: graceful shutdown limit (default: 10s)
  - ENVIRONMENT: development, staging, production

InfluxDB (SINK_DRIVER=influxdb):
  - INFLUX_HOST: required
  - INFLUX_DB: required
  - INFLUX_PORT (default: 8086), INFLUX_SCHEME (default: http)
  - INFLUX_USERNAME, INFLUX_PASSWORD
  - INFLUX_PRECISION (default: ns), INFLUX_TIMEOUT (default: 10s)
  - INFLUX_CREATE_DATABASE: create the database at startup (default: true)

Sink:
  - SINK_DRIVER: influxdb or duckdb (default: influxdb)
  - SINK_VERIFY_WRITES: read back the latest point after each write
  - SINK_BREAKER_ENABLED, SINK_BREAKER_FAILURES, SINK_BREAKER_TIMEOUT
  - SINK_PROBE_INTERVAL: health probe period (default: 30s)
  - DUCKDB_PATH, DUCKDB_THREADS, DUCKDB_MAX_MEMORY

Security:
  - AUTH_MODE: api_key, jwt, hmac, none (default: api_key)
  - API_KEY: required for api_key
  - JWT_SECRET: at least 32 characters, required for jwt
  - HMAC_SECRET: required for hmac
  - RATE_LIMIT_REQUESTS (default: 70), RATE_LIMIT_WINDOW (default: 1m)
  - DISABLE_RATE_LIMIT, TRUST_PROXY (default: true)
  - CORS_ORIGINS: comma-separated origins

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

# Config File

CONFIG_PATH names a YAML file; otherwise config.yaml, config.yml and
/etc/sensorgate/config.yaml are tried in order. Keys match the koanf tags:

	influx:
	  host: influxdb
	  database: sensors
	security:
	  auth_mode: api_key
	  api_key: s3cret
*/
package config
