// Sensorgate - Environmental Sensor Telemetry Ingestion Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorgate

/*
Command server runs the Sensorgate ingestion gateway.

Devices POST readings to /dht (temperature, humidity) or /pms (particulate
matter). Each accepted group is stored as one time-series point tagged with
the sensor id from the request's "sensor:<id>" tag.

# Startup

 1. Configuration: defaults, optional YAML file, environment (koanf v2)
 2. Logging: zerolog, JSON by default
 3. Sink: InfluxDB 1.x or embedded DuckDB, created if missing, optionally
    behind a circuit breaker
 4. Authentication: api_key, jwt, hmac or none
 5. Supervisor tree: sink probe and HTTP server

A configuration or sink bootstrap failure exits with status 1.

# Example

	export INFLUX_HOST=influx
	export INFLUX_DB=sensors
	export API_KEY=$(openssl rand -hex 32)
	./sensorgate

Embedded storage for a single host:

	export SINK_DRIVER=duckdb
	export DUCKDB_PATH=/var/lib/sensorgate/points.duckdb
	./sensorgate

# Signals

SIGINT and SIGTERM stop the tree. The HTTP server drains for up to
SHUTDOWN_TIMEOUT; the sink is closed once the tree has returned.
*/
package main
