// Sensorgate - Environmental Sensor Telemetry Ingestion Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorgate

/*
Package metrics defines the Prometheus collectors exported at /metrics.

All collectors are registered on the default registry through promauto and
share the "sensorgate" namespace.

# Available Metrics

Sink:
  - sensorgate_points_written_total{measurement,outcome}
  - sensorgate_sink_write_duration_seconds{measurement}
  - sensorgate_sink_up

Validation:
  - sensorgate_validation_rejections_total{kind,reason}

Circuit breaker:
  - sensorgate_circuit_breaker_state{name}
  - sensorgate_circuit_breaker_transitions_total{name,from,to}

HTTP:
  - sensorgate_api_requests_total{method,endpoint,status}
  - sensorgate_api_request_duration_seconds{method,endpoint}
  - sensorgate_api_active_requests

The endpoint label is the chi route pattern, never the raw path.
*/
package metrics
