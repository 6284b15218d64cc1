// Sensorgate - Environmental Sensor Telemetry Ingestion Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorgate

/*
Package api provides the HTTP layer of the gateway.

Endpoints:

  - POST /dht: temperature and humidity readings
  - POST /pms: particulate matter readings
  - GET /health: sink reachability and uptime
  - GET /metrics: Prometheus exposition

A measurement request moves through three stages. The body is decoded and
validated for the route's kind, the sensor id is taken from its tags, and
each present group is written as one point. A failure in the first two
stages answers 400 with the validator's message and nothing is written. The
first failed write answers 500 "Failed to store measurements"; points
already written by the same request stay written.

On success the validated fields are echoed back with the sensor id:

	POST /dht {"tags":["sensor:123"],"temperature":25.0}
	200       {"temperature":25.0,"sensor_id":"123"}

Every error body has the shape {"error": "..."} and is produced by
respondError, which auth.Middleware also uses for 401 responses.
*/
package api
