// Sensorgate - Environmental Sensor Telemetry Ingestion Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorgate

/*
Package services adapts gateway components to suture.Service.

HTTPServerService turns ListenAndServe into a context-aware Serve and calls
Shutdown with server.shutdown_timeout when the supervisor stops it.

SinkProbeService pings the sink every sink.probe_interval and keeps the
sensorgate_sink_up gauge current between /health calls.
*/
package services
