// Sensorgate - Environmental Sensor Telemetry Ingestion Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorgate

// Package sink stores validated measurements in a time-series backend.
//
// Two drivers implement Sink:
//
//   - InfluxSink: InfluxDB 1.x over HTTP (influxdb1-client). The configured
//     database is listed at startup and created when missing.
//   - DuckDBSink: an embedded DuckDB file with one row per field.
//
// Open picks the driver from sink.driver, bootstraps it and optionally wraps
// it in a Breaker (sony/gobreaker). Handlers use a Writer, which turns each
// measurement group into exactly one WritePoint call stamped with the
// gateway's receive time:
//
//	s, err := sink.Open(ctx, cfg)
//	w := sink.NewWriter(s, sink.WithVerify(cfg.Sink.VerifyWrites))
//	err = w.Write(ctx, "temperature", map[string]string{"sensor_id": "abc"},
//		map[string]float64{"temperature": 25})
//
// Failures come back as *WriteError. Nothing is retried or buffered.
package sink
