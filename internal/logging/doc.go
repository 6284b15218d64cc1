// Sensorgate - Environmental Sensor Telemetry Ingestion Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorgate

// Package logging provides the process-wide zerolog logger for Sensorgate.
//
// A single global logger is configured once at startup from the logging
// section of the configuration and then used through the level helpers:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Str("addr", addr).Msg("Listening")
//
// Handlers log through the context so that request_id, correlation_id and,
// once extracted, sensor_id are attached automatically:
//
//	ctx = logging.ContextWithSensorID(ctx, string(sensorID))
//	logging.Ctx(ctx).Info().Str("measurement", "temperature").Msg("Point written")
//
// # Environment Variables
//
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: include caller file:line (default: false)
//
// The slog bridge (NewSlogLogger) exists for sutureslog, which only accepts
// a *slog.Logger.
package logging
