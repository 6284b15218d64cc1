// Sensorgate - Environmental Sensor Telemetry Ingestion Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorgate

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

const (
	correlationIDKey contextKey = "correlation_id"
	requestIDKey     contextKey = "request_id"
	sensorIDKey      contextKey = "sensor_id"
	subjectKey       contextKey = "subject"
)

// GenerateCorrelationID returns the first 8 characters of a new UUID.
func GenerateCorrelationID() string {
	return uuid.New().String()[:8]
}

// GenerateRequestID returns a new UUID string.
func GenerateRequestID() string {
	return uuid.New().String()
}

// ContextWithCorrelationID returns a context carrying the correlation ID.
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// ContextWithNewCorrelationID returns a context with a freshly generated correlation ID.
func ContextWithNewCorrelationID(ctx context.Context) context.Context {
	return ContextWithCorrelationID(ctx, GenerateCorrelationID())
}

// CorrelationIDFromContext returns the correlation ID or "".
func CorrelationIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey).(string); ok {
		return id
	}
	return ""
}

// ContextWithRequestID returns a context carrying the HTTP request ID.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the request ID or "".
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// ContextWithSensorID returns a context carrying the sensor ID derived from
// the request's tags. Every later Ctx(ctx) log line includes it.
func ContextWithSensorID(ctx context.Context, sensorID string) context.Context {
	return context.WithValue(ctx, sensorIDKey, sensorID)
}

// SensorIDFromContext returns the sensor ID or "".
func SensorIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(sensorIDKey).(string); ok {
		return id
	}
	return ""
}

// ContextWithSubject returns a context carrying the authenticated caller's
// name for log lines.
func ContextWithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectKey, subject)
}

// SubjectFromContext returns the logged caller name or "".
func SubjectFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(subjectKey).(string); ok {
		return s
	}
	return ""
}

// Ctx returns the global logger enriched with the correlation_id,
// request_id, sensor_id and subject found in ctx.
//
//	logging.Ctx(ctx).Warn().Err(err).Msg("Follow-up read failed")
func Ctx(ctx context.Context) *zerolog.Logger {
	logger := CtxWith(ctx).Logger()
	return &logger
}

// CtxWith returns a logger context builder with the context fields already set.
func CtxWith(ctx context.Context) zerolog.Context {
	base := Logger()
	logCtx := base.With()

	if id := CorrelationIDFromContext(ctx); id != "" {
		logCtx = logCtx.Str("correlation_id", id)
	}
	if id := RequestIDFromContext(ctx); id != "" {
		logCtx = logCtx.Str("request_id", id)
	}
	if id := SensorIDFromContext(ctx); id != "" {
		logCtx = logCtx.Str("sensor_id", id)
	}
	if s := SubjectFromContext(ctx); s != "" {
		logCtx = logCtx.Str("subject", s)
	}

	return logCtx
}
