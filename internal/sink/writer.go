// Sensorgate - Environmental Sensor Telemetry Ingestion Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorgate

package sink

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/sensorgate/internal/logging"
	"github.com/tomtom215/sensorgate/internal/metrics"
)

// Writer turns one measurement group into exactly one sink write.
type Writer struct {
	sink   Sink
	verify bool
	now    func() time.Time
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithVerify makes every successful write followed by a LatestPoint read,
// logged for diagnostics only.
func WithVerify(verify bool) WriterOption {
	return func(w *Writer) {
		w.verify = verify
	}
}

// WithClock overrides time.Now for point timestamps.
func WithClock(now func() time.Time) WriterOption {
	return func(w *Writer) {
		w.now = now
	}
}

// NewWriter returns a Writer over s.
func NewWriter(s Sink, opts ...WriterOption) *Writer {
	w := &Writer{sink: s, now: time.Now}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write stores fields under measurement with the given tags, stamped with
// the writer's clock. A sink failure is returned as *WriteError. There is no
// retry.
func (w *Writer) Write(ctx context.Context, measurement string, tags map[string]string, fields map[string]float64) error {
	point := NewPoint(measurement, tags, fields, w.now())

	start := time.Now()
	err := w.sink.WritePoint(ctx, point)
	metrics.RecordPointWrite(measurement, time.Since(start), err)
	if err != nil {
		return &WriteError{Measurement: measurement, Err: err}
	}

	logging.Ctx(ctx).Debug().
		Str("measurement", measurement).
		Int("fields", len(fields)).
		Msg("Point written")

	if w.verify {
		w.verifyWrite(ctx, measurement, point.SensorID())
	}
	return nil
}

// verifyWrite reads back the newest point. Its outcome never affects the write.
func (w *Writer) verifyWrite(ctx context.Context, measurement, sensorID string) {
	latest, err := w.sink.LatestPoint(ctx, measurement, sensorID)
	switch {
	case errors.Is(err, ErrNoPoint):
		logging.Ctx(ctx).Warn().Str("measurement", measurement).Msg("Follow-up read found no point")
	case err != nil:
		logging.Ctx(ctx).Warn().Err(err).Str("measurement", measurement).Msg("Follow-up read failed")
	default:
		logging.Ctx(ctx).Debug().
			Str("measurement", measurement).
			Time("point_time", latest.Time).
			Interface("fields", latest.Fields).
			Msg("Follow-up read")
	}
}
