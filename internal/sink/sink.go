// Sensorgate - Environmental Sensor Telemetry Ingestion Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorgate

package sink

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"
)

// TagSensorID is the tag key every point carries.
const TagSensorID = "sensor_id"

// ErrNoPoint is returned by LatestPoint when nothing has been stored for the
// measurement and sensor.
var ErrNoPoint = errors.New("no point stored")

// Point is a single write: one measurement, its tags, its fields and a
// timestamp. Points are built with NewPoint and not modified afterwards.
type Point struct {
	Measurement string
	Tags        map[string]string
	Fields      map[string]float64
	Time        time.Time
}

// NewPoint copies tags and fields so later changes by the caller do not
// affect the point.
func NewPoint(measurement string, tags map[string]string, fields map[string]float64, ts time.Time) Point {
	return Point{
		Measurement: measurement,
		Tags:        maps.Clone(tags),
		Fields:      maps.Clone(fields),
		Time:        ts,
	}
}

// SensorID returns the sensor_id tag.
func (p Point) SensorID() string {
	return p.Tags[TagSensorID]
}

// Sink is a time-series store.
type Sink interface {
	// WritePoint stores p.
	WritePoint(ctx context.Context, p Point) error
	// LatestPoint returns the most recent point for measurement and sensorID,
	// or ErrNoPoint.
	LatestPoint(ctx context.Context, measurement, sensorID string) (*Point, error)
	// Ping runs a real round trip to the store.
	Ping(ctx context.Context) error
	// Close releases connections.
	Close() error
}

// WriteError reports a failed point write. It unwraps to the sink error,
// which may be gobreaker.ErrOpenState when the breaker is open.
type WriteError struct {
	Measurement string
	Err         error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s point: %v", e.Measurement, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
