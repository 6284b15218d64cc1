// Sensorgate - Environmental Sensor Telemetry Ingestion Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorgate

package sink

import (
	"context"
	"sync"
	"sync/atomic"
)

// fakeSink records calls and returns configured errors.
type fakeSink struct {
	mu        sync.Mutex
	points    []Point
	writeErr  error
	latestErr error
	pingErr   error

	writeCalls  atomic.Int32
	latestCalls atomic.Int32
	pingCalls   atomic.Int32
	closed      atomic.Bool
}

func (f *fakeSink) WritePoint(_ context.Context, p Point) error {
	f.writeCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.points = append(f.points, p)
	return nil
}

func (f *fakeSink) LatestPoint(_ context.Context, measurement, sensorID string) (*Point, error) {
	f.latestCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.latestErr != nil {
		return nil, f.latestErr
	}
	for i := len(f.points) - 1; i >= 0; i-- {
		p := f.points[i]
		if p.Measurement == measurement && p.SensorID() == sensorID {
			return &p, nil
		}
	}
	return nil, ErrNoPoint
}

func (f *fakeSink) Ping(context.Context) error {
	f.pingCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pingErr
}

func (f *fakeSink) Close() error {
	f.closed.Store(true)
	return nil
}

func (f *fakeSink) setPingErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pingErr = err
}

func (f *fakeSink) written() []Point {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Point(nil), f.points...)
}
