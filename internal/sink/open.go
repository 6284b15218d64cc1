// Sensorgate - Environmental Sensor Telemetry Ingestion Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorgate

package sink

import (
	"context"
	"fmt"

	"github.com/tomtom215/sensorgate/internal/config"
	"github.com/tomtom215/sensorgate/internal/metrics"
)

// Open builds the configured driver, runs its bootstrap and, when enabled,
// wraps it in a Breaker. A bootstrap failure closes the driver and is
// returned, so the process exits before it starts listening.
func Open(ctx context.Context, cfg *config.Config) (Sink, error) {
	var s Sink

	switch cfg.Sink.Driver {
	case config.DriverInfluxDB:
		influx, err := NewInfluxSink(cfg.Influx)
		if err != nil {
			return nil, err
		}
		if err := influx.EnsureDatabase(ctx); err != nil {
			closeSink(influx)
			return nil, fmt.Errorf("influxdb bootstrap: %w", err)
		}
		s = influx
	case config.DriverDuckDB:
		duck, err := NewDuckDBSink(cfg.DuckDB)
		if err != nil {
			return nil, err
		}
		s = duck
	default:
		return nil, fmt.Errorf("unknown sink driver %q", cfg.Sink.Driver)
	}

	metrics.SetSinkUp(true)

	if cfg.Sink.BreakerEnabled {
		s = NewBreaker(s, BreakerSettings{
			Name:     cfg.Sink.Driver,
			Failures: cfg.Sink.BreakerFailures,
			Timeout:  cfg.Sink.BreakerTimeout,
		})
	}
	return s, nil
}

func closeSink(s Sink) {
	_ = s.Close() //nolint:errcheck // already returning the bootstrap error
}
