// Sensorgate - Environmental Sensor Telemetry Ingestion Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorgate

// Package testinfra starts real backing services for integration tests.
//
// Everything here is built only with the integration tag:
//
//	go test -tags integration ./internal/sink/...
//
// # InfluxDB Container
//
// NewInfluxDBContainer runs influxdb:1.8 through testcontainers-go and waits
// for /ping. InfluxConfig turns the mapped port into the gateway's
// config.InfluxConfig, so sink tests exercise the same client code as
// production:
//
//	influx, err := testinfra.NewInfluxDBContainer(ctx)
//	if err != nil {
//	    t.Fatal(err)
//	}
//	defer testinfra.CleanupContainer(t, ctx, influx.Container)
//
//	s, err := sink.NewInfluxSink(influx.InfluxConfig("sensors"))
//
// Tests are skipped when Docker is unavailable. The first run pulls the image.
package testinfra
