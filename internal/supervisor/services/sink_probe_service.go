// Sensorgate - Environmental Sensor Telemetry Ingestion Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorgate

package services

import (
	"context"
	"time"

	"github.com/tomtom215/sensorgate/internal/logging"
	"github.com/tomtom215/sensorgate/internal/metrics"
)

// Probe defaults.
const (
	DefaultProbeInterval = 30 * time.Second
	DefaultProbeTimeout  = 5 * time.Second
)

// Pinger is satisfied by sink.Sink.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SinkProbeService pings the sink on a fixed interval and publishes the
// result as the sink_up gauge. Only state changes are logged.
type SinkProbeService struct {
	pinger   Pinger
	interval time.Duration
	timeout  time.Duration
	name     string
}

// NewSinkProbeService creates a probe. Non-positive durations take the defaults.
func NewSinkProbeService(pinger Pinger, interval, timeout time.Duration) *SinkProbeService {
	if interval <= 0 {
		interval = DefaultProbeInterval
	}
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	if timeout > interval {
		timeout = interval
	}
	return &SinkProbeService{
		pinger:   pinger,
		interval: interval,
		timeout:  timeout,
		name:     "sink-probe",
	}
}

// Serve implements suture.Service. It probes once immediately, then on
// every tick until ctx is canceled.
func (s *SinkProbeService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	up := s.probe(ctx, nil)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			up = s.probe(ctx, &up)
		}
	}
}

// probe pings once and returns whether the sink answered. prev is nil on
// the first probe.
func (s *SinkProbeService) probe(ctx context.Context, prev *bool) bool {
	pingCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := s.pinger.Ping(pingCtx)
	if ctx.Err() != nil {
		// Shutting down; the result says nothing about the sink.
		if prev != nil {
			return *prev
		}
		return err == nil
	}

	up := err == nil
	metrics.SetSinkUp(up)

	log := logging.WithComponent(s.String())
	switch {
	case !up && (prev == nil || *prev):
		log.Warn().Err(err).Msg("Sink unreachable")
	case up && prev != nil && !*prev:
		log.Info().Msg("Sink reachable again")
	}
	return up
}

// String implements fmt.Stringer.
func (s *SinkProbeService) String() string {
	return s.name
}
