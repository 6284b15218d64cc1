// Sensorgate - Environmental Sensor Telemetry Ingestion Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorgate

package sink

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/sensorgate/internal/logging"
	"github.com/tomtom215/sensorgate/internal/metrics"
)

// BreakerSettings tunes a Breaker.
type BreakerSettings struct {
	Name string
	// Failures is the number of consecutive failures that opens the circuit.
	Failures uint32
	// Timeout is how long the circuit stays open before a half-open trial.
	Timeout time.Duration
}

// Breaker wraps a Sink with a circuit breaker. While the circuit is open
// calls fail immediately with gobreaker.ErrOpenState.
//
// The breaker runs on real time. Tests drive it with short timeouts rather
// than a fake clock.
type Breaker struct {
	next Sink
	cb   *gobreaker.CircuitBreaker[interface{}]
	name string
}

// NewBreaker wraps next.
func NewBreaker(next Sink, settings BreakerSettings) *Breaker {
	if settings.Name == "" {
		settings.Name = "sink"
	}
	if settings.Failures == 0 {
		settings.Failures = 5
	}
	name := settings.Name
	threshold := settings.Failures

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     settings.Timeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			shouldTrip := counts.ConsecutiveFailures >= threshold
			if shouldTrip {
				log := logging.WithComponent("breaker")
				log.Warn().Str("breaker", name).Uint32("failures", counts.ConsecutiveFailures).Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return shouldTrip
		},

		// A missing point and a cancelled request say nothing about sink health.
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, ErrNoPoint) ||
				errors.Is(err, context.Canceled)
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			log := logging.WithComponent("breaker")
			log.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &Breaker{next: next, cb: cb, name: name}
}

// State returns the current circuit state.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

func (b *Breaker) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := b.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		log := logging.WithComponent("breaker")
		log.Warn().Err(err).Str("breaker", b.name).Msg("[CIRCUIT BREAKER] Request rejected")
	}
	return result, err
}

// WritePoint writes through the breaker.
func (b *Breaker) WritePoint(ctx context.Context, p Point) error {
	_, err := b.execute(func() (interface{}, error) {
		return nil, b.next.WritePoint(ctx, p)
	})
	return err
}

// LatestPoint reads through the breaker.
func (b *Breaker) LatestPoint(ctx context.Context, measurement, sensorID string) (*Point, error) {
	return castResult[Point](b.execute(func() (interface{}, error) {
		return b.next.LatestPoint(ctx, measurement, sensorID)
	}))
}

// Ping probes through the breaker, so a successful probe in the half-open
// state closes the circuit.
func (b *Breaker) Ping(ctx context.Context) error {
	_, err := b.execute(func() (interface{}, error) {
		return nil, b.next.Ping(ctx)
	})
	return err
}

// Close closes the wrapped sink.
func (b *Breaker) Close() error {
	return b.next.Close()
}

// castResult type-asserts a breaker result.
func castResult[T any](result interface{}, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	typed, ok := result.(*T)
	if !ok {
		return nil, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
