// Sensorgate - Environmental Sensor Telemetry Ingestion Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorgate

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "sensorgate"

var (
	// Sink Metrics
	PointsWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "points_written_total",
			Help:      "Total number of measurement points sent to the sink",
		},
		[]string{"measurement", "outcome"}, // outcome: "success", "failure"
	)

	SinkWriteDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sink_write_duration_seconds",
			Help:      "Duration of a single point write in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"measurement"},
	)

	SinkUp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sink_up",
			Help:      "Whether the last sink probe succeeded (1) or failed (0)",
		},
	)

	// Validation Metrics
	ValidationRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_rejections_total",
			Help:      "Total number of rejected measurement bodies",
		},
		[]string{"kind", "reason"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_transitions_total",
			Help:      "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "Duration of API requests in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "api_active_requests",
			Help:      "Number of API requests currently being served",
		},
	)
)

// RecordPointWrite records one sink write attempt.
func RecordPointWrite(measurement string, duration time.Duration, err error) {
	SinkWriteDuration.WithLabelValues(measurement).Observe(duration.Seconds())
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	PointsWritten.WithLabelValues(measurement, outcome).Inc()
}

// RecordValidationRejection records a 400 response for a measurement body.
func RecordValidationRejection(kind, reason string) {
	ValidationRejections.WithLabelValues(kind, reason).Inc()
}

// SetSinkUp records the outcome of a sink probe.
func SetSinkUp(up bool) {
	if up {
		SinkUp.Set(1)
		return
	}
	SinkUp.Set(0)
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
