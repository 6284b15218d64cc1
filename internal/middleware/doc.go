// Sensorgate - Environmental Sensor Telemetry Ingestion Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorgate

/*
Package middleware provides the HTTP infrastructure middleware that wraps
every Sensorgate route.

Key Components:

  - RequestID: reuses or generates X-Request-ID and seeds the logging context
  - PrometheusMetrics: request count, latency and in-flight gauge per chi route
  - AccessLog: one zerolog line per request, error level for 5xx

Middleware Stack:

The router installs them in this order, ahead of authentication and rate
limiting on the measurement group:

	r := chi.NewRouter()
	r.Use(chimw.RealIP)                // only when security.trust_proxy
	r.Use(middleware.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.AccessLog(middleware.DefaultSlowThreshold))

Route Labels:

PrometheusMetrics and AccessLog read the matched chi pattern after the
handler returns ("/dht", "/health"). Requests that match nothing are
labelled "unmatched".

See Also:

  - internal/auth: authentication middleware
  - internal/metrics: metric definitions
*/
package middleware
