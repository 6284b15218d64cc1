// Sensorgate - Environmental Sensor Telemetry Ingestion Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorgate

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/sensorgate/internal/logging"
)

// DefaultSlowThreshold is the duration above which a request logs at warn.
const DefaultSlowThreshold = time.Second

// AccessLog writes one combined-format line per request through the context
// logger, so the line carries request_id and correlation_id. 5xx responses
// log at error and requests slower than slow log at warn.
func AccessLog(slow time.Duration) func(http.Handler) http.Handler {
	if slow <= 0 {
		slow = DefaultSlowThreshold
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := newStatusWriter(w)

			next.ServeHTTP(sw, r)

			duration := time.Since(start)
			logger := logging.Ctx(r.Context())

			var event *zerolog.Event
			switch {
			case sw.statusCode >= http.StatusInternalServerError:
				event = logger.Error()
			case duration > slow:
				event = logger.Warn().Bool("slow", true)
			default:
				event = logger.Info()
			}

			path := r.URL.RequestURI()
			event.
				Str("remote_addr", r.RemoteAddr).
				Str("method", r.Method).
				Str("route", routePattern(r)).
				Str("path", path).
				Str("proto", r.Proto).
				Int("status", sw.statusCode).
				Int("bytes", sw.bytes).
				Str("referer", r.Referer()).
				Str("user_agent", r.UserAgent()).
				Dur("duration", duration).
				Msg(r.Method + " " + path + " " + strconv.Itoa(sw.statusCode))
		})
	}
}
