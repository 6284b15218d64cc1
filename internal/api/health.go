// Sensorgate - Environmental Sensor Telemetry Ingestion Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorgate

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/sensorgate/internal/logging"
	"github.com/tomtom215/sensorgate/internal/metrics"
)

// HealthPingTimeout bounds the sink probe made by /health.
const HealthPingTimeout = 5 * time.Second

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string   `json:"status"`
	Database  string   `json:"database"`
	Uptime    *float64 `json:"uptime,omitempty"`
	Error     string   `json:"error,omitempty"`
	Timestamp string   `json:"timestamp"`
}

// Health reports whether the sink answers a ping.
//
// Returns 200 with the process uptime in seconds, or 503 with the ping error.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), HealthPingTimeout)
	defer cancel()

	err := h.sink.Ping(ctx)
	metrics.SetSinkUp(err == nil)
	now := h.now()

	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Health check failed")
		respondJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status:    "unhealthy",
			Database:  "disconnected",
			Error:     err.Error(),
			Timestamp: now.UTC().Format(time.RFC3339),
		})
		return
	}

	uptime := now.Sub(h.startTime).Seconds()
	respondJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Database:  "connected",
		Uptime:    &uptime,
		Timestamp: now.UTC().Format(time.RFC3339),
	})
}
