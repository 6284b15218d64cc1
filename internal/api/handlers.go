// Sensorgate - Environmental Sensor Telemetry Ingestion Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorgate

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/sensorgate/internal/auth"
	"github.com/tomtom215/sensorgate/internal/logging"
	"github.com/tomtom215/sensorgate/internal/metrics"
	"github.com/tomtom215/sensorgate/internal/sensortag"
	"github.com/tomtom215/sensorgate/internal/sink"
	"github.com/tomtom215/sensorgate/internal/validation"
)

// MaxBodyBytes caps a measurement request body.
const MaxBodyBytes = 1 << 20

const msgStoreFailed = "Failed to store measurements"

// Handler serves the measurement and health endpoints.
type Handler struct {
	writer    *sink.Writer
	sink      sink.Sink
	startTime time.Time
	now       func() time.Time
}

// NewHandler creates a Handler writing through w. s is probed by /health.
func NewHandler(w *sink.Writer, s sink.Sink) *Handler {
	return &Handler{
		writer:    w,
		sink:      s,
		startTime: time.Now(),
		now:       time.Now,
	}
}

// dhtEcho is the 200 body of POST /dht.
type dhtEcho struct {
	*validation.DHTPayload
	SensorID string `json:"sensor_id"`
}

// pmsEcho is the 200 body of POST /pms.
type pmsEcho struct {
	*validation.PMSPayload
	SensorID string `json:"sensor_id"`
}

// DHT handles POST /dht.
func (h *Handler) DHT(w http.ResponseWriter, r *http.Request) {
	h.ingest(w, r, validation.KindDHT)
}

// PMS handles POST /pms.
func (h *Handler) PMS(w http.ResponseWriter, r *http.Request) {
	h.ingest(w, r, validation.KindPMS)
}

// ingest runs one request through validation, tag parsing and the writes.
// Validation and tag failures never reach the sink.
func (h *Handler) ingest(w http.ResponseWriter, r *http.Request, kind validation.Kind) {
	body, err := validation.DecodeBody(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		h.reject(w, r, kind, err)
		return
	}

	payload, err := validation.Validate(kind, body)
	if err != nil {
		h.reject(w, r, kind, err)
		return
	}

	sensorID, err := sensortag.FromStrings(payload.Tags())
	if err != nil {
		metrics.RecordValidationRejection(string(kind), validation.ReasonTags)
		respondError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}

	ctx := logging.ContextWithSensorID(r.Context(), string(sensorID))
	if subject := auth.SubjectFromContext(ctx); subject != nil {
		ctx = logging.ContextWithSubject(ctx, subject.ID)
	}
	if ignored := payload.Ignored(); len(ignored) > 0 {
		logging.Ctx(ctx).Debug().Strs("keys", ignored).Msg("Ignoring unknown keys")
	}

	tags := map[string]string{sink.TagSensorID: string(sensorID)}
	for _, m := range payload.Measurements() {
		if err := h.writer.Write(ctx, m.Name, tags, m.Fields); err != nil {
			respondError(w, r.WithContext(ctx), http.StatusInternalServerError, msgStoreFailed, err)
			return
		}
	}

	switch p := payload.(type) {
	case *validation.DHTPayload:
		respondJSON(w, http.StatusOK, dhtEcho{DHTPayload: p, SensorID: string(sensorID)})
	case *validation.PMSPayload:
		respondJSON(w, http.StatusOK, pmsEcho{PMSPayload: p, SensorID: string(sensorID)})
	}
}

// reject answers a decode or validation failure with 400 and counts it.
func (h *Handler) reject(w http.ResponseWriter, r *http.Request, kind validation.Kind, err error) {
	var verr *validation.Error
	if !errors.As(err, &verr) {
		// Not a client error: the validator itself failed.
		respondError(w, r, http.StatusInternalServerError, "Internal server error", err)
		return
	}
	metrics.RecordValidationRejection(string(kind), verr.Reason())
	respondError(w, r, http.StatusBadRequest, verr.Error(), nil)
}
