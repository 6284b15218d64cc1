// Sensorgate - Environmental Sensor Telemetry Ingestion Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorgate

// Package validation checks sensor measurement bodies and turns them into
// typed payloads.
//
// Two shapes are supported:
//
//	DHT: {"tags": [...], "temperature"?: number, "humidity"?: number}
//	PMS: {"tags": [...], "pm_ug_per_m3"?: {...}, "pm_per_1l_air"?: {...}}
//
// # Pipeline
//
// DecodeBody reads the request with goccy/go-json and UseNumber, so every
// number arrives as a json.Number literal. Validate then converts the untyped
// object into a candidate struct, recording type failures that only the
// conversion can see (a string where a number belongs, a group that is not an
// object, a non-string tag). The candidate is then checked by a singleton
// go-playground/validator instance:
//
//	Tags        []string `validate:"required,min=1,sensortags"`
//	Temperature *Reading `validate:"required_without=Humidity"`
//	UgPerM3     bool     `validate:"isdefault"` // other kind's key
//
// Conversion and validator failures are merged and exactly one is returned,
// chosen by precedence: tags, then missing measurement, then cross-kind keys,
// then type errors in document order.
//
// # Usage
//
//	body, err := validation.DecodeBody(r.Body)
//	if err != nil {
//	    respondError(w, http.StatusBadRequest, err.Error())
//	    return
//	}
//	payload, err := validation.Validate(validation.KindDHT, body)
//	var verr *validation.Error
//	if errors.As(err, &verr) {
//	    respondError(w, http.StatusBadRequest, verr.Error())
//	    return
//	}
//	for _, m := range payload.Measurements() {
//	    // one write per group
//	}
//
// Readings keep their literal text, so echoing a payload reproduces the
// submitted numbers exactly.
package validation
