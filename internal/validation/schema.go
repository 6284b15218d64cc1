// Sensorgate - Environmental Sensor Telemetry Ingestion Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorgate

package validation

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
)

// Client-facing messages.
const (
	msgTagsArray      = "tags must be a non-empty array"
	msgTagsStrings    = "tags must contain only strings"
	msgSensorTag      = "At least one sensor tag is required (format: sensor:id)"
	msgDHTMissing     = "temperature or humidity is required"
	msgPMSMissing     = "pm_ug_per_m3 or pm_per_1l_air is required"
	msgDHTCrossKind   = "pm_ug_per_m3 and pm_per_1l_air are not accepted for DHT readings"
	msgPMSCrossKind   = "temperature and humidity are not accepted for PMS readings"
	msgInvalidBody    = "Invalid request body"
	msgNumberSuffix   = " must be a number"
	msgObjectSuffix   = " must be an object"
	tagsKey           = "tags"
	tagNotANumber     = "number"
	tagNotAnObject    = "object"
	tagNonStringEntry = "string"
)

// Failure precedence. A lower rank always wins; within a rank the lower
// order wins.
const (
	rankTags = iota
	rankPresence
	rankCrossKind
	rankType
)

type failure struct {
	rank  int
	order int
	err   *Error
}

// schema describes one payload kind: its keys, the document order used to
// rank type failures, and its kind-specific messages.
type schema struct {
	kind         Kind
	groups       []string
	foreign      []string
	fieldOrder   []string
	missingMsg   string
	crossKindMsg string
}

var dhtSchema = &schema{
	kind:         KindDHT,
	groups:       []string{MeasurementTemperature, MeasurementHumidity},
	foreign:      []string{MeasurementPMUgPerM3, MeasurementPMPer1LAir},
	fieldOrder:   []string{MeasurementTemperature, MeasurementHumidity},
	missingMsg:   msgDHTMissing,
	crossKindMsg: msgDHTCrossKind,
}

var pmsSchema = &schema{
	kind:         KindPMS,
	groups:       []string{MeasurementPMUgPerM3, MeasurementPMPer1LAir},
	foreign:      []string{MeasurementTemperature, MeasurementHumidity},
	fieldOrder:   documentOrder(),
	missingMsg:   msgPMSMissing,
	crossKindMsg: msgPMSCrossKind,
}

// documentOrder lists each particulate group followed by its sub-fields.
func documentOrder() []string {
	order := []string{MeasurementPMUgPerM3}
	for _, f := range pmUgPerM3Fields {
		order = append(order, MeasurementPMUgPerM3+"."+f)
	}
	order = append(order, MeasurementPMPer1LAir)
	for _, f := range pmPer1LAirFields {
		order = append(order, MeasurementPMPer1LAir+"."+f)
	}
	return order
}

func (s *schema) position(path string) int {
	for i, p := range s.fieldOrder {
		if p == path {
			return i
		}
	}
	return len(s.fieldOrder)
}

func (s *schema) known(key string) bool {
	if key == tagsKey {
		return true
	}
	for _, k := range s.groups {
		if k == key {
			return true
		}
	}
	for _, k := range s.foreign {
		if k == key {
			return true
		}
	}
	return false
}

// check runs the declarative rules on candidate and returns the single
// highest-precedence failure among them and the conversion failures, or nil.
func (s *schema) check(candidate any, failures []failure) error {
	err := GetValidator().Struct(candidate)
	if err != nil {
		var validationErrs validator.ValidationErrors
		if !errors.As(err, &validationErrs) {
			return fmt.Errorf("validate %s payload: %w", s.kind, err)
		}
		for _, fe := range validationErrs {
			failures = append(failures, s.classify(fe))
		}
	}

	if len(failures) == 0 {
		return nil
	}

	sort.SliceStable(failures, func(i, j int) bool {
		if failures[i].rank != failures[j].rank {
			return failures[i].rank < failures[j].rank
		}
		return failures[i].order < failures[j].order
	})
	return failures[0].err
}

// classify maps a validator field error onto the failure taxonomy.
func (s *schema) classify(fe validator.FieldError) failure {
	path := fieldPath(fe)
	tag := fe.Tag()

	switch {
	case path == tagsKey && tag == "sensortags":
		return failure{rank: rankTags, order: 2, err: newError(path, tag, ReasonTags, msgSensorTag)}
	case path == tagsKey:
		return failure{rank: rankTags, order: 1, err: newError(path, tag, ReasonTags, msgTagsArray)}
	case tag == "required_without":
		return failure{rank: rankPresence, err: newError(path, tag, ReasonMissingMeasurement, s.missingMsg)}
	case tag == "isdefault":
		return failure{rank: rankCrossKind, err: newError(path, tag, ReasonCrossKind, s.crossKindMsg)}
	case tag == "required" || tag == "finite":
		return failure{rank: rankType, order: s.position(path), err: newError(path, tag, ReasonInvalidType, path+msgNumberSuffix)}
	default:
		return failure{rank: rankType, order: len(s.fieldOrder), err: newError(path, tag, ReasonInvalidType, translateError(fe))}
	}
}

func newError(field, tag, reason, message string) *Error {
	return &Error{field: field, tag: tag, reason: reason, message: message}
}
