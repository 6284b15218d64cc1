// Sensorgate - Environmental Sensor Telemetry Ingestion Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorgate

// Package sensortag extracts the sensor identifier from a request's tag list.
//
// Tags are "namespace:value" strings. Only the "sensor" namespace carries
// meaning here; every other namespace is skipped.
package sensortag

import (
	"errors"
	"strings"
)

// Namespace is the tag namespace that carries the sensor identifier.
const Namespace = "sensor"

// Prefix is Namespace followed by the separator, e.g. "sensor:living-room".
const Prefix = Namespace + ":"

var (
	// ErrInvalidInput is returned when tags is not a sequence.
	ErrInvalidInput = errors.New("tags must be an array")

	// ErrSensorTagNotFound is returned when no tag has the sensor namespace.
	ErrSensorTagNotFound = errors.New("sensor tag not found")

	// ErrMalformedSensorTag is returned when the first sensor tag has an empty value.
	ErrMalformedSensorTag = errors.New("invalid sensor tag format")
)

// SensorID identifies the device that produced a reading.
type SensorID string

// String implements fmt.Stringer.
func (id SensorID) String() string {
	return string(id)
}

// Extract returns the sensor identifier from a decoded JSON tag list.
//
// tags must be []string or []any; non-string elements of []any are skipped.
// Anything else, nil included, yields ErrInvalidInput.
func Extract(tags any) (SensorID, error) {
	switch v := tags.(type) {
	case []string:
		return FromStrings(v)
	case []any:
		strs := make([]string, 0, len(v))
		for _, elem := range v {
			if s, ok := elem.(string); ok {
				strs = append(strs, s)
			}
		}
		return FromStrings(strs)
	default:
		return "", ErrInvalidInput
	}
}

// FromStrings scans tags in order and returns the value of the first entry
// whose namespace is "sensor". Entries are split on the first ':' only, so
// "sensor:a:b" yields "a:b".
func FromStrings(tags []string) (SensorID, error) {
	for _, tag := range tags {
		namespace, value, ok := strings.Cut(tag, ":")
		if !ok || namespace != Namespace {
			continue
		}
		if value == "" {
			return "", ErrMalformedSensorTag
		}
		return SensorID(value), nil
	}
	return "", ErrSensorTagNotFound
}

// HasSensorPrefix reports whether any tag starts with "sensor:". It is the
// schema-level check and does not reject an empty value.
func HasSensorPrefix(tags []string) bool {
	for _, tag := range tags {
		if strings.HasPrefix(tag, Prefix) {
			return true
		}
	}
	return false
}
