// Sensorgate - Environmental Sensor Telemetry Ingestion Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorgate

package validation

import (
	"fmt"
	"sort"
)

// dhtCandidate is the typed form of a DHT body before the declarative rules run.
type dhtCandidate struct {
	Tags        []string `json:"tags" validate:"required,min=1,sensortags"`
	Temperature *Reading `json:"temperature" validate:"required_without=Humidity"`
	Humidity    *Reading `json:"humidity" validate:"required_without=Temperature"`

	// keys that belong to the other kind; must stay false
	UgPerM3  bool `json:"pm_ug_per_m3" validate:"isdefault"`
	Per1LAir bool `json:"pm_per_1l_air" validate:"isdefault"`
}

// pmsCandidate is the typed form of a PMS body before the declarative rules run.
type pmsCandidate struct {
	Tags     []string    `json:"tags" validate:"required,min=1,sensortags"`
	UgPerM3  *PMUgPerM3  `json:"pm_ug_per_m3" validate:"required_without=Per1LAir"`
	Per1LAir *PMPer1LAir `json:"pm_per_1l_air" validate:"required_without=UgPerM3"`

	Temperature bool `json:"temperature" validate:"isdefault"`
	Humidity    bool `json:"humidity" validate:"isdefault"`
}

// Validate checks a decoded JSON object against the shape for kind and
// returns the typed payload. On a rule violation it returns a *Error carrying
// the single highest-precedence message:
//
//  1. tags errors
//  2. no measurement present
//  3. a measurement of the other kind present
//  4. type errors, in document order
//
// Unknown keys are accepted and reported by Payload.Ignored. Validate does
// not modify body.
func Validate(kind Kind, body map[string]any) (Payload, error) {
	switch kind {
	case KindDHT:
		p, err := validateDHT(body)
		if err != nil {
			return nil, err
		}
		return p, nil
	case KindPMS:
		p, err := validatePMS(body)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown measurement kind %q", kind)
	}
}

func validateDHT(body map[string]any) (*DHTPayload, error) {
	c := &converter{schema: dhtSchema}
	candidate := &dhtCandidate{
		Tags:        c.tags(body),
		Temperature: c.reading(body, MeasurementTemperature),
		Humidity:    c.reading(body, MeasurementHumidity),
		UgPerM3:     c.has(body, MeasurementPMUgPerM3),
		Per1LAir:    c.has(body, MeasurementPMPer1LAir),
	}

	if err := dhtSchema.check(candidate, c.failures); err != nil {
		return nil, err
	}

	return &DHTPayload{
		Temperature: candidate.Temperature,
		Humidity:    candidate.Humidity,
		tags:        candidate.Tags,
		ignored:     c.ignored(body),
	}, nil
}

func validatePMS(body map[string]any) (*PMSPayload, error) {
	c := &converter{schema: pmsSchema}
	candidate := &pmsCandidate{
		Tags:        c.tags(body),
		Temperature: c.has(body, MeasurementTemperature),
		Humidity:    c.has(body, MeasurementHumidity),
	}
	if readings, ok := c.group(body, MeasurementPMUgPerM3, pmUgPerM3Fields); ok {
		candidate.UgPerM3 = newPMUgPerM3(readings)
	}
	if readings, ok := c.group(body, MeasurementPMPer1LAir, pmPer1LAirFields); ok {
		candidate.Per1LAir = newPMPer1LAir(readings)
	}

	if err := pmsSchema.check(candidate, c.failures); err != nil {
		return nil, err
	}

	return &PMSPayload{
		UgPerM3:  candidate.UgPerM3,
		Per1LAir: candidate.Per1LAir,
		tags:     candidate.Tags,
		ignored:  c.ignored(body),
	}, nil
}

// NewDHTPayload builds a DHT payload from already-typed values, applying the
// same rules as Validate.
func NewDHTPayload(tags []string, temperature, humidity *Reading) (*DHTPayload, error) {
	candidate := &dhtCandidate{Tags: tags, Temperature: temperature, Humidity: humidity}
	if err := dhtSchema.check(candidate, nil); err != nil {
		return nil, err
	}
	return &DHTPayload{Temperature: temperature, Humidity: humidity, tags: tags}, nil
}

// NewPMSPayload builds a PMS payload from already-typed groups, applying the
// same rules as Validate.
func NewPMSPayload(tags []string, ugPerM3 *PMUgPerM3, per1LAir *PMPer1LAir) (*PMSPayload, error) {
	candidate := &pmsCandidate{Tags: tags, UgPerM3: ugPerM3, Per1LAir: per1LAir}
	if err := pmsSchema.check(candidate, nil); err != nil {
		return nil, err
	}
	return &PMSPayload{UgPerM3: ugPerM3, Per1LAir: per1LAir, tags: tags}, nil
}

// converter moves values out of the untyped body and records the type
// failures the validator cannot see, such as a string where a number belongs.
type converter struct {
	schema   *schema
	failures []failure
	extra    []string
}

func (c *converter) fail(rank, order int, field, tag, reason, message string) {
	c.failures = append(c.failures, failure{
		rank:  rank,
		order: order,
		err:   newError(field, tag, reason, message),
	})
}

// tags returns nil when tags is absent or not an array, so that the
// required rule reports it. Non-string entries are dropped and recorded.
func (c *converter) tags(body map[string]any) []string {
	arr, ok := body[tagsKey].([]any)
	if !ok {
		return nil
	}

	tags := make([]string, 0, len(arr))
	reported := false
	for _, elem := range arr {
		s, ok := elem.(string)
		if !ok {
			if !reported {
				c.fail(rankTags, 0, tagsKey, tagNonStringEntry, ReasonTags, msgTagsStrings)
				reported = true
			}
			continue
		}
		tags = append(tags, s)
	}
	return tags
}

func (c *converter) has(body map[string]any, key string) bool {
	_, ok := body[key]
	return ok
}

// reading returns nil for an absent key. A present key that is not a finite
// number (null included) counts as present and records a type failure.
func (c *converter) reading(body map[string]any, key string) *Reading {
	raw, ok := body[key]
	if !ok {
		return nil
	}
	return c.parse(key, raw)
}

func (c *converter) parse(path string, raw any) *Reading {
	r, ok := parseReading(raw)
	if !ok {
		c.fail(rankType, c.schema.position(path), path, tagNotANumber, ReasonInvalidType, path+msgNumberSuffix)
		return &Reading{}
	}
	return &r
}

// group extracts the sub-fields of a particulate group. ok is false only when
// the key is absent. Missing sub-fields stay nil for the required rule;
// unknown sub-fields are remembered for Ignored.
func (c *converter) group(body map[string]any, key string, fields []string) (map[string]*Reading, bool) {
	raw, present := body[key]
	if !present {
		return nil, false
	}

	obj, isObject := raw.(map[string]any)
	if !isObject {
		c.fail(rankType, c.schema.position(key), key, tagNotAnObject, ReasonInvalidType, key+msgObjectSuffix)
		return map[string]*Reading{}, true
	}

	readings := make(map[string]*Reading, len(fields))
	for _, f := range fields {
		if v, ok := obj[f]; ok {
			readings[f] = c.parse(key+"."+f, v)
		}
	}
	for sub := range obj {
		if !contains(fields, sub) {
			c.extra = append(c.extra, key+"."+sub)
		}
	}
	return readings, true
}

// ignored returns the sorted unknown keys of body plus any unknown group
// sub-fields seen during conversion.
func (c *converter) ignored(body map[string]any) []string {
	var out []string
	for key := range body {
		if !c.schema.known(key) {
			out = append(out, key)
		}
	}
	out = append(out, c.extra...)
	sort.Strings(out)
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
