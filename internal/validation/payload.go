// Sensorgate - Environmental Sensor Telemetry Ingestion Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorgate

package validation

import (
	"math"
	"strconv"

	"github.com/goccy/go-json"
)

// Kind names a measurement payload shape.
type Kind string

const (
	// KindDHT is a temperature/humidity reading.
	KindDHT Kind = "dht"
	// KindPMS is a particulate-matter reading.
	KindPMS Kind = "pms"
)

// Measurement names, which are also the JSON keys of the groups.
const (
	MeasurementTemperature = "temperature"
	MeasurementHumidity    = "humidity"
	MeasurementPMUgPerM3   = "pm_ug_per_m3"
	MeasurementPMPer1LAir  = "pm_per_1l_air"
)

// Sub-field keys of the particulate groups.
var (
	pmUgPerM3Fields  = []string{"1.0um", "2.5um", "10um"}
	pmPer1LAirFields = []string{"0.3um", "0.5um", "1.0um", "2.5um", "5.0um", "10um"}
)

// Reading is a finite number as submitted. It keeps the literal JSON text so
// that echoing it reproduces the client's bytes ("25.0" stays "25.0").
type Reading struct {
	Value   float64 `validate:"finite"`
	literal json.Number
}

// NewReading returns a Reading for v, formatted in the shortest form.
func NewReading(v float64) Reading {
	r := Reading{Value: v}
	if !math.IsNaN(v) && !math.IsInf(v, 0) {
		r.literal = json.Number(strconv.FormatFloat(v, 'g', -1, 64))
	}
	return r
}

// Float64 returns the parsed value.
func (r Reading) Float64() float64 {
	return r.Value
}

// String returns the literal text.
func (r Reading) String() string {
	if r.literal == "" {
		return strconv.FormatFloat(r.Value, 'g', -1, 64)
	}
	return string(r.literal)
}

// MarshalJSON writes the literal text unchanged.
func (r Reading) MarshalJSON() ([]byte, error) {
	return []byte(r.String()), nil
}

// parseReading accepts a json.Number (UseNumber decoding) or a float64 and
// rejects anything that is not a finite float64.
func parseReading(raw any) (Reading, bool) {
	switch v := raw.(type) {
	case json.Number:
		f, err := strconv.ParseFloat(string(v), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return Reading{}, false
		}
		return Reading{Value: f, literal: v}, true
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Reading{}, false
		}
		return NewReading(v), true
	default:
		return Reading{}, false
	}
}

// Measurement is one group ready to be written: its measurement name and the
// fields stored under it.
type Measurement struct {
	Name   string
	Fields map[string]float64
}

// Payload is a validated measurement body. It is implemented only by
// *DHTPayload and *PMSPayload.
type Payload interface {
	// Kind reports which shape the payload has.
	Kind() Kind
	// Tags returns the submitted tag strings.
	Tags() []string
	// Measurements returns the present groups in write order.
	Measurements() []Measurement
	// Ignored lists unknown keys that were accepted and left alone.
	Ignored() []string

	sealed()
}

// DHTPayload is a validated temperature/humidity body. At least one of the
// two readings is non-nil.
type DHTPayload struct {
	Temperature *Reading `json:"temperature,omitempty"`
	Humidity    *Reading `json:"humidity,omitempty"`

	tags    []string
	ignored []string
}

// Kind implements Payload.
func (*DHTPayload) Kind() Kind { return KindDHT }

// Tags implements Payload.
func (p *DHTPayload) Tags() []string { return p.tags }

// Ignored implements Payload.
func (p *DHTPayload) Ignored() []string { return p.ignored }

func (*DHTPayload) sealed() {}

// Measurements returns temperature then humidity, each as a single-field point.
func (p *DHTPayload) Measurements() []Measurement {
	var out []Measurement
	if p.Temperature != nil {
		out = append(out, Measurement{
			Name:   MeasurementTemperature,
			Fields: map[string]float64{MeasurementTemperature: p.Temperature.Value},
		})
	}
	if p.Humidity != nil {
		out = append(out, Measurement{
			Name:   MeasurementHumidity,
			Fields: map[string]float64{MeasurementHumidity: p.Humidity.Value},
		})
	}
	return out
}

// PMUgPerM3 is particulate mass concentration in µg/m³.
type PMUgPerM3 struct {
	PM1  *Reading `json:"1.0um" validate:"required"`
	PM25 *Reading `json:"2.5um" validate:"required"`
	PM10 *Reading `json:"10um" validate:"required"`
}

func newPMUgPerM3(r map[string]*Reading) *PMUgPerM3 {
	return &PMUgPerM3{PM1: r["1.0um"], PM25: r["2.5um"], PM10: r["10um"]}
}

// Fields returns the readings keyed by their JSON names.
func (g *PMUgPerM3) Fields() map[string]float64 {
	return readingFields(pmUgPerM3Fields, g.PM1, g.PM25, g.PM10)
}

// PMPer1LAir is particle count per litre of air, by particle size.
type PMPer1LAir struct {
	PM03 *Reading `json:"0.3um" validate:"required"`
	PM05 *Reading `json:"0.5um" validate:"required"`
	PM1  *Reading `json:"1.0um" validate:"required"`
	PM25 *Reading `json:"2.5um" validate:"required"`
	PM5  *Reading `json:"5.0um" validate:"required"`
	PM10 *Reading `json:"10um" validate:"required"`
}

func newPMPer1LAir(r map[string]*Reading) *PMPer1LAir {
	return &PMPer1LAir{
		PM03: r["0.3um"],
		PM05: r["0.5um"],
		PM1:  r["1.0um"],
		PM25: r["2.5um"],
		PM5:  r["5.0um"],
		PM10: r["10um"],
	}
}

// Fields returns the readings keyed by their JSON names.
func (g *PMPer1LAir) Fields() map[string]float64 {
	return readingFields(pmPer1LAirFields, g.PM03, g.PM05, g.PM1, g.PM25, g.PM5, g.PM10)
}

func readingFields(names []string, readings ...*Reading) map[string]float64 {
	fields := make(map[string]float64, len(names))
	for i, r := range readings {
		if r != nil {
			fields[names[i]] = r.Value
		}
	}
	return fields
}

// PMSPayload is a validated particulate body. At least one group is non-nil
// and every sub-field of a present group is set.
type PMSPayload struct {
	UgPerM3  *PMUgPerM3  `json:"pm_ug_per_m3,omitempty"`
	Per1LAir *PMPer1LAir `json:"pm_per_1l_air,omitempty"`

	tags    []string
	ignored []string
}

// Kind implements Payload.
func (*PMSPayload) Kind() Kind { return KindPMS }

// Tags implements Payload.
func (p *PMSPayload) Tags() []string { return p.tags }

// Ignored implements Payload.
func (p *PMSPayload) Ignored() []string { return p.ignored }

func (*PMSPayload) sealed() {}

// Measurements returns pm_ug_per_m3 then pm_per_1l_air.
func (p *PMSPayload) Measurements() []Measurement {
	var out []Measurement
	if p.UgPerM3 != nil {
		out = append(out, Measurement{Name: MeasurementPMUgPerM3, Fields: p.UgPerM3.Fields()})
	}
	if p.Per1LAir != nil {
		out = append(out, Measurement{Name: MeasurementPMPer1LAir, Fields: p.Per1LAir.Fields()})
	}
	return out
}
