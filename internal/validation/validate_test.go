// Sensorgate - Environmental Sensor Telemetry Ingestion Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorgate

package validation

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func mustDecode(t *testing.T, raw string) map[string]any {
	t.Helper()
	body, err := DecodeBody(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("DecodeBody(%s) error = %v", raw, err)
	}
	return body
}

type validateCase struct {
	name       string
	body       string
	wantErr    string
	wantReason string
}

func runValidateCases(t *testing.T, kind Kind, tests []validateCase) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := Validate(kind, mustDecode(t, tt.body))

			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error = %v", err)
				}
				if payload == nil || payload.Kind() != kind {
					t.Fatalf("Validate() payload = %#v, want kind %s", payload, kind)
				}
				return
			}

			var verr *Error
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() error = %v, want *Error %q", err, tt.wantErr)
			}
			if verr.Error() != tt.wantErr {
				t.Errorf("Validate() error = %q, want %q", verr.Error(), tt.wantErr)
			}
			if tt.wantReason != "" && verr.Reason() != tt.wantReason {
				t.Errorf("Reason() = %q, want %q", verr.Reason(), tt.wantReason)
			}
			if payload != nil {
				t.Errorf("Validate() payload = %#v, want nil on error", payload)
			}
		})
	}
}

// ===================================================================================================
// DHT Tests
// ===================================================================================================

func TestValidate_DHT(t *testing.T) {
	runValidateCases(t, KindDHT, []validateCase{
		{name: "temperature and humidity", body: `{"tags":["sensor:123"],"temperature":25,"humidity":60}`},
		{name: "temperature only", body: `{"tags":["sensor:123"],"temperature":-3.5}`},
		{name: "humidity only", body: `{"tags":["room:1","sensor:abc"],"humidity":40}`},
		{name: "unknown fields pass", body: `{"tags":["sensor:1"],"temperature":1,"battery":"low"}`},
		{name: "empty sensor value passes schema", body: `{"tags":["sensor:"],"temperature":1}`},

		{name: "missing tags", body: `{"temperature":25}`, wantErr: msgTagsArray, wantReason: ReasonTags},
		{name: "tags not an array", body: `{"tags":"sensor:1","temperature":25}`, wantErr: msgTagsArray},
		{name: "tags null", body: `{"tags":null,"temperature":25}`, wantErr: msgTagsArray},
		{name: "empty tags", body: `{"tags":[],"temperature":25}`, wantErr: msgTagsArray},
		{name: "non-string tag", body: `{"tags":["sensor:1",7],"temperature":25}`, wantErr: msgTagsStrings},
		{name: "only non-string tags", body: `{"tags":[7],"temperature":25}`, wantErr: msgTagsStrings},
		{name: "no sensor tag", body: `{"tags":["invalid:123"],"temperature":25}`, wantErr: msgSensorTag},

		{name: "no measurement", body: `{"tags":["sensor:1"]}`, wantErr: msgDHTMissing, wantReason: ReasonMissingMeasurement},
		{name: "tags error beats missing measurement", body: `{}`, wantErr: msgTagsArray},
		{name: "sensor error beats missing measurement", body: `{"tags":["a:b"]}`, wantErr: msgSensorTag},

		{name: "temperature string", body: `{"tags":["sensor:1"],"temperature":"25"}`, wantErr: "temperature must be a number", wantReason: ReasonInvalidType},
		{name: "temperature null counts as present", body: `{"tags":["sensor:1"],"temperature":null}`, wantErr: "temperature must be a number"},
		{name: "humidity bool", body: `{"tags":["sensor:1"],"temperature":20,"humidity":true}`, wantErr: "humidity must be a number"},
		{name: "humidity object", body: `{"tags":["sensor:1"],"humidity":{}}`, wantErr: "humidity must be a number"},
		{name: "document order", body: `{"tags":["sensor:1"],"humidity":"x","temperature":"y"}`, wantErr: "temperature must be a number"},
		{name: "out of range number", body: `{"tags":["sensor:1"],"temperature":1e400}`, wantErr: "temperature must be a number"},
		{name: "negative out of range number", body: `{"tags":["sensor:1"],"temperature":20,"humidity":-1e309}`, wantErr: "humidity must be a number", wantReason: ReasonInvalidType},
		{name: "tags error beats type error", body: `{"tags":[],"temperature":"x"}`, wantErr: msgTagsArray},

		{name: "pms group rejected", body: `{"tags":["sensor:1"],"temperature":1,"pm_ug_per_m3":{}}`, wantErr: msgDHTCrossKind, wantReason: ReasonCrossKind},
		{name: "missing beats cross-kind", body: `{"tags":["sensor:1"],"pm_per_1l_air":{}}`, wantErr: msgDHTMissing},
		{name: "cross-kind beats type", body: `{"tags":["sensor:1"],"temperature":"x","pm_per_1l_air":1}`, wantErr: msgDHTCrossKind},
	})
}

func TestValidate_DHTPayload(t *testing.T) {
	body := mustDecode(t, `{"tags":["room:kitchen","sensor:123"],"temperature":25.0,"humidity":60,"zone":"b","alpha":1}`)

	payload, err := Validate(KindDHT, body)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	dht, ok := payload.(*DHTPayload)
	if !ok {
		t.Fatalf("payload type = %T, want *DHTPayload", payload)
	}
	if dht.Temperature.Float64() != 25 || dht.Humidity.Float64() != 60 {
		t.Errorf("readings = %v / %v", dht.Temperature, dht.Humidity)
	}
	if !reflect.DeepEqual(dht.Tags(), []string{"room:kitchen", "sensor:123"}) {
		t.Errorf("Tags() = %v", dht.Tags())
	}
	if !reflect.DeepEqual(dht.Ignored(), []string{"alpha", "zone"}) {
		t.Errorf("Ignored() = %v, want [alpha zone]", dht.Ignored())
	}

	got := dht.Measurements()
	want := []Measurement{
		{Name: "temperature", Fields: map[string]float64{"temperature": 25}},
		{Name: "humidity", Fields: map[string]float64{"humidity": 60}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Measurements() = %v, want %v", got, want)
	}

	out, err := json.Marshal(dht)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(out) != `{"temperature":25.0,"humidity":60}` {
		t.Errorf("Marshal() = %s, want literal numbers preserved", out)
	}
}

func TestValidate_Idempotent(t *testing.T) {
	raw := `{"tags":["sensor:1"],"temperature":21.5,"extra":true}`
	body := mustDecode(t, raw)
	before := mustDecode(t, raw)

	first, err1 := Validate(KindDHT, body)
	second, err2 := Validate(KindDHT, body)

	if err1 != nil || err2 != nil {
		t.Fatalf("Validate() errors = %v, %v", err1, err2)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Validate() not idempotent: %#v vs %#v", first, second)
	}
	if !reflect.DeepEqual(body, before) {
		t.Error("Validate() modified the body")
	}

	badBody := mustDecode(t, `{"tags":["sensor:1"],"temperature":"x"}`)
	_, e1 := Validate(KindDHT, badBody)
	_, e2 := Validate(KindDHT, badBody)
	if e1 == nil || e2 == nil || e1.Error() != e2.Error() {
		t.Errorf("errors differ between runs: %v vs %v", e1, e2)
	}
}

// ===================================================================================================
// PMS Tests
// ===================================================================================================

const (
	ugGroup  = `{"1.0um":5,"2.5um":7.5,"10um":12}`
	airGroup = `{"0.3um":100,"0.5um":80,"1.0um":60,"2.5um":40,"5.0um":20,"10um":10}`
)

func TestValidate_PMS(t *testing.T) {
	runValidateCases(t, KindPMS, []validateCase{
		{name: "ug group", body: `{"tags":["sensor:123"],"pm_ug_per_m3":` + ugGroup + `}`},
		{name: "per litre group", body: `{"tags":["sensor:123"],"pm_per_1l_air":` + airGroup + `}`},
		{name: "both groups", body: `{"tags":["sensor:1"],"pm_ug_per_m3":` + ugGroup + `,"pm_per_1l_air":` + airGroup + `}`},
		{name: "extra sub-field ignored", body: `{"tags":["sensor:1"],"pm_ug_per_m3":{"1.0um":1,"2.5um":2,"10um":3,"4um":9}}`},

		{name: "missing tags", body: `{"pm_ug_per_m3":` + ugGroup + `}`, wantErr: msgTagsArray},
		{name: "no sensor tag", body: `{"tags":["invalid:1"],"pm_ug_per_m3":` + ugGroup + `}`, wantErr: msgSensorTag},
		{name: "no measurement", body: `{"tags":["sensor:1"]}`, wantErr: msgPMSMissing, wantReason: ReasonMissingMeasurement},

		{name: "group not an object", body: `{"tags":["sensor:1"],"pm_ug_per_m3":[1,2,3]}`, wantErr: "pm_ug_per_m3 must be an object"},
		{name: "group null", body: `{"tags":["sensor:1"],"pm_per_1l_air":null}`, wantErr: "pm_per_1l_air must be an object"},
		{name: "missing sub-field", body: `{"tags":["sensor:1"],"pm_ug_per_m3":{"1.0um":1,"10um":3}}`, wantErr: "pm_ug_per_m3.2.5um must be a number"},
		{name: "bad sub-field", body: `{"tags":["sensor:1"],"pm_ug_per_m3":{"1.0um":1,"2.5um":2,"10um":"3"}}`, wantErr: "pm_ug_per_m3.10um must be a number"},
		{name: "out of range sub-field", body: `{"tags":["sensor:1"],"pm_ug_per_m3":{"1.0um":1,"2.5um":1e400,"10um":3}}`, wantErr: "pm_ug_per_m3.2.5um must be a number"},
		{name: "sub-field listed order", body: `{"tags":["sensor:1"],"pm_ug_per_m3":{"10um":"x","2.5um":2}}`, wantErr: "pm_ug_per_m3.1.0um must be a number"},
		{name: "first group before second", body: `{"tags":["sensor:1"],"pm_per_1l_air":{},"pm_ug_per_m3":{"1.0um":1}}`, wantErr: "pm_ug_per_m3.2.5um must be a number"},
		{name: "second group sub-field", body: `{"tags":["sensor:1"],"pm_per_1l_air":{"0.3um":1,"0.5um":1,"1.0um":1,"2.5um":1,"10um":1}}`, wantErr: "pm_per_1l_air.5.0um must be a number"},
		{name: "group error before its sub-fields", body: `{"tags":["sensor:1"],"pm_ug_per_m3":"x"}`, wantErr: "pm_ug_per_m3 must be an object"},

		{name: "dht field rejected", body: `{"tags":["sensor:1"],"humidity":50,"pm_ug_per_m3":` + ugGroup + `}`, wantErr: msgPMSCrossKind},
		{name: "missing beats cross-kind", body: `{"tags":["sensor:1"],"temperature":20}`, wantErr: msgPMSMissing},
	})
}

func TestValidate_PMSPayload(t *testing.T) {
	body := mustDecode(t, `{"tags":["sensor:123"],"pm_ug_per_m3":{"1.0um":5,"2.5um":7.50,"10um":12,"4um":1}}`)

	payload, err := Validate(KindPMS, body)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	pms := payload.(*PMSPayload)

	if pms.Per1LAir != nil {
		t.Error("Per1LAir should be nil when absent")
	}
	if !reflect.DeepEqual(pms.Ignored(), []string{"pm_ug_per_m3.4um"}) {
		t.Errorf("Ignored() = %v", pms.Ignored())
	}

	got := pms.Measurements()
	want := []Measurement{{
		Name:   "pm_ug_per_m3",
		Fields: map[string]float64{"1.0um": 5, "2.5um": 7.5, "10um": 12},
	}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Measurements() = %v, want %v", got, want)
	}

	out, err := json.Marshal(pms)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(out) != `{"pm_ug_per_m3":{"1.0um":5,"2.5um":7.50,"10um":12}}` {
		t.Errorf("Marshal() = %s", out)
	}
}

func TestValidate_UnknownKind(t *testing.T) {
	_, err := Validate("co2", map[string]any{})
	if err == nil {
		t.Fatal("expected error for unknown kind")
	}
	var verr *Error
	if errors.As(err, &verr) {
		t.Error("unknown kind should not be a client validation error")
	}
}

// ===================================================================================================
// Constructor Tests
// ===================================================================================================

func readingPtr(v float64) *Reading {
	r := NewReading(v)
	return &r
}

func TestNewDHTPayload(t *testing.T) {
	p, err := NewDHTPayload([]string{"sensor:x"}, readingPtr(21.5), nil)
	if err != nil {
		t.Fatalf("NewDHTPayload() error = %v", err)
	}
	if len(p.Measurements()) != 1 {
		t.Errorf("Measurements() = %v, want one group", p.Measurements())
	}

	if _, err := NewDHTPayload([]string{"sensor:x"}, nil, nil); err == nil || err.Error() != msgDHTMissing {
		t.Errorf("NewDHTPayload(nil, nil) error = %v, want %q", err, msgDHTMissing)
	}
	if _, err := NewDHTPayload(nil, readingPtr(1), nil); err == nil || err.Error() != msgTagsArray {
		t.Errorf("NewDHTPayload(no tags) error = %v, want %q", err, msgTagsArray)
	}
	if _, err := NewDHTPayload([]string{"sensor:x"}, nil, readingPtr(math.NaN())); err == nil || err.Error() != "humidity must be a number" {
		t.Errorf("NewDHTPayload(NaN) error = %v", err)
	}
}

func TestNewPMSPayload(t *testing.T) {
	full := &PMUgPerM3{PM1: readingPtr(1), PM25: readingPtr(2), PM10: readingPtr(3)}
	if _, err := NewPMSPayload([]string{"sensor:x"}, full, nil); err != nil {
		t.Fatalf("NewPMSPayload() error = %v", err)
	}

	partial := &PMPer1LAir{PM03: readingPtr(1)}
	_, err := NewPMSPayload([]string{"sensor:x"}, nil, partial)
	if err == nil || err.Error() != "pm_per_1l_air.0.5um must be a number" {
		t.Errorf("NewPMSPayload(partial) error = %v", err)
	}
}

// ===================================================================================================
// Reading and DecodeBody Tests
// ===================================================================================================

func TestReading(t *testing.T) {
	r := NewReading(0.1)
	if r.String() != "0.1" {
		t.Errorf("String() = %q, want 0.1", r.String())
	}
	if out, _ := r.MarshalJSON(); string(out) != "0.1" {
		t.Errorf("MarshalJSON() = %s", out)
	}

	tests := []struct {
		raw any
		ok  bool
	}{
		{json.Number("25.0"), true},
		{json.Number("-1e-3"), true},
		{json.Number("1e400"), false},
		{float64(3), true},
		{math.Inf(1), false},
		{"25", false},
		{nil, false},
		{true, false},
	}
	for _, tt := range tests {
		if _, ok := parseReading(tt.raw); ok != tt.ok {
			t.Errorf("parseReading(%#v) ok = %v, want %v", tt.raw, ok, tt.ok)
		}
	}
}

func TestDecodeBody(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"object", `{"tags":["sensor:1"]}`, false},
		{"object with whitespace", "  {}\n", false},
		{"array", `[1,2]`, true},
		{"string", `"hello"`, true},
		{"number", `42`, true},
		{"null", `null`, true},
		{"empty", ``, true},
		{"malformed", `{"tags":`, true},
		{"trailing data", `{} {}`, true},
		{"out of range literal is kept", `{"temperature":1e400}`, false},
		{"malformed number", `{"temperature":1.2.3}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeBody(strings.NewReader(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodeBody() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}
			var verr *Error
			if !errors.As(err, &verr) || verr.Error() != "Invalid request body" || verr.Reason() != ReasonInvalidBody {
				t.Errorf("DecodeBody() error = %#v", err)
			}
		})
	}
}

func TestDecodeBody_UsesNumber(t *testing.T) {
	body := mustDecode(t, `{"temperature":25.0,"pm_ug_per_m3":{"2.5":1e400},"tags":[7]}`)
	if _, ok := body["temperature"].(json.Number); !ok {
		t.Errorf("temperature type = %T, want json.Number", body["temperature"])
	}
	group, _ := body["pm_ug_per_m3"].(map[string]any)
	if n, ok := group["2.5"].(json.Number); !ok || n != "1e400" {
		t.Errorf("nested literal = %#v, want json.Number 1e400", group["2.5"])
	}
	tags, _ := body["tags"].([]any)
	if len(tags) != 1 || tags[0] != json.Number("7") {
		t.Errorf("tags = %#v", body["tags"])
	}
}
