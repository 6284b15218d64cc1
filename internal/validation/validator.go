// Sensorgate - Environmental Sensor Telemetry Ingestion Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorgate

package validation

import (
	"fmt"
	"math"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/sensorgate/internal/sensortag"
)

// singleton validator instance
var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Rejection reasons, used as the metrics "reason" label.
const (
	ReasonInvalidBody        = "invalid_body"
	ReasonTags               = "tags"
	ReasonMissingMeasurement = "missing_measurement"
	ReasonCrossKind          = "cross_kind"
	ReasonInvalidType        = "invalid_type"
)

// Error is a single client-facing validation failure. Its message is returned
// verbatim in the 400 response body.
type Error struct {
	field   string
	tag     string
	reason  string
	message string
	cause   error
}

// Field returns the JSON path that failed, e.g. "pm_ug_per_m3.2.5um".
func (e *Error) Field() string {
	return e.field
}

// Tag returns the rule that failed.
func (e *Error) Tag() string {
	return e.tag
}

// Reason returns one of the Reason* constants.
func (e *Error) Reason() string {
	return e.reason
}

// Error returns the message.
func (e *Error) Error() string {
	return e.message
}

// Unwrap returns the decode error behind an invalid body, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// GetValidator returns the singleton validator instance.
// It reports JSON field names and knows two custom rules:
//   - sensortags: at least one "sensor:" prefixed entry
//   - finite: a float64 that is neither NaN nor ±Inf
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})

		// Registration only fails for an empty tag or nil func.
		_ = validate.RegisterValidation("sensortags", validateSensorTags)
		_ = validate.RegisterValidation("finite", validateFinite)
	})

	return validate
}

func validateSensorTags(fl validator.FieldLevel) bool {
	tags, ok := fl.Field().Interface().([]string)
	return ok && sensortag.HasSensorPrefix(tags)
}

func validateFinite(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.Float64 {
		return false
	}
	f := fl.Field().Float()
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// fieldPath turns a validator namespace such as
// "pmsCandidate.pm_ug_per_m3.1.0um.Value" into "pm_ug_per_m3.1.0um".
func fieldPath(fe validator.FieldError) string {
	_, path, _ := strings.Cut(fe.Namespace(), ".")
	return strings.TrimSuffix(path, ".Value")
}

// errorMessageTemplates maps validation tags to message templates.
var errorMessageTemplates = map[string]string{
	"required": "%s is required",
	"finite":   "%s must be a number",
}

// errorMessageWithParam maps validation tags to templates that include param.
var errorMessageWithParam = map[string]string{
	"oneof": "%s must be one of: %s",
	"gte":   "%s must be greater than or equal to %s",
	"lte":   "%s must be less than or equal to %s",
}

// translateError converts a validator.FieldError the schema has no specific
// message for into a readable one.
func translateError(fe validator.FieldError) string {
	field := fieldPath(fe)
	tag := fe.Tag()

	if template, ok := errorMessageTemplates[tag]; ok {
		return fmt.Sprintf(template, field)
	}
	if template, ok := errorMessageWithParam[tag]; ok {
		return fmt.Sprintf(template, field, fe.Param())
	}

	switch tag {
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at least %s items", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, tag)
	}
}
