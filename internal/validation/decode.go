// Sensorgate - Environmental Sensor Telemetry Ingestion Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorgate

package validation

import (
	"bytes"
	"errors"
	"io"
	"strconv"

	"github.com/goccy/go-json"
)

var errTrailingData = errors.New("unexpected data after JSON object")

// DecodeBody reads a single JSON object from r with numbers kept as
// json.Number. Anything else (an array, a scalar, null, malformed or
// trailing input) yields a *Error with the message "Invalid request body".
//
// Number literals are kept verbatim, even ones outside float64 range, so
// that the field checks can report them against the field that holds them.
func DecodeBody(r io.Reader) (map[string]any, error) {
	dec := json.NewDecoder(r)

	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return nil, invalidBody(err)
	}

	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, invalidBody(errTrailingData)
	}

	value, err := decodeRaw(raw)
	if err != nil {
		return nil, invalidBody(err)
	}
	body, ok := value.(map[string]any)
	if !ok {
		if value == nil {
			return nil, invalidBody(errors.New("body is null"))
		}
		return nil, invalidBody(errors.New("body is not a JSON object"))
	}
	return body, nil
}

// decodeRaw turns raw into the generic form a UseNumber decoder would
// produce without parsing number literals.
func decodeRaw(raw json.RawMessage) (any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, errors.New("empty value")
	}

	switch c := raw[0]; {
	case c == '{':
		var members map[string]json.RawMessage
		if err := json.Unmarshal(raw, &members); err != nil {
			return nil, err
		}
		obj := make(map[string]any, len(members))
		for k, m := range members {
			v, err := decodeRaw(m)
			if err != nil {
				return nil, err
			}
			obj[k] = v
		}
		return obj, nil
	case c == '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(raw, &elems); err != nil {
			return nil, err
		}
		arr := make([]any, len(elems))
		for i, e := range elems {
			v, err := decodeRaw(e)
			if err != nil {
				return nil, err
			}
			arr[i] = v
		}
		return arr, nil
	case c == '-' || (c >= '0' && c <= '9'):
		// A literal outside float64 range is still a number; only a
		// malformed one is a decoding error.
		if _, err := strconv.ParseFloat(string(raw), 64); err != nil && !errors.Is(err, strconv.ErrRange) {
			return nil, err
		}
		return json.Number(raw), nil
	default:
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil
	}
}

func invalidBody(cause error) *Error {
	return &Error{
		tag:     "json",
		reason:  ReasonInvalidBody,
		message: msgInvalidBody,
		cause:   cause,
	}
}
