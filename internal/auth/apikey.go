// Sensorgate - Environmental Sensor Telemetry Ingestion Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorgate

package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/tomtom215/sensorgate/internal/config"
)

// APIKeyHeader carries the shared key.
const APIKeyHeader = "X-API-Key"

// APIKeyAuthenticator compares X-API-Key against the configured key.
type APIKeyAuthenticator struct {
	keyHash [sha256.Size]byte
}

// NewAPIKeyAuthenticator returns an error for an empty key.
func NewAPIKeyAuthenticator(key string) (*APIKeyAuthenticator, error) {
	if key == "" {
		return nil, errors.New("API key is required for authentication")
	}
	return &APIKeyAuthenticator{keyHash: sha256.Sum256([]byte(key))}, nil
}

// Authenticate compares digests so the comparison time does not depend on
// the length or content of the presented key.
func (a *APIKeyAuthenticator) Authenticate(_ context.Context, r *http.Request) (*Subject, error) {
	presented := r.Header.Get(APIKeyHeader)
	if presented == "" {
		return nil, missing("API key is required")
	}

	got := sha256.Sum256([]byte(presented))
	if subtle.ConstantTimeCompare(got[:], a.keyHash[:]) != 1 {
		return nil, invalid("Invalid API key", nil)
	}
	return &Subject{ID: config.AuthModeAPIKey, Method: config.AuthModeAPIKey}, nil
}

// Name returns "api_key".
func (a *APIKeyAuthenticator) Name() string {
	return config.AuthModeAPIKey
}
