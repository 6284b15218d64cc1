// Sensorgate - Environmental Sensor Telemetry Ingestion Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorgate

package auth

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tomtom215/sensorgate/internal/config"
)

// MaxSignedBodyBytes bounds how much body the HMAC scheme buffers.
const MaxSignedBodyBytes = 1 << 20

// HMACAuthenticator accepts "Authorization: HMAC <hex>", where hex is the
// HMAC-SHA256 of the raw request body under the shared secret.
type HMACAuthenticator struct {
	secret []byte
}

// NewHMACAuthenticator returns an error for an empty secret.
func NewHMACAuthenticator(secret string) (*HMACAuthenticator, error) {
	if secret == "" {
		return nil, errors.New("HMAC_SECRET is required but was empty")
	}
	return &HMACAuthenticator{secret: []byte(secret)}, nil
}

// Authenticate reads the body, checks the signature and puts the body back
// so the handler can decode it.
func (a *HMACAuthenticator) Authenticate(_ context.Context, r *http.Request) (*Subject, error) {
	sig, ok := signature(r)
	if !ok {
		return nil, missing("HMAC signature is required")
	}

	body, err := readBody(r)
	if err != nil {
		return nil, invalid("Invalid HMAC signature", err)
	}

	if !hmac.Equal(sig, Sign(a.secret, body)) {
		return nil, invalid("Invalid HMAC signature", nil)
	}
	return &Subject{ID: config.AuthModeHMAC, Method: config.AuthModeHMAC}, nil
}

// Name returns "hmac".
func (a *HMACAuthenticator) Name() string {
	return config.AuthModeHMAC
}

// Sign returns the raw HMAC-SHA256 of body.
func Sign(secret, body []byte) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return mac.Sum(nil)
}

// SignatureHeader renders the Authorization value for body.
func SignatureHeader(secret, body []byte) string {
	return "HMAC " + hex.EncodeToString(Sign(secret, body))
}

func signature(r *http.Request) ([]byte, bool) {
	scheme, value, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || scheme != "HMAC" {
		return nil, false
	}
	sig, err := hex.DecodeString(strings.TrimSpace(value))
	if err != nil || len(sig) != sha256.Size {
		return nil, false
	}
	return sig, true
}

func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxSignedBodyBytes+1))
	_ = r.Body.Close() //nolint:errcheck // replaced below
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(body) > MaxSignedBodyBytes {
		return nil, fmt.Errorf("body exceeds %d bytes", MaxSignedBodyBytes)
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	return body, nil
}
