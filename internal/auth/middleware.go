// Sensorgate - Environmental Sensor Telemetry Ingestion Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorgate

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/sensorgate/internal/config"
	"github.com/tomtom215/sensorgate/internal/logging"
)

// ErrorResponder writes a rejection. The API passes its own error helper so
// every error body has the same shape.
type ErrorResponder func(w http.ResponseWriter, r *http.Request, status int, message string, err error)

// NoneAuthenticator lets every request through.
type NoneAuthenticator struct{}

// Authenticate always succeeds.
func (NoneAuthenticator) Authenticate(context.Context, *http.Request) (*Subject, error) {
	return &Subject{ID: "anonymous", Method: config.AuthModeNone}, nil
}

// Name returns "none".
func (NoneAuthenticator) Name() string {
	return config.AuthModeNone
}

// Middleware enforces one Authenticator on the routes it wraps.
type Middleware struct {
	authenticator Authenticator
	respond       ErrorResponder
}

// NewMiddleware wraps authenticator. A nil respond writes {"error": message}.
func NewMiddleware(authenticator Authenticator, respond ErrorResponder) *Middleware {
	if respond == nil {
		respond = writeError
	}
	return &Middleware{authenticator: authenticator, respond: respond}
}

// NewAuthenticator builds the scheme selected by security.auth_mode.
func NewAuthenticator(cfg *config.SecurityConfig) (Authenticator, error) {
	switch cfg.AuthMode {
	case config.AuthModeAPIKey:
		return NewAPIKeyAuthenticator(cfg.APIKey)
	case config.AuthModeJWT:
		manager, err := NewJWTManager(cfg.JWTSecret)
		if err != nil {
			return nil, err
		}
		return NewJWTAuthenticator(manager), nil
	case config.AuthModeHMAC:
		return NewHMACAuthenticator(cfg.HMACSecret)
	case config.AuthModeNone:
		logging.Warn().Msg("Authentication is disabled (auth_mode=none); measurement endpoints are open")
		return NoneAuthenticator{}, nil
	default:
		return nil, fmt.Errorf("invalid auth mode: %q", cfg.AuthMode)
	}
}

// Authenticate rejects unauthenticated requests with 401 and stores the
// Subject in the request context otherwise.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, err := m.authenticator.Authenticate(r.Context(), r)
		if err != nil {
			logging.Ctx(r.Context()).Warn().
				Err(err).
				Str("auth_mode", m.authenticator.Name()).
				Str("remote_addr", r.RemoteAddr).
				Msg("Authentication failed")

			m.respond(w, r, http.StatusUnauthorized, rejectionMessage(err), err)
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithSubject(r.Context(), subject)))
	})
}

func rejectionMessage(err error) string {
	var authErr *Error
	if errors.As(err, &authErr) {
		return authErr.Message
	}
	return "Unauthorized"
}

func writeError(w http.ResponseWriter, _ *http.Request, status int, message string, _ error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message}) //nolint:errcheck // client gone
}
