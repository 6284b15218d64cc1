// Sensorgate - Environmental Sensor Telemetry Ingestion Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorgate

package auth

import (
	"context"
	"errors"
	"net/http"
)

// Standard authentication errors. Every *Error unwraps to one of them.
var (
	// ErrNoCredentials indicates no credentials were provided.
	ErrNoCredentials = errors.New("no credentials provided")

	// ErrInvalidCredentials indicates credentials were invalid.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrExpiredCredentials indicates credentials have expired.
	ErrExpiredCredentials = errors.New("credentials expired")
)

// Error is a rejection with the message shown to the client.
type Error struct {
	// Message is written to the 401 body.
	Message string
	kind    error
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

// Unwrap returns the standard error this rejection belongs to, plus the
// underlying cause when there is one.
func (e *Error) Unwrap() []error {
	if e.cause != nil {
		return []error{e.kind, e.cause}
	}
	return []error{e.kind}
}

func missing(message string) *Error {
	return &Error{Message: message, kind: ErrNoCredentials}
}

func invalid(message string, cause error) *Error {
	return &Error{Message: message, kind: ErrInvalidCredentials, cause: cause}
}

// Authenticator checks one request.
type Authenticator interface {
	// Authenticate returns the caller or an *Error.
	Authenticate(ctx context.Context, r *http.Request) (*Subject, error)

	// Name returns the scheme name for logging.
	Name() string
}

// Subject is the authenticated caller.
type Subject struct {
	// ID is the token subject for jwt, and the scheme name for shared
	// secret schemes.
	ID string

	// Method is the scheme that accepted the request.
	Method string
}

type contextKey string

const subjectContextKey contextKey = "auth_subject"

// ContextWithSubject stores s in ctx.
func ContextWithSubject(ctx context.Context, s *Subject) context.Context {
	return context.WithValue(ctx, subjectContextKey, s)
}

// SubjectFromContext returns the authenticated caller, or nil.
func SubjectFromContext(ctx context.Context) *Subject {
	if s, ok := ctx.Value(subjectContextKey).(*Subject); ok {
		return s
	}
	return nil
}
