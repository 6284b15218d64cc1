// Sensorgate - Environmental Sensor Telemetry Ingestion Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorgate

/*
Package auth authenticates sensor requests to the measurement endpoints.

One Authenticator is chosen by security.auth_mode and enforced by
Middleware.Authenticate. Every rejection is a 401 with an {"error"} body.

Schemes:

  - api_key: X-API-Key header, compared through SHA-256 digests with
    crypto/subtle.
  - jwt: Authorization: Bearer <token>, HS256 only (golang-jwt/jwt/v5). The
    token subject becomes Subject.ID.
  - hmac: Authorization: HMAC <hex>, HMAC-SHA256 of the raw body. The body is
    buffered (at most MaxSignedBodyBytes) and restored for the handler.
  - none: no check. A warning is logged at startup.

Usage:

	authn, err := auth.NewAuthenticator(&cfg.Security)
	if err != nil {
	    return err
	}
	mw := auth.NewMiddleware(authn, respondError)
	r.With(mw.Authenticate).Post("/dht", h.DHT)

Rejection messages:

	api_key  missing  "API key is required"
	         wrong    "Invalid API key"
	jwt      missing  "Bearer token is required"
	         bad      "Invalid bearer token"
	hmac     missing  "HMAC signature is required"
	         wrong    "Invalid HMAC signature"
*/
package auth
