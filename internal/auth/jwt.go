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
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/sensorgate/internal/config"
)

// MinJWTSecretLength is the shortest accepted HS256 secret.
const MinJWTSecretLength = 32

// Claims are the token claims. Sensors are identified by the subject.
type Claims struct {
	jwt.RegisteredClaims
}

// JWTManager issues and validates HS256 tokens.
type JWTManager struct {
	secret []byte
}

// NewJWTManager creates a manager for secret.
//
//	m, err := auth.NewJWTManager(cfg.Security.JWTSecret)
//	token, err := m.GenerateToken("sensor-42", 365*24*time.Hour)
func NewJWTManager(secret string) (*JWTManager, error) {
	if secret == "" {
		return nil, errors.New("JWT_SECRET is required but was empty")
	}
	if len(secret) < MinJWTSecretLength {
		return nil, fmt.Errorf("JWT_SECRET must be at least %d characters", MinJWTSecretLength)
	}
	return &JWTManager{secret: []byte(secret)}, nil
}

// GenerateToken signs a token for subject that expires after ttl.
// A zero ttl issues a token without expiry; a negative ttl issues one that
// has already expired.
func (m *JWTManager) GenerateToken(subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	if ttl != 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken checks the signature, the algorithm and the time claims.
func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// JWTAuthenticator accepts "Authorization: Bearer <token>".
type JWTAuthenticator struct {
	manager *JWTManager
}

// NewJWTAuthenticator wraps manager.
func NewJWTAuthenticator(manager *JWTManager) *JWTAuthenticator {
	return &JWTAuthenticator{manager: manager}
}

// Authenticate validates the bearer token.
func (a *JWTAuthenticator) Authenticate(_ context.Context, r *http.Request) (*Subject, error) {
	tokenStr := bearerToken(r)
	if tokenStr == "" {
		return nil, missing("Bearer token is required")
	}

	claims, err := a.manager.ValidateToken(tokenStr)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, &Error{Message: "Invalid bearer token", kind: ErrExpiredCredentials, cause: err}
		}
		return nil, invalid("Invalid bearer token", err)
	}

	id := claims.Subject
	if id == "" {
		id = config.AuthModeJWT
	}
	return &Subject{ID: id, Method: config.AuthModeJWT}, nil
}

// Name returns "jwt".
func (a *JWTAuthenticator) Name() string {
	return config.AuthModeJWT
}

func bearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
