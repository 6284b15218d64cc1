// Sensorgate - Environmental Sensor Telemetry Ingestion Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorgate

package auth

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/sensorgate/internal/config"
)

const testJWTSecret = "this_is_a_very_long_secret_key_for_testing_purposes_12345"

// echoHandler returns the body it received and records the subject.
func echoHandler(gotSubject **Subject) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*gotSubject = SubjectFromContext(r.Context())
		body, _ := io.ReadAll(r.Body)
		_, _ = w.Write(body)
	})
}

func TestMiddleware_Authenticate(t *testing.T) {
	apiKey, err := NewAPIKeyAuthenticator("secret-key")
	if err != nil {
		t.Fatal(err)
	}
	manager, err := NewJWTManager(testJWTSecret)
	if err != nil {
		t.Fatal(err)
	}
	hmacAuth, err := NewHMACAuthenticator("hmac-secret")
	if err != nil {
		t.Fatal(err)
	}

	validToken, err := manager.GenerateToken("sensor-42", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	expiredToken, err := manager.GenerateToken("sensor-42", -time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	other, _ := NewJWTManager("another_secret_that_is_long_enough_1234")
	foreignToken, _ := other.GenerateToken("sensor-42", time.Hour)

	body := []byte(`{"tags":["sensor:abc"],"temperature":25}`)

	tests := []struct {
		name        string
		authn       Authenticator
		header      map[string]string
		wantStatus  int
		wantError   string
		wantSubject string
	}{
		// api_key
		{"api key ok", apiKey, map[string]string{APIKeyHeader: "secret-key"}, http.StatusOK, "", config.AuthModeAPIKey},
		{"api key missing", apiKey, nil, http.StatusUnauthorized, "API key is required", ""},
		{"api key wrong", apiKey, map[string]string{APIKeyHeader: "secret-kez"}, http.StatusUnauthorized, "Invalid API key", ""},
		{"api key prefix", apiKey, map[string]string{APIKeyHeader: "secret"}, http.StatusUnauthorized, "Invalid API key", ""},

		// jwt
		{"jwt ok", NewJWTAuthenticator(manager), map[string]string{"Authorization": "Bearer " + validToken}, http.StatusOK, "", "sensor-42"},
		{"jwt lower-case scheme", NewJWTAuthenticator(manager), map[string]string{"Authorization": "bearer " + validToken}, http.StatusOK, "", "sensor-42"},
		{"jwt missing", NewJWTAuthenticator(manager), nil, http.StatusUnauthorized, "Bearer token is required", ""},
		{"jwt basic scheme", NewJWTAuthenticator(manager), map[string]string{"Authorization": "Basic dTpw"}, http.StatusUnauthorized, "Bearer token is required", ""},
		{"jwt expired", NewJWTAuthenticator(manager), map[string]string{"Authorization": "Bearer " + expiredToken}, http.StatusUnauthorized, "Invalid bearer token", ""},
		{"jwt wrong secret", NewJWTAuthenticator(manager), map[string]string{"Authorization": "Bearer " + foreignToken}, http.StatusUnauthorized, "Invalid bearer token", ""},
		{"jwt garbage", NewJWTAuthenticator(manager), map[string]string{"Authorization": "Bearer not.a.jwt"}, http.StatusUnauthorized, "Invalid bearer token", ""},

		// hmac
		{"hmac ok", hmacAuth, map[string]string{"Authorization": SignatureHeader([]byte("hmac-secret"), body)}, http.StatusOK, "", config.AuthModeHMAC},
		{"hmac missing", hmacAuth, nil, http.StatusUnauthorized, "HMAC signature is required", ""},
		{"hmac not hex", hmacAuth, map[string]string{"Authorization": "HMAC zz"}, http.StatusUnauthorized, "HMAC signature is required", ""},
		{"hmac wrong secret", hmacAuth, map[string]string{"Authorization": SignatureHeader([]byte("other"), body)}, http.StatusUnauthorized, "Invalid HMAC signature", ""},

		// none
		{"none", NoneAuthenticator{}, nil, http.StatusOK, "", "anonymous"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var subject *Subject
			handler := NewMiddleware(tt.authn, nil).Authenticate(echoHandler(&subject))

			req := httptest.NewRequest(http.MethodPost, "/dht", bytes.NewReader(body))
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}

			if tt.wantStatus != http.StatusOK {
				var resp map[string]string
				if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
					t.Fatalf("body is not JSON: %v", err)
				}
				if resp["error"] != tt.wantError {
					t.Errorf("error = %q, want %q", resp["error"], tt.wantError)
				}
				if subject != nil {
					t.Error("handler must not run on rejection")
				}
				return
			}

			if subject == nil || subject.ID != tt.wantSubject {
				t.Errorf("subject = %+v, want ID %q", subject, tt.wantSubject)
			}
			if !bytes.Equal(rec.Body.Bytes(), body) {
				t.Errorf("handler saw body %q, want original", rec.Body.String())
			}
		})
	}
}

func TestMiddleware_CustomResponder(t *testing.T) {
	var gotStatus int
	var gotMessage string
	respond := func(w http.ResponseWriter, _ *http.Request, status int, message string, _ error) {
		gotStatus, gotMessage = status, message
		w.WriteHeader(status)
	}

	apiKey, _ := NewAPIKeyAuthenticator("k")
	handler := NewMiddleware(apiKey, respond).Authenticate(http.NotFoundHandler())
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/pms", nil))

	if gotStatus != http.StatusUnauthorized || gotMessage != "API key is required" {
		t.Errorf("responder got (%d, %q)", gotStatus, gotMessage)
	}
}

func TestNewAuthenticator(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.SecurityConfig
		wantName string
		wantErr  bool
	}{
		{"api key", config.SecurityConfig{AuthMode: config.AuthModeAPIKey, APIKey: "k"}, "api_key", false},
		{"api key empty", config.SecurityConfig{AuthMode: config.AuthModeAPIKey}, "", true},
		{"jwt", config.SecurityConfig{AuthMode: config.AuthModeJWT, JWTSecret: testJWTSecret}, "jwt", false},
		{"jwt short secret", config.SecurityConfig{AuthMode: config.AuthModeJWT, JWTSecret: "short"}, "", true},
		{"hmac", config.SecurityConfig{AuthMode: config.AuthModeHMAC, HMACSecret: "s"}, "hmac", false},
		{"hmac empty", config.SecurityConfig{AuthMode: config.AuthModeHMAC}, "", true},
		{"none", config.SecurityConfig{AuthMode: config.AuthModeNone}, "none", false},
		{"unknown", config.SecurityConfig{AuthMode: "oidc"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewAuthenticator(&tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewAuthenticator() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && a.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", a.Name(), tt.wantName)
			}
		})
	}
}
