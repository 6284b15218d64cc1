// Sensorgate - Environmental Sensor Telemetry Ingestion Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorgate

package api

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/sensorgate/internal/auth"
	"github.com/tomtom215/sensorgate/internal/middleware"
)

const validDHT = `{"tags":["sensor:123"],"temperature":21.5}`

func TestRouter_Authentication(t *testing.T) {
	authn, err := auth.NewAPIKeyAuthenticator("test-api-key")
	if err != nil {
		t.Fatalf("NewAPIKeyAuthenticator: %v", err)
	}

	tests := []struct {
		name       string
		method     string
		path       string
		key        string
		wantStatus int
		wantError  string
	}{
		{"dht without key", http.MethodPost, "/dht", "", http.StatusUnauthorized, "API key is required"},
		{"pms with wrong key", http.MethodPost, "/pms", "nope", http.StatusUnauthorized, "Invalid API key"},
		{"dht with key", http.MethodPost, "/dht", "test-api-key", http.StatusOK, ""},
		{"health is open", http.MethodGet, "/health", "", http.StatusOK, ""},
		{"metrics is open", http.MethodGet, "/metrics", "", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := &fakeSink{}
			router, _ := newTestRouter(t, testConfig(), fs, authn)

			header := http.Header{}
			if tt.key != "" {
				header.Set(auth.APIKeyHeader, tt.key)
			}
			rec := doRequest(router, tt.method, tt.path, validDHT, header)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantError != "" {
				if got := errorMessage(t, rec); got != tt.wantError {
					t.Errorf("error = %q, want %q", got, tt.wantError)
				}
				if n := fs.writeCount(); n != 0 {
					t.Errorf("sink writes = %d after rejection", n)
				}
			}
		})
	}
}

func TestRouter_RateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Security.RateLimitDisabled = false
	cfg.Security.RateLimitReqs = 2
	cfg.Security.RateLimitWindow = time.Minute

	router, _ := newTestRouter(t, cfg, &fakeSink{}, nil)

	for i := 0; i < 2; i++ {
		if rec := doRequest(router, http.MethodPost, "/dht", validDHT, nil); rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d", i+1, rec.Code)
		}
	}

	rec := doRequest(router, http.MethodPost, "/dht", validDHT, nil)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if got := errorMessage(t, rec); got != msgRateLimited {
		t.Errorf("error = %q", got)
	}

	// Health is outside the limited group.
	if rec := doRequest(router, http.MethodGet, "/health", "", nil); rec.Code != http.StatusOK {
		t.Errorf("health status = %d", rec.Code)
	}
}

func TestRouter_RateLimitDisabled(t *testing.T) {
	router, _ := newTestRouter(t, testConfig(), &fakeSink{}, nil)

	for i := 0; i < 100; i++ {
		if rec := doRequest(router, http.MethodPost, "/dht", validDHT, nil); rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d", i+1, rec.Code)
		}
	}
}

func TestRouter_UnknownRoutes(t *testing.T) {
	router, _ := newTestRouter(t, testConfig(), &fakeSink{}, nil)

	tests := []struct {
		method     string
		path       string
		wantStatus int
		wantError  string
	}{
		{http.MethodGet, "/nope", http.StatusNotFound, "Not found"},
		{http.MethodGet, "/dht", http.StatusMethodNotAllowed, "Method not allowed"},
		{http.MethodPost, "/health", http.StatusMethodNotAllowed, "Method not allowed"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := doRequest(router, tt.method, tt.path, "", nil)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := errorMessage(t, rec); got != tt.wantError {
				t.Errorf("error = %q, want %q", got, tt.wantError)
			}
		})
	}
}

func TestRouter_RequestID(t *testing.T) {
	router, _ := newTestRouter(t, testConfig(), &fakeSink{}, nil)

	rec := doRequest(router, http.MethodGet, "/health", "", http.Header{middleware.RequestIDHeader: {"abc-123"}})
	if got := rec.Header().Get(middleware.RequestIDHeader); got != "abc-123" {
		t.Errorf("request id = %q, want abc-123", got)
	}

	rec = doRequest(router, http.MethodGet, "/health", "", nil)
	if rec.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("expected a generated request id")
	}
}

func TestRouter_CORS(t *testing.T) {
	cfg := testConfig()
	cfg.Security.CORSOrigins = []string{"https://dashboard.example"}
	router, _ := newTestRouter(t, cfg, &fakeSink{}, nil)

	header := http.Header{
		"Origin":                        {"https://dashboard.example"},
		"Access-Control-Request-Method": {http.MethodPost},
	}
	rec := doRequest(router, http.MethodOptions, "/dht", "", header)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://dashboard.example" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}

	header.Set("Origin", "https://evil.example")
	rec = doRequest(router, http.MethodOptions, "/dht", "", header)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unexpected Access-Control-Allow-Origin %q for foreign origin", got)
	}
}

func TestRouter_Metrics(t *testing.T) {
	router, _ := newTestRouter(t, testConfig(), &fakeSink{}, nil)

	doRequest(router, http.MethodPost, "/dht", validDHT, nil)
	rec := doRequest(router, http.MethodGet, "/metrics", "", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"sensorgate_sink_up",
		`sensorgate_api_requests_total{endpoint="/dht",method="POST",status="200"}`,
		`sensorgate_points_written_total{measurement="temperature",outcome="success"}`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %s", want)
		}
	}
}
