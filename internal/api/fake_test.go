// Sensorgate - Environmental Sensor Telemetry Ingestion Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorgate

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/sensorgate/internal/auth"
	"github.com/tomtom215/sensorgate/internal/config"
	"github.com/tomtom215/sensorgate/internal/sink"
)

var errSinkDown = errors.New("connection refused")

// fakeSink stores points in memory. failOn makes the n-th write (1-based)
// and every later one fail.
type fakeSink struct {
	mu      sync.Mutex
	points  []sink.Point
	writes  int
	failOn  int
	pingErr error
}

func (f *fakeSink) WritePoint(_ context.Context, p sink.Point) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	if f.failOn > 0 && f.writes >= f.failOn {
		return errSinkDown
	}
	f.points = append(f.points, p)
	return nil
}

func (f *fakeSink) LatestPoint(context.Context, string, string) (*sink.Point, error) {
	return nil, sink.ErrNoPoint
}

func (f *fakeSink) Ping(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pingErr
}

func (f *fakeSink) Close() error { return nil }

func (f *fakeSink) measurements() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.points))
	for _, p := range f.points {
		names = append(names, p.Measurement)
	}
	return names
}

func (f *fakeSink) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

// testConfig returns an open configuration with rate limiting off.
func testConfig() *config.Config {
	return &config.Config{
		Security: config.SecurityConfig{
			AuthMode:          config.AuthModeNone,
			RateLimitDisabled: true,
		},
	}
}

// newTestRouter wires a router over fs. A nil authn means no authentication.
func newTestRouter(t *testing.T, cfg *config.Config, fs *fakeSink, authn auth.Authenticator) (http.Handler, *Handler) {
	t.Helper()
	if authn == nil {
		authn = auth.NoneAuthenticator{}
	}
	h := NewHandler(sink.NewWriter(fs), fs)
	return NewRouter(cfg, h, NewAuthMiddleware(authn)), h
}

func doRequest(router http.Handler, method, path, body string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.RemoteAddr = "192.0.2.10:40000"
	req.Header.Set("Content-Type", "application/json")
	for k, vv := range header {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	msg, _ := decodeJSON(t, rec)["error"].(string)
	return msg
}

func fixedNow(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}
