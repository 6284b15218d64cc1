// Sensorgate - Environmental Sensor Telemetry Ingestion Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorgate

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/sensorgate/internal/auth"
	"github.com/tomtom215/sensorgate/internal/config"
	"github.com/tomtom215/sensorgate/internal/middleware"
)

const msgRateLimited = "Too many requests from this IP, please try again later"

// NewRouter builds the HTTP surface.
//
// Middleware order for every route:
//  1. RealIP (only with security.trust_proxy)
//  2. RequestID
//  3. Recoverer
//  4. CORS (only when origins are configured)
//  5. PrometheusMetrics
//  6. AccessLog
//
// POST /dht and POST /pms additionally run authentication, then the
// per-IP rate limiter. /health and /metrics are open.
func NewRouter(cfg *config.Config, h *Handler, authMW *auth.Middleware) http.Handler {
	r := chi.NewRouter()

	if cfg.Security.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.RequestID)
	r.Use(chimw.Recoverer)
	if len(cfg.Security.CORSOrigins) > 0 {
		r.Use(corsHandler(cfg.Security.CORSOrigins))
	}
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.AccessLog(middleware.DefaultSlowThreshold))

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, req, http.StatusNotFound, "Not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, req, http.StatusMethodNotAllowed, "Method not allowed", nil)
	})

	r.Group(func(r chi.Router) {
		r.Use(authMW.Authenticate)
		r.Use(rateLimit(&cfg.Security))
		r.Post("/dht", h.DHT)
		r.Post("/pms", h.PMS)
	})

	r.Get("/health", h.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

// NewAuthMiddleware wraps authn so its 401 responses share respondError.
func NewAuthMiddleware(authn auth.Authenticator) *auth.Middleware {
	return auth.NewMiddleware(authn, respondError)
}

// corsHandler allows dashboards on the given origins to call the API.
func corsHandler(origins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{
			"Content-Type",
			"Authorization",
			auth.APIKeyHeader,
			middleware.RequestIDHeader,
		},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         86400,
	})
}

// rateLimit returns a per-IP limiter, or a no-op when disabled.
func rateLimit(cfg *config.SecurityConfig) func(http.Handler) http.Handler {
	if cfg.RateLimitDisabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return httprate.Limit(
		cfg.RateLimitReqs,
		cfg.RateLimitWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			respondError(w, r, http.StatusTooManyRequests, msgRateLimited, nil)
		}),
	)
}
