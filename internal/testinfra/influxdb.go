// Sensorgate - Environmental Sensor Telemetry Ingestion Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorgate

//go:build integration

package testinfra

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/tomtom215/sensorgate/internal/config"
)

const (
	// DefaultInfluxImage is the last InfluxDB line with the 1.x HTTP API.
	DefaultInfluxImage = "influxdb:1.8"

	// DefaultInfluxPort is the InfluxDB HTTP API port.
	DefaultInfluxPort = "8086"
)

// InfluxDBContainer is a running InfluxDB 1.x server.
type InfluxDBContainer struct {
	testcontainers.Container
	Host     string
	Port     int
	Database string
	Username string
	Password string
}

// InfluxOption configures the InfluxDB container.
type InfluxOption func(*influxConfig)

type influxConfig struct {
	image        string
	database     string
	username     string
	password     string
	startTimeout time.Duration
}

// WithInfluxImage overrides the image.
func WithInfluxImage(image string) InfluxOption {
	return func(c *influxConfig) {
		c.image = image
	}
}

// WithInfluxDatabase makes the container create db at start.
// Leave it unset to exercise the gateway's own database creation.
func WithInfluxDatabase(db string) InfluxOption {
	return func(c *influxConfig) {
		c.database = db
	}
}

// WithInfluxCredentials enables HTTP auth with an admin user.
func WithInfluxCredentials(username, password string) InfluxOption {
	return func(c *influxConfig) {
		c.username = username
		c.password = password
	}
}

// WithStartTimeout bounds how long to wait for /ping.
func WithStartTimeout(timeout time.Duration) InfluxOption {
	return func(c *influxConfig) {
		c.startTimeout = timeout
	}
}

// NewInfluxDBContainer starts InfluxDB and waits until /ping answers 204.
//
//	influx, err := testinfra.NewInfluxDBContainer(ctx)
//	if err != nil {
//	    t.Fatal(err)
//	}
//	defer testinfra.CleanupContainer(t, ctx, influx.Container)
//	cfg := influx.InfluxConfig("sensors")
func NewInfluxDBContainer(ctx context.Context, opts ...InfluxOption) (*InfluxDBContainer, error) {
	cfg := &influxConfig{
		image:        DefaultInfluxImage,
		startTimeout: 60 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	env := map[string]string{
		"INFLUXDB_REPORTING_DISABLED": "true",
	}
	if cfg.database != "" {
		env["INFLUXDB_DB"] = cfg.database
	}
	if cfg.username != "" {
		env["INFLUXDB_HTTP_AUTH_ENABLED"] = "true"
		env["INFLUXDB_ADMIN_USER"] = cfg.username
		env["INFLUXDB_ADMIN_PASSWORD"] = cfg.password
	}

	req := testcontainers.ContainerRequest{
		Image:        cfg.image,
		ExposedPorts: []string{DefaultInfluxPort + "/tcp"},
		Env:          env,
		WaitingFor: wait.ForAll(
			wait.ForListeningPort(DefaultInfluxPort+"/tcp"),
			wait.ForHTTP("/ping").
				WithPort(DefaultInfluxPort+"/tcp").
				WithStatusCodeMatcher(func(status int) bool { return status == http.StatusNoContent }),
		).WithStartupTimeout(cfg.startTimeout),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("create influxdb container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, DefaultInfluxPort)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get mapped port: %w", err)
	}

	return &InfluxDBContainer{
		Container: container,
		Host:      host,
		Port:      port.Int(),
		Database:  cfg.database,
		Username:  cfg.username,
		Password:  cfg.password,
	}, nil
}

// URL returns the HTTP API base address.
func (c *InfluxDBContainer) URL() string {
	return fmt.Sprintf("http://%s:%d", c.Host, c.Port)
}

// InfluxConfig returns gateway settings pointing at this container.
func (c *InfluxDBContainer) InfluxConfig(database string) config.InfluxConfig {
	return config.InfluxConfig{
		Host:           c.Host,
		Port:           c.Port,
		Database:       database,
		Username:       c.Username,
		Password:       c.Password,
		Scheme:         "http",
		Precision:      "ns",
		Timeout:        10 * time.Second,
		CreateDatabase: true,
	}
}
