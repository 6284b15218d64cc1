// Sensorgate - Environmental Sensor Telemetry Ingestion Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorgate

package sink

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/goccy/go-json"
	client "github.com/influxdata/influxdb1-client/v2"

	"github.com/tomtom215/sensorgate/internal/config"
	"github.com/tomtom215/sensorgate/internal/logging"
)

// InfluxSink writes points to an InfluxDB 1.x server over its HTTP API.
//
// The 1.x client has no context support. Every call checks ctx before it
// starts and is otherwise bounded by influx.timeout.
type InfluxSink struct {
	client    client.Client
	database  string
	precision string
	create    bool
}

// NewInfluxSink builds the HTTP client. No request is made until
// EnsureDatabase or the first write.
func NewInfluxSink(cfg config.InfluxConfig) (*InfluxSink, error) {
	c, err := client.NewHTTPClient(client.HTTPConfig{
		Addr:      cfg.URL(),
		Username:  cfg.Username,
		Password:  cfg.Password,
		Timeout:   cfg.Timeout,
		UserAgent: "sensorgate",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create influxdb client: %w", err)
	}
	return &InfluxSink{
		client:    c,
		database:  cfg.Database,
		precision: cfg.Precision,
		create:    cfg.CreateDatabase,
	}, nil
}

// EnsureDatabase lists the server's databases and creates the configured one
// when it is missing and creation is enabled.
func (s *InfluxSink) EnsureDatabase(ctx context.Context) error {
	names, err := s.databaseNames(ctx)
	if err != nil {
		return err
	}
	log := logging.WithComponent("sink")
	if slices.Contains(names, s.database) {
		log.Info().Str("database", s.database).Msg("InfluxDB database found")
		return nil
	}
	if !s.create {
		return fmt.Errorf("influxdb database %q does not exist", s.database)
	}

	if _, err := s.query(ctx, client.NewQuery("CREATE DATABASE "+quoteIdent(s.database), "", "")); err != nil {
		return fmt.Errorf("failed to create influxdb database %q: %w", s.database, err)
	}
	log.Info().Str("database", s.database).Msg("InfluxDB database created")
	return nil
}

// WritePoint sends one point in its own batch.
func (s *InfluxSink) WritePoint(ctx context.Context, p Point) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	bp, err := client.NewBatchPoints(client.BatchPointsConfig{
		Database:  s.database,
		Precision: s.precision,
	})
	if err != nil {
		return fmt.Errorf("failed to create batch: %w", err)
	}

	fields := make(map[string]interface{}, len(p.Fields))
	for k, v := range p.Fields {
		fields[k] = v
	}
	pt, err := client.NewPoint(p.Measurement, p.Tags, fields, p.Time)
	if err != nil {
		return fmt.Errorf("failed to build point: %w", err)
	}
	bp.AddPoint(pt)

	if err := s.client.Write(bp); err != nil {
		return fmt.Errorf("influxdb write: %w", err)
	}
	return nil
}

// LatestPoint returns the newest row of measurement for sensorID.
func (s *InfluxSink) LatestPoint(ctx context.Context, measurement, sensorID string) (*Point, error) {
	cmd := fmt.Sprintf("SELECT * FROM %s WHERE %s = $sensor_id ORDER BY time DESC LIMIT 1",
		quoteIdent(measurement), quoteIdent(TagSensorID))
	q := client.NewQueryWithParameters(cmd, s.database, "ns", map[string]interface{}{
		"sensor_id": sensorID,
	})

	results, err := s.query(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 || len(results[0].Series) == 0 || len(results[0].Series[0].Values) == 0 {
		return nil, ErrNoPoint
	}

	series := results[0].Series[0]
	return pointFromRow(measurement, series.Columns, series.Values[0])
}

// Ping lists databases, which needs a working connection and valid credentials.
func (s *InfluxSink) Ping(ctx context.Context) error {
	_, err := s.databaseNames(ctx)
	return err
}

// Close releases idle HTTP connections.
func (s *InfluxSink) Close() error {
	return s.client.Close()
}

func (s *InfluxSink) databaseNames(ctx context.Context) ([]string, error) {
	results, err := s.query(ctx, client.NewQuery("SHOW DATABASES", "", ""))
	if err != nil {
		return nil, err
	}

	var names []string
	for _, res := range results {
		for _, series := range res.Series {
			for _, row := range series.Values {
				if len(row) == 0 {
					continue
				}
				if name, ok := row[0].(string); ok {
					names = append(names, name)
				}
			}
		}
	}
	return names, nil
}

func (s *InfluxSink) query(ctx context.Context, q client.Query) ([]client.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resp, err := s.client.Query(q)
	if err != nil {
		return nil, fmt.Errorf("influxdb query: %w", err)
	}
	if err := resp.Error(); err != nil {
		return nil, fmt.Errorf("influxdb query: %w", err)
	}
	return resp.Results, nil
}

// pointFromRow maps a SELECT * row back to a point. The time column is an
// epoch in nanoseconds, sensor_id is the tag, numeric columns are fields.
func pointFromRow(measurement string, columns []string, row []interface{}) (*Point, error) {
	p := &Point{
		Measurement: measurement,
		Tags:        map[string]string{},
		Fields:      map[string]float64{},
	}

	for i, col := range columns {
		if i >= len(row) || row[i] == nil {
			continue
		}
		switch col {
		case "time":
			n, ok := row[i].(json.Number)
			if !ok {
				return nil, fmt.Errorf("unexpected time value %v", row[i])
			}
			ns, err := n.Int64()
			if err != nil {
				return nil, fmt.Errorf("unexpected time value %v: %w", row[i], err)
			}
			p.Time = time.Unix(0, ns).UTC()
		case TagSensorID:
			if v, ok := row[i].(string); ok {
				p.Tags[TagSensorID] = v
			}
		default:
			if n, ok := row[i].(json.Number); ok {
				if f, err := n.Float64(); err == nil {
					p.Fields[col] = f
				}
			}
		}
	}

	if p.Time.IsZero() {
		return nil, errors.New("row has no time column")
	}
	return p, nil
}

// quoteIdent renders an InfluxQL double-quoted identifier.
func quoteIdent(name string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(name) + `"`
}
