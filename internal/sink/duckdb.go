// Sensorgate - Environmental Sensor Telemetry Ingestion Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorgate

package sink

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/sensorgate/internal/config"
	"github.com/tomtom215/sensorgate/internal/logging"
)

const createPointsTable = `
CREATE TABLE IF NOT EXISTS points (
	measurement VARCHAR NOT NULL,
	sensor_id   VARCHAR NOT NULL,
	field       VARCHAR NOT NULL,
	value       DOUBLE NOT NULL,
	ts          TIMESTAMP NOT NULL
)`

const createPointsIndex = `
CREATE INDEX IF NOT EXISTS idx_points_series ON points (measurement, sensor_id, ts)`

// DuckDBSink stores points in an embedded DuckDB file. Each point is one row
// per field, inserted in a single transaction.
type DuckDBSink struct {
	conn *sql.DB
}

// NewDuckDBSink opens (or creates) the database file and its schema.
func NewDuckDBSink(cfg config.DuckDBConfig) (*DuckDBSink, error) {
	dbDir := filepath.Dir(cfg.Path)
	if dbDir != "" && dbDir != "." {
		if err := os.MkdirAll(dbDir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
		}
	}

	conn, err := sql.Open("duckdb", connString(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &DuckDBSink{conn: conn}
	if err := s.initialize(); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	log := logging.WithComponent("sink")
	log.Info().Str("path", cfg.Path).Msg("DuckDB sink ready")
	return s, nil
}

func connString(cfg config.DuckDBConfig) string {
	connStr := cfg.Path + "?autoinstall_known_extensions=false&autoload_known_extensions=false"
	if cfg.Threads > 0 {
		connStr += fmt.Sprintf("&threads=%d", cfg.Threads)
	}
	if cfg.MaxMemory != "" {
		connStr += "&max_memory=" + cfg.MaxMemory
	}
	return connStr
}

func (s *DuckDBSink) initialize() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, stmt := range []string{createPointsTable, createPointsIndex} {
		if _, err := s.conn.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// WritePoint inserts one row per field. Either all rows land or none do.
func (s *DuckDBSink) WritePoint(ctx context.Context, p Point) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // no-op after commit
	}()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO points (measurement, sensor_id, field, value, ts) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	names := make([]string, 0, len(p.Fields))
	for name := range p.Fields {
		names = append(names, name)
	}
	slices.Sort(names)

	ts := p.Time.UTC()
	for _, name := range names {
		if _, err := stmt.ExecContext(ctx, p.Measurement, p.SensorID(), name, p.Fields[name], ts); err != nil {
			return fmt.Errorf("failed to insert %s.%s: %w", p.Measurement, name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit point: %w", err)
	}
	return nil
}

// LatestPoint returns every field stored at the newest timestamp.
func (s *DuckDBSink) LatestPoint(ctx context.Context, measurement, sensorID string) (*Point, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT field, value, ts FROM points
		WHERE measurement = ? AND sensor_id = ?
		  AND ts = (SELECT max(ts) FROM points WHERE measurement = ? AND sensor_id = ?)`,
		measurement, sensorID, measurement, sensorID)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest point: %w", err)
	}
	defer rows.Close()

	p := &Point{
		Measurement: measurement,
		Tags:        map[string]string{TagSensorID: sensorID},
		Fields:      map[string]float64{},
	}
	for rows.Next() {
		var (
			field string
			value float64
			ts    time.Time
		)
		if err := rows.Scan(&field, &value, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan point row: %w", err)
		}
		p.Fields[field] = value
		p.Time = ts.UTC()
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read point rows: %w", err)
	}

	if len(p.Fields) == 0 {
		return nil, ErrNoPoint
	}
	return p, nil
}

// Ping checks the connection and runs a trivial query.
func (s *DuckDBSink) Ping(ctx context.Context) error {
	if err := s.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("duckdb ping: %w", err)
	}
	var one int
	if err := s.conn.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("duckdb ping: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *DuckDBSink) Close() error {
	return s.conn.Close()
}

func closeQuietly(conn *sql.DB) {
	if err := conn.Close(); err != nil {
		logging.Warn().Err(err).Msg("Failed to close database")
	}
}
