// Package db mirrors loaded readings into DuckDB for aggregate queries.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/joeblew999/plat-airmap/internal/service"
)

// Config holds database configuration. An empty DBName opens an in-memory
// database.
type Config struct {
	DataDir string
	DBName  string
}

const schema = `
CREATE TABLE IF NOT EXISTS readings (
	source     VARCHAR NOT NULL,
	id         VARCHAR NOT NULL,
	time       VARCHAR,
	lon        DOUBLE,
	lat        DOUBLE,
	measurable VARCHAR NOT NULL,
	value      DOUBLE
)`

// Store is a DuckDB-backed reading store. One row per reading and
// measurable; missing values are stored as NULL.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database and ensures the schema exists.
func Open(cfg Config) (*Store, error) {
	dsn := ""
	if cfg.DBName != "" {
		duckdbDir := filepath.Join(cfg.DataDir, "duckdb")
		if err := os.MkdirAll(duckdbDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create duckdb directory: %w", err)
		}
		dsn = filepath.Join(duckdbDir, cfg.DBName+".duckdb")
	}

	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// DB returns the underlying connection.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Insert replaces the rows of source with readings.
func (s *Store) Insert(ctx context.Context, source string, readings []service.Reading) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM readings WHERE source = ?`, source); err != nil {
		return fmt.Errorf("clear %s: %w", source, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO readings (source, id, time, lon, lat, measurable, value) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range readings {
		for m, v := range r.Values {
			var value sql.NullFloat64
			if v != nil {
				value = sql.NullFloat64{Float64: *v, Valid: true}
			}
			if _, err := stmt.ExecContext(ctx, source, r.ID, r.Time, r.Point.Lon(), r.Point.Lat(), m, value); err != nil {
				return fmt.Errorf("insert %s/%s: %w", r.ID, m, err)
			}
		}
	}

	return tx.Commit()
}

// MeasurableStats summarises one measurable across a dataset.
type MeasurableStats struct {
	Measurable string   `json:"measurable" doc:"Measurable ID" example:"co"`
	Readings   int      `json:"readings" doc:"Readings with a value"`
	Missing    int      `json:"missing" doc:"Readings without a value"`
	Min        *float64 `json:"min" doc:"Smallest value, null when none"`
	Max        *float64 `json:"max" doc:"Largest value, null when none"`
	Mean       *float64 `json:"mean" doc:"Mean value, null when none"`
}

// Stats returns per-measurable statistics for a source, ordered by
// measurable ID.
func (s *Store) Stats(ctx context.Context, source string) ([]MeasurableStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT measurable, count(value), count(*) - count(value), min(value), max(value), avg(value)
		FROM readings
		WHERE source = ?
		GROUP BY measurable
		ORDER BY measurable`, source)
	if err != nil {
		return nil, fmt.Errorf("stats %s: %w", source, err)
	}
	defer rows.Close()

	stats := []MeasurableStats{}
	for rows.Next() {
		var (
			st           MeasurableStats
			n, missing   int64
			lo, hi, mean sql.NullFloat64
		)
		if err := rows.Scan(&st.Measurable, &n, &missing, &lo, &hi, &mean); err != nil {
			return nil, err
		}
		st.Readings, st.Missing = int(n), int(missing)
		st.Min, st.Max, st.Mean = nullable(lo), nullable(hi), nullable(mean)
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

// Tables returns the names of all tables.
func (s *Store) Tables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SHOW TABLES")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tables := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

func nullable(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}
