// Package duckdb provides an on-disk cache of drug risk assessments.
// Entries are keyed by a content fingerprint and the requested drugs, and
// the table is bounded by Prune.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection for caching assessment results.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database path, empty for in-memory stores.
func (s *Store) Path() string {
	return s.path
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS assessment_results (
		cache_key VARCHAR,
		seq INTEGER,
		generation BIGINT,
		created_at TIMESTAMP,
		drug VARCHAR,
		gene VARCHAR,
		phenotype VARCHAR,
		diplotype VARCHAR,
		risk_level VARCHAR,
		confidence DOUBLE,
		variant_evidence DOUBLE,
		guideline_match DOUBLE,
		data_completeness DOUBLE,
		variant_impact DOUBLE,
		severity DOUBLE,
		clinical_note VARCHAR,
		recommendation VARCHAR,
		guideline_url VARCHAR,
		evidence_sources VARCHAR,
		alternative_options VARCHAR,
		monitoring_requirements VARCHAR,
		matched_markers VARCHAR,
		PRIMARY KEY (cache_key, seq)
	)`)
	return err
}
