package db

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a lookup matches no row
var ErrNotFound = errors.New("not found")

// DB wraps a SQLite database connection
type DB struct {
	conn *sql.DB
	Path string
}

// OpenDB opens a SQLite database with WAL mode and foreign keys enabled,
// creating the schema if it does not exist yet
func OpenDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for concurrent reads
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	// Enable foreign keys
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	d := &DB{conn: conn, Path: path}
	if err := d.Migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return d, nil
}

// Migrate creates any missing tables and indexes
func (d *DB) Migrate() error {
	if _, err := d.conn.Exec(schema); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	return nil
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.conn.Close()
}

// Conn returns the underlying sql.DB for custom queries
func (d *DB) Conn() *sql.DB {
	return d.conn
}

const schema = `
CREATE TABLE IF NOT EXISTS hospitals (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	lat REAL NOT NULL,
	lng REAL NOT NULL,
	total_capacity INTEGER NOT NULL DEFAULT 0,
	available_beds INTEGER NOT NULL DEFAULT 0,
	specialties TEXT NOT NULL DEFAULT '[]',
	wait_minutes INTEGER NOT NULL DEFAULT 0,
	phone TEXT,
	address TEXT
);
CREATE TABLE IF NOT EXISTS patients (
	id TEXT PRIMARY KEY,
	name TEXT,
	age INTEGER,
	symptoms TEXT NOT NULL DEFAULT '[]',
	severity_flags TEXT NOT NULL DEFAULT '[]',
	risk_factors TEXT NOT NULL DEFAULT '[]',
	travel_history TEXT NOT NULL DEFAULT '',
	exposure_history TEXT NOT NULL DEFAULT '',
	tier TEXT NOT NULL DEFAULT '',
	lat REAL,
	lng REAL,
	created_at INTEGER NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending',
	assigned_hospital_id TEXT REFERENCES hospitals(id) ON DELETE SET NULL
);
CREATE INDEX IF NOT EXISTS idx_patients_created ON patients(created_at);
CREATE TABLE IF NOT EXISTS cluster_alerts (
	cluster_id TEXT PRIMARY KEY,
	label TEXT NOT NULL,
	patient_count INTEGER NOT NULL,
	patient_ids TEXT NOT NULL,
	severity REAL NOT NULL,
	shared_symptoms TEXT NOT NULL DEFAULT '[]',
	geographic_spread TEXT NOT NULL,
	travel_commonalities TEXT NOT NULL,
	growth_rate TEXT NOT NULL,
	recommended_action TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);
`
