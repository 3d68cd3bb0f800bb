package storage

import (
	"context"
	"database/sql"
	"fmt"

	// Database drivers. Postgres backs production; SQLite backs development
	// and tests.
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Open opens a database connection for the given driver ("postgres" or
// "sqlite3") and verifies it with a ping.
func Open(driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s database: %w", driver, err)
	}
	return db, nil
}

// schema is portable DDL shared by the Postgres and SQLite backends.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS counties (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		state_code TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		UNIQUE (name, state_code)
	)`,
	`CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		county_id TEXT NOT NULL REFERENCES counties(id),
		title TEXT NOT NULL,
		url TEXT NOT NULL,
		document_type TEXT NOT NULL,
		sale_date TEXT,
		sha256 TEXT,
		parsed_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS parsing_jobs (
		id TEXT PRIMARY KEY,
		document_id TEXT NOT NULL REFERENCES documents(id),
		status TEXT NOT NULL,
		parser_used TEXT NOT NULL,
		properties_extracted INTEGER NOT NULL,
		properties_failed INTEGER NOT NULL,
		avg_confidence REAL NOT NULL,
		error_message TEXT,
		started_at TIMESTAMP NOT NULL,
		completed_at TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS properties (
		id TEXT PRIMARY KEY,
		county_id TEXT NOT NULL REFERENCES counties(id),
		document_id TEXT NOT NULL REFERENCES documents(id),
		parcel_id TEXT NOT NULL,
		address TEXT,
		owner_name TEXT,
		city TEXT,
		total_due REAL,
		tax_year INTEGER NOT NULL,
		sale_type TEXT NOT NULL,
		sale_date TEXT,
		raw_text TEXT NOT NULL,
		confidence REAL NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		UNIQUE (document_id, parcel_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_documents_county ON documents (county_id, parsed_at)`,
	`CREATE INDEX IF NOT EXISTS idx_properties_county ON properties (county_id)`,
}

// Migrate applies the schema. Statements are idempotent.
func Migrate(ctx context.Context, db DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
