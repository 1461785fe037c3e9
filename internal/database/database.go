package database

import (
	"database/sql"
	"time"

	_ "github.com/lib/pq"
	"github.com/pkg/errors"
)

// Table Structure:
//
// jobs holds every canonical job. (external_id, source) is the identity a
// fetch pass reconciles on; status is the user's action and is never touched
// by a fetch pass.
//
// fetch_logs is an append-only audit trail, one row per adapter run.
//
// settings has one row per user; the row with user_id = '' is used when no
// user is signed in.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS jobs (
	id SERIAL PRIMARY KEY,
	external_id VARCHAR(255) NOT NULL,
	title TEXT NOT NULL,
	company VARCHAR(255) NOT NULL,
	company_logo TEXT NOT NULL DEFAULT '',
	location_type VARCHAR(50) NOT NULL,
	level TEXT NOT NULL DEFAULT '',
	tech_tags TEXT[] NOT NULL DEFAULT '{}',
	url TEXT NOT NULL,
	source VARCHAR(50) NOT NULL,
	salary VARCHAR(255) NOT NULL DEFAULT '',
	posted_date TIMESTAMP DEFAULT NULL,
	description TEXT NOT NULL DEFAULT '',
	job_type VARCHAR(255) NOT NULL DEFAULT '',
	status VARCHAR(20) DEFAULT NULL,
	lifecycle_status VARCHAR(20) NOT NULL DEFAULT 'new',
	created_at TIMESTAMP NOT NULL DEFAULT NOW(),
	UNIQUE (external_id, source)
)`,
	`ALTER TABLE jobs ALTER COLUMN level TYPE TEXT`,
	`CREATE INDEX IF NOT EXISTS jobs_source_idx ON jobs (source)`,
	`CREATE INDEX IF NOT EXISTS jobs_created_at_idx ON jobs (created_at)`,
	`CREATE TABLE IF NOT EXISTS fetch_logs (
	id SERIAL PRIMARY KEY,
	source VARCHAR(50) NOT NULL,
	jobs_found INTEGER NOT NULL DEFAULT 0,
	jobs_added INTEGER NOT NULL DEFAULT 0,
	success BOOLEAN NOT NULL,
	error TEXT DEFAULT NULL,
	fetched_at TIMESTAMP NOT NULL DEFAULT NOW()
)`,
	`CREATE INDEX IF NOT EXISTS fetch_logs_fetched_at_idx ON fetch_logs (fetched_at)`,
	`CREATE TABLE IF NOT EXISTS settings (
	id SERIAL PRIMARY KEY,
	user_id VARCHAR(255) NOT NULL DEFAULT '' UNIQUE,
	whitelisted_titles TEXT[] NOT NULL DEFAULT '{}',
	harvesting_mode VARCHAR(10) NOT NULL DEFAULT 'fuzzy',
	updated_at TIMESTAMP NOT NULL DEFAULT NOW()
)`,
}

// GetDbConn tries to establish a connection to postgres and return the connection handler
func GetDbConn(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	err = db.Ping()
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(20)
	db.SetConnMaxLifetime(5 * time.Minute)
	return db, nil
}

// CloseDbConn closes db conn
func CloseDbConn(conn *sql.DB) {
	conn.Close()
}

// EnsureSchema creates any missing table or index. It is safe to run on
// every start.
func EnsureSchema(conn *sql.DB) error {
	for _, stmt := range schema {
		if _, err := conn.Exec(stmt); err != nil {
			return errors.Wrap(err, "unable to apply schema")
		}
	}
	return nil
}
