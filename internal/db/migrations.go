package db

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// migrations is an ordered list of SQL statements to run.
// Times are stored as unix nanoseconds so that they sort numerically.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id             TEXT    PRIMARY KEY,
		name           TEXT    NOT NULL,
		email          TEXT    NOT NULL UNIQUE,
		phone          TEXT    NOT NULL,
		role           TEXT    NOT NULL CHECK (role IN ('tenant', 'landlord', 'agent')),
		password_hash  TEXT    NOT NULL,
		is_verified    INTEGER NOT NULL DEFAULT 0,
		otp_hash       TEXT    NOT NULL DEFAULT '',
		otp_expires_at INTEGER NOT NULL DEFAULT 0,
		created_at     INTEGER NOT NULL,
		updated_at     INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS listings (
		id                  TEXT    PRIMARY KEY,
		creator_id          TEXT    NOT NULL,
		status              TEXT    NOT NULL CHECK (status IN ('active', 'inactive', 'rented', 'under_negotiation')),
		state               TEXT    NOT NULL,
		locality            TEXT    NOT NULL,
		area                TEXT    NOT NULL,
		property_type       TEXT    NOT NULL,
		bedrooms            INTEGER,
		bathrooms           INTEGER,
		invite_agent_to_bid INTEGER NOT NULL DEFAULT 0,
		rent_amount         REAL    NOT NULL CHECK (rent_amount > 0),
		views               INTEGER NOT NULL DEFAULT 0,
		expires_at          INTEGER NOT NULL,
		created_at          INTEGER NOT NULL,
		updated_at          INTEGER NOT NULL,
		version             INTEGER NOT NULL DEFAULT 1,
		doc                 TEXT    NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_listings_status_created ON listings (status, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_listings_status_rent ON listings (status, rent_amount)`,
	`CREATE INDEX IF NOT EXISTS idx_listings_creator ON listings (creator_id)`,
}

// migrate runs all migrations in order.
func migrate(db *sql.DB) error {
	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}

	// Column additions (idempotent, checks if column exists first)
	columnMigrations := []struct {
		table, column, definition string
	}{
		{"users", "last_login_at", "INTEGER NOT NULL DEFAULT 0"},
	}

	for _, cm := range columnMigrations {
		if err := addColumnIfNotExists(db, cm.table, cm.column, cm.definition); err != nil {
			return fmt.Errorf("adding %s.%s: %w", cm.table, cm.column, err)
		}
	}

	return nil
}

// addColumnIfNotExists adds a column to a table if it doesn't already exist.
func addColumnIfNotExists(db *sql.DB, table, column, definition string) error {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return fmt.Errorf("checking table info: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			slog.Warn("closing rows", "error", cerr)
		}
	}()

	for rows.Next() {
		var cid int
		var name, colType string
		var notNull, pk int
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return fmt.Errorf("scanning column info: %w", err)
		}
		if name == column {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating columns: %w", err)
	}

	_, err = db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, definition))
	return err
}
