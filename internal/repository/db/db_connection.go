package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// InitDB opens/creates a SQLite DB file and ensures tables exist.
func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open(sqliteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}

	// Conservative pool settings for SQLite
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA foreign_keys = ON;",
		"PRAGMA busy_timeout = 5000;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	// Fail fast if the DB cannot be reached
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return db, nil
}

const sqliteDriverName = "sqlite"

const schemaUsers = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    role TEXT NOT NULL DEFAULT 'owner'
);
`

const schemaOwnerTokens = `
CREATE TABLE IF NOT EXISTS owner_tokens (
    owner_id TEXT PRIMARY KEY,
    access_token TEXT NOT NULL,
    refresh_token TEXT NOT NULL,
    scope TEXT NOT NULL DEFAULT '',
    expires_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);
`

const schemaRoomMappings = `
CREATE TABLE IF NOT EXISTS room_mappings (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    owner_id TEXT NOT NULL,
    room_id INTEGER NOT NULL,
    home_id TEXT NOT NULL,
    device_id TEXT NOT NULL DEFAULT '',
    module_id TEXT NOT NULL DEFAULT '',
    netatmo_room_id TEXT,
    netatmo_room_name TEXT
);
CREATE INDEX IF NOT EXISTS idx_room_mappings_owner ON room_mappings(owner_id);
`

const schemaHeatingScenarios = `
CREATE TABLE IF NOT EXISTS heating_scenarios (
    owner_id TEXT PRIMARY KEY,
    preheat_mode TEXT,
    preheat_minutes INTEGER,
    heat_start_time TEXT,
    arrival_temp REAL,
    stop_time TEXT
);
`

// start_time/end_time are RFC3339 UTC strings; start_time is part of the idempotency key.
const schemaScheduleEvents = `
CREATE TABLE IF NOT EXISTS schedule_events (
    id TEXT PRIMARY KEY,
    owner_id TEXT NOT NULL,
    room_mapping_id INTEGER NOT NULL,
    home_id TEXT NOT NULL,
    netatmo_room_id TEXT NOT NULL,
    module_id TEXT NOT NULL DEFAULT '',
    type TEXT NOT NULL,
    mode TEXT NOT NULL,
    temp REAL,
    start_time TEXT NOT NULL,
    end_time TEXT,
    status TEXT NOT NULL DEFAULT 'pending',
    created_at TIMESTAMP NOT NULL,
    UNIQUE (owner_id, room_mapping_id, type, start_time)
);
CREATE INDEX IF NOT EXISTS idx_schedule_events_lookup ON schedule_events(owner_id, netatmo_room_id, type, start_time);
`

func ensureSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for i, stmt := range []string{
		schemaUsers,
		schemaOwnerTokens,
		schemaRoomMappings,
		schemaHeatingScenarios,
		schemaScheduleEvents,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema transaction: %w", err)
	}
	return nil
}
