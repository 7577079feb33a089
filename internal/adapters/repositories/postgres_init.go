package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Initialize the Postgres database schema.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createODPairsQuery := `
	CREATE TABLE IF NOT EXISTS od_pairs (
		pair_id SERIAL PRIMARY KEY,
		from_lon DOUBLE PRECISION NOT NULL,
		from_lat DOUBLE PRECISION NOT NULL,
		to_lon DOUBLE PRECISION NOT NULL,
		to_lat DOUBLE PRECISION NOT NULL
	);
	`

	createRouteCacheQuery := `
	CREATE TABLE IF NOT EXISTS route_cache (
		cache_key TEXT PRIMARY KEY,
		shape TEXT NOT NULL,
		payload BYTEA NOT NULL
	);
	`

	createBatchRunsQuery := `
	CREATE TABLE IF NOT EXISTS batch_runs (
		run_id UUID PRIMARY KEY,
		started_at TIMESTAMPTZ NOT NULL,
		duration_ms BIGINT NOT NULL,
		pair_count INTEGER NOT NULL,
		succeeded INTEGER NOT NULL,
		excluded INTEGER NOT NULL,
		list_output BOOLEAN NOT NULL
	);
	`

	statements := []string{
		createODPairsQuery,
		createRouteCacheQuery,
		createBatchRunsQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type ODPairSeed struct {
	FromLon float64 `json:"from_lon"`
	FromLat float64 `json:"from_lat"`
	ToLon   float64 `json:"to_lon"`
	ToLat   float64 `json:"to_lat"`
}

// Populate the database with OD pairs from a JSON file. Existing pairs
// are cleared first so re-seeding stays idempotent.
func SeedFromJSON(db *sql.DB, jsonPath string) error {
	if db == nil {
		return errors.New("seed od pairs: DB is nil")
	}

	raw, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed od pairs: read %q: %w", jsonPath, err)
	}

	var data []ODPairSeed
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("seed od pairs: parse json: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed od pairs: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM od_pairs;`); err != nil {
		return fmt.Errorf("seed od pairs: clear table: %w", err)
	}

	stmt, err := tx.Prepare(`
	INSERT INTO od_pairs (from_lon, from_lat, to_lon, to_lat)
	VALUES ($1, $2, $3, $4);
	`)
	if err != nil {
		return fmt.Errorf("seed od pairs: prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, p := range data {
		if _, err := stmt.Exec(p.FromLon, p.FromLat, p.ToLon, p.ToLat); err != nil {
			return fmt.Errorf("seed od pairs: insert pair #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed od pairs: commit tx: %w", err)
	}

	return nil
}
