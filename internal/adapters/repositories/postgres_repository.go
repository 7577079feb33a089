package repositories

import (
	"batch-route-service/internal/domain"
	"batch-route-service/internal/ports"
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Postgres implementation of the ODPairRepository and BatchRunStore
// ports.
type PostgresRepository struct {
	DB *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{DB: db}
}

// Retrieve all seeded OD pairs in seed order.
func (r *PostgresRepository) ListODPairs(ctx context.Context) ([]domain.ODPair, error) {
	if r.DB == nil {
		return nil, errors.New("od pair repository: db is nil")
	}

	q := `
	SELECT from_lon, from_lat, to_lon, to_lat
	FROM od_pairs
	ORDER BY pair_id;
	`

	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list od pairs: query od_pairs table: %w", err)
	}
	defer rows.Close()

	var pairs []domain.ODPair
	for rows.Next() {
		var fromLon, fromLat, toLon, toLat float64
		if err := rows.Scan(&fromLon, &fromLat, &toLon, &toLat); err != nil {
			return nil, fmt.Errorf("list od pairs: scan rows: %w", err)
		}
		pairs = append(pairs, domain.ODPair{
			From: domain.Coordinates{Lon: fromLon, Lat: fromLat},
			To:   domain.Coordinates{Lon: toLon, Lat: toLat},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list od pairs: row iteration: %w", err)
	}

	return pairs, nil
}

// Persist one batch run summary.
func (r *PostgresRepository) RecordRun(ctx context.Context, run ports.BatchRun) error {
	if r.DB == nil {
		return errors.New("batch run store: db is nil")
	}

	q := `
	INSERT INTO batch_runs (run_id, started_at, duration_ms, pair_count, succeeded, excluded, list_output)
	VALUES ($1, $2, $3, $4, $5, $6, $7);
	`

	_, err := r.DB.ExecContext(ctx, q,
		run.RunID, run.StartedAt, run.DurationMS,
		run.PairCount, run.Succeeded, run.Excluded, run.ListOutput,
	)
	if err != nil {
		return fmt.Errorf("record batch run %q: %w", run.RunID, err)
	}

	return nil
}
