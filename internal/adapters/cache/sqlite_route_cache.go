package cache

import (
	"batch-route-service/internal/domain"
	"batch-route-service/internal/ports"
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SQLite backed cache of computed routes, for single-node local runs.
// Keys are already normalized by ports.RouteKey.
type SqliteRouteCache struct {
	DB *sql.DB
}

func NewSqliteRouteCache(db *sql.DB) *SqliteRouteCache {
	return &SqliteRouteCache{DB: db}
}

// Fetch one cached route. A missing key is (nil, false, nil).
func (s *SqliteRouteCache) Get(
	ctx context.Context,
	key ports.RouteKey,
) (*domain.Route, bool, error) {
	if s.DB == nil {
		return nil, false, errors.New("route cache: db is nil")
	}

	q := `
	SELECT payload
	FROM route_cache
	WHERE cache_key = ?;
	`

	var payload []byte
	if err := s.DB.QueryRowContext(ctx, q, key.String()).Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get route cache: query route_cache table: %w", err)
	}

	route, err := decodeRoute(payload)
	if err != nil {
		return nil, false, fmt.Errorf("get route cache: %w", err)
	}

	return route, true, nil
}

// Store one computed route.
func (s *SqliteRouteCache) Put(
	ctx context.Context,
	key ports.RouteKey,
	route *domain.Route,
) error {
	if s.DB == nil {
		return errors.New("route cache: db is nil")
	}

	if route == nil {
		return errors.New("insert route cache: route must be non-nil")
	}

	payload, err := encodeRoute(route)
	if err != nil {
		return fmt.Errorf("insert route cache: %w", err)
	}

	q := `
	INSERT OR REPLACE INTO route_cache (cache_key, shape, payload)
	VALUES (?, ?, ?);
	`

	if _, err := s.DB.ExecContext(ctx, q, key.String(), route.Shape, payload); err != nil {
		return fmt.Errorf("insert route cache key=%q: %w", key.String(), err)
	}

	return nil
}

// InitSqliteSchema creates the route cache table for local SQLite runs.
func InitSqliteSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init sqlite schema: db is nil")
	}

	q := `
	CREATE TABLE IF NOT EXISTS route_cache (
		cache_key TEXT PRIMARY KEY,
		shape TEXT NOT NULL,
		payload BLOB NOT NULL
	);
	`

	if _, err := db.Exec(q); err != nil {
		return fmt.Errorf("init sqlite schema: create route_cache: %w", err)
	}

	return nil
}
