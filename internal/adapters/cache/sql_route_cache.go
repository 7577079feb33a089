package cache

import (
	"batch-route-service/internal/domain"
	"batch-route-service/internal/platform/obs"
	"batch-route-service/internal/ports"
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SQLRouteCache is a Postgres-backed cache of computed routes, keyed by
// the (from, to, profile) route key.
type SQLRouteCache struct {
	DB *sql.DB
}

func NewSQLRouteCache(db *sql.DB) *SQLRouteCache {
	return &SQLRouteCache{DB: db}
}

// Fetch one cached route. A missing key is (nil, false, nil).
func (s *SQLRouteCache) Get(
	ctx context.Context,
	key ports.RouteKey,
) (_ *domain.Route, _ bool, err error) {
	defer obs.Time(ctx, "route.cache.Get")(&err)

	if s.DB == nil {
		return nil, false, errors.New("route cache: db is nil")
	}

	q := `
	SELECT payload
	FROM route_cache
	WHERE cache_key = $1;
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
func (s *SQLRouteCache) Put(
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
	INSERT INTO route_cache (cache_key, shape, payload)
	VALUES ($1, $2, $3)
	ON CONFLICT (cache_key) DO UPDATE
	SET shape = EXCLUDED.shape,
		payload = EXCLUDED.payload;
	`

	if _, err := s.DB.ExecContext(ctx, q, key.String(), route.Shape, payload); err != nil {
		return fmt.Errorf("insert route cache key=%q: %w", key.String(), err)
	}

	return nil
}
