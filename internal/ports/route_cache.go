package ports

import (
	"batch-route-service/internal/domain"
	"context"
	"fmt"
)

// Cache key for one routed OD pair under one routing profile.
// Coordinates are truncated to six decimals (~0.1m) so that keys are
// insensitive to float formatting noise.
type RouteKey struct {
	From    domain.Coordinates
	To      domain.Coordinates
	Profile string
}

func (k RouteKey) String() string {
	return fmt.Sprintf("%.6f,%.6f|%.6f,%.6f|%s",
		k.From.Lon, k.From.Lat, k.To.Lon, k.To.Lat, k.Profile)
}

// Port: a persistent cache of computed routes.
// Get returns (nil, false, nil) on a miss; cache errors are returned
// so callers can decide whether to degrade or fail.
type RouteCache interface {
	Get(ctx context.Context, key RouteKey) (*domain.Route, bool, error)
	Put(ctx context.Context, key RouteKey, route *domain.Route) error
}
