package ports

import (
	"batch-route-service/internal/domain"
	"context"
)

// Passthrough options handed to the routing backend unmodified.
type RouteOptions struct {
	Profile string
	Extra   map[string]any
}

// Contract for computing a route between two coordinates.
// Implementations may call a remote API, search a local graph, or
// anything else; the dispatcher only sees the returned Route or error.
type Router interface {
	// Compute a route from one coordinate to another.
	Route(ctx context.Context, from, to domain.Coordinates, opts RouteOptions) (*domain.Route, error)
}
