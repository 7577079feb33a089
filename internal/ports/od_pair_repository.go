package ports

import (
	"batch-route-service/internal/domain"
	"context"
)

// Port: a boundary for retrieving seeded OD pairs from a data source.
type ODPairRepository interface {
	// Retrieve all OD pairs available for batch routing, in seed order.
	ListODPairs(ctx context.Context) ([]domain.ODPair, error)
}
