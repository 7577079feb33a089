package routing

import (
	"batch-route-service/internal/domain"
	"batch-route-service/internal/ports"
	"context"
	"fmt"
)

// Deterministic in-memory Router for tests and offline runs. Each pair
// keyed by rounded endpoints maps to a canned route or a canned error.
type MockPair struct {
	From, To domain.Coordinates
	Rows     []domain.RouteRow
	Shape    string
	Err      error
}

type MockRouter struct {
	m map[string]MockPair
}

func NewMockRouter(pairs []MockPair) *MockRouter {
	m := make(map[string]MockPair, len(pairs))
	for _, p := range pairs {
		m[mockKey(p.From, p.To)] = p
	}
	return &MockRouter{m: m}
}

func mockKey(from, to domain.Coordinates) string {
	return ports.RouteKey{From: from, To: to}.String()
}

func (r *MockRouter) Route(
	ctx context.Context,
	from, to domain.Coordinates,
	opts ports.RouteOptions,
) (*domain.Route, error) {
	p, ok := r.m[mockKey(from, to)]
	if !ok {
		return nil, fmt.Errorf("mock router: missing pair %v -> %v", from, to)
	}
	if p.Err != nil {
		return nil, p.Err
	}

	shape := p.Shape
	if shape == "" {
		shape = ShapeORSGeoJSON
	}
	return &domain.Route{Shape: shape, Rows: p.Rows}, nil
}
