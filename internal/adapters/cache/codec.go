package cache

import (
	"batch-route-service/internal/domain"
	"encoding/json"
	"fmt"
)

// Storage representation of a cached route. Kept separate from the
// domain types so the wire format stays stable if domain fields move.
type storedRoute struct {
	Shape string      `json:"shape"`
	Rows  []storedRow `json:"rows"`
}

type storedRow struct {
	Geometry        [][]float64    `json:"geometry"`
	DistanceMeters  int            `json:"distance_meters"`
	DurationSeconds int            `json:"duration_seconds"`
	Attributes      map[string]any `json:"attributes,omitempty"`
}

func encodeRoute(route *domain.Route) ([]byte, error) {
	sr := storedRoute{Shape: route.Shape, Rows: make([]storedRow, 0, len(route.Rows))}
	for _, row := range route.Rows {
		geom := make([][]float64, 0, len(row.Geometry.Coordinates))
		for _, c := range row.Geometry.Coordinates {
			geom = append(geom, c.CoordsToList())
		}
		sr.Rows = append(sr.Rows, storedRow{
			Geometry:        geom,
			DistanceMeters:  row.DistanceMeters,
			DurationSeconds: row.DurationSeconds,
			Attributes:      row.Attributes,
		})
	}

	b, err := json.Marshal(sr)
	if err != nil {
		return nil, fmt.Errorf("encode route: %w", err)
	}
	return b, nil
}

func decodeRoute(b []byte) (*domain.Route, error) {
	var sr storedRoute
	if err := json.Unmarshal(b, &sr); err != nil {
		return nil, fmt.Errorf("decode route: %w", err)
	}

	route := &domain.Route{Shape: sr.Shape, Rows: make([]domain.RouteRow, 0, len(sr.Rows))}
	for i, row := range sr.Rows {
		coords := make([]domain.Coordinates, 0, len(row.Geometry))
		for _, c := range row.Geometry {
			if len(c) != 2 {
				return nil, fmt.Errorf("decode route: row %d has invalid coordinate of length %d", i, len(c))
			}
			coords = append(coords, domain.Coordinates{Lon: c[0], Lat: c[1]})
		}
		route.Rows = append(route.Rows, domain.RouteRow{
			Geometry:        domain.LineString{Coordinates: coords},
			DistanceMeters:  row.DistanceMeters,
			DurationSeconds: row.DurationSeconds,
			Attributes:      row.Attributes,
		})
	}

	return route, nil
}
