package routing

import (
	"batch-route-service/internal/domain"
	"batch-route-service/internal/platform/obs"
	"batch-route-service/internal/ports"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"time"
)

// Result shape tag reported by this adapter. A batch routed entirely
// through ORS is homogeneous under this tag.
const ShapeORSGeoJSON = "ors/geojson"

// ORSRouter implements the Router port using the OpenRouteService
// directions API.
//
// It coordinates:
//   - Per-pair directions calls with retry/backoff
//   - An optional persistent route cache (cache-aside)
//
// The router is safe for concurrent use.
type ORSRouter struct {
	session *http.Client
	apiKey  string
	baseURL string
	profile string
	cache   ports.RouteCache
}

func NewORSRouter(apiKey string, cache ports.RouteCache) (*ORSRouter, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	return &ORSRouter{
		session: &http.Client{Timeout: 10 * time.Second},
		apiKey:  apiKey,
		baseURL: "https://api.openrouteservice.org",
		profile: "driving-car",
		cache:   cache,
	}, nil
}

// WithBaseURL overrides the API endpoint, e.g. a self-hosted instance.
func (o *ORSRouter) WithBaseURL(u string) *ORSRouter {
	o.baseURL = u
	return o
}

type directionsRequest struct {
	Coordinates [][]float64 `json:"coordinates"`
	Units       string      `json:"units"`
	Geometry    bool        `json:"geometry"`
}

type directionsResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties struct {
			Summary struct {
				Distance float64 `json:"distance"`
				Duration float64 `json:"duration"`
			} `json:"summary"`
		} `json:"properties"`
	} `json:"features"`
}

// Route computes directions for one OD pair.
func (o *ORSRouter) Route(
	ctx context.Context,
	from, to domain.Coordinates,
	opts ports.RouteOptions,
) (_ *domain.Route, err error) {
	defer obs.Time(ctx, "ors.Route")(&err)

	profile := opts.Profile
	if profile == "" {
		profile = o.profile
	}

	key := ports.RouteKey{From: from, To: to, Profile: profile}
	if o.cache != nil {
		cached, hit, err := o.cache.Get(ctx, key)
		if err != nil {
			// A broken cache degrades to a live call.
			log.Printf("route cache read failed: %v", err)
		} else if hit {
			return cached, nil
		}
	}

	route, err := o.fetchDirections(ctx, from, to, profile)
	if err != nil {
		return nil, fmt.Errorf("ORS directions %s: %w", key, err)
	}

	if o.cache != nil {
		if err := o.cache.Put(ctx, key, route); err != nil {
			log.Printf("route cache write failed: %v", err)
		}
	}

	return route, nil
}

func (o *ORSRouter) fetchDirections(
	ctx context.Context,
	from, to domain.Coordinates,
	profile string,
) (*domain.Route, error) {
	endpoint := fmt.Sprintf("%s/v2/directions/%s/geojson", o.baseURL, profile)

	payload, err := json.Marshal(directionsRequest{
		Coordinates: [][]float64{from.CoordsToList(), to.CoordsToList()},
		Units:       "m",
		Geometry:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal directions request: %w", err)
	}

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		body := bytes.NewReader(payload)
		return o.newRequest(ctx, http.MethodPost, endpoint, body)
	})
	if err != nil {
		return nil, fmt.Errorf("directions request failed: %w", err)
	}
	defer resp.Body.Close()

	var dr directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return nil, fmt.Errorf("decode directions response: %w", err)
	}

	if len(dr.Features) == 0 {
		return nil, errors.New("directions response has no features")
	}

	rows := make([]domain.RouteRow, 0, len(dr.Features))
	for i, f := range dr.Features {
		coords := make([]domain.Coordinates, 0, len(f.Geometry.Coordinates))
		for _, c := range f.Geometry.Coordinates {
			if len(c) != 2 {
				return nil, fmt.Errorf("feature %d has invalid coordinate of length %d", i, len(c))
			}
			coords = append(coords, domain.Coordinates{Lon: c[0], Lat: c[1]})
		}

		// ORS returns float metrics; round for domain consistency.
		rows = append(rows, domain.RouteRow{
			Geometry:        domain.LineString{Coordinates: coords},
			DistanceMeters:  int(math.Round(f.Properties.Summary.Distance)),
			DurationSeconds: int(math.Round(f.Properties.Summary.Duration)),
			Attributes: map[string]any{
				"provider": "ors",
				"profile":  profile,
			},
		})
	}

	return &domain.Route{Shape: ShapeORSGeoJSON, Rows: rows}, nil
}
