package dto

// Request body for POST /routes/batch. Either pairs or lines must be
// given, not both. seeded=true routes the server's seeded OD pairs
// instead.
type BatchRouteRequest struct {
	Pairs  []ODPairRequest `json:"pairs"`
	Lines  []LineRequest   `json:"lines"`
	Seeded bool            `json:"seeded"`

	Profile       string `json:"profile"`
	ListOutput    bool   `json:"list_output"`
	Workers       int    `json:"workers"`
	ProgressEvery int    `json:"progress_every"`
}

type ODPairRequest struct {
	FromLon float64 `json:"from_lon"`
	FromLat float64 `json:"from_lat"`
	ToLon   float64 `json:"to_lon"`
	ToLat   float64 `json:"to_lat"`
}

type LineRequest struct {
	Vertices   [][]float64    `json:"vertices"`
	Attributes map[string]any `json:"attributes"`
}

// Merged-collection response.
type BatchRouteResponse struct {
	RunID    string          `json:"run_id"`
	Shape    string          `json:"shape"`
	Rows     []MergedRowJSON `json:"rows"`
	Excluded []int           `json:"excluded_routes"`
	Failure  string          `json:"first_failure,omitempty"`
}

type MergedRowJSON struct {
	RouteNumber     int            `json:"route_number"`
	Geometry        [][]float64    `json:"geometry"`
	DistanceMeters  int            `json:"distance_meters"`
	DurationSeconds int            `json:"duration_seconds"`
	Attributes      map[string]any `json:"attributes,omitempty"`
}

// Raw per-pair list response: exactly one element per input pair.
type BatchRouteListResponse struct {
	RunID    string            `json:"run_id"`
	Results  []RouteResultJSON `json:"results"`
	Excluded []int             `json:"excluded_routes"`
}

type RouteResultJSON struct {
	RouteNumber int            `json:"route_number"`
	Error       string         `json:"error,omitempty"`
	Shape       string         `json:"shape,omitempty"`
	Rows        []RouteRowJSON `json:"rows,omitempty"`
}

type RouteRowJSON struct {
	Geometry        [][]float64    `json:"geometry"`
	DistanceMeters  int            `json:"distance_meters"`
	DurationSeconds int            `json:"duration_seconds"`
	Attributes      map[string]any `json:"attributes,omitempty"`
}
