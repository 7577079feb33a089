package domain

// An ordered sequence of geographic coordinates.
type LineString struct {
	Coordinates []Coordinates
}

// One path segment of a computed route: a geometry plus one attribute row.
type RouteRow struct {
	Geometry        LineString
	DistanceMeters  int
	DurationSeconds int
	Attributes      map[string]any
}

// The output of one routing-function invocation for one OD pair.
//
// Shape identifies the concrete result representation produced by the
// routing adapter (e.g. "ors/geojson"). The dispatcher is agnostic to
// which shape a backend returns as long as it is consistent across a
// batch; shape is the inclusion criterion during aggregation.
type Route struct {
	Shape string
	Rows  []RouteRow
}

// Per-pair dispatch slot: exactly one of Route or Err is set.
// A routing failure for one pair is recorded here instead of aborting
// the batch.
type RouteResult struct {
	Index int
	Route *Route
	Err   error
}

func (r RouteResult) Failed() bool { return r.Err != nil }

// One row of the merged batch output. RouteNumber is the 1-based
// position of the originating OD pair in the input collection.
type MergedRow struct {
	RouteNumber     int
	Geometry        LineString
	DistanceMeters  int
	DurationSeconds int
	Attributes      map[string]any
}

// The combined result of a batch dispatch: all rows of all
// majority-shape routes, stacked in input order.
type RouteCollection struct {
	Shape string
	Rows  []MergedRow
}
