package domain

// A line entity carrying the attributes of one OD pair.
// The dispatcher never computes attributes itself; whatever a line
// carries is replicated verbatim onto every output row its route
// produces. Geometry must be exactly two vertices (start, end).
type Line struct {
	Vertices   []Coordinates
	Attributes map[string]any
}

// NewLine builds a minimal two-vertex line connecting from and to.
// Used when a batch is given as bare coordinates and lines only exist
// as attribute carriers.
func NewLine(from, to Coordinates) Line {
	return Line{Vertices: []Coordinates{from, to}}
}

// Endpoints returns the start and end vertex of the line.
// Callers must have validated the two-vertex invariant first.
func (l Line) Endpoints() (Coordinates, Coordinates) {
	return l.Vertices[0], l.Vertices[len(l.Vertices)-1]
}
