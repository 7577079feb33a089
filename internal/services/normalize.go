package services

import (
	"batch-route-service/internal/domain"
	"fmt"
)

// Batch input is a closed union: bare coordinate collections or a line
// collection. Exactly one variant is resolved at the entry point and
// normalized once; everything downstream works on OD pairs plus lines.
type BatchInput interface {
	batchInput()
}

// Two parallel coordinate collections (origins[i] routes to
// destinations[i]). Minimal carrier lines are synthesized per pair.
type CoordinatePairInput struct {
	Origins      []domain.Coordinates
	Destinations []domain.Coordinates
}

func (CoordinatePairInput) batchInput() {}

// A collection of line entities; OD pairs are derived from each line's
// endpoints and line attributes ride along onto the output rows.
type LineCollectionInput struct {
	Lines []domain.Line
}

func (LineCollectionInput) batchInput() {}

// Malformed or mismatched OD input. This is the only fatal error class:
// it is raised before any routing starts, and the batch never runs.
type InputShapeError struct {
	Reason string
}

func (e *InputShapeError) Error() string {
	return "input shape: " + e.Reason
}

// NormalizeInput resolves the input union into one OD pair per index and
// one attribute-carrier line per index, both preserving input order.
func NormalizeInput(input BatchInput) ([]domain.ODPair, []domain.Line, error) {
	switch in := input.(type) {
	case CoordinatePairInput:
		if len(in.Origins) != len(in.Destinations) {
			return nil, nil, &InputShapeError{
				Reason: fmt.Sprintf(
					"origin count %d does not match destination count %d",
					len(in.Origins), len(in.Destinations),
				),
			}
		}

		pairs := make([]domain.ODPair, 0, len(in.Origins))
		lines := make([]domain.Line, 0, len(in.Origins))
		for i := range in.Origins {
			pairs = append(pairs, domain.ODPair{From: in.Origins[i], To: in.Destinations[i]})
			lines = append(lines, domain.NewLine(in.Origins[i], in.Destinations[i]))
		}
		return pairs, lines, nil

	case LineCollectionInput:
		pairs := make([]domain.ODPair, 0, len(in.Lines))
		for i, line := range in.Lines {
			if len(line.Vertices) != 2 {
				return nil, nil, &InputShapeError{
					Reason: fmt.Sprintf(
						"line %d has %d vertices, want exactly 2",
						i+1, len(line.Vertices),
					),
				}
			}

			from, to := line.Endpoints()
			pairs = append(pairs, domain.ODPair{From: from, To: to})
		}
		return pairs, in.Lines, nil

	case nil:
		return nil, nil, &InputShapeError{Reason: "no input given"}

	default:
		return nil, nil, &InputShapeError{Reason: fmt.Sprintf("unsupported input variant %T", input)}
	}
}
