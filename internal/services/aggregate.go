package services

import (
	"batch-route-service/internal/domain"
	"fmt"
)

// Which routes a merge excluded and why. Excluded holds 1-based route
// numbers; FirstFailure carries the first excluded result's detail so a
// caller can diagnose without requesting list output.
type ExclusionReport struct {
	Excluded     []int
	FirstFailure error
}

// MajorityShape returns the most frequent shape among successful
// results. Error markers never vote. Ties break toward the shape seen
// first, which keeps classification deterministic under any execution
// strategy. ok is false when no result succeeded.
func MajorityShape(results []domain.RouteResult) (shape string, ok bool) {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)

	for i, r := range results {
		if r.Failed() || r.Route == nil {
			continue
		}
		if _, seen := counts[r.Route.Shape]; !seen {
			firstSeen[r.Route.Shape] = i
		}
		counts[r.Route.Shape]++
	}

	best := ""
	bestCount := 0
	for s, c := range counts {
		if c > bestCount || (c == bestCount && firstSeen[s] < firstSeen[best]) {
			best = s
			bestCount = c
		}
	}

	return best, bestCount > 0
}

// Aggregate classifies every per-pair result against the batch's
// majority shape and row-stacks the matching routes into one collection.
//
// The raw N-element list (error markers included) is returned instead
// whenever the caller asked for it or no majority shape exists; data is
// never silently dropped. lines must be index-aligned with results: row
// i's line attributes are replicated onto every output row of route i.
func Aggregate(
	results []domain.RouteResult,
	lines []domain.Line,
	listOutput bool,
) (*domain.RouteCollection, []domain.RouteResult, ExclusionReport) {
	var report ExclusionReport

	majority, ok := MajorityShape(results)
	if listOutput || !ok {
		for _, r := range results {
			if r.Failed() {
				report.Excluded = append(report.Excluded, r.Index+1)
				if report.FirstFailure == nil {
					report.FirstFailure = r.Err
				}
			}
		}
		return nil, results, report
	}

	merged := &domain.RouteCollection{Shape: majority}
	for _, r := range results {
		if r.Failed() {
			report.Excluded = append(report.Excluded, r.Index+1)
			if report.FirstFailure == nil {
				report.FirstFailure = r.Err
			}
			continue
		}
		if r.Route.Shape != majority {
			report.Excluded = append(report.Excluded, r.Index+1)
			if report.FirstFailure == nil {
				report.FirstFailure = fmt.Errorf(
					"route %d: shape %q does not match batch majority %q",
					r.Index+1, r.Route.Shape, majority,
				)
			}
			continue
		}

		for _, row := range r.Route.Rows {
			merged.Rows = append(merged.Rows, domain.MergedRow{
				RouteNumber:     r.Index + 1,
				Geometry:        row.Geometry,
				DistanceMeters:  row.DistanceMeters,
				DurationSeconds: row.DurationSeconds,
				Attributes:      bindAttributes(lines[r.Index].Attributes, row.Attributes),
			})
		}
	}

	return merged, nil, report
}

// bindAttributes joins the originating line's attributes with one route
// row's attributes. Route attributes win on key collision since they
// describe the computed row itself.
func bindAttributes(line, row map[string]any) map[string]any {
	if len(line) == 0 && len(row) == 0 {
		return nil
	}

	out := make(map[string]any, len(line)+len(row))
	for k, v := range line {
		out[k] = v
	}
	for k, v := range row {
		out[k] = v
	}
	return out
}
