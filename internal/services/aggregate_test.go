package services

import (
	"batch-route-service/internal/domain"
	"errors"
	"testing"
)

func result(i int, shape string) domain.RouteResult {
	return domain.RouteResult{
		Index: i,
		Route: &domain.Route{Shape: shape, Rows: []domain.RouteRow{{}}},
	}
}

func failed(i int) domain.RouteResult {
	return domain.RouteResult{Index: i, Err: errors.New("failed")}
}

func TestMajorityShape(t *testing.T) {
	results := []domain.RouteResult{
		result(0, "a"), result(1, "a"), failed(2), result(3, "b"), result(4, "a"),
	}

	shape, ok := MajorityShape(results)
	if !ok {
		t.Fatal("expected a majority shape")
	}
	if shape != "a" {
		t.Fatalf("shape = %q, want a", shape)
	}
}

func TestMajorityShapeNoSuccesses(t *testing.T) {
	results := []domain.RouteResult{failed(0), failed(1)}

	if _, ok := MajorityShape(results); ok {
		t.Fatal("errors must never produce a majority shape")
	}
}

func TestMajorityShapeTieBreaksOnFirstSeen(t *testing.T) {
	results := []domain.RouteResult{
		result(0, "b"), result(1, "a"), result(2, "b"), result(3, "a"),
	}

	shape, ok := MajorityShape(results)
	if !ok {
		t.Fatal("expected a majority shape")
	}
	if shape != "b" {
		t.Fatalf("shape = %q, want first-seen b on tie", shape)
	}
}

func TestAggregatePreservesSuccessOrder(t *testing.T) {
	results := []domain.RouteResult{
		result(0, "a"), failed(1), result(2, "a"),
	}
	lines := []domain.Line{{}, {}, {}}

	merged, raw, report := Aggregate(results, lines, false)
	if merged == nil {
		t.Fatal("expected merged output")
	}
	if raw != nil {
		t.Fatal("raw list must be nil when merged")
	}

	want := []int{1, 3}
	if len(merged.Rows) != len(want) {
		t.Fatalf("got %d rows, want %d", len(merged.Rows), len(want))
	}
	for i, row := range merged.Rows {
		if row.RouteNumber != want[i] {
			t.Fatalf("row %d route_number = %d, want %d", i, row.RouteNumber, want[i])
		}
	}
	if len(report.Excluded) != 1 || report.Excluded[0] != 2 {
		t.Fatalf("excluded = %v, want [2]", report.Excluded)
	}
}

func TestAggregateRouteAttributesWinCollisions(t *testing.T) {
	results := []domain.RouteResult{
		{
			Index: 0,
			Route: &domain.Route{Shape: "a", Rows: []domain.RouteRow{
				{Attributes: map[string]any{"source": "router"}},
			}},
		},
	}
	lines := []domain.Line{
		{Attributes: map[string]any{"source": "line", "name": "x"}},
	}

	merged, _, _ := Aggregate(results, lines, false)
	if merged == nil || len(merged.Rows) != 1 {
		t.Fatalf("merged = %+v, want 1 row", merged)
	}

	attrs := merged.Rows[0].Attributes
	if attrs["source"] != "router" {
		t.Fatalf("source = %v, want router attribute to win", attrs["source"])
	}
	if attrs["name"] != "x" {
		t.Fatalf("name = %v, want line attribute carried", attrs["name"])
	}
}
