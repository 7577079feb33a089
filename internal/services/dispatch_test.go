package services

import (
	"batch-route-service/internal/adapters/pool"
	"batch-route-service/internal/adapters/routing"
	"batch-route-service/internal/domain"
	"batch-route-service/internal/ports"
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

// stubRouter routes by pair index, which tests encode in the origin's
// longitude.
type stubRouter struct {
	fn func(i int) (*domain.Route, error)
}

func (s *stubRouter) Route(
	ctx context.Context,
	from, to domain.Coordinates,
	opts ports.RouteOptions,
) (*domain.Route, error) {
	return s.fn(int(from.Lon))
}

func pairInput(n int) CoordinatePairInput {
	in := CoordinatePairInput{}
	for i := 0; i < n; i++ {
		in.Origins = append(in.Origins, domain.Coordinates{Lon: float64(i), Lat: 0})
		in.Destinations = append(in.Destinations, domain.Coordinates{Lon: float64(i), Lat: 1})
	}
	return in
}

func simpleRoute(shape string, rows int) *domain.Route {
	r := &domain.Route{Shape: shape}
	for j := 0; j < rows; j++ {
		r.Rows = append(r.Rows, domain.RouteRow{
			Geometry: domain.LineString{Coordinates: []domain.Coordinates{
				{Lon: 0, Lat: 0}, {Lon: 1, Lat: 1},
			}},
			DistanceMeters:  100 * (j + 1),
			DurationSeconds: 60 * (j + 1),
		})
	}
	return r
}

func TestDispatchAllSuccessRouteNumbers(t *testing.T) {
	in := pairInput(5)

	pairs := make([]routing.MockPair, 0, len(in.Origins))
	for i := range in.Origins {
		pairs = append(pairs, routing.MockPair{
			From:  in.Origins[i],
			To:    in.Destinations[i],
			Shape: "a",
			Rows:  simpleRoute("a", 1).Rows,
		})
	}
	router := routing.NewMockRouter(pairs)

	outcome, err := Dispatch(context.Background(), BatchRequest{Input: in}, router)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if outcome.Merged == nil {
		t.Fatal("expected merged output")
	}
	if len(outcome.Merged.Rows) != 5 {
		t.Fatalf("got %d rows, want 5", len(outcome.Merged.Rows))
	}
	for i, row := range outcome.Merged.Rows {
		if row.RouteNumber != i+1 {
			t.Fatalf("row %d has route_number %d, want %d", i, row.RouteNumber, i+1)
		}
	}
	if len(outcome.Report.Excluded) != 0 {
		t.Fatalf("excluded = %v, want none", outcome.Report.Excluded)
	}
}

func TestDispatchSingleFailureContinues(t *testing.T) {
	boom := errors.New("backend unreachable")
	router := &stubRouter{fn: func(i int) (*domain.Route, error) {
		if i == 2 {
			return nil, boom
		}
		return simpleRoute("a", 2), nil
	}}

	outcome, err := Dispatch(context.Background(), BatchRequest{Input: pairInput(5)}, router)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if outcome.Merged == nil {
		t.Fatal("expected merged output")
	}
	// 4 successful routes at 2 rows each.
	if len(outcome.Merged.Rows) != 8 {
		t.Fatalf("got %d rows, want 8", len(outcome.Merged.Rows))
	}
	for _, row := range outcome.Merged.Rows {
		if row.RouteNumber == 3 {
			t.Fatal("failed route 3 leaked into merged output")
		}
	}

	if !reflect.DeepEqual(outcome.Report.Excluded, []int{3}) {
		t.Fatalf("excluded = %v, want [3]", outcome.Report.Excluded)
	}
	if outcome.Report.FirstFailure == nil || !errors.Is(outcome.Report.FirstFailure, boom) {
		t.Fatalf("first failure = %v, want wrapped %v", outcome.Report.FirstFailure, boom)
	}
}

func TestDispatchListOutput(t *testing.T) {
	router := &stubRouter{fn: func(i int) (*domain.Route, error) {
		if i == 1 {
			return nil, errors.New("no route")
		}
		return simpleRoute("a", 1), nil
	}}

	outcome, err := Dispatch(context.Background(), BatchRequest{
		Input:      pairInput(3),
		ListOutput: true,
	}, router)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if outcome.Merged != nil {
		t.Fatal("list output must not merge")
	}
	if len(outcome.Raw) != 3 {
		t.Fatalf("got %d raw results, want 3", len(outcome.Raw))
	}
	if !outcome.Raw[1].Failed() {
		t.Fatal("raw result 2 should carry the error marker")
	}
	if outcome.Raw[0].Failed() || outcome.Raw[2].Failed() {
		t.Fatal("successful results must stay untouched in list output")
	}
}

func TestDispatchAllFailuresReturnsRawList(t *testing.T) {
	router := &stubRouter{fn: func(i int) (*domain.Route, error) {
		return nil, fmt.Errorf("pair %d unroutable", i)
	}}

	outcome, err := Dispatch(context.Background(), BatchRequest{Input: pairInput(4)}, router)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if outcome.Merged != nil {
		t.Fatal("no majority shape exists, merged output must be nil")
	}
	if len(outcome.Raw) != 4 {
		t.Fatalf("got %d raw results, want 4", len(outcome.Raw))
	}
	if len(outcome.Report.Excluded) != 4 {
		t.Fatalf("excluded = %v, want all 4", outcome.Report.Excluded)
	}
}

func TestDispatchMajorityShapeVoting(t *testing.T) {
	router := &stubRouter{fn: func(i int) (*domain.Route, error) {
		if i >= 8 {
			return nil, errors.New("backend error")
		}
		return simpleRoute("a", 1), nil
	}}

	outcome, err := Dispatch(context.Background(), BatchRequest{Input: pairInput(10)}, router)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if outcome.Merged == nil {
		t.Fatal("expected merged output")
	}
	if len(outcome.Merged.Rows) != 8 {
		t.Fatalf("got %d rows, want 8", len(outcome.Merged.Rows))
	}
	if len(outcome.Report.Excluded) != 2 {
		t.Fatalf("excluded = %v, want 2 entries", outcome.Report.Excluded)
	}
}

func TestDispatchShapeMismatchExcluded(t *testing.T) {
	router := &stubRouter{fn: func(i int) (*domain.Route, error) {
		if i == 1 {
			return simpleRoute("b", 1), nil
		}
		return simpleRoute("a", 1), nil
	}}

	outcome, err := Dispatch(context.Background(), BatchRequest{Input: pairInput(4)}, router)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if outcome.Merged == nil || outcome.Merged.Shape != "a" {
		t.Fatalf("merged shape = %v, want majority shape a", outcome.Merged)
	}
	if !reflect.DeepEqual(outcome.Report.Excluded, []int{2}) {
		t.Fatalf("excluded = %v, want [2]", outcome.Report.Excluded)
	}
	if outcome.Report.FirstFailure == nil ||
		!strings.Contains(outcome.Report.FirstFailure.Error(), "shape") {
		t.Fatalf("first failure = %v, want shape mismatch detail", outcome.Report.FirstFailure)
	}
}

func TestDispatchParallelMatchesSequential(t *testing.T) {
	newRouter := func() ports.Router {
		return &stubRouter{fn: func(i int) (*domain.Route, error) {
			if i%7 == 3 {
				return nil, fmt.Errorf("pair %d unroutable", i)
			}
			return simpleRoute("a", 1+i%3), nil
		}}
	}

	seq, err := Dispatch(context.Background(), BatchRequest{Input: pairInput(20)}, newRouter())
	if err != nil {
		t.Fatalf("sequential dispatch: %v", err)
	}

	workers, err := pool.NewFixedPool(2)
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	par, err := Dispatch(context.Background(), BatchRequest{
		Input: pairInput(20),
		Pool:  workers,
	}, newRouter())
	if err != nil {
		t.Fatalf("parallel dispatch: %v", err)
	}

	if !reflect.DeepEqual(seq.Merged, par.Merged) {
		t.Fatal("parallel merged output differs from sequential")
	}
	if !reflect.DeepEqual(seq.Report.Excluded, par.Report.Excluded) {
		t.Fatalf("excluded differ: sequential=%v parallel=%v",
			seq.Report.Excluded, par.Report.Excluded)
	}
}

func TestDispatchRecoversRoutingPanic(t *testing.T) {
	router := &stubRouter{fn: func(i int) (*domain.Route, error) {
		if i == 1 {
			panic("index out of range in backend")
		}
		return simpleRoute("a", 1), nil
	}}

	outcome, err := Dispatch(context.Background(), BatchRequest{Input: pairInput(3)}, router)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(outcome.Report.Excluded, []int{2}) {
		t.Fatalf("excluded = %v, want [2]", outcome.Report.Excluded)
	}
	if outcome.Report.FirstFailure == nil ||
		!strings.Contains(outcome.Report.FirstFailure.Error(), "panic") {
		t.Fatalf("first failure = %v, want panic detail", outcome.Report.FirstFailure)
	}
}

func TestDispatchCarriesLineAttributes(t *testing.T) {
	router := &stubRouter{fn: func(i int) (*domain.Route, error) {
		return simpleRoute("a", 2), nil
	}}

	in := LineCollectionInput{
		Lines: []domain.Line{
			{
				Vertices:   []domain.Coordinates{{Lon: 0, Lat: 0}, {Lon: 0, Lat: 1}},
				Attributes: map[string]any{"road": "main"},
			},
		},
	}

	outcome, err := Dispatch(context.Background(), BatchRequest{Input: in}, router)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if outcome.Merged == nil || len(outcome.Merged.Rows) != 2 {
		t.Fatalf("merged = %+v, want 2 rows", outcome.Merged)
	}
	// Attributes replicate across every row the route produced.
	for i, row := range outcome.Merged.Rows {
		if row.Attributes["road"] != "main" {
			t.Fatalf("row %d attributes = %v, want road=main", i, row.Attributes)
		}
	}
}

func TestDispatchMalformedInputIsFatal(t *testing.T) {
	router := &stubRouter{fn: func(i int) (*domain.Route, error) {
		t.Fatal("routing must not start on malformed input")
		return nil, nil
	}}

	in := CoordinatePairInput{
		Origins:      []domain.Coordinates{{Lon: 1, Lat: 1}, {Lon: 2, Lat: 2}},
		Destinations: []domain.Coordinates{{Lon: 1, Lat: 1}},
	}

	_, err := Dispatch(context.Background(), BatchRequest{Input: in}, router)

	var shapeErr *InputShapeError
	if !errors.As(err, &shapeErr) {
		t.Fatalf("error = %v, want InputShapeError", err)
	}
}
