package services

import (
	"batch-route-service/internal/domain"
	"batch-route-service/internal/platform/obs"
	"batch-route-service/internal/ports"
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
)

const defaultProgressEvery = 10

// One batch dispatch request.
type BatchRequest struct {
	Input   BatchInput
	Options ports.RouteOptions

	// Return the raw per-pair result list instead of a merged collection.
	ListOutput bool

	// Log a progress line every this many completed pairs when running
	// sequentially. Zero means the default cadence.
	ProgressEvery int

	// Optional work-distribution facility. Nil runs the batch
	// sequentially, in input order, with progress reporting.
	Pool ports.WorkerPool
}

// The outcome of one batch dispatch. Exactly one of Merged or Raw is
// set: Merged when a majority result shape existed and merging was
// requested, Raw otherwise (always all N slots, error markers included).
type BatchOutcome struct {
	RunID  string
	Merged *domain.RouteCollection
	Raw    []domain.RouteResult
	Report ExclusionReport
}

// Dispatch routes every OD pair of the batch through router and merges
// the successful results into one collection.
//
// Per-pair routing failures never abort the batch: the failing pair's
// slot becomes an error marker and dispatch continues. Only a malformed
// input (InputShapeError) surfaces as a returned error before any
// routing starts. A routing function that hangs for one pair stalls the
// whole batch; no timeout is imposed here beyond ctx passthrough.
func Dispatch(ctx context.Context, req BatchRequest, router ports.Router) (_ *BatchOutcome, err error) {
	runID := uuid.NewString()
	defer obs.Time(ctx, "services.Dispatch")(&err)

	if router == nil {
		return nil, fmt.Errorf("dispatch batch: router must be non-nil")
	}

	pairs, lines, err := NormalizeInput(req.Input)
	if err != nil {
		return nil, fmt.Errorf("dispatch batch: %w", err)
	}

	n := len(pairs)
	results := make([]domain.RouteResult, n)

	// Each job writes only its own slot, so pool completion order can
	// never reorder results.
	job := func(ctx context.Context, i int) {
		results[i] = invokePair(ctx, router, pairs[i], i, req.Options)
	}

	if req.Pool != nil {
		if err := req.Pool.MapOrdered(ctx, n, job); err != nil {
			return nil, fmt.Errorf("dispatch batch: worker pool: %w", err)
		}
	} else {
		every := req.ProgressEvery
		if every <= 0 {
			every = defaultProgressEvery
		}
		for i := 0; i < n; i++ {
			job(ctx, i)
			if (i+1)%every == 0 {
				log.Printf("run_id=%s progress=%d%% routed=%d total=%d",
					runID, (i+1)*100/n, i+1, n)
			}
		}
		if n > 0 && n%every != 0 {
			log.Printf("run_id=%s progress=100%% routed=%d total=%d", runID, n, n)
		}
	}

	merged, raw, report := Aggregate(results, lines, req.ListOutput)

	if len(report.Excluded) > 0 {
		log.Printf("run_id=%s excluded_routes=%v first_failure=%v",
			runID, report.Excluded, report.FirstFailure)
	}
	if merged != nil {
		log.Printf("run_id=%s returning=merged rows=%d shape=%s",
			runID, len(merged.Rows), merged.Shape)
	} else {
		log.Printf("run_id=%s returning=list results=%d", runID, len(raw))
	}

	return &BatchOutcome{
		RunID:  runID,
		Merged: merged,
		Raw:    raw,
		Report: report,
	}, nil
}

// invokePair calls the routing function for one pair and converts any
// failure, including a panic inside the routing function, into that
// pair's error marker. No failure crosses the per-pair boundary.
func invokePair(
	ctx context.Context,
	router ports.Router,
	pair domain.ODPair,
	i int,
	opts ports.RouteOptions,
) (res domain.RouteResult) {
	res = domain.RouteResult{Index: i}

	defer func() {
		if r := recover(); r != nil {
			res.Route = nil
			res.Err = fmt.Errorf("route pair %d: routing function panic: %v", i+1, r)
		}
	}()

	route, err := router.Route(ctx, pair.From, pair.To, opts)
	if err != nil {
		res.Err = fmt.Errorf("route pair %d: %w", i+1, err)
		return res
	}
	if route == nil || len(route.Rows) == 0 {
		res.Err = fmt.Errorf("route pair %d: routing function returned no route", i+1)
		return res
	}

	res.Route = route
	return res
}
