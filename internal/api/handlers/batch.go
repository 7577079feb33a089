package handlers

import (
	"batch-route-service/internal/api/dto"
	"batch-route-service/internal/domain"
	"batch-route-service/internal/ports"
	"batch-route-service/internal/services"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"
)

const maxBatchWorkers = 16

type BatchHandler struct {
	Router ports.Router
	Repo   ports.ODPairRepository
	Runs   ports.BatchRunStore

	// NewPool builds a work-distribution facility for the requested
	// worker count. Nil disables parallel execution.
	NewPool func(workers int) (ports.WorkerPool, error)
}

// Route dispatches one batch of OD pairs and returns either a merged
// collection or the raw per-pair list.
func (h *BatchHandler) Route(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.BatchRouteRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	input, err := h.resolveInput(r.Context(), req)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if req.Workers < 0 || req.Workers > maxBatchWorkers {
		writeError(w, r, http.StatusBadRequest, "workers must be between 0 and 16")
		return
	}

	var pool ports.WorkerPool
	if req.Workers > 1 && h.NewPool != nil {
		pool, err = h.NewPool(req.Workers)
		if err != nil {
			log.Printf("build worker pool failed: %v", err)
			writeError(w, r, http.StatusInternalServerError, "internal server error")
			return
		}
	}

	svcReq := services.BatchRequest{
		Input:         input,
		Options:       ports.RouteOptions{Profile: req.Profile},
		ListOutput:    req.ListOutput,
		ProgressEvery: req.ProgressEvery,
		Pool:          pool,
	}

	started := time.Now()
	outcome, err := services.Dispatch(r.Context(), svcReq, h.Router)
	if err != nil {
		var shapeErr *services.InputShapeError
		if errors.As(err, &shapeErr) {
			writeError(w, r, http.StatusBadRequest, shapeErr.Error())
			return
		}
		log.Printf("dispatch batch failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	h.recordRun(r.Context(), req, outcome, started)

	if outcome.Merged != nil {
		writeJSON(w, r, http.StatusOK, mergedResponse(outcome))
		return
	}
	writeJSON(w, r, http.StatusOK, listResponse(outcome))
}

// resolveInput maps the request body onto the dispatcher's input union.
func (h *BatchHandler) resolveInput(ctx context.Context, req dto.BatchRouteRequest) (services.BatchInput, error) {
	given := 0
	if len(req.Pairs) > 0 {
		given++
	}
	if len(req.Lines) > 0 {
		given++
	}
	if req.Seeded {
		given++
	}
	if given != 1 {
		return nil, errors.New("exactly one of pairs, lines, or seeded is required")
	}

	switch {
	case req.Seeded:
		if h.Repo == nil {
			return nil, errors.New("no seeded OD pairs are configured")
		}
		pairs, err := h.Repo.ListODPairs(ctx)
		if err != nil {
			return nil, errors.New("listing seeded OD pairs failed")
		}
		origins := make([]domain.Coordinates, 0, len(pairs))
		dests := make([]domain.Coordinates, 0, len(pairs))
		for _, p := range pairs {
			origins = append(origins, p.From)
			dests = append(dests, p.To)
		}
		return services.CoordinatePairInput{Origins: origins, Destinations: dests}, nil

	case len(req.Lines) > 0:
		lines := make([]domain.Line, 0, len(req.Lines))
		for _, l := range req.Lines {
			vertices := make([]domain.Coordinates, 0, len(l.Vertices))
			for _, v := range l.Vertices {
				if len(v) != 2 {
					return nil, errors.New("line vertices must be [lon, lat] pairs")
				}
				vertices = append(vertices, domain.Coordinates{Lon: v[0], Lat: v[1]})
			}
			lines = append(lines, domain.Line{Vertices: vertices, Attributes: l.Attributes})
		}
		return services.LineCollectionInput{Lines: lines}, nil

	default:
		origins := make([]domain.Coordinates, 0, len(req.Pairs))
		dests := make([]domain.Coordinates, 0, len(req.Pairs))
		for _, p := range req.Pairs {
			origins = append(origins, domain.Coordinates{Lon: p.FromLon, Lat: p.FromLat})
			dests = append(dests, domain.Coordinates{Lon: p.ToLon, Lat: p.ToLat})
		}
		return services.CoordinatePairInput{Origins: origins, Destinations: dests}, nil
	}
}

// recordRun persists a run summary when a store is configured.
// Failures are logged, never surfaced: auditing must not fail a batch.
func (h *BatchHandler) recordRun(
	ctx context.Context,
	req dto.BatchRouteRequest,
	outcome *services.BatchOutcome,
	started time.Time,
) {
	if h.Runs == nil {
		return
	}

	total := len(outcome.Raw)
	if outcome.Merged != nil {
		seen := map[int]struct{}{}
		for _, row := range outcome.Merged.Rows {
			seen[row.RouteNumber] = struct{}{}
		}
		total = len(seen) + len(outcome.Report.Excluded)
	}

	run := ports.BatchRun{
		RunID:      outcome.RunID,
		StartedAt:  started,
		DurationMS: time.Since(started).Milliseconds(),
		PairCount:  total,
		Succeeded:  total - len(outcome.Report.Excluded),
		Excluded:   len(outcome.Report.Excluded),
		ListOutput: req.ListOutput,
	}

	if err := h.Runs.RecordRun(ctx, run); err != nil {
		log.Printf("record batch run failed: %v", err)
	}
}

func mergedResponse(outcome *services.BatchOutcome) dto.BatchRouteResponse {
	res := dto.BatchRouteResponse{
		RunID:    outcome.RunID,
		Shape:    outcome.Merged.Shape,
		Rows:     make([]dto.MergedRowJSON, 0, len(outcome.Merged.Rows)),
		Excluded: outcome.Report.Excluded,
	}
	if outcome.Report.FirstFailure != nil {
		res.Failure = outcome.Report.FirstFailure.Error()
	}

	for _, row := range outcome.Merged.Rows {
		res.Rows = append(res.Rows, dto.MergedRowJSON{
			RouteNumber:     row.RouteNumber,
			Geometry:        geometryJSON(row.Geometry),
			DistanceMeters:  row.DistanceMeters,
			DurationSeconds: row.DurationSeconds,
			Attributes:      row.Attributes,
		})
	}
	return res
}

func listResponse(outcome *services.BatchOutcome) dto.BatchRouteListResponse {
	res := dto.BatchRouteListResponse{
		RunID:    outcome.RunID,
		Results:  make([]dto.RouteResultJSON, 0, len(outcome.Raw)),
		Excluded: outcome.Report.Excluded,
	}

	for _, r := range outcome.Raw {
		item := dto.RouteResultJSON{RouteNumber: r.Index + 1}
		if r.Failed() {
			item.Error = r.Err.Error()
		} else if r.Route != nil {
			item.Shape = r.Route.Shape
			item.Rows = make([]dto.RouteRowJSON, 0, len(r.Route.Rows))
			for _, row := range r.Route.Rows {
				item.Rows = append(item.Rows, dto.RouteRowJSON{
					Geometry:        geometryJSON(row.Geometry),
					DistanceMeters:  row.DistanceMeters,
					DurationSeconds: row.DurationSeconds,
					Attributes:      row.Attributes,
				})
			}
		}
		res.Results = append(res.Results, item)
	}
	return res
}

func geometryJSON(g domain.LineString) [][]float64 {
	out := make([][]float64, 0, len(g.Coordinates))
	for _, c := range g.Coordinates {
		out = append(out, c.CoordsToList())
	}
	return out
}
