package ports

import (
	"context"
	"time"
)

// Summary of one completed batch dispatch, for audit and capacity review.
type BatchRun struct {
	RunID      string
	StartedAt  time.Time
	DurationMS int64
	PairCount  int
	Succeeded  int
	Excluded   int
	ListOutput bool
}

// Port: persistence for batch run summaries.
type BatchRunStore interface {
	RecordRun(ctx context.Context, run BatchRun) error
}
