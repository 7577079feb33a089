package ports

import "context"

// Port: a work-distribution facility for independent index jobs.
//
// MapOrdered runs fn once per index 0..n-1. Each job writes only to its
// own pre-sized output slot, so completion order never affects result
// order. Implementations must run every index exactly once and return
// only after all jobs finished (or the context was cancelled).
type WorkerPool interface {
	MapOrdered(ctx context.Context, n int, fn func(ctx context.Context, i int)) error
}
