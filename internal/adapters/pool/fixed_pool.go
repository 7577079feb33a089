package pool

import (
	"context"
	"errors"
	"sync"
)

// FixedPool is a work-distribution facility backed by a bounded set of
// in-process workers. Jobs are independent and each writes only to its
// own output slot, so the pool gives no ordering of execution — only
// the guarantee that all n jobs ran when MapOrdered returns nil.
type FixedPool struct {
	Workers int
}

func NewFixedPool(workers int) (*FixedPool, error) {
	if workers < 1 {
		return nil, errors.New("fixed pool: workers must be >= 1")
	}
	return &FixedPool{Workers: workers}, nil
}

// MapOrdered runs fn for every index 0..n-1 across the pool's workers.
// On context cancellation remaining jobs are not started and the
// context error is returned; jobs already running are awaited.
func (p *FixedPool) MapOrdered(ctx context.Context, n int, fn func(ctx context.Context, i int)) error {
	if n <= 0 {
		return nil
	}

	sem := make(chan struct{}, p.Workers)
	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return err
		}

		wg.Add(1)
		go func(i int) {
			sem <- struct{}{}
			defer wg.Done()
			defer func() { <-sem }()

			fn(ctx, i)
		}(i)
	}

	wg.Wait()
	return ctx.Err()
}
