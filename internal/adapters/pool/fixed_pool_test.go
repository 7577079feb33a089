package pool

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestFixedPoolRunsEveryIndexOnce(t *testing.T) {
	p, err := NewFixedPool(3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	const n = 50
	var counts [n]int32

	err = p.MapOrdered(context.Background(), n, func(ctx context.Context, i int) {
		atomic.AddInt32(&counts[i], 1)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, c := range counts {
		if c != 1 {
			t.Fatalf("index %d ran %d times, want exactly once", i, c)
		}
	}
}

func TestFixedPoolSlotWritesStayOrdered(t *testing.T) {
	p, err := NewFixedPool(4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	const n = 100
	out := make([]int, n)

	err = p.MapOrdered(context.Background(), n, func(ctx context.Context, i int) {
		// Uneven job durations shuffle completion order.
		if i%5 == 0 {
			time.Sleep(time.Millisecond)
		}
		out[i] = i * 10
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, v := range out {
		if v != i*10 {
			t.Fatalf("slot %d = %d, want %d", i, v, i*10)
		}
	}
}

func TestFixedPoolRespectsCancellation(t *testing.T) {
	p, err := NewFixedPool(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := p.MapOrdered(ctx, 10, func(ctx context.Context, i int) {}); err == nil {
		t.Fatal("expected context error after cancellation")
	}
}

func TestFixedPoolRejectsZeroWorkers(t *testing.T) {
	if _, err := NewFixedPool(0); err == nil {
		t.Fatal("expected error for zero workers")
	}
}
