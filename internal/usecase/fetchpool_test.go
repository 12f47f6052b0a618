package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"EarningsPull/pkg/logger"
)

func newTestPool(workers int, timeout time.Duration) *FetchPool {
	return NewFetchPool(workers, timeout, logger.Nop(), nopMetrics{})
}

func TestRunFetch_OmitsFailedSymbol(t *testing.T) {
	pool := newTestPool(2, 5*time.Second)
	symbols := []string{"A", "B", "C", "D", "E"}

	results := RunFetch(context.Background(), pool, "test", symbols,
		func(_ context.Context, sym string) (string, error) {
			if sym == "C" {
				return "", errors.New("always fails")
			}
			return "ok-" + sym, nil
		})

	if len(results) != 4 {
		t.Fatalf("got %d results, want 4", len(results))
	}
	if _, ok := results["C"]; ok {
		t.Error("failed symbol C present in results")
	}
	for _, sym := range []string{"A", "B", "D", "E"} {
		if results[sym] != "ok-"+sym {
			t.Errorf("results[%s] = %q", sym, results[sym])
		}
	}
}

func TestRunFetch_BoundedConcurrency(t *testing.T) {
	pool := newTestPool(2, 5*time.Second)

	var inFlight, peak int32
	results := RunFetch(context.Background(), pool, "test",
		[]string{"A", "B", "C", "D", "E", "F"},
		func(_ context.Context, sym string) (string, error) {
			n := atomic.AddInt32(&inFlight, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt32(&inFlight, -1)
			return sym, nil
		})

	if len(results) != 6 {
		t.Fatalf("got %d results, want 6", len(results))
	}
	if p := atomic.LoadInt32(&peak); p > 2 {
		t.Errorf("observed %d concurrent tasks, pool size is 2", p)
	}
}

func TestRunFetch_BatchTimeoutAbandonsBlockedTask(t *testing.T) {
	pool := newTestPool(2, 150*time.Millisecond)

	release := make(chan struct{})
	defer close(release)

	start := time.Now()
	results := RunFetch(context.Background(), pool, "test",
		[]string{"FAST", "STUCK"},
		func(ctx context.Context, sym string) (string, error) {
			if sym == "STUCK" {
				select {
				case <-release:
				case <-ctx.Done():
					return "", ctx.Err()
				}
			}
			return sym, nil
		})
	elapsed := time.Since(start)

	if elapsed > time.Second {
		t.Fatalf("RunFetch took %v, should return near the 150ms deadline", elapsed)
	}
	if _, ok := results["STUCK"]; ok {
		t.Error("blocked symbol present in results")
	}
	if results["FAST"] != "FAST" {
		t.Errorf("fast symbol missing from results: %v", results)
	}
}

func TestRunFetch_UncooperativeTaskStillReturns(t *testing.T) {
	pool := newTestPool(1, 100*time.Millisecond)

	var wg sync.WaitGroup
	wg.Add(1)
	block := make(chan struct{})

	start := time.Now()
	results := RunFetch(context.Background(), pool, "test", []string{"X"},
		func(context.Context, string) (string, error) {
			defer wg.Done()
			<-block // ignores ctx entirely
			return "X", nil
		})

	if time.Since(start) > time.Second {
		t.Fatal("RunFetch did not honor the batch deadline for an uncooperative task")
	}
	if len(results) != 0 {
		t.Fatalf("got %d results, want 0", len(results))
	}
	close(block)
	wg.Wait()
}

func TestRunFetch_NoSymbols(t *testing.T) {
	pool := newTestPool(2, time.Second)
	results := RunFetch(context.Background(), pool, "test", nil,
		func(context.Context, string) (string, error) { return "", nil })
	if len(results) != 0 {
		t.Fatalf("got %d results for empty input, want 0", len(results))
	}
}
