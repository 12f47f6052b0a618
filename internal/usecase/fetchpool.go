package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"EarningsPull/internal/domain/models"
	"EarningsPull/internal/domain/repository"
	"EarningsPull/pkg/logger"
)

// FetchPool fans per-symbol tasks out over a fixed number of workers with one
// wall-clock deadline for the whole batch. One task's failure never touches
// its siblings; a task still running at the deadline is abandoned and its
// symbol is simply absent from the result map.
type FetchPool struct {
	workers int
	timeout time.Duration
	log     *logger.Logger
	metrics repository.Metrics
}

// NewFetchPool creates a pool. workers and timeout fall back to sane values
// when non-positive so a zero config cannot wedge a pass.
func NewFetchPool(workers int, timeout time.Duration, log *logger.Logger, metrics repository.Metrics) *FetchPool {
	if workers <= 0 {
		workers = 8
	}
	if timeout <= 0 {
		timeout = 300 * time.Second
	}
	return &FetchPool{workers: workers, timeout: timeout, log: log, metrics: metrics}
}

type taskResult[T any] struct {
	symbol string
	value  T
	err    error
}

// RunFetch executes fn for every symbol across pool.workers workers and
// returns symbol → value for the tasks that finished successfully before the
// batch deadline. Empty-result tasks (models.ErrNoData) are logged and
// omitted, same as failures; callers never see partial or zero values.
func RunFetch[T any](ctx context.Context, pool *FetchPool, op string, symbols []string, fn func(ctx context.Context, symbol string) (T, error)) map[string]T {
	out := make(map[string]T, len(symbols))
	if len(symbols) == 0 {
		return out
	}

	ctx, cancel := context.WithTimeout(ctx, pool.timeout)
	defer cancel()

	jobs := make(chan string)
	results := make(chan taskResult[T])

	var wg sync.WaitGroup
	for i := 0; i < pool.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sym := range jobs {
				v, err := fn(ctx, sym)
				select {
				case results <- taskResult[T]{symbol: sym, value: v, err: err}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, sym := range symbols {
			select {
			case jobs <- sym:
			case <-ctx.Done():
				return
			}
		}
	}()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	completed := 0
	inFlight := len(symbols)
	pool.metrics.SetInFlight(inFlight)
	defer pool.metrics.SetInFlight(0)

collect:
	for completed < len(symbols) {
		select {
		case res := <-results:
			completed++
			pool.metrics.SetInFlight(len(symbols) - completed)
			if res.err != nil {
				pool.collectErr(op, res.symbol, res.err)
				continue
			}
			pool.metrics.RecordFetch(op, "ok")
			out[res.symbol] = res.value
		case <-ctx.Done():
			pool.log.Warn("fetch batch deadline reached",
				logger.String("op", op),
				logger.Int("completed", completed),
				logger.Int("total", len(symbols)))
			pool.metrics.RecordError("batch_timeout")
			break collect
		case <-done:
			break collect
		}
	}
	return out
}

func (p *FetchPool) collectErr(op, symbol string, err error) {
	switch {
	case errors.Is(err, models.ErrNoData):
		p.metrics.RecordFetch(op, "empty")
		p.log.Debug("no upstream data",
			logger.String("op", op), logger.String("symbol", symbol))
	default:
		p.metrics.RecordFetch(op, "error")
		p.metrics.RecordError("fetch")
		p.log.Warn("fetch task failed",
			logger.String("op", op),
			logger.String("symbol", symbol),
			logger.Error(err))
	}
}
