package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/torosent/quickfire/internal/config"
	"github.com/torosent/quickfire/internal/metrics"
)

// WorkerResult is the record one worker handed back.
type WorkerResult struct {
	Worker int
	Stats  metrics.Statistics
}

// Result captures execution summary.
type Result struct {
	Workers  []WorkerResult     // one entry per worker, in worker order
	Stats    metrics.Statistics // sum of all worker records
	Duration time.Duration      // wall clock from first dispatch to last join
}

// Runner coordinates the concurrent workers of one run.
type Runner struct {
	opt       Options
	perWorker int
}

// New validates opt and returns a Runner ready to execute it. A total that
// does not split evenly is rejected with config.ErrNotDivisible.
func New(opt Options) (*Runner, error) {
	opt.normalize()
	if opt.NewRequester == nil {
		return nil, ErrNoRequester
	}
	if opt.TotalRequests%opt.Concurrency != 0 {
		return nil, fmt.Errorf("%w: %d requests over %d workers", config.ErrNotDivisible, opt.TotalRequests, opt.Concurrency)
	}
	return &Runner{opt: opt, perWorker: opt.TotalRequests / opt.Concurrency}, nil
}

// RequestsPerWorker returns how many exchanges each worker performs.
func (r *Runner) RequestsPerWorker() int {
	return r.perWorker
}

// Concurrency returns the number of workers.
func (r *Runner) Concurrency() int {
	return r.opt.Concurrency
}

// Run builds one requester per worker, starts every worker, waits for all of
// them and aggregates their statistics. The returned Result is valid even
// when err is non-nil; err joins the fatal errors of all workers.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	requesters := make([]Requester, 0, r.opt.Concurrency)
	for i := 0; i < r.opt.Concurrency; i++ {
		req, err := r.opt.NewRequester(i)
		if err != nil {
			closeAll(requesters)
			return Result{}, fmt.Errorf("worker %d: %w", i, err)
		}
		requesters = append(requesters, req)
	}
	defer closeAll(requesters)

	results := make([]WorkerResult, r.opt.Concurrency)
	errs := make([]error, r.opt.Concurrency)

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(r.opt.Concurrency)
	for i, req := range requesters {
		go func(id int, req Requester) {
			defer wg.Done()
			stats, err := runWorker(ctx, id, req, r.perWorker)
			results[id] = WorkerResult{Worker: id, Stats: stats}
			errs[id] = err
		}(i, req)
	}
	wg.Wait()
	elapsed := time.Since(start)

	parts := make([]metrics.Statistics, len(results))
	for i, wr := range results {
		parts[i] = wr.Stats
	}

	return Result{
		Workers:  results,
		Stats:    metrics.Aggregate(parts),
		Duration: elapsed,
	}, errors.Join(errs...)
}

func closeAll(requesters []Requester) {
	for _, req := range requesters {
		if c, ok := req.(io.Closer); ok {
			_ = c.Close()
		}
	}
}
