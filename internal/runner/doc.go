// Package runner provides the benchmark execution engine for quickfire.
//
// A run splits TotalRequests evenly across Concurrency workers. Every worker
// owns its own [Requester] and its own [metrics.Statistics], executes its
// share of exchanges strictly one after another, and hands its record back
// when done. The runner joins all workers and sums their records; nothing is
// shared between workers while they run.
//
// # Basic Usage
//
//	r, err := runner.New(runner.Options{
//		Concurrency:   10,
//		TotalRequests: 1000,
//		NewRequester: func(worker int) (runner.Requester, error) {
//			return newMyRequester(), nil
//		},
//	})
//	if err != nil {
//		return err // config.ErrNotDivisible
//	}
//	result, err := r.Run(ctx)
//
// # Requester Interface
//
// The [Requester] interface defines one exchange:
//
//	type Requester interface {
//		Do(ctx context.Context) (metrics.Exchange, error)
//	}
//
// The returned [metrics.Exchange] carries the time spent on the exchange
// itself and the response status; any status counts as a success. A non-nil error is
// counted as a failed exchange and the worker moves on, unless the error was
// wrapped with [Fatal], in which case the worker stops and the error is
// returned from [Runner.Run] once every worker has been joined.
//
// # Middleware
//
//   - [WithLogging]: report every exchange to an [ExchangeLogger]
package runner
