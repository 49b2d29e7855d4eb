package runner

import (
	"context"

	"github.com/torosent/quickfire/internal/metrics"
)

// Requester abstracts executing a single exchange.
// It returns the time spent and the response status, or an error if the
// exchange failed.
type Requester interface {
	Do(ctx context.Context) (metrics.Exchange, error)
}

// RequesterFactory builds the Requester owned by one worker.
// worker is the zero-based worker index.
type RequesterFactory func(worker int) (Requester, error)

// Options configure the Runner.
type Options struct {
	Concurrency   int              // number of worker goroutines
	TotalRequests int              // total exchanges; must be a multiple of Concurrency
	NewRequester  RequesterFactory // per-worker requester constructor (required)
}

func (o *Options) normalize() {
	if o.Concurrency <= 0 {
		o.Concurrency = 1
	}
	if o.TotalRequests < 0 {
		o.TotalRequests = 0
	}
}

// RequesterFunc adapts a plain function to the Requester interface.
type RequesterFunc func(ctx context.Context) (metrics.Exchange, error)

// Do calls f(ctx).
func (f RequesterFunc) Do(ctx context.Context) (metrics.Exchange, error) {
	return f(ctx)
}
