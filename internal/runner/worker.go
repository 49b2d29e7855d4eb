package runner

import (
	"context"
	"fmt"

	"github.com/torosent/quickfire/internal/metrics"
)

// runWorker executes n exchanges sequentially on req and returns the
// worker's own statistics. Ordinary errors are counted; a fatal error stops
// the worker and is returned with the statistics gathered so far.
func runWorker(ctx context.Context, id int, req Requester, n int) (metrics.Statistics, error) {
	var stats metrics.Statistics
	for i := 0; i < n; i++ {
		ex, err := req.Do(ctx)
		if err != nil {
			if IsFatal(err) {
				return stats, fmt.Errorf("worker %d: %w", id, err)
			}
			stats.RecordFailure(err)
			continue
		}
		stats.RecordSuccess(ex)
	}
	return stats, nil
}
