// Package metrics holds the per-worker and aggregate outcome records of a run.
//
// Each worker owns one [Statistics] value for the whole run and returns it when
// its batch finishes; nothing in this package is shared between goroutines.
// The dispatcher reduces the returned values with [Aggregate]:
//
//	combined := metrics.Aggregate(perWorker)
//	mean, ok := combined.MeanLatency()
//	rps, ok := combined.RequestsPerSecond(concurrency)
//
// Only successful exchanges contribute to the accumulated duration, so the mean
// latency is undefined when nothing succeeded. Both derived figures report that
// case through their boolean result instead of returning NaN or Inf.
//
// Failed exchanges are also counted by a human-readable label (see
// [ErrorLabel]) so reports can show what kind of transport errors occurred.
package metrics
