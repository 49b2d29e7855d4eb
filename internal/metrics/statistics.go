package metrics

import (
	"strconv"
	"time"
)

// Exchange is what a requester reports for one completed request.
type Exchange struct {
	Elapsed time.Duration
	Status  int // response status code, 0 when none was received
}

// Statistics is the outcome record of one worker, or of a whole run once aggregated.
type Statistics struct {
	Succeeded     int64            `json:"succeeded" yaml:"succeeded"`
	Errored       int64            `json:"errored" yaml:"errored"`
	TotalDuration time.Duration    `json:"-" yaml:"-"` // summed over successful exchanges only
	Errors        map[string]int64 `json:"errors,omitempty" yaml:"errors,omitempty"`
	Statuses      map[string]int64 `json:"statuses,omitempty" yaml:"statuses,omitempty"` // status code -> successful exchanges
}

// RecordSuccess counts one successful exchange. Any response counts as a
// success whatever its status; the status is only tallied.
func (s *Statistics) RecordSuccess(ex Exchange) {
	s.Succeeded++
	s.TotalDuration += ex.Elapsed
	if ex.Status > 0 {
		if s.Statuses == nil {
			s.Statuses = make(map[string]int64)
		}
		s.Statuses[strconv.Itoa(ex.Status)]++
	}
}

// RecordFailure counts one failed exchange. Its duration is not accumulated.
func (s *Statistics) RecordFailure(err error) {
	s.Errored++
	if s.Errors == nil {
		s.Errors = make(map[string]int64)
	}
	s.Errors[ErrorLabel(err)]++
}

// Total returns the number of exchanges recorded.
func (s Statistics) Total() int64 {
	return s.Succeeded + s.Errored
}

// TotalSeconds returns the accumulated successful duration in seconds.
func (s Statistics) TotalSeconds() float64 {
	return s.TotalDuration.Seconds()
}

// Merge returns the element-wise sum of s and other. Neither input is modified.
func (s Statistics) Merge(other Statistics) Statistics {
	out := Statistics{
		Succeeded:     s.Succeeded + other.Succeeded,
		Errored:       s.Errored + other.Errored,
		TotalDuration: s.TotalDuration + other.TotalDuration,
	}
	out.Errors = mergeCounts(s.Errors, other.Errors)
	out.Statuses = mergeCounts(s.Statuses, other.Statuses)
	return out
}

func mergeCounts(a, b map[string]int64) map[string]int64 {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make(map[string]int64, len(a)+len(b))
	for k, v := range a {
		out[k] += v
	}
	for k, v := range b {
		out[k] += v
	}
	return out
}

// Aggregate sums a set of per-worker records. The result does not depend on order.
func Aggregate(parts []Statistics) Statistics {
	var combined Statistics
	for _, p := range parts {
		combined = combined.Merge(p)
	}
	return combined
}

// MeanSeconds returns the mean successful latency in seconds.
// ok is false when no exchange succeeded.
func (s Statistics) MeanSeconds() (mean float64, ok bool) {
	if s.Succeeded <= 0 {
		return 0, false
	}
	return s.TotalSeconds() / float64(s.Succeeded), true
}

// MeanLatency is MeanSeconds as a time.Duration.
func (s Statistics) MeanLatency() (time.Duration, bool) {
	mean, ok := s.MeanSeconds()
	if !ok {
		return 0, false
	}
	return time.Duration(mean * float64(time.Second)), true
}

// RequestsPerSecond models sustained throughput as concurrency divided by the
// mean latency: every worker is assumed busy for the whole run, each paced by
// the mean. ok is false when the mean is not computable or is zero.
func (s Statistics) RequestsPerSecond(concurrency int) (rps float64, ok bool) {
	mean, ok := s.MeanSeconds()
	if !ok || mean <= 0 || concurrency <= 0 {
		return 0, false
	}
	return float64(concurrency) / mean, true
}
