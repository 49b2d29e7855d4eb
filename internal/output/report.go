// Package output renders the result of a benchmark run as text, JSON or YAML.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/torosent/quickfire/internal/config"
	"github.com/torosent/quickfire/internal/metrics"
)

// notComputable is printed in place of a figure that has no defined value.
const notComputable = "n/a (no successful requests)"

// RunInfo describes the run a report belongs to.
type RunInfo struct {
	RunID         string
	Method        string
	URL           string
	Engine        string
	Concurrency   int
	TotalRequests int
}

// Report is the complete result of one run.
// Optional figures are nil when they are not computable.
type Report struct {
	RunID             string                `json:"run_id" yaml:"run_id"`
	Method            string                `json:"method" yaml:"method"`
	URL               string                `json:"url" yaml:"url"`
	Engine            string                `json:"engine,omitempty" yaml:"engine,omitempty"`
	Concurrency       int                   `json:"concurrency" yaml:"concurrency"`
	TotalRequests     int                   `json:"total_requests" yaml:"total_requests"`
	RequestsPerWorker int                   `json:"requests_per_worker" yaml:"requests_per_worker"`
	Successful        int64                 `json:"successful" yaml:"successful"`
	Errored           int64                 `json:"errored" yaml:"errored"`
	MeanLatencyMs     *float64              `json:"mean_latency_ms" yaml:"mean_latency_ms"`
	RequestsPerSec    *float64              `json:"requests_per_sec" yaml:"requests_per_sec"`
	WallClockMs       float64               `json:"wall_clock_ms" yaml:"wall_clock_ms"`
	WallClockRPS      *float64              `json:"wall_clock_rps" yaml:"wall_clock_rps"`
	Statuses          []metrics.StatusCount `json:"statuses,omitempty" yaml:"statuses,omitempty"`
	Errors            []metrics.ErrorCount  `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// NewReport derives every reported figure from the aggregated statistics.
// wall is the time between dispatch and join; it only feeds the wall-clock
// figures, never the modeled requests per second.
func NewReport(info RunInfo, stats metrics.Statistics, wall time.Duration) Report {
	r := Report{
		RunID:         info.RunID,
		Method:        info.Method,
		URL:           info.URL,
		Engine:        info.Engine,
		Concurrency:   info.Concurrency,
		TotalRequests: info.TotalRequests,
		Successful:    stats.Succeeded,
		Errored:       stats.Errored,
		WallClockMs:   float64(wall) / float64(time.Millisecond),
		Statuses:      metrics.FlattenStatusCounts(stats.Statuses),
		Errors:        metrics.FlattenErrorCounts(stats.Errors),
	}
	if info.Concurrency > 0 {
		r.RequestsPerWorker = info.TotalRequests / info.Concurrency
	}
	if mean, ok := stats.MeanSeconds(); ok {
		ms := mean * 1000
		r.MeanLatencyMs = &ms
	}
	if rps, ok := stats.RequestsPerSecond(info.Concurrency); ok {
		r.RequestsPerSec = &rps
	}
	if wall > 0 && stats.Succeeded > 0 {
		rps := float64(stats.Succeeded) / wall.Seconds()
		r.WallClockRPS = &rps
	}
	return r
}

// PrintRequestLine echoes the target before the run starts.
func PrintRequestLine(w io.Writer, method, url string) {
	fmt.Fprintf(w, "%s %s\n", method, url)
}

// PrintReport outputs the human-readable summary, one figure per line.
func PrintReport(w io.Writer, r Report) {
	fmt.Fprintf(w, "Successful:    %d\n", r.Successful)
	fmt.Fprintf(w, "Errored:       %d\n", r.Errored)
	fmt.Fprintf(w, "Concurrency:   %d\n", r.Concurrency)
	if r.MeanLatencyMs != nil {
		fmt.Fprintf(w, "Mean latency:  %.3f ms\n", *r.MeanLatencyMs)
	} else {
		fmt.Fprintf(w, "Mean latency:  %s\n", notComputable)
	}
	if r.RequestsPerSec != nil {
		fmt.Fprintf(w, "Requests/sec:  %.3f\n", *r.RequestsPerSec)
	} else {
		fmt.Fprintf(w, "Requests/sec:  %s\n", notComputable)
	}

	// Any response is a success; the breakdown shows what the server answered.
	if len(r.Statuses) > 0 {
		fmt.Fprintln(w, "\nStatus codes:")
		for _, row := range r.Statuses {
			fmt.Fprintf(w, "  HTTP %s: %d\n", row.Code, row.Count)
		}
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "\nErrors:")
		for _, row := range r.Errors {
			fmt.Fprintf(w, "  %s: %d\n", row.Label, row.Count)
		}
	}
}

// PrintJSONReport outputs a JSON-formatted report.
func PrintJSONReport(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// PrintYAMLReport outputs a YAML-formatted report.
func PrintYAMLReport(w io.Writer, r Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return err
	}
	return enc.Close()
}

// Print renders r in the requested format.
func Print(w io.Writer, format config.Format, r Report) error {
	switch format {
	case config.FormatJSON:
		return PrintJSONReport(w, r)
	case config.FormatYAML:
		return PrintYAMLReport(w, r)
	case config.FormatText, "":
		PrintReport(w, r)
		return nil
	default:
		return fmt.Errorf("unsupported report format %q", format)
	}
}
