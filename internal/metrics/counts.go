package metrics

import "sort"

// ErrorCount is one row of an error breakdown.
type ErrorCount struct {
	Label string `json:"label" yaml:"label"`
	Count int64  `json:"count" yaml:"count"`
}

// FlattenErrorCounts converts a label->count map into rows sorted by
// descending count, then by label for stability.
func FlattenErrorCounts(counts map[string]int64) []ErrorCount {
	if len(counts) == 0 {
		return nil
	}
	rows := make([]ErrorCount, 0, len(counts))
	for label, count := range counts {
		rows = append(rows, ErrorCount{Label: label, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count == rows[j].Count {
			return rows[i].Label < rows[j].Label
		}
		return rows[i].Count > rows[j].Count
	})
	return rows
}

// StatusCount is one row of the response status breakdown.
type StatusCount struct {
	Code  string `json:"code" yaml:"code"`
	Count int64  `json:"count" yaml:"count"`
}

// FlattenStatusCounts converts a code->count map into rows sorted by
// descending count, then by code.
func FlattenStatusCounts(counts map[string]int64) []StatusCount {
	if len(counts) == 0 {
		return nil
	}
	rows := make([]StatusCount, 0, len(counts))
	for code, count := range counts {
		rows = append(rows, StatusCount{Code: code, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count == rows[j].Count {
			return rows[i].Code < rows[j].Code
		}
		return rows[i].Count > rows[j].Count
	})
	return rows
}
