package folio

import "slices"

// Stats summarizes a series. Fields are nil for an empty series.
type Stats struct {
	High   *float64 `json:"high"`
	Low    *float64 `json:"low"`
	Median *float64 `json:"median"`
}

// ComputeStats returns the maximum, minimum and median of values.
func ComputeStats(values []float64) Stats {
	if len(values) == 0 {
		return Stats{}
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	low, high := sorted[0], sorted[len(sorted)-1]
	mid := len(sorted) / 2
	median := sorted[mid]
	if len(sorted)%2 == 0 {
		median = (sorted[mid-1] + sorted[mid]) / 2
	}
	return Stats{High: &high, Low: &low, Median: &median}
}
