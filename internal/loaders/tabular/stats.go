package tabular

import (
	"math"
	"slices"
)

// stats are descriptive statistics over the present values of a column slice.
type stats struct {
	count  int
	min    float64
	max    float64
	mean   float64
	median float64
}

// describe computes stats over values, skipping NaN.
// With no present values every field except count is NaN.
func describe(values []float64) stats {
	present := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			present = append(present, v)
		}
	}
	if len(present) == 0 {
		nan := math.NaN()
		return stats{min: nan, max: nan, mean: nan, median: nan}
	}

	slices.Sort(present)
	sum := 0.0
	for _, v := range present {
		sum += v
	}

	n := len(present)
	median := present[n/2]
	if n%2 == 0 {
		median = (present[n/2-1] + present[n/2]) / 2
	}

	return stats{
		count:  n,
		min:    present[0],
		max:    present[n-1],
		mean:   sum / float64(n),
		median: median,
	}
}

// distinct returns up to limit distinct present cells in first-seen order.
func distinct(cells []string, limit int) []string {
	out := make([]string, 0, limit)
	seen := make(map[string]bool, limit)
	for _, c := range cells {
		if isNull(c) || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
		if len(out) == limit {
			break
		}
	}
	return out
}
