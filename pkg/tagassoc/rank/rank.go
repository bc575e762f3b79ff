package rank

import (
	"cmp"
	"slices"
)

// Scored is a candidate tag with its score.
type Scored struct {
	ID    int
	Score float64
}

// Accumulator sums scores per candidate ID and averages them.
type Accumulator struct {
	sum   []float64
	count []int
}

// NewAccumulator creates an accumulator for IDs in [0, n).
func NewAccumulator(n int) *Accumulator {
	return &Accumulator{
		sum:   make([]float64, n),
		count: make([]int, n),
	}
}

// Add records one score for id.
func (a *Accumulator) Add(id int, score float64) {
	a.sum[id] += score
	a.count[id]++
}

// Means returns the mean score of every candidate that received at least
// one score, dropping candidates whose mean is not strictly positive.
// Results are in ascending ID order.
func (a *Accumulator) Means() []Scored {
	var out []Scored
	for id, n := range a.count {
		if n == 0 {
			continue
		}
		mean := a.sum[id] / float64(n)
		if mean > 0 {
			out = append(out, Scored{ID: id, Score: mean})
		}
	}
	return out
}

// TopK sorts items by descending score and keeps the first n. Equal scores
// are ordered by ascending ID so the output is deterministic. n <= 0 keeps
// everything. items is sorted in place.
func TopK(items []Scored, n int) []Scored {
	slices.SortFunc(items, func(x, y Scored) int {
		if c := cmp.Compare(y.Score, x.Score); c != 0 {
			return c
		}
		return cmp.Compare(x.ID, y.ID)
	})
	if n > 0 && len(items) > n {
		items = items[:n]
	}
	return items
}
