package pmi

import (
	"fmt"
	"math"

	"github.com/cognicore/tagassoc/pkg/tagassoc/sparse"
)

// CountSource reports how many posts carry each tag ID.
type CountSource interface {
	Len() int
	Count(id int) uint32
}

// Marginals precomputes count(id)/nPosts for every tag ID so the transform
// does one slice lookup per cell.
func Marginals(src CountSource, nPosts int) []float64 {
	out := make([]float64, src.Len())
	if nPosts <= 0 {
		return out
	}
	inv := 1 / float64(nPosts)
	for id := range out {
		out[id] = float64(src.Count(id)) * inv
	}
	return out
}

// Transform scores every stored co-occurrence count and keeps the cells
// whose score is strictly positive and finite. Ratio divides by zero when
// a tag is on every post; those cells are dropped. The result has the same shape as co.
//
// Cells are visited in row-major, ascending-column order. co never stores
// a diagonal cell, so neither does the result.
func (c *Calculator) Transform(nPosts int, co *sparse.Matrix, marginal []float64) (*sparse.Matrix, error) {
	rows, cols := co.Shape()
	if len(marginal) < max(rows, cols) {
		return nil, fmt.Errorf("%d marginals for a %dx%d matrix: %w", len(marginal), rows, cols, ErrMissingTagStatistic)
	}
	if co.NNZ() > 0 && nPosts <= 0 {
		return nil, fmt.Errorf("%d posts: %w", nPosts, ErrNoPosts)
	}

	inv := 1 / float64(nPosts)
	kept := make([]sparse.Entry, 0, co.NNZ()/2)
	for e := range co.All() {
		score := c.Score(e.Value*inv, marginal[e.Row], marginal[e.Col])
		if score > 0 && !math.IsInf(score, 1) {
			kept = append(kept, sparse.Entry{Row: e.Row, Col: e.Col, Value: score})
		}
	}
	return sparse.FromEntries(kept, rows, cols)
}
