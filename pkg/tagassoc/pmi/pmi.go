// Package pmi scores tag pairs by normalized pointwise mutual information
// and turns a co-occurrence matrix into an association matrix.
package pmi

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrMissingTagStatistic means the marginal table does not cover every
	// tag the co-occurrence matrix refers to.
	ErrMissingTagStatistic = errors.New("pmi: missing tag statistic")

	// ErrNoPosts is returned when a transform is asked to score a non-empty
	// matrix with a post count of zero.
	ErrNoPosts = errors.New("pmi: post count must be positive")

	// ErrUnknownFormula is returned by ParseFormula.
	ErrUnknownFormula = errors.New("pmi: unknown formula")
)

// Formula selects how a pair is scored from its probabilities.
type Formula int

const (
	// Standard is NPMI with both marginals:
	// (log2 p(x,y) - log2 p(x) - log2 p(y)) / -log2 p(x,y)
	Standard Formula = iota

	// RowMarginal uses the row tag's marginal for both p(x) and p(y).
	RowMarginal

	// Ratio is log2 p(x,y) / (log2 p(x) * log2 p(y)).
	Ratio
)

var formulaNames = map[Formula]string{
	Standard:    "standard",
	RowMarginal: "row-marginal",
	Ratio:       "ratio",
}

func (f Formula) String() string {
	if name, ok := formulaNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Formula(%d)", int(f))
}

// ParseFormula maps a configuration name to a Formula. The empty string
// selects Standard.
func ParseFormula(name string) (Formula, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Standard, nil
	}
	for f, n := range formulaNames {
		if n == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%q: %w", name, ErrUnknownFormula)
}

// Calculator scores pairs with one Formula.
type Calculator struct {
	formula Formula
}

// NewCalculator creates a calculator for the given formula.
func NewCalculator(f Formula) *Calculator {
	return &Calculator{formula: f}
}

// Formula returns the formula in use.
func (c *Calculator) Formula() Formula {
	return c.formula
}

// Score computes the association from probabilities. All three must be
// positive; a stored co-occurrence guarantees that.
func (c *Calculator) Score(pXY, pX, pY float64) float64 {
	switch c.formula {
	case RowMarginal:
		return (math.Log2(pXY) - 2*math.Log2(pX)) / -math.Log2(pXY)
	case Ratio:
		return math.Log2(pXY) / (math.Log2(pX) * math.Log2(pY))
	default:
		return (math.Log2(pXY) - math.Log2(pX) - math.Log2(pY)) / -math.Log2(pXY)
	}
}
