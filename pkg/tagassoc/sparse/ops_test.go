package sparse

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestAddDisjointIsUnion(t *testing.T) {
	a := mustFromEntries(t, []Entry{{Row: 0, Col: 0, Value: 1}, {Row: 1, Col: 2, Value: 3}}, 2, 3)
	b := mustFromEntries(t, []Entry{{Row: 0, Col: 1, Value: 2}, {Row: 1, Col: 0, Value: 4}}, 2, 3)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{Row: 0, Col: 0, Value: 1},
		{Row: 0, Col: 1, Value: 2},
		{Row: 1, Col: 0, Value: 4},
		{Row: 1, Col: 2, Value: 3},
	}, sum.Entries())
	assertRowsAscending(t, sum)
	require.NoError(t, sum.Validate())
}

func TestAddOverlapSumsAndDropsZero(t *testing.T) {
	a := mustFromEntries(t, []Entry{
		{Row: 0, Col: 0, Value: 1},
		{Row: 0, Col: 1, Value: 2},
		{Row: 1, Col: 1, Value: 5},
	}, 2, 2)
	b := mustFromEntries(t, []Entry{
		{Row: 0, Col: 0, Value: -1},
		{Row: 0, Col: 1, Value: 3},
		{Row: 1, Col: 0, Value: 1},
	}, 2, 2)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{Row: 0, Col: 1, Value: 5},
		{Row: 1, Col: 0, Value: 1},
		{Row: 1, Col: 1, Value: 5},
	}, sum.Entries())
	assert.Equal(t, []int{0, 1, 3}, sum.Raw().RowPtr)
}

func TestAddCancelsWholeRow(t *testing.T) {
	a := mustFromEntries(t, []Entry{{Row: 0, Col: 0, Value: 2}, {Row: 0, Col: 3, Value: 1}}, 1, 4)
	b := mustFromEntries(t, []Entry{{Row: 0, Col: 0, Value: -2}, {Row: 0, Col: 3, Value: -1}}, 1, 4)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, 0, sum.NNZ())
	assert.Equal(t, []int{0, 0}, sum.Raw().RowPtr)
}

func TestAddDimensionMismatch(t *testing.T) {
	a := New(2, 3)
	for _, b := range []*Matrix{New(3, 3), New(2, 2)} {
		_, err := a.Add(b)
		assert.ErrorIs(t, err, ErrDimensionMismatch)
	}
}

func TestAddInPlace(t *testing.T) {
	acc := New(3, 3)
	part := mustFromEntries(t, []Entry{{Row: 2, Col: 1, Value: 1}}, 3, 3)

	require.NoError(t, acc.AddInPlace(part))
	require.NoError(t, acc.AddInPlace(part))
	v, err := acc.Value(2, 1)
	require.NoError(t, err)
	assert.Equal(t, 2.0, v)

	before := acc.Raw()
	assert.ErrorIs(t, acc.AddInPlace(New(2, 2)), ErrDimensionMismatch)
	assert.Equal(t, before, acc.Raw())
}

func TestAddMatchesDense(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	a := randomMatrix(rng, 12, 9, 40)
	b := randomMatrix(rng, 12, 9, 40)

	sum, err := a.Add(b)
	require.NoError(t, err)

	var want mat.Dense
	want.Add(a.ToDense(), b.ToDense())
	assert.True(t, mat.Equal(&want, sum.ToDense()))
}

func TestAddCommutativeAndAssociative(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	parts := make([]*Matrix, 5)
	for i := range parts {
		parts[i] = randomMatrix(rng, 20, 20, 60)
	}
	// one negated copy forces cancellations inside the fold
	neg := make([]Entry, 0, parts[0].NNZ())
	for e := range parts[0].All() {
		neg = append(neg, Entry{Row: e.Row, Col: e.Col, Value: -e.Value})
	}
	parts = append(parts, mustFromEntries(t, neg, 20, 20))

	fold := func(order []int) *Matrix {
		acc := New(20, 20)
		for _, i := range order {
			require.NoError(t, acc.AddInPlace(parts[i]))
		}
		return acc
	}

	want := fold([]int{0, 1, 2, 3, 4, 5})
	for _, order := range [][]int{
		{5, 4, 3, 2, 1, 0},
		{2, 5, 0, 3, 1, 4},
		{1, 0, 3, 2, 5, 4},
	} {
		got := fold(order)
		assert.True(t, want.Equal(got), "order %v", order)
	}

	// (a+b)+c == a+(b+c)
	ab, err := parts[1].Add(parts[2])
	require.NoError(t, err)
	left, err := ab.Add(parts[3])
	require.NoError(t, err)
	bc, err := parts[2].Add(parts[3])
	require.NoError(t, err)
	right, err := parts[1].Add(bc)
	require.NoError(t, err)
	assert.True(t, left.Equal(right))
	assertRowsAscending(t, left)
}

func BenchmarkAdd(b *testing.B) {
	rng := rand.New(rand.NewSource(3))
	x := randomMatrix(rng, 2000, 2000, 50000)
	y := randomMatrix(rng, 2000, 2000, 50000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := x.Add(y); err != nil {
			b.Fatal(err)
		}
	}
}
