package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccumulatorMeans(t *testing.T) {
	acc := NewAccumulator(5)
	acc.Add(1, 0.8)
	acc.Add(1, 0.4)
	acc.Add(3, 0.5)
	acc.Add(4, 0.2)
	acc.Add(4, -0.6)

	means := acc.Means()
	assert.Len(t, means, 2)
	assert.Equal(t, 1, means[0].ID)
	assert.InDelta(t, 0.6, means[0].Score, 1e-12)
	assert.Equal(t, Scored{ID: 3, Score: 0.5}, means[1])
}

func TestAccumulatorEmpty(t *testing.T) {
	assert.Empty(t, NewAccumulator(3).Means())
	assert.Empty(t, NewAccumulator(0).Means())
}

func TestTopK(t *testing.T) {
	items := []Scored{
		{ID: 4, Score: 0.3},
		{ID: 1, Score: 0.9},
		{ID: 7, Score: 0.3},
		{ID: 2, Score: 0.5},
		{ID: 0, Score: 0.3},
	}

	tests := []struct {
		n    int
		want []int
	}{
		{0, []int{1, 2, 0, 4, 7}},
		{-1, []int{1, 2, 0, 4, 7}},
		{2, []int{1, 2}},
		{4, []int{1, 2, 0, 4}},
		{10, []int{1, 2, 0, 4, 7}},
	}
	for _, tt := range tests {
		in := append([]Scored(nil), items...)
		var ids []int
		for _, s := range TopK(in, tt.n) {
			ids = append(ids, s.ID)
		}
		assert.Equal(t, tt.want, ids, "n=%d", tt.n)
	}
}

func TestTopKEmpty(t *testing.T) {
	assert.Empty(t, TopK(nil, 3))
}
