package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/tagassoc/pkg/tagassoc/internalerr"
	"github.com/cognicore/tagassoc/pkg/tagassoc/rank"
	"github.com/cognicore/tagassoc/pkg/tagassoc/sparse"
	"github.com/cognicore/tagassoc/pkg/tagassoc/tags"
)

// association over tags 0..5:
//
//	0: 1=0.9 2=0.2 3=0.5 5=0.5
//	1: 0=0.9 2=0.7 4=0.1
//	2: 0=0.2 1=0.7
func association(t *testing.T) *sparse.Matrix {
	t.Helper()
	m, err := sparse.FromEntries([]sparse.Entry{
		{Row: 0, Col: 1, Value: 0.9},
		{Row: 0, Col: 2, Value: 0.2},
		{Row: 0, Col: 3, Value: 0.5},
		{Row: 0, Col: 5, Value: 0.5},
		{Row: 1, Col: 0, Value: 0.9},
		{Row: 1, Col: 2, Value: 0.7},
		{Row: 1, Col: 4, Value: 0.1},
		{Row: 2, Col: 0, Value: 0.2},
		{Row: 2, Col: 1, Value: 0.7},
	}, 6, 6)
	require.NoError(t, err)
	return m
}

func ids(scored []rank.Scored) []int {
	out := make([]int, len(scored))
	for i, s := range scored {
		out[i] = s.ID
	}
	return out
}

func TestRelatedSingleSeedIsOwnRow(t *testing.T) {
	m := association(t)

	got, err := Related(m, []int{0}, 0)
	require.NoError(t, err)
	// 3 and 5 tie at 0.5 and come out in ID order
	assert.Equal(t, []rank.Scored{
		{ID: 1, Score: 0.9},
		{ID: 3, Score: 0.5},
		{ID: 5, Score: 0.5},
		{ID: 2, Score: 0.2},
	}, got)

	top, err := Related(m, []int{0}, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, ids(top))
}

func TestRelatedMultiSeedMean(t *testing.T) {
	m := association(t)

	got, err := Related(m, []int{0, 1}, 0)
	require.NoError(t, err)

	// seeds 0 and 1 are excluded; 2 is averaged over both rows
	require.Equal(t, []int{3, 5, 2, 4}, ids(got))
	assert.InDelta(t, 0.45, got[2].Score, 1e-12)
	assert.Equal(t, 0.1, got[3].Score)
}

func TestRelatedDuplicateSeedsCountOnce(t *testing.T) {
	m := association(t)

	once, err := Related(m, []int{0, 1}, 0)
	require.NoError(t, err)
	twice, err := Related(m, []int{1, 0, 0, 1}, 0)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestRelatedNoAssociations(t *testing.T) {
	m := association(t)

	got, err := Related(m, []int{5}, 3)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = Related(m, nil, 3)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRelatedSeedOutOfRange(t *testing.T) {
	m := association(t)

	for _, seed := range []int{6, -1} {
		_, err := Related(m, []int{0, seed}, 3)
		assert.ErrorIs(t, err, sparse.ErrOutOfRange)
	}
}

func dictionary() *tags.Dictionary {
	d := tags.NewDictionary()
	for _, name := range []string{"cat", "dog", "pet", "mouse", "bone", "whiskers"} {
		d.Add(name)
	}
	return d
}

func TestServiceRelatedByName(t *testing.T) {
	svc, err := NewService(association(t), dictionary(), 8)
	require.NoError(t, err)

	got, err := svc.RelatedByName([]string{"cat"}, 2)
	require.NoError(t, err)
	assert.Equal(t, []Result{
		{Tag: "dog", ID: 1, Score: 0.9},
		{Tag: "mouse", ID: 3, Score: 0.5},
	}, got)

	_, err = svc.RelatedByName([]string{"cat", "unicorn"}, 2)
	assert.ErrorIs(t, err, internalerr.ErrNotFound)

	_, err = svc.RelatedByName(nil, 2)
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)
}

func TestServiceCache(t *testing.T) {
	svc, err := NewService(association(t), dictionary(), 2)
	require.NoError(t, err)

	first, err := svc.Related([]int{1, 0}, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, svc.cache.Len())

	// caller mutation must not leak into the cached answer
	first[0].Score = -1

	second, err := svc.Related([]int{0, 1}, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, svc.cache.Len())
	assert.Equal(t, 0.5, second[0].Score)

	_, err = svc.Related([]int{0}, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, svc.cache.Len())
}

func TestServiceWithoutCache(t *testing.T) {
	svc, err := NewService(association(t), dictionary(), 0)
	require.NoError(t, err)
	assert.Nil(t, svc.cache)

	got, err := svc.Related([]int{2}, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0}, ids(got))
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "0,1|3", cacheKey([]int{1, 0, 1}, 3))
	assert.Equal(t, "|0", cacheKey(nil, 0))
}
