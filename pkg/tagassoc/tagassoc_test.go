package tagassoc

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/tagassoc/pkg/tagassoc/ingest"
	"github.com/cognicore/tagassoc/pkg/tagassoc/internalerr"
	"github.com/cognicore/tagassoc/pkg/tagassoc/pmi"
	"github.com/cognicore/tagassoc/pkg/tagassoc/store"
	"github.com/cognicore/tagassoc/pkg/tagassoc/store/memstore"
)

// a appears in 3 posts, b in 2, c in 1 and d in 5 of 8.
const postsCSV = `id,tag_string
1,a b
2,a b
3,a c
4,d
5,d
6,d
7,d
8,d tagme
`

func loadCorpus(t *testing.T) *ingest.Corpus {
	t.Helper()
	c, err := ingest.ReadCSV(strings.NewReader(postsCSV), "", ingest.NewTokenizer([]string{"tagme"}))
	require.NoError(t, err)
	return c
}

func TestEngineBuildAndRelated(t *testing.T) {
	e := New(Options{Workers: 3, CacheSize: 8})

	_, err := e.Related([]string{"a"}, 5)
	assert.ErrorIs(t, err, ErrNotBuilt)

	res, err := e.Build(context.Background(), loadCorpus(t))
	require.NoError(t, err)
	assert.Equal(t, 8, res.PostCount)
	assert.Equal(t, 4, res.Dict.Len())
	assert.Equal(t, 4, res.Cooccurrence.NNZ())
	assert.Equal(t, 4, res.Association.NNZ())

	got, err := e.Related([]string{"a"}, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Tag)
	assert.Equal(t, 0.7075187496394219, got[0].Score)
	assert.Equal(t, "c", got[1].Tag)
	assert.Equal(t, 0.4716791664262812, got[1].Score)

	got, err = e.Related([]string{"b", "c"}, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].Tag)
	assert.Equal(t, (0.7075187496394219+0.4716791664262812)/2, got[0].Score)

	got, err = e.Related([]string{"d"}, 5)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = e.Related([]string{"tagme"}, 5)
	assert.ErrorIs(t, err, internalerr.ErrNotFound)
}

func TestEngineProgress(t *testing.T) {
	var calls [][2]int
	e := New(Options{Workers: 4, Progress: func(merged, total int) {
		calls = append(calls, [2]int{merged, total})
	}})

	_, err := e.Build(context.Background(), loadCorpus(t))
	require.NoError(t, err)
	require.NotEmpty(t, calls)
	last := calls[len(calls)-1]
	assert.Equal(t, last[0], last[1])
}

func TestEngineCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Options{}).Build(ctx, loadCorpus(t))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngineSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()

	built := New(Options{Workers: 2, Calculator: pmi.NewCalculator(pmi.Standard)})
	_, err := built.Save(ctx, st)
	assert.ErrorIs(t, err, ErrNotBuilt)

	res, err := built.Build(ctx, loadCorpus(t))
	require.NoError(t, err)
	id, err := built.Save(ctx, st)
	require.NoError(t, err)

	infos, err := st.ListBundles(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, store.KindCooccurrence, infos[0].Kind)
	assert.Equal(t, store.KindAssociation, infos[1].Kind)
	assert.Equal(t, "standard", infos[1].Formula)

	loaded := New(Options{})
	got, err := loaded.Load(ctx, st, "")
	require.NoError(t, err)
	assert.Nil(t, got.Cooccurrence)
	assert.True(t, res.Association.Equal(got.Association))
	assert.Equal(t, res.Dict.Entries(), got.Dict.Entries())

	want, err := built.Related([]string{"a"}, 0)
	require.NoError(t, err)
	have, err := loaded.Related([]string{"a"}, 0)
	require.NoError(t, err)
	assert.Equal(t, want, have)

	_, err = loaded.Load(ctx, st, infos[0].ID)
	assert.Error(t, err)
	_, err = loaded.Load(ctx, st, id)
	assert.NoError(t, err)
}
