// Package tagassoc ties the pipeline together: count tag co-occurrences over
// a corpus, turn the counts into NPMI association scores and answer
// related-tag queries.
package tagassoc

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cognicore/tagassoc/pkg/tagassoc/cooccur"
	"github.com/cognicore/tagassoc/pkg/tagassoc/ingest"
	"github.com/cognicore/tagassoc/pkg/tagassoc/pmi"
	"github.com/cognicore/tagassoc/pkg/tagassoc/query"
	"github.com/cognicore/tagassoc/pkg/tagassoc/sparse"
	"github.com/cognicore/tagassoc/pkg/tagassoc/store"
	"github.com/cognicore/tagassoc/pkg/tagassoc/tags"
)

// ErrNotBuilt is returned by queries before Build or Load has succeeded.
var ErrNotBuilt = errors.New("tagassoc: no association matrix")

// Options configures an Engine.
type Options struct {
	Workers    int
	Calculator *pmi.Calculator // nil selects pmi.Standard
	CacheSize  int             // related-query cache entries, 0 disables
	Progress   func(merged, total int)
}

// Result is the output of one build. Cooccurrence is nil when the result was
// loaded from an association bundle.
type Result struct {
	PostCount    int
	Dict         *tags.Dictionary
	Cooccurrence *sparse.Matrix
	Association  *sparse.Matrix
}

// Engine is the facade over the build and query stages.
type Engine struct {
	opts Options
	calc *pmi.Calculator

	mu      sync.RWMutex
	result  *Result
	service *query.Service
}

// New creates an engine.
func New(opts Options) *Engine {
	calc := opts.Calculator
	if calc == nil {
		calc = pmi.NewCalculator(pmi.Standard)
	}
	return &Engine{opts: opts, calc: calc}
}

// Build counts co-occurrences over the corpus, transforms them into
// association scores and makes the result queryable.
func (e *Engine) Build(ctx context.Context, corpus *ingest.Corpus) (*Result, error) {
	nTags := corpus.Dict.Len()
	co, err := cooccur.Build(ctx, corpus.Posts, nTags, cooccur.Options{
		Workers:  e.opts.Workers,
		Progress: e.opts.Progress,
	})
	if err != nil {
		return nil, fmt.Errorf("count co-occurrences: %w", err)
	}

	nPosts := corpus.PostCount()
	assoc, err := e.calc.Transform(nPosts, co, pmi.Marginals(corpus.Dict, nPosts))
	if err != nil {
		return nil, fmt.Errorf("association transform: %w", err)
	}

	res := &Result{
		PostCount:    nPosts,
		Dict:         corpus.Dict,
		Cooccurrence: co,
		Association:  assoc,
	}
	if err := e.install(res); err != nil {
		return nil, err
	}
	return res, nil
}

func (e *Engine) install(res *Result) error {
	svc, err := query.NewService(res.Association, res.Dict, e.opts.CacheSize)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.result = res
	e.service = svc
	e.mu.Unlock()
	return nil
}

// Result returns the current result, or nil.
func (e *Engine) Result() *Result {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.result
}

// Related returns the n tags most associated with all the named seeds.
func (e *Engine) Related(names []string, n int) ([]query.Result, error) {
	e.mu.RLock()
	svc := e.service
	e.mu.RUnlock()
	if svc == nil {
		return nil, ErrNotBuilt
	}
	return svc.RelatedByName(names, n)
}

// Save writes the co-occurrence (when present) and association matrices as
// two bundles sharing the tag table. It returns the association bundle ID.
func (e *Engine) Save(ctx context.Context, st store.Store) (string, error) {
	res := e.Result()
	if res == nil {
		return "", ErrNotBuilt
	}
	entries := res.Dict.Entries()

	if res.Cooccurrence != nil {
		if _, err := st.SaveBundle(ctx, store.Bundle{
			Kind:      store.KindCooccurrence,
			PostCount: res.PostCount,
			Tags:      entries,
			Matrix:    res.Cooccurrence,
		}); err != nil {
			return "", fmt.Errorf("save co-occurrence: %w", err)
		}
	}
	id, err := st.SaveBundle(ctx, store.Bundle{
		Kind:      store.KindAssociation,
		Formula:   e.calc.Formula().String(),
		PostCount: res.PostCount,
		Tags:      entries,
		Matrix:    res.Association,
	})
	if err != nil {
		return "", fmt.Errorf("save association: %w", err)
	}
	return id, nil
}

// Load makes a stored association bundle queryable. An empty id loads the
// most recent one.
func (e *Engine) Load(ctx context.Context, st store.Store, id string) (*Result, error) {
	var (
		b   store.Bundle
		err error
	)
	if id == "" {
		b, err = st.LatestBundle(ctx, store.KindAssociation)
	} else {
		b, err = st.LoadBundle(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	if b.Kind != store.KindAssociation {
		return nil, fmt.Errorf("bundle %s is %s, want %s", b.ID, b.Kind, store.KindAssociation)
	}

	res := &Result{
		PostCount:   b.PostCount,
		Dict:        tags.FromEntries(b.Tags),
		Association: b.Matrix,
	}
	if err := e.install(res); err != nil {
		return nil, err
	}
	return res, nil
}
