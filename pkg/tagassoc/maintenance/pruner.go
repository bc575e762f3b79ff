// Package maintenance keeps a bundle store from growing without bound.
package maintenance

import (
	"context"
	"errors"
	"fmt"

	"github.com/cognicore/tagassoc/pkg/tagassoc/store"
)

// Pruner deletes all but the newest Keep bundles of each kind.
type Pruner struct {
	Store store.Store
	Keep  int
}

// Result summarizes a pruning run.
type Result struct {
	Examined int
	Deleted  []string
	Errors   int
}

// Prune removes old bundles. A failed delete is counted and the run goes on;
// the first such error is returned alongside the result.
func (p *Pruner) Prune(ctx context.Context) (Result, error) {
	var res Result
	if p.Store == nil || p.Keep < 1 {
		return res, errors.New("pruner: invalid configuration")
	}

	infos, err := p.Store.ListBundles(ctx)
	if err != nil {
		return res, fmt.Errorf("list bundles: %w", err)
	}
	res.Examined = len(infos)

	// infos are oldest first; count from the newest end
	seen := make(map[store.Kind]int)
	var firstErr error
	for i := len(infos) - 1; i >= 0; i-- {
		info := infos[i]
		seen[info.Kind]++
		if seen[info.Kind] <= p.Keep {
			continue
		}
		if err := p.Store.DeleteBundle(ctx, info.ID); err != nil {
			res.Errors++
			if firstErr == nil {
				firstErr = fmt.Errorf("delete %s: %w", info.ID, err)
			}
			continue
		}
		res.Deleted = append(res.Deleted, info.ID)
	}
	return res, firstErr
}
