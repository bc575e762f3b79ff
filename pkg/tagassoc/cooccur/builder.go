// Package cooccur counts how often pairs of tags appear on the same post and
// returns the counts as a symmetric sparse matrix.
package cooccur

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/cognicore/tagassoc/pkg/tagassoc/sparse"
)

// DefaultWorkers is the chunk count used when Options.Workers is unset.
const DefaultWorkers = 12

// cancelCheckEvery is how many posts a worker counts between context checks.
const cancelCheckEvery = 1024

// countFn is swapped out by tests to exercise worker failures.
var countFn = countChunk

// ErrWorkerPanic wraps a panic recovered from a counting worker.
var ErrWorkerPanic = errors.New("cooccur: worker panicked")

// Options tunes a build.
type Options struct {
	// Workers is the number of chunks counted concurrently.
	Workers int

	// Progress, if set, is called on the calling goroutine after each local
	// matrix has been merged into the result.
	Progress func(merged, total int)
}

// Build counts co-occurrences over posts, where each post is a list of tag
// IDs in [0, nTags).
//
// Posts are split into at most Workers contiguous chunks. Each chunk is
// counted by its own goroutine into a private map, turned into a local
// matrix, and the local matrices are then summed in chunk order on the
// calling goroutine. Any worker error or panic fails the whole build.
func Build(ctx context.Context, posts [][]int, nTags int, opts Options) (*sparse.Matrix, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	chunks := partition(posts, workers)
	locals := make([]*sparse.Matrix, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	for i, chunk := range chunks {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("chunk %d: %v: %w", i, r, ErrWorkerPanic)
				}
			}()
			local, err := countFn(gctx, chunk, nTags)
			if err != nil {
				return fmt.Errorf("chunk %d: %w", i, err)
			}
			locals[i] = local
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := sparse.New(nTags, nTags)
	for i, local := range locals {
		if err := result.AddInPlace(local); err != nil {
			return nil, fmt.Errorf("merge chunk %d: %w", i, err)
		}
		if opts.Progress != nil {
			opts.Progress(i+1, len(locals))
		}
	}
	return result, nil
}

// countChunk accumulates both directions of every pair of distinct tags on
// each post. A post with m distinct tags adds m*(m-1) directed counts.
func countChunk(ctx context.Context, posts [][]int, nTags int) (*sparse.Matrix, error) {
	counts := make(map[sparse.Key]float64)
	for n, post := range posts {
		if n%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		for i := 0; i < len(post); i++ {
			for j := i + 1; j < len(post); j++ {
				a, b := post[i], post[j]
				if a == b {
					continue
				}
				counts[sparse.Key{Row: a, Col: b}]++
				counts[sparse.Key{Row: b, Col: a}]++
			}
		}
	}
	return sparse.FromMap(counts, nTags, nTags)
}

// partition splits posts into contiguous chunks of len(posts)/k+1 posts,
// which yields at most k chunks and none when there are no posts.
func partition(posts [][]int, k int) [][][]int {
	size := len(posts)/k + 1
	chunks := make([][][]int, 0, k)
	for start := 0; start < len(posts); start += size {
		end := min(start+size, len(posts))
		chunks = append(chunks, posts[start:end])
	}
	return chunks
}
