package utils

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ParallelMap applies fn to every item concurrently and waits for all of them.
// At most limit calls run at once; limit <= 0 runs every item at once.
// results[i] always belongs to items[i]. fn reports its own failures through R.
func ParallelMap[T, R any](ctx context.Context, items []T, limit int, fn func(context.Context, T) R) []R {
	results := make([]R, len(items))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, item := range items {
		g.Go(func() error {
			results[i] = fn(ctx, item)
			return nil
		})
	}
	_ = g.Wait()

	return results
}
