// Package pool maps work over a slice with a fixed number of goroutines.
package pool

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Map applies fn to every item with at most limit calls in flight and returns
// the results in input order. The first error cancels the context passed to
// the remaining calls and is returned.
func Map[T, R any](ctx context.Context, items []T, limit int, fn func(ctx context.Context, i int, item T) (R, error)) ([]R, error) {
	results := make([]R, len(items))
	if len(items) == 0 {
		return results, nil
	}
	if limit <= 0 {
		limit = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, item := range items {
		g.Go(func() error {
			r, err := fn(gctx, i, item)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
