// Package fanout issues one detail request per identifier in parallel and joins the
// results with all-or-error semantics.
package fanout

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/zoomkit/zoomapi/internal/metrics"
)

// Unbounded disables the concurrency cap.
const Unbounded = 0

// Fetch runs fetch once per id, at most limit at a time (limit <= 0 means no cap).
// It returns only when every task has finished. If any task fails, the shared context
// is canceled, the first error is returned and all results are discarded.
//
// Each task writes its own slot, so results currently follow the order of ids; callers
// must not depend on that.
func Fetch[ID any, T any](ctx context.Context, ids []ID, limit int, fetch func(context.Context, ID) (T, error)) ([]T, error) {
	if len(ids) == 0 {
		return []T{}, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	results := make([]T, len(ids))
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			v, err := fetch(gctx, id)
			metrics.IncFanOutTask(err)
			if err != nil {
				return err
			}
			results[i] = v
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
