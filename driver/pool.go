package driver

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/weg2020/r8/options"
)

// RunItems dispatches one goroutine per item through work, bounded by
// opts.Workers concurrent slots (zero means unbounded), and returns the
// first error any item produced after every item has finished — spec §5's
// "dispatches work-items... through a processor that awaits all items
// before returning". Work-items are independent by the caller's contract
// (spec §5); RunItems enforces no ordering beyond "all complete before
// return".
func RunItems[T any](ctx context.Context, opts options.Options, items []T, work func(context.Context, T) error) error {
	if len(items) == 0 {
		return nil
	}

	group, groupCtx := errgroup.WithContext(ctx)

	if opts.Workers <= 0 {
		for _, item := range items {
			item := item
			group.Go(func() error { return work(groupCtx, item) })
		}
		return group.Wait()
	}

	sem := semaphore.NewWeighted(int64(opts.Workers))
	for _, item := range items {
		item := item
		if err := sem.Acquire(groupCtx, 1); err != nil {
			break
		}
		group.Go(func() error {
			defer sem.Release(1)
			return work(groupCtx, item)
		})
	}
	return group.Wait()
}
