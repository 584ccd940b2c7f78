package xlsxio

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// runAll runs tasks with at most n in flight and waits for every started
// task. After the first failure or once ctx is done no new task starts.
func runAll(ctx context.Context, n int, tasks []func() error) error {
	if n < 1 {
		n = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(n)
	for _, task := range tasks {
		if gctx.Err() != nil {
			break
		}
		g.Go(task)
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
