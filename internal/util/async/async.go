package async

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Task is a named unit of work.
type Task struct {
	Name string
	Func func(context.Context) error
}

// Run executes tasks with at most limit running at once. A limit below one
// means no limit. The first failure cancels the context passed to the
// remaining tasks and is returned wrapped with the task name.
func Run(ctx context.Context, tasks []Task, limit int) error {
	if len(tasks) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for _, task := range tasks {
		g.Go(func() error {
			if err := task.Func(gctx); err != nil {
				return fmt.Errorf("%s: %w", task.Name, err)
			}
			return nil
		})
	}
	return g.Wait()
}
