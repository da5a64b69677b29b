package curator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
)

// runBatch calls fn for every id concurrently. A failing id does not stop the
// others; all failures are logged and returned joined.
func runBatch(ctx context.Context, op string, ids []string, fn func(ctx context.Context, id string) error) error {
	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	for _, id := range ids {
		g.Go(func() error {
			if err := fn(ctx, id); err != nil {
				slog.Default().Error("batch operation failed",
					slog.String("op", op),
					slog.String("id", id),
					slog.Any("error", err))
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s(%s) > %w", op, id, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}
