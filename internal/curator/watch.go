package curator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/kangruixiang/curator/internal/pocketbase"
)

// Watch keeps a state container in sync with realtime notifications until
// Stop is called or the context passed to Watch is done.
type Watch struct {
	cancel  context.CancelFunc
	unsubs  []pocketbase.UnsubscribeFunc
	once    sync.Once
	stopErr error
	done    chan struct{}
}

// startWatch refreshes once and then calls refresh on every event of topics.
// Every notification triggers a full refresh.
func startWatch(ctx context.Context, sub pocketbase.Subscriber, topics []string, refresh func(context.Context)) (*Watch, error) {
	ctx, cancel := context.WithCancel(ctx)
	w := &Watch{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	refresh(ctx)
	for _, topic := range topics {
		unsub, err := sub.Subscribe(ctx, topic, func(e pocketbase.Event) {
			if ctx.Err() != nil {
				return
			}
			slog.Default().Debug("realtime refresh",
				slog.String("topic", e.Topic),
				slog.String("action", e.Action))
			refresh(ctx)
		})
		if err != nil {
			_ = w.Stop()
			return nil, fmt.Errorf("subscriber.Subscribe(%s) > %w", topic, err)
		}
		w.unsubs = append(w.unsubs, unsub)
	}

	go func() {
		select {
		case <-ctx.Done():
			_ = w.Stop()
		case <-w.done:
		}
	}()
	return w, nil
}

// Stop removes the subscriptions. It is safe to call more than once.
func (w *Watch) Stop() error {
	w.once.Do(func() {
		w.cancel()
		var errs []error
		for _, unsub := range w.unsubs {
			if err := unsub(context.Background()); err != nil {
				errs = append(errs, err)
			}
		}
		w.stopErr = errors.Join(errs...)
		close(w.done)
	})
	return w.stopErr
}

// Done is closed once the watch has stopped.
func (w *Watch) Done() <-chan struct{} {
	return w.done
}
