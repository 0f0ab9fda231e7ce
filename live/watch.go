package live

import (
	"context"
)

// Watch runs read once and returns its result together with a channel that
// receives a fresh result after every message whose event is in events. The
// channel is closed when ctx is done. Failed re-reads are logged and skipped.
func Watch[T any](ctx context.Context, h *Hub, events []string, read func(context.Context) (T, error)) (T, <-chan T, error) {
	msgs, cancel := h.Subscribe(16)

	snapshot, err := read(ctx)
	if err != nil {
		cancel()
		var zero T
		return zero, nil, err
	}

	wanted := make(map[string]bool, len(events))
	for _, e := range events {
		wanted[e] = true
	}

	out := make(chan T, 1)
	go func() {
		defer close(out)
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				if !wanted[msg.Event] {
					continue
				}
				next, err := read(ctx)
				if err != nil {
					if ctx.Err() == nil {
						logWatchError(msg.Event, err)
					}
					continue
				}
				select {
				case out <- next:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return snapshot, out, nil
}
