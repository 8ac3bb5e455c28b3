package worker

import (
	"context"
	"log/slog"

	audit "flightsurety/pkg/platform/audit"
)

// Worker consumes events from a channel and persists them in arrival order.
// A failed append is reported and the worker moves on; the stream is never
// wedged behind one bad event.
type Worker struct {
	store   audit.Sink
	inbox   <-chan audit.Event
	logger  *slog.Logger
	onError func(audit.Event, error)
}

type Option func(*Worker)

func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		w.logger = logger
	}
}

// WithErrorHook is called for every event the store rejected.
func WithErrorHook(fn func(audit.Event, error)) Option {
	return func(w *Worker) {
		w.onError = fn
	}
}

func NewWorker(store audit.Sink, inbox <-chan audit.Event, opts ...Option) *Worker {
	w := &Worker{store: store, inbox: inbox}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run drains the inbox until it is closed (returns nil) or ctx is done.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.inbox:
			if !ok {
				return nil
			}
			if err := w.store.Append(ctx, event); err != nil {
				if w.logger != nil {
					w.logger.ErrorContext(ctx, "failed to persist ledger event",
						"action", event.Action,
						"subject", event.Subject,
						"error", err,
					)
				}
				if w.onError != nil {
					w.onError(event, err)
				}
			}
		}
	}
}
