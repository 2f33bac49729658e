package worker

import (
	"context"
	"log/slog"

	audit "opencollective/pkg/platform/audit"
)

// Worker drains audit events from a channel into a store. Append failures are
// logged and the worker keeps going; activities are best-effort.
type Worker struct {
	store  audit.Store
	inbox  <-chan audit.Event
	logger *slog.Logger
}

func NewWorker(store audit.Store, inbox <-chan audit.Event, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{store: store, inbox: inbox, logger: logger}
}

// Run consumes until the inbox is closed or ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.inbox:
			if !ok {
				return nil
			}
			w.persist(ctx, event)
		}
	}
}

// Drain persists whatever is still buffered, then returns when the inbox closes.
func (w *Worker) Drain(ctx context.Context) {
	for event := range w.inbox {
		w.persist(ctx, event)
	}
}

func (w *Worker) persist(ctx context.Context, event audit.Event) {
	if err := w.store.Append(ctx, event); err != nil {
		w.logger.ErrorContext(ctx, "failed to persist audit event",
			"action", event.Action,
			"error", err,
		)
	}
}
