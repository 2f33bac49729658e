// Package publisher emits activities to an audit store, either inline or
// through a bounded asynchronous buffer.
package publisher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	id "opencollective/pkg/domain"
	audit "opencollective/pkg/platform/audit"
	"opencollective/pkg/platform/audit/worker"
)

var ErrBufferFull = errors.New("audit buffer full")

type Publisher struct {
	store  audit.Store
	logger *slog.Logger

	bufferSize int
	inbox      chan audit.Event
	done       chan struct{}
	closeOnce  sync.Once
	mu         sync.RWMutex
	closed     bool
}

type Option func(*Publisher)

// WithAsyncBuffer makes Emit non-blocking: events are queued and persisted by
// a background worker. When the queue is full, Emit returns ErrBufferFull.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.bufferSize = size
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	if p.bufferSize > 0 {
		p.inbox = make(chan audit.Event, p.bufferSize)
		p.done = make(chan struct{})
		w := worker.NewWorker(store, p.inbox, p.logger)
		go func() {
			defer close(p.done)
			w.Drain(context.Background())
		}()
	}
	return p
}

// Emit records event, stamping the time when unset.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}
	if p.inbox == nil {
		return p.store.Append(ctx, event)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return p.store.Append(ctx, event)
	}
	select {
	case p.inbox <- event:
		return nil
	default:
		if err := ctx.Err(); err != nil {
			return err
		}
		p.logger.WarnContext(ctx, "audit buffer full, dropping event", "action", event.Action)
		return ErrBufferFull
	}
}

func (p *Publisher) List(ctx context.Context, userID id.UserID) ([]audit.Event, error) {
	return p.store.ListByUser(ctx, userID)
}

// Close stops accepting buffered events and waits for the queue to drain.
func (p *Publisher) Close() {
	if p.inbox == nil {
		return
	}
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.inbox)
		p.mu.Unlock()
		<-p.done
	})
}
