// Package outbox relays activity rows written by the audit store to Kafka.
package outbox

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	defaultPollInterval = time.Second
	defaultBatchSize    = 100
)

// Entry is one unpublished outbox row.
type Entry struct {
	ID            uuid.UUID
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
	CreatedAt     time.Time
}

// Store leases unpublished entries. ProcessBatch hands up to limit entries to
// fn and marks them published only if fn succeeds, as one unit; concurrent
// relays never receive the same entry.
type Store interface {
	ProcessBatch(ctx context.Context, limit int, fn func(ctx context.Context, entries []Entry) error) (int, error)
}

// Publisher delivers entries to the broker.
type Publisher interface {
	Publish(ctx context.Context, entries []Entry) error
}

type relayMetrics struct {
	published prometheus.Counter
	failures  prometheus.Counter
}

// Relay polls the outbox and publishes what it finds.
type Relay struct {
	store        Store
	publisher    Publisher
	logger       *slog.Logger
	pollInterval time.Duration
	batchSize    int
	metrics      *relayMetrics
}

type Option func(*Relay)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Relay) {
		r.logger = logger
	}
}

func WithPollInterval(d time.Duration) Option {
	return func(r *Relay) {
		if d > 0 {
			r.pollInterval = d
		}
	}
}

func WithBatchSize(n int) Option {
	return func(r *Relay) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

// WithMetrics registers relay counters on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(r *Relay) {
		factory := promauto.With(reg)
		r.metrics = &relayMetrics{
			published: factory.NewCounter(prometheus.CounterOpts{
				Name: "opencollective_outbox_published_total",
				Help: "Outbox entries published to Kafka",
			}),
			failures: factory.NewCounter(prometheus.CounterOpts{
				Name: "opencollective_outbox_publish_failures_total",
				Help: "Outbox batches that failed to publish and will be retried",
			}),
		}
	}
}

func NewRelay(store Store, publisher Publisher, opts ...Option) (*Relay, error) {
	if store == nil || publisher == nil {
		return nil, errors.New("outbox relay requires a store and a publisher")
	}
	r := &Relay{
		store:        store,
		publisher:    publisher,
		logger:       slog.Default(),
		pollInterval: defaultPollInterval,
		batchSize:    defaultBatchSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Run polls until ctx is done. Failed batches stay unpublished and are
// retried on the next tick.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()
	for {
		if _, err := r.Drain(ctx); err != nil && ctx.Err() == nil {
			r.logger.WarnContext(ctx, "outbox relay batch failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Drain publishes full batches until the outbox is empty or a batch fails.
func (r *Relay) Drain(ctx context.Context) (int, error) {
	total := 0
	for {
		n, err := r.store.ProcessBatch(ctx, r.batchSize, r.publisher.Publish)
		if err != nil {
			if r.metrics != nil {
				r.metrics.failures.Inc()
			}
			return total, err
		}
		total += n
		if r.metrics != nil {
			r.metrics.published.Add(float64(n))
		}
		if n < r.batchSize {
			return total, nil
		}
	}
}
