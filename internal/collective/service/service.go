package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks HostCache,AuditPublisher

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"opencollective/internal/collective/actor"
	"opencollective/internal/collective/hosting"
	"opencollective/internal/collective/metrics"
	"opencollective/internal/collective/models"
	usermodels "opencollective/internal/user/models"
	id "opencollective/pkg/domain"
	audit "opencollective/pkg/platform/audit"
	"opencollective/pkg/requestcontext"
)

type CollectiveStore interface {
	CreateIfSlugAvailable(ctx context.Context, c *models.Collective) error
	FindByID(ctx context.Context, collectiveID id.CollectiveID) (*models.Collective, error)
	FindBySlug(ctx context.Context, slug string) (*models.Collective, error)
	AttachHost(ctx context.Context, c *models.Collective) error
}

type MembershipStore interface {
	Create(ctx context.Context, m *models.Membership) error
}

type ApplicationStore interface {
	Create(ctx context.Context, app *models.HostApplication) error
}

type SlugValidator interface {
	Validate(ctx context.Context, candidate string) (string, error)
}

type ActorResolver interface {
	Resolve(ctx context.Context, session id.UserID, credentials *usermodels.Profile, target *models.HostReference,
		requestedSlug string) (*actor.Resolution, error)
}

type HostResolver interface {
	Resolve(ctx context.Context, strategy hosting.Strategy, actor *usermodels.User) (*hosting.Resolution, error)
}

// HostCache caches account views by slug. Get returns sentinel.ErrNotFound on a miss.
type HostCache interface {
	Get(ctx context.Context, slug string) (*models.AccountWithHost, error)
	Set(ctx context.Context, slug string, view *models.AccountWithHost) error
	Invalidate(ctx context.Context, slug string) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// TxRunner runs fn as one unit of work. Stores reached through the context
// passed to fn join the unit.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service orchestrates collective onboarding: slug validation, actor
// resolution, host resolution, the atomic write, and post-commit side effects.
type Service struct {
	collectives    CollectiveStore
	memberships    MembershipStore
	applications   ApplicationStore
	slugs          SlugValidator
	actors         ActorResolver
	hosts          HostResolver
	tx             TxRunner
	cache          HostCache
	auditPublisher AuditPublisher
	logger         *slog.Logger
	metrics        *metrics.Metrics
	tracer         trace.Tracer
}

// Stores groups the persistence dependencies of the service.
type Stores struct {
	Collectives  CollectiveStore
	Memberships  MembershipStore
	Applications ApplicationStore
	Tx           TxRunner
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithHostCache(cache HostCache) Option {
	return func(s *Service) {
		s.cache = cache
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// New constructs a Service.
func New(stores Stores, slugs SlugValidator, actors ActorResolver, hosts HostResolver, opts ...Option) (*Service, error) {
	if stores.Collectives == nil || stores.Memberships == nil || stores.Applications == nil {
		return nil, errors.New("collective, membership and application stores are required")
	}
	if stores.Tx == nil {
		return nil, errors.New("transaction runner is required")
	}
	if slugs == nil {
		return nil, errors.New("slug validator is required")
	}
	if actors == nil {
		return nil, errors.New("actor resolver is required")
	}
	if hosts == nil {
		return nil, errors.New("host resolver is required")
	}
	s := &Service{
		collectives:  stores.Collectives,
		memberships:  stores.Memberships,
		applications: stores.Applications,
		tx:           stores.Tx,
		slugs:        slugs,
		actors:       actors,
		hosts:        hosts,
		logger:       slog.Default(),
		tracer:       otel.Tracer("opencollective/internal/collective/service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Service) logAudit(ctx context.Context, event string, attributes ...any) {
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "event", event, "log_type", "audit")
	s.logger.InfoContext(ctx, event, args...)
}
