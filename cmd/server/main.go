package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"opencollective/internal/collective/actor"
	"opencollective/internal/collective/cache"
	"opencollective/internal/collective/handler"
	"opencollective/internal/collective/hosting"
	collectivemetrics "opencollective/internal/collective/metrics"
	"opencollective/internal/collective/service"
	"opencollective/internal/collective/slug"
	"opencollective/internal/collective/verification"
	"opencollective/internal/collective/verification/github"
	jwttoken "opencollective/internal/jwt_token"
	"opencollective/internal/platform/config"
	"opencollective/internal/platform/httpserver"
	"opencollective/internal/platform/kafka/outbox"
	"opencollective/internal/platform/kafka/producer"
	"opencollective/internal/platform/logger"
	"opencollective/internal/platform/metrics"
	redisclient "opencollective/internal/platform/redis"
	auditpublisher "opencollective/pkg/platform/audit/publisher"
	authmw "opencollective/pkg/platform/middleware/auth"
	"opencollective/pkg/platform/middleware/metadata"
	"opencollective/pkg/platform/middleware/request"
)

const auditBufferSize = 1024

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

// run wires dependencies and blocks until ctx is cancelled or a component fails.
func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	stores, cleanup, err := buildStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := seedHosts(ctx, stores.collectives, cfg.Hosts, log); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	hostCache, err := buildCache(gctx, g, cfg, log)
	if err != nil {
		return err
	}

	publisher := auditpublisher.NewPublisher(stores.activities,
		auditpublisher.WithAsyncBuffer(auditBufferSize),
		auditpublisher.WithLogger(log))
	defer publisher.Close()

	if cfg.Kafka.Enabled() {
		if stores.db == nil {
			return errors.New("KAFKA_BROKERS requires DATABASE_URL: the relay reads the postgres outbox")
		}
		prod, err := producer.New(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
		if err != nil {
			return err
		}
		defer prod.Close()
		if err := prod.EnsureTopic(ctx, 3, 1); err != nil {
			log.WarnContext(ctx, "could not ensure activity topic", "topic", cfg.Kafka.AuditTopic, "error", err)
		}
		relay, err := outbox.NewRelay(outbox.NewPostgresStore(stores.db), prod,
			outbox.WithLogger(log),
			outbox.WithPollInterval(cfg.Kafka.OutboxPollInterval),
			outbox.WithBatchSize(cfg.Kafka.OutboxBatchSize),
			outbox.WithMetrics(reg))
		if err != nil {
			return err
		}
		g.Go(func() error { return relay.Run(gctx) })
	}

	svc, err := buildService(cfg, log, stores, hostCache, publisher, collectivemetrics.NewWithRegistry(reg))
	if err != nil {
		return err
	}

	router := buildRouter(cfg, log, reg, handler.New(svc, log))
	srv := httpserver.New(cfg.Addr, router)
	log.InfoContext(ctx, "starting collective API", "addr", cfg.Addr, "postgres", stores.db != nil, "kafka", cfg.Kafka.Enabled())
	g.Go(func() error { return httpserver.Run(gctx, srv, log) })

	return g.Wait()
}

func buildService(cfg config.Server, log *slog.Logger, stores *storeSet, hostCache service.HostCache,
	publisher service.AuditPublisher, m *collectivemetrics.Metrics) (*service.Service, error) {
	var verifier verification.Verifier
	if cfg.GitHub.UseStub {
		log.Warn("using stub GitHub verifier; every handle passes")
		verifier = verification.NewStub(cfg.GitHub.MinStars)
	} else {
		client, err := github.New(github.Config{
			BaseURL:  cfg.GitHub.APIURL,
			Timeout:  cfg.GitHub.Timeout,
			MinStars: cfg.GitHub.MinStars,
		}, github.WithLogger(log))
		if err != nil {
			return nil, err
		}
		verifier = client
	}

	hosts, err := hosting.NewResolver(stores.collectives, stores.accounts, stores.memberships, verifier,
		cfg.Hosts.OpenSourceSlug, hosting.WithLogger(log))
	if err != nil {
		return nil, err
	}
	actors := actor.NewResolver(stores.users, stores.collectives, cfg.Hosts.TrustedAutoCreateSlug, actor.WithLogger(log))

	return service.New(service.Stores{
		Collectives:  stores.collectives,
		Memberships:  stores.memberships,
		Applications: stores.applications,
		Tx:           stores.tx,
	}, slug.NewValidator(stores.collectives), actors, hosts,
		service.WithLogger(log),
		service.WithAuditPublisher(publisher),
		service.WithMetrics(m),
		service.WithHostCache(hostCache))
}

// buildCache returns a local cache, layered over Redis when configured. The
// invalidation listener keeps other instances' local layers in step.
func buildCache(ctx context.Context, g *errgroup.Group, cfg config.Server, log *slog.Logger) (service.HostCache, error) {
	local := cache.NewMemory(cache.WithTTL(cfg.CacheTTL))
	client, err := redisclient.Connect(ctx, cfg.Redis)
	if errors.Is(err, redisclient.ErrNotConfigured) {
		return local, nil
	}
	if err != nil {
		return nil, err
	}
	shared := cache.NewRedis(client, cfg.CacheTTL)
	g.Go(func() error {
		defer client.Close()
		return shared.ListenInvalidations(ctx, log, func(hostSlug string) {
			_ = local.Invalidate(ctx, hostSlug)
		})
	})
	return cache.NewLayered(local, shared), nil
}

func buildRouter(cfg config.Server, log *slog.Logger, reg *prometheus.Registry, h *handler.Handler) http.Handler {
	tokens := jwttoken.New(jwttoken.Config{SigningKey: cfg.JWTSigningKey, Issuer: cfg.JWTIssuer, Audience: cfg.JWTAudience})
	httpMetrics := metrics.New(reg)

	r := chi.NewRouter()
	r.Use(request.Recovery(log))
	r.Use(request.RequestID)
	r.Use(request.Logger(log))
	r.Use(httpMetrics.Middleware)
	r.Use(request.Time)
	r.Use(metadata.ClientMetadata)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", metrics.Handler(reg))

	r.Group(func(r chi.Router) {
		r.Use(request.ContentTypeJSON)
		r.Use(authmw.Authenticate(tokens, log))
		r.Use(timeoutMiddleware(30 * time.Second))
		h.Register(r)
	})
	return r
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, `{"error":"timeout","error_description":"request timed out"}`)
	}
}
