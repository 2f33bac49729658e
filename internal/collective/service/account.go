package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"opencollective/internal/collective/models"
	dErrors "opencollective/pkg/domain-errors"
	"opencollective/pkg/platform/sentinel"
)

// GetAccountWithHost returns the collective named by slug together with its
// host terms. Views are served from the host cache when one is configured;
// cache errors fall through to the stores.
func (s *Service) GetAccountWithHost(ctx context.Context, slug string) (*models.AccountWithHost, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "collective.get_account")
	defer func() {
		span.End()
		if s.metrics != nil {
			s.metrics.ObserveGetAccount(start)
		}
	}()

	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "slug is required")
	}
	span.SetAttributes(attribute.String("collective.slug", slug))

	if s.cache != nil {
		view, err := s.cache.Get(ctx, slug)
		switch {
		case err == nil:
			s.countCacheLookup("hit")
			return view, nil
		case errors.Is(err, sentinel.ErrNotFound):
			s.countCacheLookup("miss")
		default:
			s.countCacheLookup("error")
			s.logger.WarnContext(ctx, "host cache lookup failed", "slug", slug, "error", err)
		}
	}

	var view *models.AccountWithHost
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		c, err := s.collectives.FindBySlug(txCtx, slug)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "Collective not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load collective")
		}
		var host *models.Collective
		if c.HasHost() {
			host, err = s.collectives.FindByID(txCtx, *c.HostCollectiveID)
			if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load host")
			}
		}
		view = models.NewAccountWithHost(c, host)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, slug, view); err != nil {
			s.logger.WarnContext(ctx, "host cache store failed", "slug", slug, "error", err)
		}
	}
	return view, nil
}

func (s *Service) countCacheLookup(result string) {
	if s.metrics != nil {
		s.metrics.IncrementCacheLookup(result)
	}
}
