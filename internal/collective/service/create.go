package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"opencollective/internal/collective/actor"
	"opencollective/internal/collective/hosting"
	"opencollective/internal/collective/models"
	"opencollective/internal/collective/slug"
	"opencollective/internal/collective/verification"
	usermodels "opencollective/internal/user/models"
	id "opencollective/pkg/domain"
	dErrors "opencollective/pkg/domain-errors"
	audit "opencollective/pkg/platform/audit"
	"opencollective/pkg/platform/sentinel"
	"opencollective/pkg/requestcontext"
)

// CreateResult is the outcome of a successful creation.
type CreateResult struct {
	Collective   *models.Collective
	Host         *models.Collective
	Actor        *usermodels.User
	ActorCreated bool
	// ConfirmationToken is the cleartext email confirmation token of a user
	// created by this call, for the notification layer. Never logged.
	ConfirmationToken string
	Strategy          string
	Warnings          []SideEffectFailure
}

// CreateCollective runs the onboarding workflow. Nothing is written before
// the slug, actor and host checks pass; the collective, its admin membership
// and its host attachment commit together. Side effects run after commit and
// only produce warnings.
func (s *Service) CreateCollective(ctx context.Context, req *models.CreateCollectiveRequest) (result *CreateResult, err error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "collective.create")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, dErrors.MessageOf(err))
			s.incrementFailure(err)
		}
		span.End()
		s.observeCreate(start)
	}()

	if req == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	normalizedSlug, err := s.validateSlug(ctx, req.Collective.Slug)
	if err != nil {
		return nil, err
	}

	resolvedActor, err := s.resolveActor(ctx, req, normalizedSlug)
	if err != nil {
		return nil, err
	}
	user := resolvedActor.User

	strategy := hosting.Select(req)
	span.SetAttributes(attribute.String("collective.strategy", strategy.Name()))
	resolution, err := s.resolveHost(ctx, strategy, user)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	c, err := s.buildCollective(req, normalizedSlug, user, resolution, now)
	if err != nil {
		return nil, err
	}

	if err := s.persist(ctx, c, user, resolution, req.Message, now); err != nil {
		return nil, err
	}

	s.logAudit(ctx, "collective_created",
		"collective_slug", c.Slug,
		"user_id", user.ID.String(),
		"strategy", strategy.Name(),
		"host_slug", hostSlug(resolution),
		"approved", c.IsApproved(),
	)
	if s.metrics != nil {
		s.metrics.IncrementCreated(strategy.Name(), c.IsApproved())
	}

	warnings := s.runSideEffects(ctx, c, resolution.Host, resolvedActor.User, resolvedActor.Created)

	return &CreateResult{
		Collective:        c,
		Host:              resolution.Host,
		Actor:             user,
		ActorCreated:      resolvedActor.Created,
		ConfirmationToken: resolvedActor.ConfirmationToken,
		Strategy:          strategy.Name(),
		Warnings:          warnings,
	}, nil
}

func (s *Service) validateSlug(ctx context.Context, candidate string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "collective.validate_slug")
	defer span.End()
	normalized, err := s.slugs.Validate(ctx, candidate)
	if err != nil {
		if reason, ok := slug.RejectionReason(err); ok {
			span.SetAttributes(attribute.String("slug.rejection", string(reason)))
		}
		return "", err
	}
	return normalized, nil
}

func (s *Service) resolveActor(ctx context.Context, req *models.CreateCollectiveRequest, requestedSlug string) (*actor.Resolution, error) {
	ctx, span := s.tracer.Start(ctx, "collective.resolve_actor")
	defer span.End()
	res, err := s.actors.Resolve(ctx, requestcontext.UserID(ctx), req.User, req.Host, requestedSlug)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Bool("actor.created", res.Created))
	if res.Created {
		s.logAudit(ctx, "user_provisioned", "user_id", res.User.ID.String())
		if s.metrics != nil {
			s.metrics.IncrementUserProvisioned()
		}
	}
	return res, nil
}

func (s *Service) resolveHost(ctx context.Context, strategy hosting.Strategy, user *usermodels.User) (*hosting.Resolution, error) {
	ctx, span := s.tracer.Start(ctx, "collective.resolve_host",
		trace.WithAttributes(attribute.String("collective.strategy", strategy.Name())))
	defer span.End()
	resolution, err := s.hosts.Resolve(ctx, strategy, user)
	if err != nil {
		if category := verification.CategoryOf(err); category != "" {
			span.SetAttributes(attribute.String("verification.category", string(category)))
			if s.metrics != nil {
				s.metrics.IncrementVerificationFailure(string(category))
			}
			s.recordVerificationFailure(ctx, strategy, user, category)
		}
		return nil, err
	}
	return resolution, nil
}

func (s *Service) buildCollective(req *models.CreateCollectiveRequest, normalizedSlug string, user *usermodels.User,
	resolution *hosting.Resolution, now time.Time) (*models.Collective, error) {
	createdBy := user.ID
	c, err := models.NewCollective(id.CollectiveID(uuid.New()), normalizedSlug, req.Collective.Name,
		models.TypeCollective, &createdBy, now)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, dErrors.MessageOf(err))
		}
		return nil, err
	}
	c.Description = req.Collective.Description
	if len(req.Collective.Tags) > 0 {
		c.Tags = append([]string(nil), req.Collective.Tags...)
	}
	c.Data = req.Collective.Data
	c.Settings = models.MergeSettings(req.Collective.Settings)
	resolution.Decorate(c)
	return c, nil
}

// persist writes the collective, the actor's admin membership and, when a
// host was resolved, the attachment and its application record as one unit.
func (s *Service) persist(ctx context.Context, c *models.Collective, user *usermodels.User,
	resolution *hosting.Resolution, message string, now time.Time) error {
	ctx, span := s.tracer.Start(ctx, "collective.persist")
	defer span.End()

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.collectives.CreateIfSlugAvailable(txCtx, c); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				return slug.TakenConflict(c.Slug)
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create collective")
		}

		admin, err := models.NewMembership(id.MembershipID(uuid.New()), c.ID, user.ID, user.CollectiveID,
			models.RoleAdmin, user.ID, now)
		if err != nil {
			return err
		}
		if err := s.memberships.Create(txCtx, admin); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to grant admin role")
		}

		if !resolution.HasHost() {
			return nil
		}
		if err := c.CanAttachTo(resolution.Host); err != nil {
			return err
		}
		c.ApplyAttachment(resolution.Host, resolution.AutoApprove, now)
		if err := c.CheckInvariants(); err != nil {
			return err
		}
		if err := s.collectives.AttachHost(txCtx, c); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to attach host")
		}
		if err := s.applications.Create(txCtx, models.NewHostApplication(c, message, now)); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record host application")
		}
		return nil
	})
	var de *dErrors.Error
	if err != nil && !errors.As(err, &de) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create collective")
	}
	return err
}

func hostSlug(resolution *hosting.Resolution) string {
	if !resolution.HasHost() {
		return ""
	}
	return resolution.Host.Slug
}

func (s *Service) incrementFailure(err error) {
	if s.metrics != nil {
		s.metrics.IncrementCreateFailure(string(dErrors.CodeOf(err)))
	}
}

func (s *Service) observeCreate(start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveCreate(start)
	}
}

// recordVerificationFailure files a security activity for a rejected
// automated approval. It is best effort; the caller still gets the rejection.
func (s *Service) recordVerificationFailure(ctx context.Context, strategy hosting.Strategy, user *usermodels.User,
	category verification.ErrorCategory) {
	automated, ok := strategy.(hosting.Automated)
	if !ok || s.auditPublisher == nil {
		return
	}
	event := audit.Event{
		ID:        id.ActivityID(uuid.New()),
		Category:  audit.EventVerificationFailed.Category(),
		Timestamp: requestcontext.Now(ctx),
		Action:    string(audit.EventVerificationFailed),
		UserID:    user.ID,
		Subject:   automated.Handle,
		RequestID: requestcontext.RequestID(ctx),
		Data: map[string]any{
			"handle":   automated.Handle,
			"category": string(category),
		},
	}
	if err := s.auditPublisher.Emit(context.WithoutCancel(ctx), event); err != nil {
		s.logger.WarnContext(ctx, "failed to record verification failure", "error", err)
	}
}
