package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"opencollective/internal/collective/models"
	usermodels "opencollective/internal/user/models"
	id "opencollective/pkg/domain"
	audit "opencollective/pkg/platform/audit"
	"opencollective/pkg/requestcontext"
)

const sideEffectTimeout = 5 * time.Second

const (
	EffectCacheInvalidation = "cache_invalidation"
	EffectActivity          = "activity"
)

// SideEffectFailure reports a post-commit step that did not complete. The
// collective exists regardless.
type SideEffectFailure struct {
	Effect string `json:"effect"`
	Err    error  `json:"-"`
}

func (f SideEffectFailure) Error() string {
	return f.Effect + ": " + f.Err.Error()
}

// runSideEffects invalidates the host's cached view and records activities.
// It is detached from the caller's cancellation so a client disconnect after
// commit does not drop them.
func (s *Service) runSideEffects(ctx context.Context, c, host *models.Collective, user *usermodels.User, userCreated bool) []SideEffectFailure {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()
	ctx, span := s.tracer.Start(ctx, "collective.side_effects")
	defer span.End()

	var (
		mu       sync.Mutex
		failures []SideEffectFailure
	)
	record := func(effect string, err error) {
		mu.Lock()
		defer mu.Unlock()
		failures = append(failures, SideEffectFailure{Effect: effect, Err: err})
	}

	var g errgroup.Group
	if host != nil && s.cache != nil {
		g.Go(func() error {
			if err := s.cache.Invalidate(ctx, host.Slug); err != nil {
				record(EffectCacheInvalidation, err)
			}
			return nil
		})
	}
	if s.auditPublisher != nil {
		g.Go(func() error {
			for _, event := range s.activities(ctx, c, host, user, userCreated) {
				if err := s.auditPublisher.Emit(ctx, event); err != nil {
					record(EffectActivity, err)
					return nil
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(failures, func(i, j int) bool { return failures[i].Effect < failures[j].Effect })
	for _, f := range failures {
		span.RecordError(f.Err)
		s.logger.WarnContext(ctx, "post-commit side effect failed",
			"effect", f.Effect,
			"collective_slug", c.Slug,
			"error", f.Err,
		)
		if s.metrics != nil {
			s.metrics.IncrementSideEffectFailure(f.Effect)
		}
	}
	return failures
}

// activities builds the activity records for a creation. collective.created
// is filed under the host when there is one.
func (s *Service) activities(ctx context.Context, c, host *models.Collective, user *usermodels.User, userCreated bool) []audit.Event {
	now := requestcontext.Now(ctx)
	requestID := requestcontext.RequestID(ctx)
	var hostID *id.CollectiveID
	if host != nil {
		hid := host.ID
		hostID = &hid
	}

	userData := map[string]any{"email": user.Email}
	if personal, err := s.collectives.FindByID(ctx, user.CollectiveID); err == nil {
		userData["collective"] = personal.Info()
	}
	data := map[string]any{
		"collective": c.Info(),
		"host":       host.Info(),
		"user":       userData,
		"request": map[string]any{
			"id":     requestID,
			"ip":     requestcontext.ClientIP(ctx),
			"device": requestcontext.Device(ctx),
		},
	}

	newEvent := func(action audit.AuditEvent, collectiveID *id.CollectiveID, subject string, data map[string]any) audit.Event {
		return audit.Event{
			ID:           id.ActivityID(uuid.New()),
			Category:     action.Category(),
			Timestamp:    now,
			Action:       string(action),
			UserID:       user.ID,
			CollectiveID: collectiveID,
			Subject:      subject,
			RequestID:    requestID,
			Data:         data,
		}
	}

	var events []audit.Event
	if userCreated {
		events = append(events, newEvent(audit.EventUserCreated, &user.CollectiveID, user.ID.String(),
			map[string]any{"user": userData}))
	}
	events = append(events, newEvent(audit.EventCollectiveCreated, hostID, c.Slug, data))
	if host != nil {
		action := audit.EventHostApplied
		if c.IsApproved() {
			action = audit.EventCollectiveApproved
		}
		events = append(events, newEvent(action, hostID, c.Slug, data))
	}
	return events
}
