// Package actor determines which user is creating a collective.
package actor

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"opencollective/internal/collective/models"
	usermodels "opencollective/internal/user/models"
	userstore "opencollective/internal/user/store"
	id "opencollective/pkg/domain"
	dErrors "opencollective/pkg/domain-errors"
	"opencollective/pkg/platform/sentinel"
)

const unauthorizedMessage = "You need to be logged in to create a collective"

// UserStore is the user persistence the resolver depends on.
type UserStore interface {
	FindByID(ctx context.Context, userID id.UserID) (*usermodels.User, error)
	FindOrCreateByEmail(ctx context.Context, profile usermodels.Profile, excludeSlugs ...string) (*userstore.Provisioned, error)
}

// CollectiveFinder resolves the trusted host when the target is referenced by id.
type CollectiveFinder interface {
	FindBySlug(ctx context.Context, slug string) (*models.Collective, error)
}

// Resolution is the resolved actor and whether it was created just now.
type Resolution struct {
	User    *usermodels.User
	Created bool
	// ConfirmationToken is set only for users created by this call.
	ConfirmationToken string
}

// Resolver picks the session user, or for the trusted auto-create host only,
// finds or creates a user from submitted credentials.
type Resolver struct {
	users           UserStore
	collectives     CollectiveFinder
	trustedHostSlug string
	logger          *slog.Logger
}

type Option func(*Resolver)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver builds a resolver. trustedHostSlug names the only host for which
// unauthenticated callers may have an account created; empty disables it.
func NewResolver(users UserStore, collectives CollectiveFinder, trustedHostSlug string, opts ...Option) *Resolver {
	r := &Resolver{
		users:           users,
		collectives:     collectives,
		trustedHostSlug: strings.ToLower(strings.TrimSpace(trustedHostSlug)),
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the acting user. A session user always wins and credentials
// are then ignored. A user created here never gets requestedSlug as its
// personal slug.
func (r *Resolver) Resolve(ctx context.Context, session id.UserID, credentials *usermodels.Profile, target *models.HostReference,
	requestedSlug string) (*Resolution, error) {
	if !session.IsNil() {
		user, err := r.users.FindByID(ctx, session)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil, dErrors.New(dErrors.CodeUnauthorized, unauthorizedMessage)
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load session user")
		}
		return &Resolution{User: user}, nil
	}

	if credentials == nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, unauthorizedMessage)
	}
	trusted, err := r.targetsTrustedHost(ctx, target)
	if err != nil {
		return nil, err
	}
	if !trusted {
		return nil, dErrors.New(dErrors.CodeUnauthorized, unauthorizedMessage)
	}

	provisioned, err := r.users.FindOrCreateByEmail(ctx, *credentials, requestedSlug)
	if err != nil {
		if dErrors.CodeOf(err) != dErrors.CodeInternal {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to provision user")
	}
	if provisioned.Created {
		r.logger.InfoContext(ctx, "user created for collective onboarding",
			"user_id", provisioned.User.ID.String(),
			"trusted_host", r.trustedHostSlug,
		)
	}
	return &Resolution{
		User:              provisioned.User,
		Created:           provisioned.Created,
		ConfirmationToken: provisioned.ConfirmationToken,
	}, nil
}

func (r *Resolver) targetsTrustedHost(ctx context.Context, target *models.HostReference) (bool, error) {
	if r.trustedHostSlug == "" || target.IsEmpty() {
		return false, nil
	}
	if target.Slug != "" {
		return strings.EqualFold(target.Slug, r.trustedHostSlug), nil
	}
	trusted, err := r.collectives.FindBySlug(ctx, r.trustedHostSlug)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, nil
		}
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load trusted host")
	}
	return trusted.ID.String() == strings.ToLower(target.ID), nil
}
