package hosting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"opencollective/internal/collective/models"
	"opencollective/internal/collective/verification"
	usermodels "opencollective/internal/user/models"
	id "opencollective/pkg/domain"
	dErrors "opencollective/pkg/domain-errors"
	"opencollective/pkg/platform/sentinel"
	pstrings "opencollective/pkg/platform/strings"
)

const (
	OpenSourceTag = "open source"

	hostNotFoundMessage     = "Host Not Found"
	hostNotActivatedMessage = "Host account is not activated as Host."
	noGithubAccountMessage  = "You must have a connected GitHub Account to create a collective with GitHub."
)

type CollectiveFinder interface {
	FindByID(ctx context.Context, collectiveID id.CollectiveID) (*models.Collective, error)
	FindBySlug(ctx context.Context, slug string) (*models.Collective, error)
}

type ConnectedAccountFinder interface {
	FindByCollectiveAndService(ctx context.Context, collectiveID id.CollectiveID, service string) (*models.ConnectedAccount, error)
}

type RoleChecker interface {
	HasRole(ctx context.Context, collectiveID id.CollectiveID, userID id.UserID, role models.Role) (bool, error)
}

// Resolution is the outcome of a strategy: the host to attach (nil for None),
// whether the attachment is approved on creation, and what the strategy adds
// to the collective.
type Resolution struct {
	Strategy    Strategy
	Host        *models.Collective
	AutoApprove bool
	AddTags     []string
	AddSettings map[string]any
}

// HasHost reports whether an attachment should be made.
func (r *Resolution) HasHost() bool {
	return r != nil && r.Host != nil
}

// Decorate applies the strategy's tag and settings additions to c.
func (r *Resolution) Decorate(c *models.Collective) {
	for _, tag := range r.AddTags {
		c.Tags = pstrings.AppendIfMissing(c.Tags, tag)
	}
	for k, v := range r.AddSettings {
		if c.Settings == nil {
			c.Settings = models.Settings{}
		}
		c.Settings[k] = v
	}
}

// Resolver runs a Strategy. It never writes.
type Resolver struct {
	collectives    CollectiveFinder
	accounts       ConnectedAccountFinder
	roles          RoleChecker
	verifier       verification.Verifier
	openSourceSlug string
	logger         *slog.Logger
}

type Option func(*Resolver)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver builds a resolver. openSourceSlug names the host that the
// Automated strategy binds to.
func NewResolver(collectives CollectiveFinder, accounts ConnectedAccountFinder, roles RoleChecker,
	verifier verification.Verifier, openSourceSlug string, opts ...Option) (*Resolver, error) {
	if collectives == nil || accounts == nil || roles == nil {
		return nil, errors.New("hosting resolver requires collective, account and role stores")
	}
	if verifier == nil {
		return nil, errors.New("hosting resolver requires a verifier")
	}
	if openSourceSlug == "" {
		return nil, errors.New("open source host slug is required")
	}
	r := &Resolver{
		collectives:    collectives,
		accounts:       accounts,
		roles:          roles,
		verifier:       verifier,
		openSourceSlug: openSourceSlug,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Resolve dispatches on the strategy variant.
func (r *Resolver) Resolve(ctx context.Context, strategy Strategy, actor *usermodels.User) (*Resolution, error) {
	switch s := strategy.(type) {
	case Automated:
		return r.resolveAutomated(ctx, s, actor)
	case Explicit:
		return r.resolveExplicit(ctx, s, actor)
	case None:
		return &Resolution{Strategy: s}, nil
	default:
		return nil, dErrors.New(dErrors.CodeInternal, fmt.Sprintf("unknown hosting strategy %T", strategy))
	}
}

func (r *Resolver) resolveAutomated(ctx context.Context, s Automated, actor *usermodels.User) (*Resolution, error) {
	account, err := r.accounts.FindByCollectiveAndService(ctx, actor.CollectiveID, models.ServiceGitHub)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeValidation, noGithubAccountMessage)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load connected account")
	}

	// Popularity is only checked once admin rights are proven.
	if err := r.verifier.CheckAdmin(ctx, s.Handle, account.Token); err != nil {
		return nil, r.verificationFailed(ctx, "admin", s, err)
	}
	if err := r.verifier.CheckPopularity(ctx, s.Handle, account.Token); err != nil {
		return nil, r.verificationFailed(ctx, "popularity", s, err)
	}

	host, err := r.collectives.FindBySlug(ctx, r.openSourceSlug)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeInternal, "open source host is not provisioned")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load open source host")
	}

	settingKey := models.SettingGithubOrg
	if s.IsRepo() {
		settingKey = models.SettingGithubRepo
	}
	return &Resolution{
		Strategy:    s,
		Host:        host,
		AutoApprove: true,
		AddTags:     []string{OpenSourceTag},
		AddSettings: map[string]any{settingKey: s.Handle},
	}, nil
}

func (r *Resolver) verificationFailed(ctx context.Context, check string, s Automated, err error) error {
	r.logger.InfoContext(ctx, "github verification failed",
		"check", check,
		"handle", s.Handle,
		"category", string(verification.CategoryOf(err)),
		"error", err,
	)
	return dErrors.Wrap(err, dErrors.CodeValidation, verification.UserMessage(err))
}

func (r *Resolver) resolveExplicit(ctx context.Context, s Explicit, actor *usermodels.User) (*Resolution, error) {
	host, err := r.findHost(ctx, s.Ref)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeValidation, hostNotFoundMessage)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load host")
	}
	if !host.IsHostAccount {
		return nil, dErrors.New(dErrors.CodeValidation, hostNotActivatedMessage)
	}

	approve := false
	if s.Approve {
		isAdmin, err := r.roles.HasRole(ctx, host.ID, actor.ID, models.RoleAdmin)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check host membership")
		}
		approve = isAdmin
		if !isAdmin {
			r.logger.InfoContext(ctx, "approval requested by non-admin of host, leaving pending",
				"host_slug", host.Slug,
				"user_id", actor.ID.String(),
			)
		}
	}
	return &Resolution{Strategy: s, Host: host, AutoApprove: approve}, nil
}

func (r *Resolver) findHost(ctx context.Context, ref models.HostReference) (*models.Collective, error) {
	if ref.ID != "" {
		hostID, err := id.ParseCollectiveID(ref.ID)
		if err != nil {
			return nil, sentinel.ErrNotFound
		}
		return r.collectives.FindByID(ctx, hostID)
	}
	return r.collectives.FindBySlug(ctx, ref.Slug)
}
