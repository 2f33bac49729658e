package cache

import (
	"context"
	"errors"

	"opencollective/internal/collective/models"
	"opencollective/pkg/platform/sentinel"
)

// Store is one cache tier.
type Store interface {
	Get(ctx context.Context, slug string) (*models.AccountWithHost, error)
	Set(ctx context.Context, slug string, view *models.AccountWithHost) error
	Invalidate(ctx context.Context, slug string) error
}

// Layered reads through a local tier to a shared one. Invalidation always
// reaches both; a shared-tier failure is still reported.
type Layered struct {
	local  Store
	shared Store
}

func NewLayered(local, shared Store) *Layered {
	return &Layered{local: local, shared: shared}
}

func (l *Layered) Get(ctx context.Context, slug string) (*models.AccountWithHost, error) {
	view, err := l.local.Get(ctx, slug)
	if err == nil {
		return view, nil
	}
	view, err = l.shared.Get(ctx, slug)
	if err != nil {
		return nil, err
	}
	_ = l.local.Set(ctx, slug, view)
	return view, nil
}

func (l *Layered) Set(ctx context.Context, slug string, view *models.AccountWithHost) error {
	_ = l.local.Set(ctx, slug, view)
	return l.shared.Set(ctx, slug, view)
}

func (l *Layered) Invalidate(ctx context.Context, slug string) error {
	localErr := l.local.Invalidate(ctx, slug)
	sharedErr := l.shared.Invalidate(ctx, slug)
	return errors.Join(localErr, sharedErr)
}

// IsMiss reports whether err is a plain cache miss.
func IsMiss(err error) bool {
	return errors.Is(err, sentinel.ErrNotFound)
}
