package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opencollective/internal/collective/models"
	"opencollective/pkg/platform/sentinel"
)

func view(slug string) *models.AccountWithHost {
	return &models.AccountWithHost{Collective: &models.Collective{Slug: slug}}
}

func TestMemory(t *testing.T) {
	ctx := context.Background()

	t.Run("miss then hit ignoring case", func(t *testing.T) {
		m := NewMemory()
		_, err := m.Get(ctx, "webpack")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)

		require.NoError(t, m.Set(ctx, "WebPack", view("webpack")))
		got, err := m.Get(ctx, "webpack")
		require.NoError(t, err)
		assert.Equal(t, "webpack", got.Collective.Slug)
	})

	t.Run("entries expire after the ttl", func(t *testing.T) {
		now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		m := NewMemory(WithTTL(time.Minute), WithClock(func() time.Time { return now }))
		require.NoError(t, m.Set(ctx, "webpack", view("webpack")))

		now = now.Add(59 * time.Second)
		_, err := m.Get(ctx, "webpack")
		require.NoError(t, err)

		now = now.Add(time.Second)
		_, err = m.Get(ctx, "webpack")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
		assert.Equal(t, 0, m.Len())
	})

	t.Run("invalidate removes the entry", func(t *testing.T) {
		m := NewMemory()
		require.NoError(t, m.Set(ctx, "webpack", view("webpack")))
		require.NoError(t, m.Invalidate(ctx, "WEBPACK"))
		_, err := m.Get(ctx, "webpack")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) (*models.AccountWithHost, error) {
	return nil, errors.New("connection refused")
}
func (brokenStore) Set(context.Context, string, *models.AccountWithHost) error {
	return errors.New("connection refused")
}
func (brokenStore) Invalidate(context.Context, string) error {
	return errors.New("connection refused")
}

func TestLayered(t *testing.T) {
	ctx := context.Background()

	t.Run("shared hit fills the local tier", func(t *testing.T) {
		local, shared := NewMemory(), NewMemory()
		require.NoError(t, shared.Set(ctx, "webpack", view("webpack")))
		l := NewLayered(local, shared)

		_, err := l.Get(ctx, "webpack")
		require.NoError(t, err)
		_, err = local.Get(ctx, "webpack")
		assert.NoError(t, err)
	})

	t.Run("miss in both tiers is a miss", func(t *testing.T) {
		l := NewLayered(NewMemory(), NewMemory())
		_, err := l.Get(ctx, "nothing")
		assert.True(t, IsMiss(err))
	})

	t.Run("invalidation clears local even when shared fails", func(t *testing.T) {
		local := NewMemory()
		require.NoError(t, local.Set(ctx, "webpack", view("webpack")))
		l := NewLayered(local, brokenStore{})

		err := l.Invalidate(ctx, "webpack")
		require.Error(t, err)
		_, err = local.Get(ctx, "webpack")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("shared errors are not misses", func(t *testing.T) {
		l := NewLayered(NewMemory(), brokenStore{})
		_, err := l.Get(ctx, "webpack")
		require.Error(t, err)
		assert.False(t, IsMiss(err))
	})
}
