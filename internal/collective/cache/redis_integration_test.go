//go:build integration

package cache_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"opencollective/internal/collective/cache"
	"opencollective/internal/collective/models"
	"opencollective/pkg/platform/sentinel"
	"opencollective/pkg/testutil/containers"
)

type RedisCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	cache *cache.Redis
}

func TestRedisCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisCacheSuite))
}

func (s *RedisCacheSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.cache = cache.NewRedis(s.redis.Client, time.Minute)
}

func (s *RedisCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisCacheSuite) TestRoundTrip() {
	ctx := context.Background()
	fee := 5.0
	v := &models.AccountWithHost{
		Collective:     &models.Collective{Slug: "webpack", Name: "Webpack", Type: models.TypeCollective},
		HostFeePercent: &fee,
		IsActive:       true,
	}
	s.Require().NoError(s.cache.Set(ctx, "WebPack", v))

	got, err := s.cache.Get(ctx, "webpack")
	s.Require().NoError(err)
	s.Equal("Webpack", got.Collective.Name)
	s.Require().NotNil(got.HostFeePercent)
	s.Equal(5.0, *got.HostFeePercent)
	s.True(got.IsActive)

	ttl, err := s.redis.Client.TTL(ctx, "collective:account:webpack").Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))
}

func (s *RedisCacheSuite) TestInvalidateDeletesAndPublishes() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.Require().NoError(s.cache.Set(ctx, "webpack", &models.AccountWithHost{Collective: &models.Collective{Slug: "webpack"}}))

	var (
		mu       sync.Mutex
		received []string
	)
	listenCtx, stop := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.cache.ListenInvalidations(listenCtx, slog.New(slog.DiscardHandler), func(slug string) {
			mu.Lock()
			defer mu.Unlock()
			received = append(received, slug)
		})
	}()

	// Subscriptions are asynchronous; retry until the listener has joined.
	s.Eventually(func() bool {
		s.Require().NoError(s.cache.Invalidate(ctx, "WEBPACK"))
		mu.Lock()
		defer mu.Unlock()
		return len(received) > 0
	}, 5*time.Second, 100*time.Millisecond)
	stop()
	<-done

	mu.Lock()
	s.Equal("webpack", received[0])
	mu.Unlock()
	_, err := s.cache.Get(ctx, "webpack")
	s.ErrorIs(err, sentinel.ErrNotFound)
}
