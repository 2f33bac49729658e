//go:build integration

package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"opencollective/internal/platform/config"
	"opencollective/pkg/testutil/containers"
)

func TestConnect_AppliesPoolSettings(t *testing.T) {
	rc := containers.GetManager().GetRedis(t)
	client, err := Connect(context.Background(), config.RedisConfig{
		URL:          rc.URL,
		PoolSize:     4,
		MinIdleConns: 1,
		DialTimeout:  time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
	require.NoError(t, err)
	defer client.Close()
	require.Equal(t, 4, client.Options().PoolSize)
	require.NoError(t, client.Ping(context.Background()).Err())
}
