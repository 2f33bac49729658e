package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "opensource", cfg.Hosts.OpenSourceSlug)
	assert.Equal(t, "foundation", cfg.Hosts.TrustedAutoCreateSlug)
	assert.Equal(t, 100, cfg.GitHub.MinStars)
	assert.Equal(t, 5*time.Second, cfg.TxTimeout)
	assert.False(t, cfg.Kafka.Enabled())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("ADDR", ":9090")
	t.Setenv("GITHUB_MIN_STARS", "250")
	t.Setenv("TRUSTED_AUTO_CREATE_HOST_SLUG", "europe")
	t.Setenv("DATABASE_URL", "postgres://localhost/opencollective")
	t.Setenv("KAFKA_BROKERS", "a:9092,b:9092")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, 250, cfg.GitHub.MinStars)
	assert.Equal(t, "europe", cfg.Hosts.TrustedAutoCreateSlug)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
}

func TestFromEnv_Invalid(t *testing.T) {
	t.Run("unknown log level", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "verbose")
		_, err := FromEnv()
		assert.Error(t, err)
	})

	t.Run("kafka without database", func(t *testing.T) {
		t.Setenv("KAFKA_BROKERS", "a:9092")
		_, err := FromEnv()
		assert.Error(t, err)
	})

	t.Run("malformed duration", func(t *testing.T) {
		t.Setenv("TX_TIMEOUT", "soon")
		_, err := FromEnv()
		assert.Error(t, err)
	})
}
