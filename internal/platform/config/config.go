package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Server captures process configuration. Empty backing-service URLs select
// the in-process implementations.
type Server struct {
	Addr          string `env:"ADDR" envDefault:":8080"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	JWTSigningKey string `env:"JWT_SIGNING_KEY" envDefault:"dev-secret-key-change-in-production"`
	JWTIssuer     string `env:"JWT_ISSUER" envDefault:"opencollective"`
	JWTAudience   string `env:"JWT_AUDIENCE" envDefault:"opencollective-api"`

	DatabaseURL string        `env:"DATABASE_URL"`
	TxTimeout   time.Duration `env:"TX_TIMEOUT" envDefault:"5s"`

	Redis    RedisConfig
	Kafka    KafkaConfig
	GitHub   GitHubConfig
	Hosts    HostsConfig
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"5m"`
}

type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

type KafkaConfig struct {
	Brokers            []string      `env:"KAFKA_BROKERS" envSeparator:","`
	AuditTopic         string        `env:"KAFKA_AUDIT_TOPIC" envDefault:"collective.activities"`
	OutboxPollInterval time.Duration `env:"OUTBOX_POLL_INTERVAL" envDefault:"1s"`
	OutboxBatchSize    int           `env:"OUTBOX_BATCH_SIZE" envDefault:"100"`
}

// Enabled reports whether a broker is configured.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

type GitHubConfig struct {
	APIURL   string        `env:"GITHUB_API_URL" envDefault:"https://api.github.com"`
	Timeout  time.Duration `env:"GITHUB_TIMEOUT" envDefault:"10s"`
	MinStars int           `env:"GITHUB_MIN_STARS" envDefault:"100"`
	UseStub  bool          `env:"GITHUB_VERIFICATION_STUB" envDefault:"false"`
}

// HostsConfig names the hosts with special handling during onboarding.
type HostsConfig struct {
	OpenSourceSlug        string `env:"OPENSOURCE_HOST_SLUG" envDefault:"opensource"`
	TrustedAutoCreateSlug string `env:"TRUSTED_AUTO_CREATE_HOST_SLUG" envDefault:"foundation"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	var cfg Server
	if err := ParseEnv(&cfg); err != nil {
		return Server{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Validate rejects combinations the server cannot start with.
func (s Server) Validate() error {
	switch strings.ToLower(s.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid LOG_LEVEL %q", s.LogLevel)
	}
	if s.GitHub.MinStars < 0 {
		return fmt.Errorf("GITHUB_MIN_STARS must not be negative")
	}
	if s.Hosts.OpenSourceSlug == "" || s.Hosts.TrustedAutoCreateSlug == "" {
		return fmt.Errorf("host slugs must not be empty")
	}
	if s.Kafka.Enabled() && s.DatabaseURL == "" {
		return fmt.Errorf("KAFKA_BROKERS requires DATABASE_URL for the outbox")
	}
	return nil
}
