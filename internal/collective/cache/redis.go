package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"opencollective/internal/collective/models"
	"opencollective/pkg/platform/sentinel"
)

const (
	keyPrefix = "collective:account:"
	// InvalidationChannel carries slugs whose cached views are stale.
	InvalidationChannel = "collective:cache:invalidate"
)

// Redis is the shared cache tier. Invalidations are published so every
// instance can drop its local copy.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Redis{client: client, ttl: ttl}
}

func key(slug string) string {
	return keyPrefix + strings.ToLower(slug)
}

func (r *Redis) Get(ctx context.Context, slug string) (*models.AccountWithHost, error) {
	raw, err := r.client.Get(ctx, key(slug)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", slug, err)
	}
	var view models.AccountWithHost
	if err := json.Unmarshal(raw, &view); err != nil {
		return nil, fmt.Errorf("decode cached view %s: %w", slug, err)
	}
	return &view, nil
}

func (r *Redis) Set(ctx context.Context, slug string, view *models.AccountWithHost) error {
	raw, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("encode view %s: %w", slug, err)
	}
	return r.client.Set(ctx, key(slug), raw, r.ttl).Err()
}

// Invalidate deletes the shared entry and announces the slug in one round trip.
func (r *Redis) Invalidate(ctx context.Context, slug string) error {
	slug = strings.ToLower(slug)
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, key(slug))
	pipe.Publish(ctx, InvalidationChannel, slug)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis invalidate %s: %w", slug, err)
	}
	return nil
}

// ListenInvalidations calls fn for every slug announced on the invalidation
// channel until ctx is done.
func (r *Redis) ListenInvalidations(ctx context.Context, logger *slog.Logger, fn func(slug string)) error {
	sub := r.client.Subscribe(ctx, InvalidationChannel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", InvalidationChannel, err)
	}
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			logger.DebugContext(ctx, "cache invalidation received", "slug", msg.Payload)
			fn(msg.Payload)
		}
	}
}
