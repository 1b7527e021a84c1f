// Package cache holds the Redis-backed helpers used by the story service.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/storyhub-api/internal/config"
)

const viewKeyPrefix = "storyhub:view:"

// ViewTracker decides whether a story view should be counted
type ViewTracker interface {
	// FirstView reports whether viewer has not viewed the story within the window
	FirstView(ctx context.Context, storyID, viewer string) (bool, error)
	Ping(ctx context.Context) error
}

// NewClient connects to Redis. It returns nil, nil when no address is configured.
func NewClient(cfg *config.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// redisViews de-duplicates views with SET NX and a TTL
type redisViews struct {
	client *redis.Client
	ttl    time.Duration
}

// NewViewTracker returns a tracker backed by client. A nil client counts every view.
func NewViewTracker(client *redis.Client, ttl time.Duration) ViewTracker {
	return &redisViews{client: client, ttl: ttl}
}

func viewKey(storyID, viewer string) string {
	return viewKeyPrefix + storyID + ":" + viewer
}

func (v *redisViews) FirstView(ctx context.Context, storyID, viewer string) (bool, error) {
	if v.client == nil || viewer == "" {
		return true, nil
	}
	return v.client.SetNX(ctx, viewKey(storyID, viewer), 1, v.ttl).Result()
}

func (v *redisViews) Ping(ctx context.Context) error {
	if v.client == nil {
		return nil
	}
	return v.client.Ping(ctx).Err()
}
