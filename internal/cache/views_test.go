package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storyhub-api/internal/config"
)

func TestNewClient_DisabledWithoutAddr(t *testing.T) {
	client, err := NewClient(&config.RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestViewTracker_NilClientCountsEveryView(t *testing.T) {
	tracker := NewViewTracker(nil, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		first, err := tracker.FirstView(ctx, "story-1", "viewer-1")
		require.NoError(t, err)
		assert.True(t, first)
	}
	assert.NoError(t, tracker.Ping(ctx))
}

func TestViewTracker_AnonymousViewerIsAlwaysCounted(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer client.Close()

	first, err := NewViewTracker(client, time.Minute).FirstView(context.Background(), "story-1", "")
	require.NoError(t, err)
	assert.True(t, first)
}

func TestViewTracker_UnreachableRedisReturnsError(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	_, err := NewViewTracker(client, time.Minute).FirstView(context.Background(), "story-1", "viewer-1")
	assert.Error(t, err)
}

func TestViewKey(t *testing.T) {
	assert.Equal(t, "storyhub:view:s1:u1", viewKey("s1", "u1"))
}
