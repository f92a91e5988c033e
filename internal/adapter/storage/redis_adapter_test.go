package storage

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getRedisClient(t *testing.T) *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	return client
}

func testPrefix() string {
	return "graphql-bench:test:" + uuid.NewString() + ":"
}

func TestRedisAdapter_SaveThenLoad(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client, testPrefix())
	defer adapter.Clear(ctx)

	snap := smallSnapshot()
	require.NoError(t, adapter.Save(ctx, snap))

	loaded, err := adapter.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, snap.Counts(), loaded.Counts())
	assert.Equal(t, snap.Products[2].ID, loaded.Products[2].ID)
	assert.Equal(t, snap.Orders[0].Items, loaded.Orders[0].Items)
}

func TestRedisAdapter_LoadMissingKeys(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	loaded, err := NewRedisAdapter(client, testPrefix()).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, loaded.Users)
	assert.Empty(t, loaded.Orders)
}

func TestRedisAdapter_SaveReplaces(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client, testPrefix())
	defer adapter.Clear(ctx)

	snap := smallSnapshot()
	require.NoError(t, adapter.Save(ctx, snap))

	snap.Users = snap.Users[:1]
	require.NoError(t, adapter.Save(ctx, snap))

	loaded, err := adapter.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, loaded.Users, 1)
}
