//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func newRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx).Err())
	return client
}

func TestRedisStatsCache(t *testing.T) {
	ctx := context.Background()
	c := NewRedisStatsCache(newRedisClient(t), time.Minute)

	_, ok, err := c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	gen, err := c.Generation(ctx)
	require.NoError(t, err)
	assert.Zero(t, gen)

	require.NoError(t, c.Set(ctx, gen, sampleStats()))
	got, ok, err := c.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sampleStats(), got)

	require.NoError(t, c.Invalidate(ctx))
	_, ok, err = c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	// a value computed before the invalidation must not be written back
	require.NoError(t, c.Set(ctx, gen, sampleStats()))
	_, ok, err = c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	gen, err = c.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), gen)
	require.NoError(t, c.Set(ctx, gen, sampleStats()))
	_, ok, err = c.Get(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}
