//go:build integration

package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/foodbank/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRedis(t *testing.T) *RedisRequestStore {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client, err := NewRedisClient(ctx, fmt.Sprintf("%s:%s", host, port.Port()), "", 0)
	require.NoError(t, err)

	store := NewRedisRequestStore(client, "test:")
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRedisRequestStore_Lifecycle(t *testing.T) {
	store := startRedis(t)
	ctx := context.Background()

	existing, err := store.Claim(ctx, "batch-1", time.Minute)
	require.NoError(t, err)
	assert.Nil(t, existing)

	existing, err = store.Claim(ctx, "batch-1", time.Minute)
	require.NoError(t, err)
	require.NotNil(t, existing)
	assert.Equal(t, shared.RequestStatePending, existing.State)

	require.NoError(t, store.Complete(ctx, "batch-1", 12, time.Minute))
	existing, err = store.Claim(ctx, "batch-1", time.Minute)
	require.NoError(t, err)
	require.NotNil(t, existing)
	assert.Equal(t, shared.RequestStateCompleted, existing.State)
	assert.Equal(t, int64(12), existing.ResultID)

	require.NoError(t, store.Release(ctx, "batch-1"))
	existing, err = store.Claim(ctx, "batch-1", time.Minute)
	require.NoError(t, err)
	assert.Nil(t, existing)
}
