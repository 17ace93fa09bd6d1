package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Raisondetr3/tasktango/internal/cache"
	"github.com/Raisondetr3/tasktango/internal/repository"
	"github.com/Raisondetr3/tasktango/internal/storage"
)

func disabledCache(t *testing.T) cache.TaskListCache {
	t.Helper()
	c, err := cache.NewRedisCache(nil, "", 0, false)
	require.NoError(t, err)
	return c
}

func TestHealthService_Healthy(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryStore()
	store := NewTaskStore(repository.NewTaskRepository(kv, repository.DefaultKey))
	store.Load(ctx)

	svc := NewHealthService(repository.NewHealthRepository(kv, storage.DriverMemory), disabledCache(t), store)

	status, err := svc.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, StatusHealthy, status.Status)
	assert.True(t, status.Loaded)
	assert.Equal(t, StatusHealthy, status.Components["storage"])
	assert.Equal(t, StatusDisabled, status.Components["cache"])
	assert.False(t, status.Timestamp.IsZero())
}

func TestHealthService_StorageDown(t *testing.T) {
	kv := storage.NewMemoryStore()
	require.NoError(t, kv.Close())

	svc := NewHealthService(repository.NewHealthRepository(kv, storage.DriverMemory), nil, nil)

	status, err := svc.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusUnhealthy, status.Status)
	assert.Equal(t, StatusUnhealthy, status.Components["storage"])
	assert.False(t, status.Loaded)
}
