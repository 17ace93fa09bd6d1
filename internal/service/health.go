package service

import (
	"context"
	"time"

	"github.com/Raisondetr3/tasktango/internal/cache"
	"github.com/Raisondetr3/tasktango/internal/repository"
	"github.com/Raisondetr3/tasktango/pkg/dto"
	"github.com/Raisondetr3/tasktango/pkg/logger"
)

type HealthService interface {
	Health(ctx context.Context) (*dto.HealthStatus, error)
}

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
	StatusDegraded  = "degraded"
	StatusDisabled  = "disabled"
)

type healthService struct {
	healthRepo repository.HealthRepository
	cache      cache.TaskListCache
	store      *TaskStore
}

// NewHealthService reports storage reachability as the overall status. The
// cache only degrades it; c and store may be nil.
func NewHealthService(healthRepo repository.HealthRepository, c cache.TaskListCache, store *TaskStore) HealthService {
	return &healthService{
		healthRepo: healthRepo,
		cache:      c,
		store:      store,
	}
}

func (s *healthService) Health(ctx context.Context) (*dto.HealthStatus, error) {
	status := &dto.HealthStatus{
		Status:     StatusHealthy,
		Timestamp:  time.Now(),
		Components: map[string]string{},
	}

	if err := s.healthRepo.HealthCheck(ctx); err != nil {
		logger.LogError(ctx, err, "storage_health_check")
		status.Status = StatusUnhealthy
		status.Components["storage"] = StatusUnhealthy
	} else {
		status.Components["storage"] = StatusHealthy
	}

	switch {
	case s.cache == nil || !s.cache.Enabled():
		status.Components["cache"] = StatusDisabled
	case s.cache.Ping(ctx) != nil:
		status.Components["cache"] = StatusUnhealthy
		if status.Status == StatusHealthy {
			status.Status = StatusDegraded
		}
	default:
		status.Components["cache"] = StatusHealthy
	}

	if s.store != nil {
		status.Loaded = s.store.Loaded()
	}

	return status, nil
}
