package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/Raisondetr3/tasktango/internal/storage"
	"github.com/Raisondetr3/tasktango/pkg/logger"
)

type HealthRepository interface {
	HealthCheck(ctx context.Context) error
}

type healthRepository struct {
	kv      storage.KeyValueStore
	backend string
}

func NewHealthRepository(kv storage.KeyValueStore, backend string) HealthRepository {
	return &healthRepository{
		kv:      kv,
		backend: backend,
	}
}

func (r *healthRepository) HealthCheck(ctx context.Context) error {
	start := time.Now()

	err := r.kv.Ping(ctx)

	duration := time.Since(start)

	if err != nil {
		r.logHealthCheckError(ctx, "storage_health_check", duration, err)
		return HandleStorageError("health_check", err)
	}

	if duration > 100*time.Millisecond {
		logger.LogSlowOperation(ctx, "health_check", duration, 100*time.Millisecond)
	}

	slog.DebugContext(ctx, "Health check successful",
		slog.String("backend", r.backend),
		slog.Duration("duration", duration),
	)

	return nil
}

func (r *healthRepository) logHealthCheckError(ctx context.Context, operation string, duration time.Duration, err error) {
	slog.ErrorContext(ctx, "Health check failed",
		slog.String("operation", operation),
		slog.String("backend", r.backend),
		slog.String("error", err.Error()),
		slog.Duration("duration", duration),
		slog.String("type", "health_check_failure"),
	)
}
