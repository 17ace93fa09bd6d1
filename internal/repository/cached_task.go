package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/Raisondetr3/tasktango/internal/cache"
	"github.com/Raisondetr3/tasktango/internal/model"
)

type cachedTaskRepository struct {
	repo  TaskRepository
	cache cache.TaskListCache
	key   string
	ttl   time.Duration
}

// NewCachedTaskRepository puts a read-through, write-through cache in front
// of repo. Cache failures are logged and never fail the call.
func NewCachedTaskRepository(repo TaskRepository, c cache.TaskListCache, key string, ttl time.Duration) TaskRepository {
	if key == "" {
		key = DefaultKey
	}
	return &cachedTaskRepository{
		repo:  repo,
		cache: c,
		key:   key,
		ttl:   ttl,
	}
}

func (r *cachedTaskRepository) Load(ctx context.Context) ([]model.Task, error) {
	data, err := r.cache.GetTaskList(ctx, r.key)
	if err == nil {
		tasks, decodeErr := DecodeTasks(data)
		if decodeErr == nil {
			slog.DebugContext(ctx, "Task list found in cache", slog.Int("count", len(tasks)))
			return tasks, nil
		}
		slog.WarnContext(ctx, "Cached task list is malformed, reading storage",
			slog.String("error", decodeErr.Error()))
	}

	tasks, err := r.repo.Load(ctx)
	if err != nil {
		return nil, err
	}

	r.refresh(ctx, tasks)
	return tasks, nil
}

func (r *cachedTaskRepository) Save(ctx context.Context, tasks []model.Task) error {
	if err := r.repo.Save(ctx, tasks); err != nil {
		// The cache must never hold a collection storage did not accept.
		r.invalidate(ctx)
		return err
	}

	r.refresh(ctx, tasks)
	return nil
}

func (r *cachedTaskRepository) refresh(ctx context.Context, tasks []model.Task) {
	if !r.cache.Enabled() {
		return
	}

	data, err := EncodeTasks(tasks)
	if err != nil {
		slog.WarnContext(ctx, "Failed to encode task list for cache", slog.String("error", err.Error()))
		return
	}

	if err := r.cache.SetTaskList(ctx, r.key, data, r.ttl); err != nil {
		slog.WarnContext(ctx, "Failed to cache task list",
			slog.Int("count", len(tasks)),
			slog.String("error", err.Error()))
		// A previous entry would now shadow what storage holds.
		r.invalidate(ctx)
	}
}

func (r *cachedTaskRepository) invalidate(ctx context.Context) {
	if err := r.cache.InvalidateTaskList(ctx, r.key); err != nil {
		slog.WarnContext(ctx, "Failed to invalidate task list cache",
			slog.String("error", err.Error()))
	}
}
