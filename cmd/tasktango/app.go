package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Raisondetr3/tasktango/internal/cache"
	"github.com/Raisondetr3/tasktango/internal/config"
	"github.com/Raisondetr3/tasktango/internal/metrics"
	"github.com/Raisondetr3/tasktango/internal/repository"
	"github.com/Raisondetr3/tasktango/internal/service"
	"github.com/Raisondetr3/tasktango/internal/storage"
)

const serviceName = "tasktango"

// app holds the wired dependencies shared by serve and the local commands.
type app struct {
	cfg      *config.Config
	kv       storage.KeyValueStore
	cache    cache.TaskListCache
	registry *prometheus.Registry
	store    *service.TaskStore
	health   service.HealthService
}

func openApp(ctx context.Context, cfg *config.Config, storeOpts ...service.Option) (*app, error) {
	kv, err := storage.Open(ctx, cfg.StorageOptions())
	if err != nil {
		slog.Error("Failed to open storage",
			slog.String("driver", cfg.Storage.Driver),
			slog.String("error", err.Error()))
		return nil, err
	}

	taskCache, err := cache.NewRedisCache(cfg.Redis.URLs, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Enabled)
	if err != nil {
		slog.Warn("Redis unavailable, continuing without cache", slog.String("error", err.Error()))
		taskCache, _ = cache.NewRedisCache(nil, "", 0, false)
	}

	var repo repository.TaskRepository = repository.NewTaskRepository(kv, cfg.Storage.Key)
	if taskCache.Enabled() {
		repo = repository.NewCachedTaskRepository(repo, taskCache, cfg.Storage.Key, cfg.Redis.TTL)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	storeOpts = append([]service.Option{service.WithMetrics(metrics.New(registry))}, storeOpts...)
	store := service.NewTaskStore(repo, storeOpts...)
	store.Load(ctx)

	return &app{
		cfg:      cfg,
		kv:       kv,
		cache:    taskCache,
		registry: registry,
		store:    store,
		health:   service.NewHealthService(repository.NewHealthRepository(kv, cfg.Storage.Driver), taskCache, store),
	}, nil
}

func (a *app) Close() error {
	return errors.Join(a.cache.Close(), a.kv.Close())
}
