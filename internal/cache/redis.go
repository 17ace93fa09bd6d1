package cache

import (
	"context"
	"errors"
	"fmt"
	"hash/crc32"
	"log/slog"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/Raisondetr3/tasktango/pkg/logger"
)

var (
	ErrCacheMiss     = errors.New("task list not found in cache")
	ErrCacheDisabled = errors.New("cache disabled")
)

// TaskListCache holds serialized task collections keyed by their storage key.
type TaskListCache interface {
	SetTaskList(ctx context.Context, key string, data []byte, ttl time.Duration) error
	GetTaskList(ctx context.Context, key string) ([]byte, error)
	InvalidateTaskList(ctx context.Context, key string) error

	Enabled() bool
	Ping(ctx context.Context) error
	Close() error
}

type redisCache struct {
	clients []redis.Cmdable
	enabled bool
}

func NewRedisCache(urls []string, password string, db int, enabled bool) (TaskListCache, error) {
	ctx := context.Background()

	if !enabled {
		logger.LogCacheStatus(ctx, false, 0, 0)
		return &redisCache{enabled: false}, nil
	}

	if len(urls) == 0 {
		return nil, errors.New("redis URLs cannot be empty when Redis is enabled")
	}

	clients := make([]redis.Cmdable, len(urls))

	for i, url := range urls {
		client := redis.NewClient(&redis.Options{
			Addr:     url,
			Password: password,
			DB:       db,
		})

		connCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)

		err := client.Ping(connCtx).Err()
		cancel()

		if err != nil {
			logger.LogRedisShardConnection(ctx, i, url, err)
			for _, c := range clients[:i] {
				c.(*redis.Client).Close()
			}
			client.Close()
			return nil, err
		}

		clients[i] = client
		logger.LogRedisShardConnection(ctx, i, url, nil)
	}

	logger.LogCacheStatus(ctx, true, len(urls), 0)

	return NewShardedCache(clients), nil
}

// NewShardedCache wraps already connected clients.
func NewShardedCache(clients []redis.Cmdable) TaskListCache {
	return &redisCache{
		clients: clients,
		enabled: len(clients) > 0,
	}
}

func (r *redisCache) Enabled() bool {
	return r.enabled
}

func (r *redisCache) getShardIndex(key string) int {
	if len(r.clients) == 1 {
		return 0
	}

	hash := crc32.ChecksumIEEE([]byte(key))
	return int(hash % uint32(len(r.clients)))
}

func (r *redisCache) getClient(key string) redis.Cmdable {
	if !r.enabled || len(r.clients) == 0 {
		return nil
	}

	return r.clients[r.getShardIndex(key)]
}

func (r *redisCache) SetTaskList(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if !r.enabled {
		return nil
	}

	cacheKey := taskListKey(key)
	shardIndex := r.getShardIndex(cacheKey)
	client := r.getClient(cacheKey)
	if client == nil {
		return errors.New("no Redis client available")
	}

	start := time.Now()
	err := client.Set(ctx, cacheKey, data, ttl).Err()
	logger.LogCacheOperation(ctx, "SET_LIST", cacheKey, shardIndex, time.Since(start), err)

	return err
}

func (r *redisCache) GetTaskList(ctx context.Context, key string) ([]byte, error) {
	if !r.enabled {
		return nil, ErrCacheDisabled
	}

	cacheKey := taskListKey(key)
	shardIndex := r.getShardIndex(cacheKey)
	client := r.getClient(cacheKey)
	if client == nil {
		return nil, errors.New("no Redis client available")
	}

	start := time.Now()
	data, err := client.Get(ctx, cacheKey).Bytes()
	duration := time.Since(start)

	if err != nil {
		if errors.Is(err, redis.Nil) {
			logger.LogCacheHit(ctx, cacheKey, false, duration)
			return nil, ErrCacheMiss
		}
		logger.LogCacheOperation(ctx, "GET_LIST", cacheKey, shardIndex, duration, err)
		return nil, err
	}

	logger.LogCacheHit(ctx, cacheKey, true, duration)
	return data, nil
}

func (r *redisCache) InvalidateTaskList(ctx context.Context, key string) error {
	if !r.enabled {
		return nil
	}

	cacheKey := taskListKey(key)
	shardIndex := r.getShardIndex(cacheKey)
	client := r.getClient(cacheKey)
	if client == nil {
		return errors.New("no Redis client available")
	}

	start := time.Now()
	err := client.Del(ctx, cacheKey).Err()
	logger.LogCacheOperation(ctx, "DELETE_LIST", cacheKey, shardIndex, time.Since(start), err)

	return err
}

func (r *redisCache) Ping(ctx context.Context) error {
	if !r.enabled {
		return nil
	}

	for i, client := range r.clients {
		start := time.Now()
		err := client.Ping(ctx).Err()
		logger.LogCacheOperation(ctx, "PING", "health_check", i, time.Since(start), err)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *redisCache) Close() error {
	if !r.enabled {
		return nil
	}

	ctx := context.Background()
	var lastErr error

	for i, client := range r.clients {
		if redisClient, ok := client.(*redis.Client); ok {
			if err := redisClient.Close(); err != nil {
				logger.LogError(ctx, err, "close_redis_shard",
					slog.Int("shard_index", i))
				lastErr = err
			}
		}
	}
	return lastErr
}

func taskListKey(key string) string {
	return fmt.Sprintf("tasktango:%s:list", key)
}

func ParseRedisURLs(urls string) []string {
	if urls == "" {
		return []string{}
	}

	urlList := strings.Split(urls, ",")
	result := make([]string, 0, len(urlList))

	for _, url := range urlList {
		trimmed := strings.TrimSpace(url)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
