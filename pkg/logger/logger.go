package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type Config struct {
	Level    string `env:"LOG_LEVEL" envDefault:"info" yaml:"level"`
	FilePath string `env:"LOG_FILE_PATH" envDefault:"logs" yaml:"file_path"`
	FileName string `env:"LOG_FILE_NAME" yaml:"file_name"`
}

// SetupLogger installs a JSON slog logger as the process default. An empty
// FilePath logs to stderr.
func SetupLogger(cfg Config, serviceName string) error {
	var out io.Writer = os.Stderr

	if cfg.FilePath != "" {
		if err := os.MkdirAll(cfg.FilePath, 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}

		if cfg.FileName == "" {
			cfg.FileName = fmt.Sprintf("%s.log", serviceName)
		}

		fullPath := filepath.Join(cfg.FilePath, cfg.FileName)

		logFile, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		out = logFile
	}

	slog.SetDefault(New(out, cfg.Level, serviceName))

	return nil
}

// New builds the JSON logger used by SetupLogger without installing it.
func New(out io.Writer, level, serviceName string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     ParseLevel(level),
		AddSource: true,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Value = slog.StringValue(a.Value.Time().Format(time.RFC3339))
			}
			return a
		},
	}

	return slog.New(slog.NewJSONHandler(out, opts)).With(
		slog.String("service", serviceName),
	)
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func LogHTTPRequest(ctx context.Context, method, path, userAgent, requestID string, duration time.Duration, statusCode int) {
	if ctx == nil {
		ctx = context.Background()
	}

	attrs := []slog.Attr{
		slog.String("type", "http_request"),
		slog.String("method", method),
		slog.String("path", path),
		slog.String("user_agent", userAgent),
		slog.String("request_id", requestID),
		slog.Duration("duration", duration),
		slog.Int("status_code", statusCode),
	}

	if statusCode >= 500 {
		slog.LogAttrs(ctx, slog.LevelError, "HTTP Request", attrs...)
	} else if statusCode >= 400 {
		slog.LogAttrs(ctx, slog.LevelWarn, "HTTP Request", attrs...)
	} else {
		slog.LogAttrs(ctx, slog.LevelInfo, "HTTP Request", attrs...)
	}
}

func LogGRPCRequest(ctx context.Context, method string, duration time.Duration, err error) {
	attrs := []slog.Attr{
		slog.String("type", "grpc_request"),
		slog.String("method", method),
		slog.Duration("duration", duration),
	}

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		slog.LogAttrs(ctx, slog.LevelError, "gRPC Request Failed", attrs...)
	} else {
		slog.LogAttrs(ctx, slog.LevelInfo, "gRPC Request", attrs...)
	}
}

func LogStorageOperation(ctx context.Context, backend, operation, key string, size int, duration time.Duration, err error) {
	attrs := []slog.Attr{
		slog.String("type", "storage_operation"),
		slog.String("backend", backend),
		slog.String("operation", operation),
		slog.String("key", key),
		slog.Int("bytes", size),
		slog.Duration("duration", duration),
	}

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		slog.LogAttrs(ctx, slog.LevelError, "Storage Operation Failed", attrs...)
	} else {
		slog.LogAttrs(ctx, slog.LevelDebug, "Storage Operation", attrs...)
	}
}

func LogStorageConnection(ctx context.Context, backend, target string, err error) {
	attrs := []slog.Attr{
		slog.String("type", "storage_connection"),
		slog.String("backend", backend),
		slog.String("target", maskPassword(target)),
	}

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		slog.LogAttrs(ctx, slog.LevelError, "Storage Connection Failed", attrs...)
	} else {
		slog.LogAttrs(ctx, slog.LevelInfo, "Storage Connection", attrs...)
	}
}

func LogError(ctx context.Context, err error, operation string, additionalFields ...slog.Attr) {
	attrs := []slog.Attr{
		slog.String("type", "error"),
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	}
	attrs = append(attrs, additionalFields...)

	slog.LogAttrs(ctx, slog.LevelError, "Operation Error", attrs...)
}

func LogTaskOperation(ctx context.Context, operation, taskID string, duration time.Duration, err error) {
	attrs := []slog.Attr{
		slog.String("type", "task_operation"),
		slog.String("operation", operation),
		slog.String("task_id", taskID),
		slog.Duration("duration", duration),
	}

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		slog.LogAttrs(ctx, slog.LevelWarn, "Task Operation Failed", attrs...)
	} else {
		slog.LogAttrs(ctx, slog.LevelInfo, "Task Operation", attrs...)
	}
}

func LogBonusAwarded(ctx context.Context, taskID string, points int, completedAt, dueAt time.Time) {
	attrs := []slog.Attr{
		slog.String("type", "bonus_awarded"),
		slog.String("task_id", taskID),
		slog.Int("points", points),
		slog.Time("completed_at", completedAt),
		slog.Time("due_at", dueAt),
	}

	slog.LogAttrs(ctx, slog.LevelInfo, "On-time Bonus Awarded", attrs...)
}

func LogPersistenceFallback(ctx context.Context, operation, cause string, err error) {
	attrs := []slog.Attr{
		slog.String("type", "persistence_fallback"),
		slog.String("operation", operation),
		slog.String("cause", cause),
		slog.String("error", err.Error()),
	}

	slog.LogAttrs(ctx, slog.LevelWarn, "Persistence Degraded, Using In-memory State", attrs...)
}

func WithTaskID(taskID string) *slog.Logger {
	return slog.With(slog.String("task_id", taskID))
}

func WithRequestID(requestID string) *slog.Logger {
	return slog.With(slog.String("request_id", requestID))
}

func maskPassword(dsn string) string {
	if dsn == "" {
		return dsn
	}

	start := strings.Index(dsn, "password=")
	if start == -1 {
		return dsn
	}

	start += len("password=")
	end := start

	for end < len(dsn) && dsn[end] != ' ' && dsn[end] != '&' {
		end++
	}

	masked := dsn[:start] + "***"
	if end < len(dsn) {
		masked += dsn[end:]
	}

	return masked
}

func LogSlowOperation(ctx context.Context, operation string, duration time.Duration, threshold time.Duration) {
	if duration <= threshold {
		return
	}

	attrs := []slog.Attr{
		slog.String("type", "slow_operation"),
		slog.String("operation", operation),
		slog.Duration("duration", duration),
		slog.Duration("threshold", threshold),
	}

	slog.LogAttrs(ctx, slog.LevelWarn, "Slow Operation Detected", attrs...)
}

func LogServiceStart(serviceName string, config map[string]interface{}) {
	attrs := []slog.Attr{
		slog.String("type", "service_lifecycle"),
		slog.String("event", "start"),
		slog.String("service", serviceName),
		slog.Any("config", config),
	}

	slog.LogAttrs(context.Background(), slog.LevelInfo, "Service Starting", attrs...)
}

func LogServiceStop(serviceName string, reason string) {
	attrs := []slog.Attr{
		slog.String("type", "service_lifecycle"),
		slog.String("event", "stop"),
		slog.String("service", serviceName),
		slog.String("reason", reason),
	}

	slog.LogAttrs(context.Background(), slog.LevelInfo, "Service Stopping", attrs...)
}

func LogRedisShardConnection(ctx context.Context, shardIndex int, addr string, err error) {
	attrs := []slog.Attr{
		slog.String("type", "redis_shard_connection"),
		slog.Int("shard_index", shardIndex),
		slog.String("address", addr),
	}

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		slog.LogAttrs(ctx, slog.LevelError, "Redis Shard Connection Failed", attrs...)
	} else {
		slog.LogAttrs(ctx, slog.LevelInfo, "Redis Shard Connected", attrs...)
	}
}

func LogCacheOperation(ctx context.Context, operation, key string, shardIndex int, duration time.Duration, err error) {
	attrs := []slog.Attr{
		slog.String("type", "cache_operation"),
		slog.String("operation", operation),
		slog.String("key", key),
		slog.Int("shard_index", shardIndex),
		slog.Duration("duration", duration),
	}

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		slog.LogAttrs(ctx, slog.LevelError, "Cache Operation Failed", attrs...)
	} else {
		slog.LogAttrs(ctx, slog.LevelDebug, "Cache Operation Success", attrs...)
	}
}

func LogCacheHit(ctx context.Context, key string, hit bool, duration time.Duration) {
	attrs := []slog.Attr{
		slog.String("type", "cache_event"),
		slog.String("key", key),
		slog.Bool("cache_hit", hit),
		slog.Duration("duration", duration),
	}

	if hit {
		slog.LogAttrs(ctx, slog.LevelDebug, "Cache Hit", attrs...)
	} else {
		slog.LogAttrs(ctx, slog.LevelDebug, "Cache Miss", attrs...)
	}
}

func LogCacheStatus(ctx context.Context, enabled bool, shardCount int, ttl time.Duration) {
	attrs := []slog.Attr{
		slog.String("type", "cache_status"),
		slog.Bool("enabled", enabled),
		slog.Int("shard_count", shardCount),
		slog.Duration("default_ttl", ttl),
	}

	if enabled {
		slog.LogAttrs(ctx, slog.LevelInfo, "Cache Initialized", attrs...)
	} else {
		slog.LogAttrs(ctx, slog.LevelInfo, "Cache Disabled", attrs...)
	}
}
