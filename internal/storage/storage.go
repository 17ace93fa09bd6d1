// Package storage is the durable key/value layer that mirrors the task
// collection. Every backend stores opaque byte values under string keys and
// replaces a value wholesale on Set.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Raisondetr3/tasktango/pkg/logger"
)

const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverBadger   = "badger"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var (
	ErrKeyNotFound   = errors.New("key not found")
	ErrInvalidKey    = errors.New("invalid storage key")
	ErrUnknownDriver = errors.New("unknown storage driver")
	ErrClosed        = errors.New("storage closed")
)

type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Ping(ctx context.Context) error
	Close() error
}

type StorageError struct {
	Op      string
	Backend string
	Err     error
}

func (e *StorageError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Backend, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Backend, e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func wrapError(backend, op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Backend: backend, Err: err}
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrKeyNotFound)
}

type Config struct {
	Driver string

	// Dir is the data directory for the file and badger drivers.
	Dir string

	PostgresDSN     string
	ConnectRetries  int
	ConnectInterval time.Duration

	SQLitePath string

	// InMemory switches badger to its in-memory mode.
	InMemory bool
}

// Open returns the backend named by cfg.Driver, instrumented with logging.
func Open(ctx context.Context, cfg Config) (KeyValueStore, error) {
	var (
		kv  KeyValueStore
		err error
	)

	switch strings.ToLower(cfg.Driver) {
	case DriverMemory:
		kv = NewMemoryStore()
	case DriverFile:
		kv, err = NewFileStore(cfg.Dir)
	case DriverBadger:
		bcfg := DefaultBadgerConfig()
		bcfg.Path = cfg.Dir
		if cfg.InMemory {
			bcfg = InMemoryBadgerConfig()
		}
		bcfg.Logger = slog.Default().With(slog.String("component", "badger"))
		kv, err = NewBadgerStore(bcfg)
	case DriverPostgres:
		kv, err = NewPostgresStore(ctx, cfg.PostgresDSN, cfg.ConnectRetries, cfg.ConnectInterval)
	case DriverSQLite:
		kv, err = NewSQLiteStore(ctx, cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	return Instrument(strings.ToLower(cfg.Driver), kv), nil
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	return nil
}

type instrumented struct {
	backend string
	next    KeyValueStore
}

// Instrument logs every operation of next.
func Instrument(backend string, next KeyValueStore) KeyValueStore {
	return &instrumented{backend: backend, next: next}
}

func (s *instrumented) Get(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	value, err := s.next.Get(ctx, key)
	duration := time.Since(start)

	if IsNotFound(err) {
		logger.LogStorageOperation(ctx, s.backend, "get", key, 0, duration, nil)
	} else {
		logger.LogStorageOperation(ctx, s.backend, "get", key, len(value), duration, err)
	}
	logger.LogSlowOperation(ctx, s.backend+"_get", duration, 200*time.Millisecond)

	return value, err
}

func (s *instrumented) Set(ctx context.Context, key string, value []byte) error {
	start := time.Now()
	err := s.next.Set(ctx, key, value)
	duration := time.Since(start)

	logger.LogStorageOperation(ctx, s.backend, "set", key, len(value), duration, err)
	logger.LogSlowOperation(ctx, s.backend+"_set", duration, 200*time.Millisecond)

	return err
}

func (s *instrumented) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}

func (s *instrumented) Close() error {
	return s.next.Close()
}
