package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// BadgerConfig holds configuration for the embedded BadgerDB backend.
type BadgerConfig struct {
	// Path is the directory for BadgerDB files. Ignored when InMemory is true.
	Path string

	InMemory   bool
	SyncWrites bool

	// Logger receives BadgerDB's internal log lines. Nil disables them.
	Logger *slog.Logger

	// GCInterval is how often value log GC runs. Zero disables it.
	GCInterval     time.Duration
	GCDiscardRatio float64
}

func DefaultBadgerConfig() BadgerConfig {
	return BadgerConfig{
		SyncWrites:     true,
		GCInterval:     5 * time.Minute,
		GCDiscardRatio: 0.5,
	}
}

func InMemoryBadgerConfig() BadgerConfig {
	return BadgerConfig{
		InMemory:   true,
		SyncWrites: false,
	}
}

// badgerLogger adapts slog.Logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

type BadgerStore struct {
	db   *badger.DB
	stop chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

func NewBadgerStore(cfg BadgerConfig) (*BadgerStore, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, wrapError(DriverBadger, "open", errors.New("path is required for persistent database"))
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, wrapError(DriverBadger, "open", fmt.Errorf("create database directory %s: %w", cfg.Path, err))
		}
		opts = badger.DefaultOptions(cfg.Path)
	}

	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, wrapError(DriverBadger, "open", err)
	}

	s := &BadgerStore{db: db, stop: make(chan struct{})}
	if !cfg.InMemory && cfg.GCInterval > 0 {
		s.wg.Add(1)
		go s.runGC(cfg.GCInterval, cfg.GCDiscardRatio)
	}
	return s, nil
}

func (s *BadgerStore) runGC(interval time.Duration, ratio float64) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			// RunValueLogGC rewrites at most one file per call.
			for s.db.RunValueLogGC(ratio) == nil {
			}
		}
	}
}

func (s *BadgerStore) Get(_ context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, wrapError(DriverBadger, "get", err)
	}

	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, wrapError(DriverBadger, "get", ErrKeyNotFound)
	}
	if errors.Is(err, badger.ErrDBClosed) {
		return nil, wrapError(DriverBadger, "get", ErrClosed)
	}
	if err != nil {
		return nil, wrapError(DriverBadger, "get", err)
	}
	return value, nil
}

func (s *BadgerStore) Set(_ context.Context, key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return wrapError(DriverBadger, "set", err)
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if errors.Is(err, badger.ErrDBClosed) {
		return wrapError(DriverBadger, "set", ErrClosed)
	}
	return wrapError(DriverBadger, "set", err)
}

func (s *BadgerStore) Ping(context.Context) error {
	if s.db.IsClosed() {
		return wrapError(DriverBadger, "ping", ErrClosed)
	}
	return nil
}

func (s *BadgerStore) Close() error {
	var err error
	s.once.Do(func() {
		close(s.stop)
		s.wg.Wait()
		err = s.db.Close()
	})
	return wrapError(DriverBadger, "close", err)
}
