package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Raisondetr3/tasktango/pkg/logger"
)

var ErrDatabaseConnection = errors.New("database connection error")

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS kv_store (
		key        TEXT PRIMARY KEY,
		value      BYTEA NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, dsn string, maxRetries int, delay time.Duration) (*PostgresStore, error) {
	pool, err := connectWithRetry(ctx, dsn, maxRetries, delay)
	if err != nil {
		return nil, wrapError(DriverPostgres, "open", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, handlePgxError("init_schema", err)
	}

	return &PostgresStore{db: pool}, nil
}

func connectWithRetry(ctx context.Context, dsn string, maxRetries int, delay time.Duration) (*pgxpool.Pool, error) {
	if maxRetries < 1 {
		maxRetries = 1
	}

	var pool *pgxpool.Pool
	var err error

	for i := 0; i < maxRetries; i++ {
		slog.Info("Attempting to connect to database",
			slog.Int("attempt", i+1),
			slog.Int("max_attempts", maxRetries))

		pool, err = connect(ctx, dsn)
		if err == nil {
			return pool, nil
		}

		slog.Warn("Database connection failed, retrying...",
			slog.String("error", err.Error()),
			slog.Duration("retry_in", delay))

		if i < maxRetries-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return nil, err
}

func connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		logger.LogStorageConnection(ctx, DriverPostgres, dsn, err)
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		logger.LogStorageConnection(ctx, DriverPostgres, dsn, err)
		return nil, err
	}

	logger.LogStorageConnection(ctx, DriverPostgres, dsn, nil)

	return pool, nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, wrapError(DriverPostgres, "get", err)
	}

	q := `SELECT value FROM kv_store WHERE key = $1`

	var value []byte
	if err := s.db.QueryRow(ctx, q, key).Scan(&value); err != nil {
		return nil, handlePgxError("get", err)
	}
	return value, nil
}

func (s *PostgresStore) Set(ctx context.Context, key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return wrapError(DriverPostgres, "set", err)
	}

	q := `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`

	if _, err := s.db.Exec(ctx, q, key, value); err != nil {
		return handlePgxError("set", err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	var result int
	if err := s.db.QueryRow(ctx, "SELECT 1").Scan(&result); err != nil {
		return handlePgxError("ping", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}

func handlePgxError(op string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return wrapError(DriverPostgres, op, ErrKeyNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "08000", "08003", "08006":
			return wrapError(DriverPostgres, op, ErrDatabaseConnection)
		default:
			return wrapError(DriverPostgres, op, fmt.Errorf("database error [%s]: %s", pgErr.Code, pgErr.Message))
		}
	}

	return wrapError(DriverPostgres, op, err)
}
