package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS kv_store (
		key        TEXT PRIMARY KEY,
		value      BLOB NOT NULL,
		updated_at DATETIME NOT NULL
	);
`

type SQLiteStore struct {
	conn *sql.DB
}

func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		return nil, wrapError(DriverSQLite, "open", errors.New("database path is required"))
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, wrapError(DriverSQLite, "open", err)
		}
	}

	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, wrapError(DriverSQLite, "open", fmt.Errorf("failed to open database: %w", err))
	}
	// SQLite allows a single writer.
	conn.SetMaxOpenConns(1)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, wrapError(DriverSQLite, "open", fmt.Errorf("failed to ping database: %w", err))
	}

	if _, err := conn.ExecContext(ctx, sqliteSchema); err != nil {
		conn.Close()
		return nil, wrapError(DriverSQLite, "init_schema", err)
	}

	return &SQLiteStore{conn: conn}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, wrapError(DriverSQLite, "get", err)
	}

	var value []byte
	err := s.conn.QueryRowContext(ctx, `SELECT value FROM kv_store WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, wrapError(DriverSQLite, "get", ErrKeyNotFound)
	}
	if err != nil {
		return nil, wrapError(DriverSQLite, "get", err)
	}
	return value, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return wrapError(DriverSQLite, "set", err)
	}

	q := `
		INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if value == nil {
		value = []byte{}
	}
	_, err := s.conn.ExecContext(ctx, q, key, value, time.Now().UTC())
	return wrapError(DriverSQLite, "set", err)
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return wrapError(DriverSQLite, "ping", s.conn.PingContext(ctx))
}

func (s *SQLiteStore) Close() error {
	return wrapError(DriverSQLite, "close", s.conn.Close())
}
