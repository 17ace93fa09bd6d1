package storage

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runContract exercises the behaviour every backend must share.
func runContract(t *testing.T, open func(t *testing.T) KeyValueStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		kv := open(t)
		_, err := kv.Get(ctx, "tasks")
		assert.True(t, IsNotFound(err), "got %v", err)
	})

	t.Run("set then get", func(t *testing.T) {
		kv := open(t)
		require.NoError(t, kv.Set(ctx, "tasks", []byte(`[{"id":"a"}]`)))

		got, err := kv.Get(ctx, "tasks")
		require.NoError(t, err)
		assert.Equal(t, `[{"id":"a"}]`, string(got))
	})

	t.Run("set replaces whole value", func(t *testing.T) {
		kv := open(t)
		require.NoError(t, kv.Set(ctx, "tasks", []byte(`[{"id":"a"},{"id":"b"}]`)))
		require.NoError(t, kv.Set(ctx, "tasks", []byte(`[]`)))

		got, err := kv.Get(ctx, "tasks")
		require.NoError(t, err)
		assert.Equal(t, `[]`, string(got))
	})

	t.Run("keys are independent", func(t *testing.T) {
		kv := open(t)
		require.NoError(t, kv.Set(ctx, "tasks", []byte("1")))
		require.NoError(t, kv.Set(ctx, "other", []byte("2")))

		got, err := kv.Get(ctx, "tasks")
		require.NoError(t, err)
		assert.Equal(t, "1", string(got))
	})

	t.Run("empty key rejected", func(t *testing.T) {
		kv := open(t)
		assert.ErrorIs(t, kv.Set(ctx, " ", []byte("x")), ErrInvalidKey)
		_, err := kv.Get(ctx, "")
		assert.ErrorIs(t, err, ErrInvalidKey)
	})

	t.Run("ping", func(t *testing.T) {
		kv := open(t)
		assert.NoError(t, kv.Ping(ctx))
	})
}

func TestMemoryStore(t *testing.T) {
	runContract(t, func(t *testing.T) KeyValueStore {
		return NewMemoryStore()
	})
}

func TestMemoryStore_Closed(t *testing.T) {
	kv := NewMemoryStore()
	require.NoError(t, kv.Close())

	assert.ErrorIs(t, kv.Set(context.Background(), "tasks", nil), ErrClosed)
	assert.ErrorIs(t, kv.Ping(context.Background()), ErrClosed)
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	kv := NewMemoryStore()
	value := []byte("abc")
	require.NoError(t, kv.Set(context.Background(), "k", value))
	value[0] = 'x'

	got, err := kv.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestFileStore(t *testing.T) {
	runContract(t, func(t *testing.T) KeyValueStore {
		kv, err := NewFileStore(t.TempDir())
		require.NoError(t, err)
		return kv
	})
}

func TestFileStore_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "tasks", []byte("[]")))

	second, err := NewFileStore(dir)
	require.NoError(t, err)
	got, err := second.Get(ctx, "tasks")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))

	_, err = os.Stat(filepath.Join(dir, "tasks.json"))
	assert.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileStore_RejectsPathKeys(t *testing.T) {
	kv, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	assert.ErrorIs(t, kv.Set(context.Background(), "../escape", []byte("x")), ErrInvalidKey)
}

func TestBadgerStore(t *testing.T) {
	runContract(t, func(t *testing.T) KeyValueStore {
		kv, err := NewBadgerStore(InMemoryBadgerConfig())
		require.NoError(t, err)
		t.Cleanup(func() { kv.Close() })
		return kv
	})
}

func TestBadgerStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	cfg := DefaultBadgerConfig()
	cfg.Path = dir
	cfg.GCInterval = 0

	first, err := NewBadgerStore(cfg)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "tasks", []byte(`[{"id":"a"}]`)))
	require.NoError(t, first.Close())

	assert.ErrorIs(t, first.Ping(ctx), ErrClosed)

	second, err := NewBadgerStore(cfg)
	require.NoError(t, err)
	defer second.Close()

	got, err := second.Get(ctx, "tasks")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"a"}]`, string(got))
}

func TestBadgerLogger(t *testing.T) {
	var buf bytes.Buffer
	l := &badgerLogger{logger: slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))}

	l.Warningf("value log %d rotated", 7)
	l.Debugf("compaction %s", "done")

	out := buf.String()
	assert.Contains(t, out, `"level":"WARN"`)
	assert.Contains(t, out, "value log 7 rotated")
	assert.Contains(t, out, "compaction done")
}

func TestBadgerStore_WithLogger(t *testing.T) {
	cfg := InMemoryBadgerConfig()
	cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))

	kv, err := NewBadgerStore(cfg)
	require.NoError(t, err)
	defer kv.Close()

	require.NoError(t, kv.Set(context.Background(), "tasks", []byte("[]")))
}

func TestBadgerStore_RequiresPath(t *testing.T) {
	_, err := NewBadgerStore(DefaultBadgerConfig())
	assert.Error(t, err)
}

func TestSQLiteStore(t *testing.T) {
	runContract(t, func(t *testing.T) KeyValueStore {
		kv, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "tasktango.db"))
		require.NoError(t, err)
		t.Cleanup(func() { kv.Close() })
		return kv
	})
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("TASKTANGO_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TASKTANGO_TEST_POSTGRES_DSN not set")
	}

	runContract(t, func(t *testing.T) KeyValueStore {
		kv, err := NewPostgresStore(context.Background(), dsn, 1, time.Second)
		require.NoError(t, err)
		_, err = kv.db.Exec(context.Background(), `DELETE FROM kv_store`)
		require.NoError(t, err)
		t.Cleanup(func() { kv.Close() })
		return kv
	})
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	kv, err := Open(ctx, Config{Driver: "FILE", Dir: t.TempDir()})
	require.NoError(t, err)
	require.NoError(t, kv.Set(ctx, "tasks", []byte("[]")))
	require.NoError(t, kv.Close())

	kv, err = Open(ctx, Config{Driver: DriverBadger, InMemory: true})
	require.NoError(t, err)
	require.NoError(t, kv.Close())

	_, err = Open(ctx, Config{Driver: "floppy"})
	assert.ErrorIs(t, err, ErrUnknownDriver)
}

func TestStorageError(t *testing.T) {
	err := wrapError(DriverFile, "get", ErrKeyNotFound)

	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "file", se.Backend)
	assert.Equal(t, "file get: key not found", err.Error())
	assert.Same(t, err, wrapError(DriverMemory, "other", err))
	assert.NoError(t, wrapError(DriverFile, "get", nil))
}
