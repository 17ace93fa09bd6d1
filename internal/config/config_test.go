package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Raisondetr3/tasktango/internal/storage"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(ConfigFileEnv, "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Server.HTTPPort)
	assert.Equal(t, "9090", cfg.Server.GRPCPort)
	assert.Equal(t, storage.DriverBadger, cfg.Storage.Driver)
	assert.Equal(t, "tasks", cfg.Storage.Key)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 300*time.Second, cfg.Redis.TTL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(ConfigFileEnv, "")
	t.Setenv("HTTP_PORT", "18081")
	t.Setenv("STORAGE_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")
	t.Setenv("STORAGE_KEY", "my-tasks")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_URLS", "localhost:6379, localhost:6380")
	t.Setenv("REDIS_TTL", "60")
	t.Setenv("LOG_FILE_PATH", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "18081", cfg.Server.HTTPPort)
	assert.Equal(t, storage.DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "/tmp/x.db", cfg.Storage.SQLitePath)
	assert.Equal(t, "my-tasks", cfg.Storage.Key)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, []string{"localhost:6379", "localhost:6380"}, cfg.Redis.URLs)
	assert.Equal(t, time.Minute, cfg.Redis.TTL)
	assert.Empty(t, cfg.Logging.FilePath)
}

func TestLoad_YAMLOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasktango.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  http_port: "7000"
  read_timeout: 5s
storage:
  driver: file
  dir: /var/lib/tasktango
database:
  host: db.internal
`), 0o644))
	t.Setenv(ConfigFileEnv, path)
	t.Setenv("STORAGE_DIR", "/srv/tasks")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "7000", cfg.Server.HTTPPort)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, storage.DriverFile, cfg.Storage.Driver)
	assert.Equal(t, "/srv/tasks", cfg.Storage.Dir)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
}

func TestLoad_MissingYAML(t *testing.T) {
	t.Setenv(ConfigFileEnv, filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"memory", func(c *Config) { c.Storage.Driver = storage.DriverMemory }, false},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "etcd" }, true},
		{"badger without dir", func(c *Config) { c.Storage.Dir = "" }, true},
		{"sqlite without path", func(c *Config) {
			c.Storage.Driver = storage.DriverSQLite
			c.Storage.SQLitePath = " "
		}, true},
		{"empty key", func(c *Config) { c.Storage.Key = "" }, true},
		{"redis without urls", func(c *Config) { c.Redis.Enabled = true }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStorageOptions(t *testing.T) {
	cfg := Default()
	cfg.Database.Password = "secret"

	opts := cfg.StorageOptions()

	assert.Equal(t, storage.DriverBadger, opts.Driver)
	assert.Equal(t, "data", opts.Dir)
	assert.Contains(t, opts.PostgresDSN, "password=secret")
	assert.Equal(t, 10, opts.ConnectRetries)
}
