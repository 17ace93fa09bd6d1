package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/Raisondetr3/tasktango/internal/cache"
	"github.com/Raisondetr3/tasktango/internal/repository"
	"github.com/Raisondetr3/tasktango/internal/storage"
)

// ConfigFileEnv names the optional YAML file applied before env overrides.
const ConfigFileEnv = "TASKTANGO_CONFIG"

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
	Storage  StorageConfig  `yaml:"storage"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
}

type ServerConfig struct {
	HTTPPort     string        `yaml:"http_port"`
	GRPCPort     string        `yaml:"grpc_port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	FilePath string `yaml:"file_path"`
	FileName string `yaml:"file_name"`
}

type StorageConfig struct {
	Driver     string `yaml:"driver"`
	Key        string `yaml:"key"`
	Dir        string `yaml:"dir"`
	SQLitePath string `yaml:"sqlite_path"`
}

type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Name            string        `yaml:"name"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	ConnectRetries  int           `yaml:"connect_retries"`
	ConnectInterval time.Duration `yaml:"connect_interval"`
}

type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	URLs     []string      `yaml:"urls"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:     "8081",
			GRPCPort:     "9090",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		Logging: LoggingConfig{
			Level:    "info",
			FilePath: "logs",
			FileName: "tasktango.log",
		},
		Storage: StorageConfig{
			Driver:     storage.DriverBadger,
			Key:        repository.DefaultKey,
			Dir:        "data",
			SQLitePath: "data/tasktango.db",
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			Name:            "tasktango",
			User:            "tasktango",
			ConnectRetries:  10,
			ConnectInterval: 5 * time.Second,
		},
		Redis: RedisConfig{
			URLs: []string{},
			TTL:  300 * time.Second,
		},
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// TASKTANGO_CONFIG, then the environment. A .env file in the working
// directory is read first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	cfg := Default()

	if path := os.Getenv(ConfigFileEnv); path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) overlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Server.HTTPPort = getEnv("HTTP_PORT", c.Server.HTTPPort)
	c.Server.GRPCPort = getEnv("GRPC_PORT", c.Server.GRPCPort)

	c.Logging.Level = getEnv("LOG_LEVEL", c.Logging.Level)
	c.Logging.FilePath = getEnvAllowEmpty("LOG_FILE_PATH", c.Logging.FilePath)
	c.Logging.FileName = getEnv("LOG_FILE_NAME", c.Logging.FileName)

	c.Storage.Driver = strings.ToLower(getEnv("STORAGE_DRIVER", c.Storage.Driver))
	c.Storage.Key = getEnv("STORAGE_KEY", c.Storage.Key)
	c.Storage.Dir = getEnv("STORAGE_DIR", c.Storage.Dir)
	c.Storage.SQLitePath = getEnv("SQLITE_PATH", c.Storage.SQLitePath)

	c.Database.Host = getEnv("DB_HOST", c.Database.Host)
	c.Database.Port = getEnvInt("DB_PORT", c.Database.Port)
	c.Database.Name = getEnv("DB_NAME", c.Database.Name)
	c.Database.User = getEnv("DB_USER", c.Database.User)
	c.Database.Password = getEnv("DB_PASSWORD", c.Database.Password)
	c.Database.ConnectRetries = getEnvInt("DB_CONNECT_RETRIES", c.Database.ConnectRetries)

	c.Redis.Enabled = getEnvBool("REDIS_ENABLED", c.Redis.Enabled)
	if urls := os.Getenv("REDIS_URLS"); urls != "" {
		c.Redis.URLs = cache.ParseRedisURLs(urls)
	}
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getEnvInt("REDIS_DB", c.Redis.DB)
	if ttl := getEnvInt("REDIS_TTL", -1); ttl >= 0 {
		c.Redis.TTL = time.Duration(ttl) * time.Second
	}
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case storage.DriverMemory, storage.DriverPostgres:
	case storage.DriverFile, storage.DriverBadger:
		if strings.TrimSpace(c.Storage.Dir) == "" {
			return fmt.Errorf("storage dir is required for driver %q", c.Storage.Driver)
		}
	case storage.DriverSQLite:
		if strings.TrimSpace(c.Storage.SQLitePath) == "" {
			return errors.New("sqlite path is required for driver \"sqlite\"")
		}
	default:
		return fmt.Errorf("%w: %q", storage.ErrUnknownDriver, c.Storage.Driver)
	}

	if strings.TrimSpace(c.Storage.Key) == "" {
		return errors.New("storage key must not be empty")
	}

	if c.Redis.Enabled && len(c.Redis.URLs) == 0 {
		return errors.New("REDIS_URLS is required when Redis is enabled")
	}

	return nil
}

// StorageOptions maps the configuration onto storage.Open's input.
func (c *Config) StorageOptions() storage.Config {
	return storage.Config{
		Driver:          c.Storage.Driver,
		Dir:             c.Storage.Dir,
		PostgresDSN:     c.Database.DSN(),
		ConnectRetries:  c.Database.ConnectRetries,
		ConnectInterval: c.Database.ConnectInterval,
		SQLitePath:      c.Storage.SQLitePath,
	}
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.Name,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAllowEmpty treats a variable that is set but empty as a value.
func getEnvAllowEmpty(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
