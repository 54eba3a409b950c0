// Package config provides configuration loading for the splitter server and CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/uilacceb/splitter/pkg/logging"
)

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config represents the complete splitter configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Auth     AuthConfig     `yaml:"auth"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig configures the HTTP listener
type ServerConfig struct {
	// Port is the TCP port to listen on (default: 8080)
	Port int `yaml:"port"`
	// ShutdownTimeout bounds graceful shutdown
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// AllowedOrigin is sent as Access-Control-Allow-Origin (default: *)
	AllowedOrigin string `yaml:"allowed_origin"`
}

// DatabaseConfig selects and configures the storage backend
type DatabaseConfig struct {
	// Driver is one of sqlite, postgres, memory
	Driver string `yaml:"driver"`
	// Path is the SQLite database file
	Path string `yaml:"path"`
	// URL is the PostgreSQL DSN
	URL string `yaml:"url"`
}

// RedisConfig configures cross-instance event locks
type RedisConfig struct {
	// URL enables Redis locks when set (e.g. redis://localhost:6379/0)
	URL string `yaml:"url"`
	// LockTTL bounds how long a crashed instance keeps an event locked
	LockTTL time.Duration `yaml:"lock_ttl"`
}

// AuthConfig configures bearer token validation
type AuthConfig struct {
	// JWTSecret signs and verifies tokens
	JWTSecret string `yaml:"jwt_secret"`
	// TokenDuration is the lifetime of tokens minted by the CLI
	TokenDuration time.Duration `yaml:"token_duration"`
}

// LogConfig configures logging
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `yaml:"level"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ShutdownTimeout: 10 * time.Second,
			AllowedOrigin:   "*",
		},
		Database: DatabaseConfig{
			Driver: DriverSQLite,
			Path:   "./data/splitter.db",
		},
		Redis: RedisConfig{
			LockTTL: 30 * time.Second,
		},
		Auth: AuthConfig{
			TokenDuration: 24 * time.Hour,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("database.url is required for the postgres driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("database.driver must be sqlite, postgres or memory, got %q", c.Database.Driver)
	}
	if c.Redis.URL != "" && c.Redis.LockTTL <= 0 {
		return fmt.Errorf("redis.lock_ttl must be positive")
	}
	if c.Auth.TokenDuration <= 0 {
		return fmt.Errorf("auth.token_duration must be positive")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file on top of the defaults
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// Load builds the effective configuration with layered precedence:
// 1. Defaults
// 2. The YAML file at path, if path is not empty
// 3. A .env file in the working directory, if present
// 4. Environment variables
func Load(path string) (*Config, error) {
	config := DefaultConfig()
	if path != "" {
		fileConfig, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		config = fileConfig
	}

	// Load .env file if present; real environment variables win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := config.applyEnv(); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// applyEnv overrides fields from the environment.
func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv("PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	overrides := []struct {
		key    string
		target *string
	}{
		{"DB_DRIVER", &c.Database.Driver},
		{"DB_PATH", &c.Database.Path},
		{"DATABASE_URL", &c.Database.URL},
		{"REDIS_URL", &c.Redis.URL},
		{"JWT_SECRET", &c.Auth.JWTSecret},
		{"LOG_LEVEL", &c.Log.Level},
	}
	for _, o := range overrides {
		if v, ok := os.LookupEnv(o.key); ok {
			*o.target = v
		}
	}
	return nil
}
