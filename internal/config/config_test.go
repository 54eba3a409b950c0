package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
	if cfg.Database.Driver != DriverSQLite {
		t.Errorf("Expected sqlite driver by default, got %s", cfg.Database.Driver)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, "database.driver"},
		{"sqlite without path", func(c *Config) { c.Database.Path = "" }, "database.path"},
		{"postgres without url", func(c *Config) { c.Database.Driver = DriverPostgres }, "database.url"},
		{"memory needs nothing", func(c *Config) { c.Database = DatabaseConfig{Driver: DriverMemory} }, ""},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"redis without ttl", func(c *Config) { c.Redis = RedisConfig{URL: "redis://localhost:6379"} }, "redis.lock_ttl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error mentioning %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "splitter.yaml")
	content := `
server:
  port: 9090
database:
  driver: postgres
  url: postgres://file/db
redis:
  lock_ttl: 5s
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	t.Run("file over defaults", func(t *testing.T) {
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.Server.Port != 9090 || cfg.Database.Driver != DriverPostgres || cfg.Redis.LockTTL != 5*time.Second {
			t.Errorf("unexpected config %+v", cfg)
		}
		// Untouched fields keep their defaults.
		if cfg.Server.ShutdownTimeout != 10*time.Second {
			t.Errorf("ShutdownTimeout = %v, want default", cfg.Server.ShutdownTimeout)
		}
	})

	t.Run("environment over file", func(t *testing.T) {
		t.Setenv("PORT", "7070")
		t.Setenv("DATABASE_URL", "postgres://env/db")
		t.Setenv("JWT_SECRET", "from-env")

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.Server.Port != 7070 || cfg.Database.URL != "postgres://env/db" || cfg.Auth.JWTSecret != "from-env" {
			t.Errorf("unexpected config %+v", cfg)
		}
	})

	t.Run("invalid port env", func(t *testing.T) {
		t.Setenv("PORT", "eighty")
		if _, err := Load(path); err == nil {
			t.Error("expected error for non-numeric PORT")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
			t.Error("expected error for missing file")
		}
	})
}
