package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noDotEnv(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "absent.env"))
}

func TestLoad_Defaults(t *testing.T) {
	noDotEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, slog.LevelInfo, cfg.Server.SlogLevel())
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.False(t, cfg.Redis.Enabled)
	assert.True(t, cfg.Seed.Enabled)
	assert.Equal(t, 5, cfg.Quiz.DefaultCount)
	assert.Equal(t, 10, cfg.Quiz.FlashcardCount)
	assert.Equal(t, 1000, cfg.Quiz.CatalogLimit)
	assert.Equal(t, 5*time.Minute, cfg.Warmup.Interval)
}

func TestLoad_FromEnvironment(t *testing.T) {
	noDotEnv(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/test.db")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_CACHE_TTL", "30s")
	t.Setenv("QUIZ_DEFAULT_COUNT", "8")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, slog.LevelDebug, cfg.Server.SlogLevel())
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "/tmp/test.db", cfg.Database.SQLitePath)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 30*time.Second, cfg.Redis.CacheTTL)
	assert.Equal(t, 8, cfg.Quiz.DefaultCount)
}

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	noDotEnv(t)
	t.Setenv("SERVER_PORT", "eighty")
	t.Setenv("WARMUP_INTERVAL", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5*time.Minute, cfg.Warmup.Interval)
}

func TestLoad_DotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("CATALOG_LIMIT=250\nSERVER_HOST=127.0.0.1\n"), 0o644))
	t.Setenv("ENV_FILE", path)
	t.Setenv("SERVER_HOST", "10.0.0.1")
	// godotenv sets variables in the process; keep them scoped to this test
	t.Setenv("CATALOG_LIMIT", "")
	os.Unsetenv("CATALOG_LIMIT")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 250, cfg.Quiz.CatalogLimit)
	assert.Equal(t, "10.0.0.1", cfg.Server.Host, "real environment wins over .env")
}

func TestValidate(t *testing.T) {
	noDotEnv(t)
	valid := func() *Config {
		cfg, err := Load()
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "Port"},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mongo" }, "Driver"},
		{"postgres without dsn", func(c *Config) { c.Database.DSN = "" }, "DSN"},
		{"sqlite without path", func(c *Config) {
			c.Database.Driver = DriverSQLite
			c.Database.SQLitePath = ""
		}, "SQLitePath"},
		{"redis without address", func(c *Config) {
			c.Redis.Enabled = true
			c.Redis.Address = ""
		}, "Address"},
		{"max below default", func(c *Config) { c.Quiz.MaxCount = 2 }, "MaxCount"},
		{"tiny catalog limit", func(c *Config) { c.Quiz.CatalogLimit = 3 }, "CatalogLimit"},
		{"bad log level", func(c *Config) { c.Server.LogLevel = "verbose" }, "LogLevel"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestValidate_MemoryNeedsNoDSN(t *testing.T) {
	noDotEnv(t)
	cfg, err := Load()
	require.NoError(t, err)

	cfg.Database.Driver = DriverMemory
	cfg.Database.DSN = ""
	assert.NoError(t, cfg.Validate())
}
