package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "sqlite3", cfg.DriverName())
	assert.Equal(t, "/tmp/taxdeedflow.db", cfg.DatabaseDSN())
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "PA", cfg.Parser.DefaultStateCode)
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `
server:
  port: 9000
database:
  driver: postgres
  postgres:
    dsn: postgres://localhost/taxdeed
parser:
  default_state_code: FL
  default_tax_year: 2025
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres", cfg.DriverName())
	assert.Equal(t, "postgres://localhost/taxdeed", cfg.DatabaseDSN())
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, "FL", cfg.Parser.DefaultStateCode)
	assert.Equal(t, 2025, cfg.Parser.DefaultTaxYear)

	// Defaults survive a partial file.
	assert.Equal(t, "memory", cfg.Cache.Driver)
	assert.Equal(t, 100, cfg.Fetch.MaxSizeMB)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "sqlite:/tmp/override.db")
	t.Setenv("DEFAULT_STATE_CODE", "tx")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SERVER_PORT", "7777")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "/tmp/override.db", cfg.Database.SQLite.Path)
	assert.Equal(t, "TX", cfg.Parser.DefaultStateCode)
	assert.Equal(t, "debug", cfg.Observability.LogLevel)
	assert.Equal(t, 7777, cfg.Server.Port)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"bad driver", func(c *Config) { c.Database.Driver = "oracle" }},
		{"bad cache", func(c *Config) { c.Cache.Driver = "memcached" }},
		{"bad fetch size", func(c *Config) { c.Fetch.MaxSizeMB = 0 }},
		{"bad state code", func(c *Config) { c.Parser.DefaultStateCode = "PENN" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestResolveRelativePath(t *testing.T) {
	assert.Equal(t, "/abs/file.db", ResolveRelativePath("/etc/app/config.yaml", "/abs/file.db"))
	assert.Equal(t, "/etc/app/data/file.db", ResolveRelativePath("/etc/app/config.yaml", "data/file.db"))
}
