package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PORT", "NEIS_API_KEY", "DATABASE_DSN"} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, DefaultBaseURL, cfg.Upstream.BaseURL)
	assert.Equal(t, "B10", cfg.Upstream.OfficeCode)
	assert.Equal(t, "7010209", cfg.Upstream.SchoolCode)
	assert.Equal(t, "json", cfg.Upstream.Type)
	assert.Equal(t, time.Duration(0), cfg.Upstream.Timeout, "no timeout override by default")
	assert.Equal(t, int64(DefaultMaxBodyBytes), cfg.Upstream.MaxBodyBytes)
	assert.Equal(t, 0, cfg.Server.CacheTTLSeconds, "caching is off by default")
	assert.Equal(t, []string{"*"}, cfg.Server.CORSAllowOrigins, "any origin by default")
	assert.Equal(t, 1, cfg.Audit.WorkerPoolSize)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_FileValues(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8081
  rate_limit_per_sec: 2
  cors_allow_origins:
    - "https://meals.example.org"
upstream:
  school_code: "7000001"
  timeout_seconds: 15
database:
  dsn: "audit.db"
audit:
  enabled: true
  worker_pool_size: 3
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Server.RateLimitBurst)
	assert.Equal(t, []string{"https://meals.example.org"}, cfg.Server.CORSAllowOrigins)
	assert.Equal(t, "7000001", cfg.Upstream.SchoolCode)
	assert.Equal(t, 15*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, "audit.db", cfg.Database.DSN)
	assert.True(t, cfg.Audit.Enabled)
	assert.Equal(t, 3, cfg.Audit.WorkerPoolSize)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 8081\n")
	t.Setenv("PORT", "9090")
	t.Setenv("NEIS_API_KEY", "secret-key")
	t.Setenv("DATABASE_DSN", "postgres://localhost/meals")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "secret-key", cfg.Upstream.Key)
	assert.Equal(t, "postgres://localhost/meals", cfg.Database.DSN)
}

func TestLoad_Invalid(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{name: "Malformed YAML", body: "server: [\n"},
		{name: "Port out of range", body: "server:\n  port: 70000\n"},
		{name: "Bad base URL", body: "upstream:\n  base_url: \"not a url\"\n"},
		{name: "Unsupported type", body: "upstream:\n  type: \"xml\"\n"},
		{name: "Unknown log level", body: "log:\n  level: \"loud\"\n"},
		{name: "Empty CORS origin", body: "server:\n  cors_allow_origins: [\"\"]\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_InvalidPortEnv(t *testing.T) {
	t.Setenv("PORT", "eighty")
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
