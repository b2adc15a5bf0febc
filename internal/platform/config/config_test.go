package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"PORT", "LOG_LEVEL", "LINK_CHECK_ENABLED", "LINK_CHECK_CONCURRENCY",
	"SITE_PROBE_ENABLED", "ALLOW_PRIVATE_NETWORKS", "FETCH_TIMEOUT",
	"ANALYZE_TIMEOUT", "CACHE_TTL", "CACHE_MEMO_SIZE", "CORS_ALLOWED_ORIGINS",
}

// clearEnv blanks every variable Load reads so the host environment does not
// leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "8080", cfg.Port)
	assert.False(t, cfg.LinkCheckEnabled)
	assert.True(t, cfg.SiteProbeEnabled)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.Equal(t, 100, cfg.CacheMemoSize)
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, `
port: "9090"
log_level: INFO
link_check_enabled: true
link_check_concurrency: 4
cache_ttl: 30m
fetch_timeout: 5s
cors_allowed_origins:
  - https://app.example.com
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.True(t, cfg.LinkCheckEnabled)
	assert.Equal(t, 4, cfg.LinkCheckConcurrency)
	assert.Equal(t, 30*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 5*time.Second, cfg.FetchTimeout)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.CORSAllowedOrigins)
	// Untouched keys keep their defaults.
	assert.Equal(t, 60*time.Second, cfg.AnalyzeTimeout)
	assert.True(t, cfg.SiteProbeEnabled)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "port: \"9090\"\ncache_memo_size: 5\n")

	t.Setenv("PORT", "7070")
	t.Setenv("SITE_PROBE_ENABLED", "false")
	t.Setenv("CACHE_TTL", "2h")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Port)
	assert.False(t, cfg.SiteProbeEnabled)
	assert.Equal(t, 2*time.Hour, cfg.CacheTTL)
	assert.Equal(t, 5, cfg.CacheMemoSize)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}

func TestLoad_MalformedEnvFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("LINK_CHECK_CONCURRENCY", "many")
	t.Setenv("LINK_CHECK_ENABLED", "perhaps")
	t.Setenv("FETCH_TIMEOUT", "soon")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.LinkCheckConcurrency)
	assert.False(t, cfg.LinkCheckEnabled)
	assert.Equal(t, 10*time.Second, cfg.FetchTimeout)
}

func TestLoad_FileErrors(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeFile(t, "port: [unclosed"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "non-numeric port", mutate: func(c *Config) { c.Port = "http" }, wantErr: errInvalidPort},
		{name: "port too large", mutate: func(c *Config) { c.Port = "70000" }, wantErr: errInvalidPort},
		{name: "zero concurrency", mutate: func(c *Config) { c.LinkCheckConcurrency = 0 }, wantErr: errConcurrencyOutOfRange},
		{name: "concurrency too high", mutate: func(c *Config) { c.LinkCheckConcurrency = 101 }, wantErr: errConcurrencyOutOfRange},
		{name: "zero memo", mutate: func(c *Config) { c.CacheMemoSize = 0 }, wantErr: errInvalidMemoSize},
		{name: "negative ttl", mutate: func(c *Config) { c.CacheTTL = -time.Minute }, wantErr: errInvalidTTL},
		{name: "zero fetch timeout", mutate: func(c *Config) { c.FetchTimeout = 0 }, wantErr: errInvalidTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
