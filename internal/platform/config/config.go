package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	errInvalidPort           = errors.New("config: invalid PORT number")
	errConcurrencyOutOfRange = errors.New("config: LINK_CHECK_CONCURRENCY must be 1-100")
	errInvalidMemoSize       = errors.New("config: CACHE_MEMO_SIZE must be at least 1")
	errInvalidTTL            = errors.New("config: CACHE_TTL must be positive")
	errInvalidTimeout        = errors.New("config: timeouts must be positive")
)

// Config holds all application configuration.
type Config struct {
	Port                 string        `yaml:"port"`
	LogLevel             string        `yaml:"log_level"`
	LinkCheckEnabled     bool          `yaml:"link_check_enabled"`
	LinkCheckConcurrency int           `yaml:"link_check_concurrency"`
	SiteProbeEnabled     bool          `yaml:"site_probe_enabled"`
	AllowPrivateNetworks bool          `yaml:"allow_private_networks"`
	FetchTimeout         time.Duration `yaml:"fetch_timeout"`
	AnalyzeTimeout       time.Duration `yaml:"analyze_timeout"`
	CacheTTL             time.Duration `yaml:"cache_ttl"`
	CacheMemoSize        int           `yaml:"cache_memo_size"`
	CORSAllowedOrigins   []string      `yaml:"cors_allowed_origins"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Port:                 "8080",
		LogLevel:             "ERROR",
		LinkCheckEnabled:     false,
		LinkCheckConcurrency: 10,
		SiteProbeEnabled:     true,
		FetchTimeout:         10 * time.Second,
		AnalyzeTimeout:       60 * time.Second,
		CacheTTL:             time.Hour,
		CacheMemoSize:        100,
		CORSAllowedOrigins:   []string{"*"},
	}
}

// Load builds the configuration from defaults, then the YAML file at path
// (skipped when path is empty), then environment variables, and validates
// the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: reading %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LinkCheckEnabled = getEnvAsBool("LINK_CHECK_ENABLED", c.LinkCheckEnabled)
	c.LinkCheckConcurrency = getEnvAsInt("LINK_CHECK_CONCURRENCY", c.LinkCheckConcurrency)
	c.SiteProbeEnabled = getEnvAsBool("SITE_PROBE_ENABLED", c.SiteProbeEnabled)
	c.AllowPrivateNetworks = getEnvAsBool("ALLOW_PRIVATE_NETWORKS", c.AllowPrivateNetworks)
	c.FetchTimeout = getEnvAsDuration("FETCH_TIMEOUT", c.FetchTimeout)
	c.AnalyzeTimeout = getEnvAsDuration("ANALYZE_TIMEOUT", c.AnalyzeTimeout)
	c.CacheTTL = getEnvAsDuration("CACHE_TTL", c.CacheTTL)
	c.CacheMemoSize = getEnvAsInt("CACHE_MEMO_SIZE", c.CacheMemoSize)
	c.CORSAllowedOrigins = getEnvAsList("CORS_ALLOWED_ORIGINS", c.CORSAllowedOrigins)
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("%w: %q", errInvalidPort, c.Port)
	}

	if c.LinkCheckConcurrency < 1 || c.LinkCheckConcurrency > 100 {
		return fmt.Errorf("%w: got %d", errConcurrencyOutOfRange, c.LinkCheckConcurrency)
	}

	if c.CacheMemoSize < 1 {
		return fmt.Errorf("%w: got %d", errInvalidMemoSize, c.CacheMemoSize)
	}

	if c.CacheTTL <= 0 {
		return fmt.Errorf("%w: got %s", errInvalidTTL, c.CacheTTL)
	}

	if c.FetchTimeout <= 0 || c.AnalyzeTimeout <= 0 {
		return fmt.Errorf("%w: fetch %s, analyze %s", errInvalidTimeout, c.FetchTimeout, c.AnalyzeTimeout)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return v
}

func getEnvAsBool(key string, fallback bool) bool {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return fallback
	}
	return v
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return v
}

func getEnvAsList(key string, fallback []string) []string {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
