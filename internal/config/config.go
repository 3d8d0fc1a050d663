// Package config resolves service settings from an optional YAML file and the environment.
// Environment variables win over the file.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Backend names the transaction store implementation.
type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendFile     Backend = "file"
	BackendPostgres Backend = "postgres"
)

// Config is the top-level bookkeeper.yaml configuration.
type Config struct {
	Addr      string        `yaml:"addr"`
	Log       LogConfig     `yaml:"log"`
	Storage   StorageConfig `yaml:"storage"`
	Cache     CacheConfig   `yaml:"cache"`
	Auth      AuthConfig    `yaml:"auth"`
	ChartFile string        `yaml:"chart_file"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug|info|warn|error
	Format string `yaml:"format"` // json|text
}

// StorageConfig selects the store: DatabaseURL wins over LedgerFile; neither means memory.
type StorageConfig struct {
	DatabaseURL string `yaml:"database_url"`
	LedgerFile  string `yaml:"ledger_file"`
}

// CacheConfig enables the redis balances cache when RedisURL is set.
type CacheConfig struct {
	RedisURL string        `yaml:"redis_url"`
	TTL      time.Duration `yaml:"ttl"`
}

// AuthConfig enables HS256 bearer auth when Secret is set.
type AuthConfig struct {
	Secret   string `yaml:"hs256_secret"`
	Issuer   string `yaml:"issuer"`
	Audience string `yaml:"audience"`
}

// Default returns a Config with sensible defaults for local use.
func Default() *Config {
	return &Config{
		Addr:  ":8080",
		Log:   LogConfig{Level: "info", Format: "json"},
		Cache: CacheConfig{TTL: 10 * time.Minute},
	}
}

// Load reads path (if not empty) over the defaults, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from the environment as read by getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&c.Addr, "ADDR")
	set(&c.Log.Level, "LOG_LEVEL")
	set(&c.Log.Format, "LOG_FORMAT")
	set(&c.Storage.DatabaseURL, "DATABASE_URL")
	set(&c.Storage.LedgerFile, "LEDGER_FILE")
	set(&c.Cache.RedisURL, "REDIS_URL")
	set(&c.ChartFile, "CHART_FILE")
	set(&c.Auth.Secret, "JWT_HS256_SECRET")
	set(&c.Auth.Issuer, "JWT_ISSUER")
	set(&c.Auth.Audience, "JWT_AUDIENCE")
	if v := strings.TrimSpace(getenv("CACHE_TTL")); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("CACHE_TTL: %w", err)
		}
		c.Cache.TTL = ttl
	}
	return nil
}

// Backend reports which store the configuration selects.
func (c *Config) Backend() Backend {
	switch {
	case c.Storage.DatabaseURL != "":
		return BackendPostgres
	case c.Storage.LedgerFile != "":
		return BackendFile
	default:
		return BackendMemory
	}
}

// parseLogLevel maps config values to slog.Leveler
func parseLogLevel(s string) slog.Leveler {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "err":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Logger builds the process logger writing to w: JSON unless Format is "text".
func (c *Config) Logger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(c.Log.Level)}
	if strings.EqualFold(strings.TrimSpace(c.Log.Format), "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
