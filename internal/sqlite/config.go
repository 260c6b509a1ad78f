// File path: internal/sqlite/config.go
package sqlite

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nicodishanthj/spinyleaf/internal/config"
)

// Config holds the catalog location and pool settings.
type Config struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	BusyTimeout     time.Duration
}

// ConfigFrom maps the catalog section of the application config, then lets
// SQLITE_* variables override it.
func ConfigFrom(c config.CatalogConfig) (Config, error) {
	cfg := Config{Path: c.Path, MaxOpenConns: c.MaxOpenConns, BusyTimeout: c.BusyTimeout}
	envCfg, err := loadConfigEnv()
	if err != nil {
		return Config{}, err
	}
	cfg = cfg.Merge(envCfg)
	cfg.applyDefaults()
	return cfg, nil
}

func (c Config) Merge(override Config) Config {
	result := c
	if strings.TrimSpace(override.Path) != "" {
		result.Path = strings.TrimSpace(override.Path)
	}
	if override.MaxOpenConns > 0 {
		result.MaxOpenConns = override.MaxOpenConns
	}
	if override.MaxIdleConns > 0 {
		result.MaxIdleConns = override.MaxIdleConns
	}
	if override.ConnMaxLifetime > 0 {
		result.ConnMaxLifetime = override.ConnMaxLifetime
	}
	if override.ConnMaxIdleTime > 0 {
		result.ConnMaxIdleTime = override.ConnMaxIdleTime
	}
	if override.BusyTimeout > 0 {
		result.BusyTimeout = override.BusyTimeout
	}
	return result
}

func (c *Config) applyDefaults() {
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = 4
	}
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = c.MaxOpenConns
	}
	if c.ConnMaxLifetime <= 0 {
		c.ConnMaxLifetime = 15 * time.Minute
	}
	if c.ConnMaxIdleTime <= 0 {
		c.ConnMaxIdleTime = 5 * time.Minute
	}
	if c.BusyTimeout <= 0 {
		c.BusyTimeout = 5 * time.Second
	}
}

func loadConfigEnv() (Config, error) {
	cfg := Config{}
	if path := strings.TrimSpace(os.Getenv("SQLITE_PATH")); path != "" {
		cfg.Path = path
	}
	for _, item := range []struct {
		key string
		dst *int
	}{
		{"SQLITE_MAX_OPEN_CONNS", &cfg.MaxOpenConns},
		{"SQLITE_MAX_IDLE_CONNS", &cfg.MaxIdleConns},
	} {
		raw := strings.TrimSpace(os.Getenv(item.key))
		if raw == "" {
			continue
		}
		value, err := strconv.Atoi(raw)
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", item.key, err)
		}
		*item.dst = value
	}
	for _, item := range []struct {
		key string
		dst *time.Duration
	}{
		{"SQLITE_CONN_MAX_LIFETIME", &cfg.ConnMaxLifetime},
		{"SQLITE_CONN_MAX_IDLE_TIME", &cfg.ConnMaxIdleTime},
		{"SQLITE_BUSY_TIMEOUT", &cfg.BusyTimeout},
	} {
		raw := strings.TrimSpace(os.Getenv(item.key))
		if raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", item.key, err)
		}
		*item.dst = parsed
	}
	return cfg, nil
}
