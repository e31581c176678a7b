// Package config loads storysync configuration from file, environment and
// defaults using viper.
//
// Lookup order: explicit path > ./storysync.yaml > ~/.storysync/config.yaml,
// with STORYSYNC_* environment variables overriding file values
// (e.g. STORYSYNC_BACKEND_URL, STORYSYNC_CACHE_DRIVER).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Backend holds the remote backend connection settings. The backend is
// considered configured only when both URL and AnonKey are present; the
// gateway treats the unconfigured state as an expected, recoverable
// condition, never an error to throw.
type Backend struct {
	URL         string        `mapstructure:"url"`
	AnonKey     string        `mapstructure:"anon_key"`
	AccessToken string        `mapstructure:"access_token"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// Configured reports whether enough credentials exist to reach the backend.
func (b Backend) Configured() bool {
	return b.URL != "" && b.AnonKey != ""
}

// Cache selects and parameterizes the local cache store backend.
type Cache struct {
	// Driver is one of "sqlite", "memory", "redis".
	Driver string `mapstructure:"driver"`
	// Path is the sqlite database file (sqlite driver only).
	Path string `mapstructure:"path"`
	// RedisAddr / RedisPassword apply to the redis driver only.
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
}

// Daemon holds background sync daemon settings.
type Daemon struct {
	SyncInterval     time.Duration `mapstructure:"sync_interval"`
	DebounceInterval time.Duration `mapstructure:"debounce_interval"`
	InboxDir         string        `mapstructure:"inbox_dir"`
	StateFile        string        `mapstructure:"state_file"`
	LogFile          string        `mapstructure:"log_file"`
}

// Dashboard holds status dashboard settings.
type Dashboard struct {
	Port int `mapstructure:"port"`
}

// Config is the root configuration object.
type Config struct {
	// UserID is the currently signed-in user (empty when signed out).
	UserID string `mapstructure:"user_id"`

	Backend   Backend   `mapstructure:"backend"`
	Cache     Cache     `mapstructure:"cache"`
	Daemon    Daemon    `mapstructure:"daemon"`
	Dashboard Dashboard `mapstructure:"dashboard"`

	// RetryPolicy controls when migration is considered done:
	// "give-up-after-first-attempt" (default) or "retry-failed-only".
	RetryPolicy string `mapstructure:"retry_policy"`
}

// Dir returns the storysync home directory (~/.storysync), creating it if
// needed.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	dir := filepath.Join(home, ".storysync")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create storysync directory: %w", err)
	}
	return dir, nil
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("STORYSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("backend.timeout", 10*time.Second)
	v.SetDefault("cache.driver", "sqlite")
	v.SetDefault("daemon.sync_interval", 5*time.Minute)
	v.SetDefault("daemon.debounce_interval", 200*time.Millisecond)
	v.SetDefault("dashboard.port", 8787)
	v.SetDefault("retry_policy", "give-up-after-first-attempt")

	if path != "" {
		v.SetConfigFile(path)
		return v
	}

	v.SetConfigName("storysync")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".storysync"))
	}
	return v
}

// Load reads configuration from the given path, or from the default search
// locations when path is empty. A missing config file is not an error; the
// returned config then carries defaults and environment overrides only.
func Load(path string) (*Config, error) {
	v := newViper(path)

	if err := v.ReadInConfig(); err != nil {
		if path != "" {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills path-valued fields that depend on the home directory.
func (c *Config) applyDefaults() error {
	if c.Cache.Driver == "sqlite" && c.Cache.Path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		c.Cache.Path = filepath.Join(dir, "cache.db")
	}
	if c.Daemon.InboxDir == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		c.Daemon.InboxDir = filepath.Join(dir, "inbox")
	}
	if c.Daemon.StateFile == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		c.Daemon.StateFile = filepath.Join(dir, "daemon.toml")
	}
	if c.Daemon.LogFile == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		c.Daemon.LogFile = filepath.Join(dir, "daemon.log")
	}
	return nil
}

// Save writes the user-editable fields back to the config file at path.
// Used by `storysync login` to persist credentials.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.Set("user_id", cfg.UserID)
	v.Set("backend.url", cfg.Backend.URL)
	v.Set("backend.anon_key", cfg.Backend.AnonKey)
	v.Set("backend.access_token", cfg.Backend.AccessToken)
	v.Set("cache.driver", cfg.Cache.Driver)
	if cfg.Cache.Path != "" {
		v.Set("cache.path", cfg.Cache.Path)
	}
	if cfg.RetryPolicy != "" {
		v.Set("retry_policy", cfg.RetryPolicy)
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}
