package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Transport TransportConfig `yaml:"transport"`
	Cache     CacheConfig     `yaml:"cache"`
	Remote    RemoteConfig    `yaml:"remote"`
	Log       LogConfig       `yaml:"log"`
	Deadlines DeadlineConfig  `yaml:"deadlines"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Sync      SyncConfig      `yaml:"sync"`
	States    []string        `yaml:"states"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// TransportConfig selects how the command surface is served: "stdio" for MCP
// over stdin/stdout, "http" for MCP and JSON-RPC over HTTP.
type TransportConfig struct {
	Mode string `yaml:"mode"`
}

// CacheConfig locates the on-device cache.
type CacheConfig struct {
	Path string `yaml:"path"`
	Key  string `yaml:"key"`
}

// RemoteConfig selects the remote document store.
type RemoteConfig struct {
	Driver   string        `yaml:"driver"` // redis | memory
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	Timeout  time.Duration `yaml:"timeout"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"`
}

// DeadlineConfig drives the deadline watcher.
type DeadlineConfig struct {
	Interval   time.Duration `yaml:"interval"`
	WindowDays int           `yaml:"window_days"`
}

type MetricsConfig struct {
	StatusPolicy string `yaml:"status_policy"` // stored | date
}

type SyncConfig struct {
	ConflictPolicy string `yaml:"conflict_policy"` // last-write-wins | warn
}

// DefaultStates is the region list used when none is configured.
var DefaultStates = []string{"Tamil Nadu", "Delhi", "Uttar Pradesh"}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Transport: TransportConfig{
			Mode: "http",
		},
		Cache: CacheConfig{
			Path: "sitetrack.db",
			Key:  "hec-projects",
		},
		Remote: RemoteConfig{
			Driver:  "memory",
			Prefix:  "sitetrack",
			Timeout: 5 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
		Deadlines: DeadlineConfig{
			Interval:   24 * time.Hour,
			WindowDays: 7,
		},
		Metrics: MetricsConfig{
			StatusPolicy: "stored",
		},
		Sync: SyncConfig{
			ConflictPolicy: "last-write-wins",
		},
		States: append([]string(nil), DefaultStates...),
	}
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("SITETRACK_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if host := os.Getenv("SITETRACK_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("SITETRACK_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid SITETRACK_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if mode := os.Getenv("SITETRACK_TRANSPORT_MODE"); mode != "" {
		cfg.Transport.Mode = mode
	}
	if path := os.Getenv("SITETRACK_CACHE_PATH"); path != "" {
		cfg.Cache.Path = path
	}
	if key := os.Getenv("SITETRACK_CACHE_KEY"); key != "" {
		cfg.Cache.Key = key
	}
	if driver := os.Getenv("SITETRACK_REMOTE_DRIVER"); driver != "" {
		cfg.Remote.Driver = driver
	}
	if addr := os.Getenv("SITETRACK_REDIS_ADDR"); addr != "" {
		cfg.Remote.Addr = addr
	}
	if pw := os.Getenv("SITETRACK_REDIS_PASSWORD"); pw != "" {
		cfg.Remote.Password = pw
	}
	if dbStr := os.Getenv("SITETRACK_REDIS_DB"); dbStr != "" {
		db, err := strconv.Atoi(dbStr)
		if err != nil {
			return fmt.Errorf("invalid SITETRACK_REDIS_DB: %w", err)
		}
		cfg.Remote.DB = db
	}
	if timeout := os.Getenv("SITETRACK_REMOTE_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid SITETRACK_REMOTE_TIMEOUT: %w", err)
		}
		cfg.Remote.Timeout = d
	}
	if level := os.Getenv("SITETRACK_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if path := os.Getenv("SITETRACK_LOG_PATH"); path != "" {
		cfg.Log.Path = path
	}
	if interval := os.Getenv("SITETRACK_DEADLINE_INTERVAL"); interval != "" {
		d, err := time.ParseDuration(interval)
		if err != nil {
			return fmt.Errorf("invalid SITETRACK_DEADLINE_INTERVAL: %w", err)
		}
		cfg.Deadlines.Interval = d
	}
	if window := os.Getenv("SITETRACK_DEADLINE_WINDOW_DAYS"); window != "" {
		n, err := strconv.Atoi(window)
		if err != nil {
			return fmt.Errorf("invalid SITETRACK_DEADLINE_WINDOW_DAYS: %w", err)
		}
		cfg.Deadlines.WindowDays = n
	}
	if policy := os.Getenv("SITETRACK_STATUS_POLICY"); policy != "" {
		cfg.Metrics.StatusPolicy = policy
	}
	if policy := os.Getenv("SITETRACK_CONFLICT_POLICY"); policy != "" {
		cfg.Sync.ConflictPolicy = policy
	}
	if states := os.Getenv("SITETRACK_STATES"); states != "" {
		cfg.States = splitList(states)
	}
	return nil
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	switch c.Transport.Mode {
	case "stdio", "http":
	default:
		return fmt.Errorf("invalid transport mode %q", c.Transport.Mode)
	}
	switch c.Remote.Driver {
	case "memory":
	case "redis":
		if c.Remote.Addr == "" {
			return fmt.Errorf("remote driver redis requires an address")
		}
	default:
		return fmt.Errorf("invalid remote driver %q", c.Remote.Driver)
	}
	if c.Cache.Key == "" {
		return fmt.Errorf("cache key must not be empty")
	}
	if c.Deadlines.Interval <= 0 {
		return fmt.Errorf("deadline interval must be positive")
	}
	if c.Deadlines.WindowDays < 1 {
		return fmt.Errorf("deadline window must be at least one day")
	}
	if len(c.States) == 0 {
		return fmt.Errorf("at least one state must be configured")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
