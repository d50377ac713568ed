package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Storage backends
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
)

// Config holds all configuration options for the sticky wall application
type Config struct {
	Storage     StorageConfig     `yaml:"storage"`
	Sync        SyncConfig        `yaml:"sync"`
	Tasks       TasksConfig       `yaml:"tasks"`
	Categories  CategoriesConfig  `yaml:"categories"`
	Application ApplicationConfig `yaml:"application"`
}

// StorageConfig holds local storage configuration
type StorageConfig struct {
	Backend  string `yaml:"backend" env:"STICKY_STORAGE_BACKEND"`
	Dir      string `yaml:"dir" env:"STICKY_STORAGE_DIR"`
	Filename string `yaml:"filename" env:"STICKY_STORAGE_FILENAME"`
}

// SyncConfig holds remote sync configuration
type SyncConfig struct {
	Enabled        bool          `yaml:"enabled" env:"STICKY_SYNC_ENABLED"`
	BaseURL        string        `yaml:"base_url" env:"STICKY_SYNC_BASE_URL"`
	Timeout        time.Duration `yaml:"timeout" env:"STICKY_SYNC_TIMEOUT"`
	CacheTTL       time.Duration `yaml:"cache_ttl" env:"STICKY_SYNC_CACHE_TTL"`
	MaxRetries     int           `yaml:"max_retries" env:"STICKY_SYNC_MAX_RETRIES"`
	RetryBaseDelay time.Duration `yaml:"retry_base_delay" env:"STICKY_SYNC_RETRY_BASE_DELAY"`
}

// TasksConfig holds task rules
type TasksConfig struct {
	TextMaxLength int    `yaml:"text_max_length" env:"STICKY_TASK_TEXT_MAX"`
	Location      string `yaml:"location" env:"STICKY_TASK_LOCATION"`
}

// CategoriesConfig holds category registry rules
type CategoriesConfig struct {
	Max      int      `yaml:"max" env:"STICKY_CATEGORIES_MAX"`
	Defaults []string `yaml:"defaults" env:"STICKY_CATEGORIES_DEFAULTS"`
}

// ApplicationConfig holds application-level configuration
type ApplicationConfig struct {
	Timeout time.Duration `yaml:"timeout" env:"STICKY_APP_TIMEOUT"`
	Verbose bool          `yaml:"verbose" env:"STICKY_APP_VERBOSE"`
	Debug   bool          `yaml:"debug" env:"STICKY_DEBUG"`
}

// NewConfig creates a new configuration with sensible defaults
func NewConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Storage: StorageConfig{
			Backend: BackendSQLite,
			Dir:     filepath.Join(homeDir, ".sticky-wall"),
		},
		Sync: SyncConfig{
			Enabled:        true,
			BaseURL:        "https://api.restful-api.dev/objects",
			Timeout:        5 * time.Second,
			CacheTTL:       30 * time.Second,
			MaxRetries:     3,
			RetryBaseDelay: 500 * time.Millisecond,
		},
		Tasks: TasksConfig{
			TextMaxLength: 255,
			Location:      "Local",
		},
		Categories: CategoriesConfig{
			Max:      10,
			Defaults: []string{"Personal", "Work", "Family"},
		},
		Application: ApplicationConfig{
			Timeout: 60 * time.Second,
		},
	}
}

// GetStoragePath returns the full path of the local store
func (c *Config) GetStoragePath() string {
	name := c.Storage.Filename
	if name == "" {
		name = "wall.db"
		if c.Storage.Backend == BackendFile {
			name = "wall.json"
		}
	}
	return filepath.Join(c.Storage.Dir, name)
}

// GetLocation returns the time zone used to decide what "today" is
func (c *Config) GetLocation() (*time.Location, error) {
	if c.Tasks.Location == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Tasks.Location)
}

// LoadFromEnvironment loads configuration from environment variables
func (c *Config) LoadFromEnvironment() error {
	// Storage configuration
	if backend := os.Getenv("STICKY_STORAGE_BACKEND"); backend != "" {
		c.Storage.Backend = backend
	}
	if dir := os.Getenv("STICKY_STORAGE_DIR"); dir != "" {
		c.Storage.Dir = dir
	}
	if filename := os.Getenv("STICKY_STORAGE_FILENAME"); filename != "" {
		c.Storage.Filename = filename
	}

	// Sync configuration
	if enabled := os.Getenv("STICKY_SYNC_ENABLED"); enabled != "" {
		c.Sync.Enabled = ParseBoolWithFallback(enabled, c.Sync.Enabled)
	}
	if url := os.Getenv("STICKY_SYNC_BASE_URL"); url != "" {
		c.Sync.BaseURL = url
	}
	if timeout := os.Getenv("STICKY_SYNC_TIMEOUT"); timeout != "" {
		c.Sync.Timeout = ParseDurationWithFallback(timeout, c.Sync.Timeout)
	}
	if ttl := os.Getenv("STICKY_SYNC_CACHE_TTL"); ttl != "" {
		c.Sync.CacheTTL = ParseDurationWithFallback(ttl, c.Sync.CacheTTL)
	}
	if retries := os.Getenv("STICKY_SYNC_MAX_RETRIES"); retries != "" {
		c.Sync.MaxRetries = ParseIntWithFallback(retries, c.Sync.MaxRetries)
	}
	if delay := os.Getenv("STICKY_SYNC_RETRY_BASE_DELAY"); delay != "" {
		c.Sync.RetryBaseDelay = ParseDurationWithFallback(delay, c.Sync.RetryBaseDelay)
	}

	// Task configuration
	if maxLen := os.Getenv("STICKY_TASK_TEXT_MAX"); maxLen != "" {
		c.Tasks.TextMaxLength = ParseIntWithFallback(maxLen, c.Tasks.TextMaxLength)
	}
	if loc := os.Getenv("STICKY_TASK_LOCATION"); loc != "" {
		c.Tasks.Location = loc
	}

	// Category configuration
	if limit := os.Getenv("STICKY_CATEGORIES_MAX"); limit != "" {
		c.Categories.Max = ParseIntWithFallback(limit, c.Categories.Max)
	}
	if defaults, ok := os.LookupEnv("STICKY_CATEGORIES_DEFAULTS"); ok {
		c.Categories.Defaults = splitList(defaults)
	}

	// Application configuration
	if timeout := os.Getenv("STICKY_APP_TIMEOUT"); timeout != "" {
		c.Application.Timeout = ParseDurationWithFallback(timeout, c.Application.Timeout)
	}
	if verbose := os.Getenv("STICKY_APP_VERBOSE"); verbose != "" {
		c.Application.Verbose = ParseBoolWithFallback(verbose, c.Application.Verbose)
	}
	if os.Getenv("STICKY_DEBUG") != "" {
		c.Application.Debug = true
	}

	return nil
}

// Validate validates the configuration and returns any errors
func (c *Config) Validate() error {
	// Validate storage configuration
	switch c.Storage.Backend {
	case BackendSQLite, BackendFile:
	default:
		return &ConfigError{Field: "storage.backend", Message: "storage backend must be \"sqlite\" or \"file\""}
	}
	if c.Storage.Dir == "" {
		return &ConfigError{Field: "storage.dir", Message: "storage directory cannot be empty"}
	}

	// Validate sync configuration
	if c.Sync.Enabled && c.Sync.BaseURL == "" {
		return &ConfigError{Field: "sync.base_url", Message: "base URL cannot be empty when sync is enabled"}
	}
	if c.Sync.Timeout <= 0 {
		return &ConfigError{Field: "sync.timeout", Message: "sync timeout must be positive"}
	}
	if c.Sync.CacheTTL < 0 {
		return &ConfigError{Field: "sync.cache_ttl", Message: "cache TTL cannot be negative"}
	}
	if c.Sync.MaxRetries < 0 {
		return &ConfigError{Field: "sync.max_retries", Message: "max retries cannot be negative"}
	}
	if c.Sync.RetryBaseDelay <= 0 {
		return &ConfigError{Field: "sync.retry_base_delay", Message: "retry base delay must be positive"}
	}

	// Validate task configuration
	if c.Tasks.TextMaxLength < 1 {
		return &ConfigError{Field: "tasks.text_max_length", Message: "task text maximum length must be at least 1"}
	}
	if _, err := c.GetLocation(); err != nil {
		return &ConfigError{Field: "tasks.location", Message: "unknown time zone " + strconv.Quote(c.Tasks.Location)}
	}

	// Validate category configuration
	if c.Categories.Max < 1 {
		return &ConfigError{Field: "categories.max", Message: "category maximum must be at least 1"}
	}
	if len(c.Categories.Defaults) > c.Categories.Max {
		return &ConfigError{Field: "categories.defaults", Message: "more default categories than the maximum allows"}
	}

	// Validate application configuration
	if c.Application.Timeout <= 0 {
		return &ConfigError{Field: "application.timeout", Message: "application timeout must be positive"}
	}

	return nil
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
