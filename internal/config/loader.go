package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigFileEnv names an explicit configuration file
const ConfigFileEnv = "STICKY_CONFIG"

// Loader handles loading configuration from multiple sources
type Loader struct {
	config   *Config
	filePath string
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{
		config: NewConfig(),
	}
}

// WithFile makes the loader read path instead of the default file. A file
// chosen this way must exist.
func (l *Loader) WithFile(path string) *Loader {
	l.filePath = path
	return l
}

// Load loads configuration using the cascading strategy:
// 1. Start with defaults
// 2. Override with the YAML file
// 3. Override with environment variables
// 4. Override with command line flags (LoadWithOverrides)
func (l *Loader) Load() (*Config, error) {
	if err := l.loadFile(); err != nil {
		return nil, err
	}

	if err := l.config.LoadFromEnvironment(); err != nil {
		return nil, err
	}

	if err := l.config.Validate(); err != nil {
		return nil, err
	}

	return l.config, nil
}

// LoadWithOverrides loads configuration and applies command line overrides
func (l *Loader) LoadWithOverrides(overrides *ConfigOverrides) (*Config, error) {
	if overrides != nil && overrides.ConfigFile != nil {
		l.filePath = *overrides.ConfigFile
	}

	config, err := l.Load()
	if err != nil {
		return nil, err
	}

	if overrides != nil {
		l.applyOverrides(config, overrides)
	}

	// Re-validate after applying overrides
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (l *Loader) loadFile() error {
	path, required := l.filePath, l.filePath != ""
	if !required {
		if env := os.Getenv(ConfigFileEnv); env != "" {
			path, required = env, true
		} else {
			path = DefaultConfigPath()
		}
	}
	if path == "" {
		return nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, l.config); err != nil {
		return &ConfigError{Field: "file", Message: fmt.Sprintf("invalid YAML in %s: %v", path, err)}
	}
	return nil
}

// DefaultConfigPath returns ~/.sticky-wall/config.yaml, or "" without a home directory
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, ".sticky-wall", "config.yaml")
}

// ConfigOverrides holds command line flag overrides
type ConfigOverrides struct {
	ConfigFile *string

	// Storage overrides
	StorageBackend  *string
	StorageDir      *string
	StorageFilename *string

	// Sync overrides
	SyncEnabled *bool
	SyncBaseURL *string
	SyncTimeout *time.Duration

	// Application overrides
	Timeout *time.Duration
	Verbose *bool
	Debug   *bool
}

// applyOverrides applies command line overrides to the configuration
func (l *Loader) applyOverrides(config *Config, overrides *ConfigOverrides) {
	if overrides.StorageBackend != nil {
		config.Storage.Backend = *overrides.StorageBackend
	}
	if overrides.StorageDir != nil {
		config.Storage.Dir = *overrides.StorageDir
	}
	if overrides.StorageFilename != nil {
		config.Storage.Filename = *overrides.StorageFilename
	}

	if overrides.SyncEnabled != nil {
		config.Sync.Enabled = *overrides.SyncEnabled
	}
	if overrides.SyncBaseURL != nil {
		config.Sync.BaseURL = *overrides.SyncBaseURL
	}
	if overrides.SyncTimeout != nil {
		config.Sync.Timeout = *overrides.SyncTimeout
	}

	if overrides.Timeout != nil {
		config.Application.Timeout = *overrides.Timeout
	}
	if overrides.Verbose != nil {
		config.Application.Verbose = *overrides.Verbose
	}
	if overrides.Debug != nil {
		config.Application.Debug = *overrides.Debug
	}
}

// ParseDurationWithFallback parses a duration string with a fallback value
func ParseDurationWithFallback(s string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return fallback
}

// ParseIntWithFallback parses an integer string with a fallback value
func ParseIntWithFallback(s string, fallback int) int {
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	return fallback
}

// ParseBoolWithFallback parses a boolean string with a fallback value
func ParseBoolWithFallback(s string, fallback bool) bool {
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return fallback
}
