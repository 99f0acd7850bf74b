// Package config loads ambient, engine-level configuration: the module-file
// naming convention, default ignore globs, and logging. This is distinct
// from the per-project JSON manifest (internal/manifest), which is
// user-authored project data parsed fresh for every build, not machine-level
// configuration layered from a file and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// ModuleFileName is the base name (without extension) that promotes a
	// directory to a script instance — "init" unless overridden.
	ModuleFileName string `yaml:"module_file_name"`

	// DefaultIgnoreGlobs holds glob patterns read from the config file. The
	// build command does not pass them to the engine, so only a project's
	// own globIgnorePaths filter paths during a build.
	DefaultIgnoreGlobs []string `yaml:"default_ignore_globs"`

	Cache CacheConfig `yaml:"cache"`
	Log   LogConfig   `yaml:"log"`
}

// CacheConfig tunes the Value Resolver's schema-lookup memoization cache
// (internal/cache) — a perf aid, not a core semantic.
type CacheConfig struct {
	TTL        time.Duration `yaml:"ttl"`
	MaxEntries int           `yaml:"max_entries"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

func DefaultConfig() *Config {
	return &Config{
		ModuleFileName: "init",
		Cache: CacheConfig{
			TTL:        60 * time.Second,
			MaxEntries: 10000,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration using the real environment.
func Load() (*Config, error) {
	return LoadWithEnv(os.Getenv)
}

// LoadWithEnv loads configuration using the provided environment lookup
// function. This allows tests to provide isolated environment values.
func LoadWithEnv(getenv func(string) string) (*Config, error) {
	cfg := DefaultConfig()

	// Try to load from config file
	configPath := getConfigPathWithEnv(getenv)
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Environment variables override config file
	if moduleName := getenv("INSTANCESYNC_MODULE_FILE_NAME"); moduleName != "" {
		cfg.ModuleFileName = moduleName
	}
	if level := getenv("INSTANCESYNC_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}

	return cfg, nil
}

func getConfigPathWithEnv(getenv func(string) string) string {
	// Check XDG_CONFIG_HOME first
	if xdgConfig := getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "instancesync", "config.yaml")
	}

	// Fall back to ~/.config
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "instancesync", "config.yaml")
}
