// Package config loads, defaults and validates the GridNFS configuration,
// and builds the configured components (grid client, identity directory)
// through factory functions.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete GridNFS adapter configuration.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (GRIDNFS_*)
//  2. Configuration file (YAML)
//  3. Default values
//
// Store Configuration Pattern:
// The grid and identity sections carry a Type selector plus one
// type-specific sub-section per implementation; only the sub-section
// matching the selected type is decoded (see factories.go).
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging"`

	// Server contains process-wide settings
	Server ServerConfig `mapstructure:"server"`

	// Grid selects and configures the storage backend
	Grid GridConfig `mapstructure:"grid"`

	// Identity selects and configures the owner-identity directory
	Identity IdentityConfig `mapstructure:"identity"`

	// Metrics configures the optional metrics endpoint
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive)
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`
}

// ServerConfig contains process-wide settings.
type ServerConfig struct {
	// ShutdownTimeout is the maximum time to wait for graceful shutdown
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0"`
}

// GridConfig specifies the grid storage backend.
type GridConfig struct {
	// Type selects the grid store implementation
	// Valid values: memory, s3
	Type string `mapstructure:"type" validate:"required,oneof=memory s3"`

	// Root is the absolute grid path exposed as the filesystem root
	Root string `mapstructure:"root" validate:"required,startswith=/"`

	// Memory contains memory-store configuration (Type = "memory")
	Memory map[string]any `mapstructure:"memory"`

	// S3 contains S3-store configuration (Type = "s3")
	S3 map[string]any `mapstructure:"s3"`
}

// IdentityConfig specifies the owner-identity directory.
type IdentityConfig struct {
	// Type selects the directory implementation
	// Valid values: static, badger
	Type string `mapstructure:"type" validate:"required,oneof=static badger"`

	// Static maps "owner#zone" principals to decimal numeric ids
	// (Type = "static")
	Static map[string]string `mapstructure:"static"`

	// Badger contains the persistent registry configuration
	// (Type = "badger")
	Badger map[string]any `mapstructure:"badger"`
}

// MetricsConfig configures the metrics endpoint.
type MetricsConfig struct {
	// Enabled turns the Prometheus endpoint on
	Enabled bool `mapstructure:"enabled"`

	// Listen is the address the endpoint binds to (e.g. ":9090")
	Listen string `mapstructure:"listen"`

	// Path is the HTTP path serving metrics
	Path string `mapstructure:"path"`
}

// Load reads, defaults and validates the configuration.
//
// configPath may be empty, in which case the default locations are
// searched and a missing file is acceptable (defaults + environment
// variables apply).
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setupViper(v, configPath)

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// setupViper configures environment variable support and the config file
// search path.
func setupViper(v *viper.Viper, configPath string) {
	// Environment variables use the GRIDNFS_ prefix and underscores.
	// Example: GRIDNFS_LOGGING_LEVEL=DEBUG
	v.SetEnvPrefix("GRIDNFS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the configuration file if it exists.
func readConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		// Missing file is acceptable; defaults apply. Viper reports the
		// searched-path case and the explicit-path case differently.
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// getConfigDir returns the configuration directory path.
//
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config, or the current
// directory if the home directory cannot be determined.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "gridnfs")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "gridnfs")
}
