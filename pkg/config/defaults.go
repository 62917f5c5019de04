package config

import (
	"strings"
	"time"
)

// ApplyDefaults sets default values for any unspecified configuration
// fields.
//
// Default Strategy:
//   - Zero values (0, "", nil) are replaced with defaults
//   - Explicit values are preserved
//   - Store-specific defaults are handled by the store constructors
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyServerDefaults(&cfg.Server)
	applyGridDefaults(&cfg.Grid)
	applyIdentityDefaults(&cfg.Identity)
	applyMetricsDefaults(&cfg.Metrics)
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	// Normalize for a consistent internal representation
	cfg.Level = strings.ToUpper(cfg.Level)
}

// applyServerDefaults sets process-wide defaults.
func applyServerDefaults(cfg *ServerConfig) {
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
}

// applyGridDefaults sets grid store defaults.
func applyGridDefaults(cfg *GridConfig) {
	if cfg.Type == "" {
		cfg.Type = "memory"
	}
	if cfg.Root == "" {
		cfg.Root = "/"
	}

	if cfg.Memory == nil {
		cfg.Memory = make(map[string]any)
	}
	if cfg.S3 == nil {
		cfg.S3 = make(map[string]any)
	}
}

// applyIdentityDefaults sets identity directory defaults.
func applyIdentityDefaults(cfg *IdentityConfig) {
	if cfg.Type == "" {
		cfg.Type = "static"
	}
	if cfg.Static == nil {
		cfg.Static = make(map[string]string)
	}
	if cfg.Badger == nil {
		cfg.Badger = make(map[string]any)
	}
}

// applyMetricsDefaults sets metrics endpoint defaults.
func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Listen == "" {
		cfg.Listen = ":9090"
	}
	if cfg.Path == "" {
		cfg.Path = "/metrics"
	}
}
