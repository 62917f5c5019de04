package config

import (
	"testing"
	"time"
)

func TestApplyDefaults_Logging(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected default log level 'INFO', got %q", cfg.Logging.Level)
	}
}

func TestApplyDefaults_LoggingNormalizesCase(t *testing.T) {
	cfg := &Config{}
	cfg.Logging.Level = "debug"
	ApplyDefaults(cfg)

	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Expected normalized log level 'DEBUG', got %q", cfg.Logging.Level)
	}
}

func TestApplyDefaults_Server(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Server.ShutdownTimeout != 30*time.Second {
		t.Errorf("Expected default shutdown timeout 30s, got %v", cfg.Server.ShutdownTimeout)
	}
}

func TestApplyDefaults_Grid(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Grid.Type != "memory" {
		t.Errorf("Expected default grid type 'memory', got %q", cfg.Grid.Type)
	}
	if cfg.Grid.Root != "/" {
		t.Errorf("Expected default grid root '/', got %q", cfg.Grid.Root)
	}
	if cfg.Grid.Memory == nil {
		t.Fatal("Expected Memory map to be initialized")
	}
	if cfg.Grid.S3 == nil {
		t.Fatal("Expected S3 map to be initialized")
	}
}

func TestApplyDefaults_Identity(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Identity.Type != "static" {
		t.Errorf("Expected default identity type 'static', got %q", cfg.Identity.Type)
	}
	if cfg.Identity.Static == nil {
		t.Fatal("Expected Static map to be initialized")
	}
	if cfg.Identity.Badger == nil {
		t.Fatal("Expected Badger map to be initialized")
	}
}

func TestApplyDefaults_Metrics(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Metrics.Enabled {
		t.Error("Expected metrics to default to disabled")
	}
	if cfg.Metrics.Listen != ":9090" {
		t.Errorf("Expected default metrics listen ':9090', got %q", cfg.Metrics.Listen)
	}
	if cfg.Metrics.Path != "/metrics" {
		t.Errorf("Expected default metrics path '/metrics', got %q", cfg.Metrics.Path)
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Grid.Type = "s3"
	cfg.Grid.Root = "/tempZone/home"
	cfg.Server.ShutdownTimeout = 5 * time.Second
	ApplyDefaults(cfg)

	if cfg.Grid.Type != "s3" {
		t.Errorf("Expected grid type 's3' to be preserved, got %q", cfg.Grid.Type)
	}
	if cfg.Grid.Root != "/tempZone/home" {
		t.Errorf("Expected grid root to be preserved, got %q", cfg.Grid.Root)
	}
	if cfg.Server.ShutdownTimeout != 5*time.Second {
		t.Errorf("Expected shutdown timeout 5s to be preserved, got %v", cfg.Server.ShutdownTimeout)
	}
}
