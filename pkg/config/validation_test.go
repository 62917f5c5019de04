package config

import (
	"strings"
	"testing"
)

// validConfig returns a configuration that passes validation, for tests
// to break one field at a time.
func validConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	cfg.Identity.Static = map[string]string{"rods#tempZone": "10011"}
	return cfg
}

func TestValidate_ValidConfig(t *testing.T) {
	cfg := validConfig()

	err := Validate(cfg)
	if err != nil {
		t.Errorf("Expected valid config to pass validation, got error: %v", err)
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "INVALID"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for invalid log level")
	}
	if !strings.Contains(err.Error(), "oneof") {
		t.Errorf("Expected 'oneof' validation error, got: %v", err)
	}
}

func TestValidate_InvalidGridType(t *testing.T) {
	cfg := validConfig()
	cfg.Grid.Type = "ftp"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for invalid grid type")
	}
}

func TestValidate_RelativeGridRoot(t *testing.T) {
	cfg := validConfig()
	cfg.Grid.Root = "tempZone/home"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for relative grid root")
	}
	if !strings.Contains(err.Error(), "startswith") {
		t.Errorf("Expected 'startswith' validation error, got: %v", err)
	}
}

func TestValidate_InvalidIdentityType(t *testing.T) {
	cfg := validConfig()
	cfg.Identity.Type = "ldap"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for invalid identity type")
	}
}

func TestValidate_EmptyStaticIdentity(t *testing.T) {
	cfg := validConfig()
	cfg.Identity.Static = map[string]string{}

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for empty static identity directory")
	}
	if !strings.Contains(err.Error(), "no principals") {
		t.Errorf("Expected 'no principals' error, got: %v", err)
	}
}

func TestValidate_EmptyStaticIdentityNotRequiredForBadger(t *testing.T) {
	cfg := validConfig()
	cfg.Identity.Type = "badger"
	cfg.Identity.Static = map[string]string{}
	cfg.Identity.Badger = map[string]any{"path": "/var/lib/gridnfs/identity"}

	err := Validate(cfg)
	if err != nil {
		t.Errorf("Expected badger identity config to pass validation, got error: %v", err)
	}
}

func TestValidate_MetricsEnabledWithoutListen(t *testing.T) {
	cfg := validConfig()
	cfg.Metrics.Enabled = true
	cfg.Metrics.Listen = ""

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for metrics without listen address")
	}
	if !strings.Contains(err.Error(), "listen") {
		t.Errorf("Expected 'listen' error, got: %v", err)
	}
}

func TestValidate_NegativeShutdownTimeout(t *testing.T) {
	cfg := validConfig()
	cfg.Server.ShutdownTimeout = -1

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for negative shutdown timeout")
	}
}
