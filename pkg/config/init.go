package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// defaultConfigTemplate is the starter configuration written by
// InitConfig. It documents every section with its default value; the
// identity section is the only one a new deployment must edit.
const defaultConfigTemplate = `# GridNFS Configuration File
#
# Environment variables with the GRIDNFS_ prefix override any value here,
# e.g. GRIDNFS_LOGGING_LEVEL=DEBUG.

logging:
  # Log level: DEBUG, INFO, WARN, ERROR
  level: "INFO"

server:
  # Maximum time to wait for graceful shutdown
  shutdown_timeout: 30s

grid:
  # Grid store backend: memory, s3
  type: "memory"

  # Absolute grid path exposed as the filesystem root
  root: "/"

  # S3 backend settings (grid.type = "s3")
  # s3:
  #   region: "us-east-1"
  #   bucket: "grid-data"
  #   key_prefix: ""
  #   endpoint: ""            # set for MinIO/Localstack
  #   access_key_id: ""
  #   secret_access_key: ""
  #   owner_name: "rods"
  #   owner_zone: "tempZone"
  #   read_only: false

identity:
  # Identity directory backend: static, badger
  type: "static"

  # Static principal table ("owner#zone" -> numeric id)
  static:
    "rods#tempZone": "10011"

  # Persistent registry settings (identity.type = "badger")
  # badger:
  #   path: "/var/lib/gridnfs/identity"

metrics:
  # Prometheus endpoint
  enabled: false
  listen: ":9090"
  path: "/metrics"
`

// InitConfig writes a commented starter configuration file into the
// standard config directory and returns its path.
//
// An existing file is left untouched unless force is set.
func InitConfig(force bool) (string, error) {
	dir := getConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory %s: %w", dir, err)
	}

	configPath := filepath.Join(dir, "config.yaml")
	if !force {
		if _, err := os.Stat(configPath); err == nil {
			return "", fmt.Errorf("config file already exists at %s (use force to overwrite)", configPath)
		}
	}

	if err := os.WriteFile(configPath, []byte(defaultConfigTemplate), 0o644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return configPath, nil
}
