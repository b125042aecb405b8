package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/supportportal/portal-client/pkg/debug"
)

const (
	// DefaultConfigDir is the default directory name for client configuration
	// and the local cache. It is created next to the executable.
	DefaultConfigDir = "config"
)

// GetConfigDir returns the path to the client's configuration directory.
// It checks the PORTAL_CONFIG_DIR environment variable first, then falls
// back to a directory next to the executable. The directory is created if
// it doesn't exist.
func GetConfigDir() string {
	var configDir string

	if envDir := os.Getenv("PORTAL_CONFIG_DIR"); envDir != "" {
		debug.Info("Using config directory from environment: %s", envDir)

		if filepath.IsAbs(envDir) {
			configDir = envDir
		} else {
			absPath, err := filepath.Abs(envDir)
			if err != nil {
				debug.Error("Failed to resolve absolute path: %v", err)
				configDir = envDir
			} else {
				configDir = absPath
			}
		}
	} else {
		execPath, err := os.Executable()
		if err != nil {
			debug.Error("Could not get executable path: %v", err)
			configDir = DefaultConfigDir
		} else {
			configDir = filepath.Join(filepath.Dir(execPath), DefaultConfigDir)
		}
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		debug.Error("Failed to create config directory %s: %v", configDir, err)
		// Fall back to the current directory if the intended one is unusable
		configDir = DefaultConfigDir
		debug.Warning("Falling back to default config directory: %s", configDir)
		if err := os.MkdirAll(configDir, 0700); err != nil {
			debug.Error("Failed to create fallback config directory: %v", err)
		}
	}

	debug.Debug("Using config directory: %s", configDir)
	return configDir
}

// GetEnvOrDefault returns the value of an environment variable or a default value
func GetEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Validate checks that the config directory is writable
func Validate(configDir string) error {
	probe := filepath.Join(configDir, ".probe")
	if err := os.WriteFile(probe, []byte("ok"), 0600); err != nil {
		return fmt.Errorf("config directory not writable: %w", err)
	}
	os.Remove(probe)
	return nil
}
