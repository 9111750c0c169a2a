package config

import (
	"os"
	"path/filepath"
)

// DefaultConfigFileName is the config file name under the home directory.
const DefaultConfigFileName = "config.yaml"

// DefaultStorageFileName is the durable storage file name under the home
// directory.
const DefaultStorageFileName = "storage.json"

// Defaults returns the default configuration.
func Defaults() *Config {
	return &Config{
		Version: 1,
		Home:    DefaultHome(),
		Provider: ProviderConfig{
			Currency: "ETH",
		},
		Storage: StorageConfig{
			File:    DefaultStorageFileName,
			Keyring: false,
		},
		Session: SessionConfig{
			ProbePerSecond: 1,
			ProbeBurst:     3,
			Watch:          true,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// DefaultHome returns the walletlink home directory, honoring the user's
// home when resolvable.
func DefaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".walletlink"
	}
	return filepath.Join(home, ".walletlink")
}

// DefaultConfigPath returns the default config file location.
func DefaultConfigPath() string {
	return filepath.Join(DefaultHome(), DefaultConfigFileName)
}
