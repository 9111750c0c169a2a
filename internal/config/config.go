// Package config provides configuration management for walletlink.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	walleterr "github.com/minterra/walletlink/pkg/errors"
)

// Config represents the application configuration.
type Config struct {
	Version  int            `yaml:"version"`
	Home     string         `yaml:"home"`
	Provider ProviderConfig `yaml:"provider"`
	Storage  StorageConfig  `yaml:"storage"`
	Session  SessionConfig  `yaml:"session"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ProviderConfig defines external wallet provider settings.
type ProviderConfig struct {
	// Currency is the display currency for balances and transfers.
	Currency string `yaml:"currency"`

	// BridgeURL is the JSON-RPC endpoint of the local wallet bridge. Empty
	// means no bridge is configured and the provider reports unavailable.
	BridgeURL string `yaml:"bridge_url,omitempty"`
}

// StorageConfig defines where durable session markers live.
type StorageConfig struct {
	// File is the path of the file-backed storage area. Relative paths
	// are resolved under Home.
	File string `yaml:"file"`

	// Keyring enables the OS-keychain secondary storage area.
	Keyring bool `yaml:"keyring"`

	// KeyringService overrides the keychain service name.
	KeyringService string `yaml:"keyring_service,omitempty"`
}

// SessionConfig defines reconnect-probe behavior.
type SessionConfig struct {
	// ProbePerSecond throttles reconnect probes (focus events can burst).
	ProbePerSecond float64 `yaml:"probe_per_second"`

	// ProbeBurst is the probe token bucket size.
	ProbeBurst int `yaml:"probe_burst"`

	// Watch enables the storage watcher for cross-process disconnects.
	Watch bool `yaml:"watch"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "console" or "json"
}

// Load reads configuration from the specified file, applying defaults for
// anything the file omits.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- config file path is from validated user input
	if err != nil {
		if os.IsNotExist(err) {
			return nil, walleterr.WithDetails(walleterr.ErrConfigNotFound, map[string]string{"path": path})
		}
		return nil, err
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, walleterr.Wrap(walleterr.ErrConfigInvalid, "%s", path)
	}

	cfg.normalize()
	return cfg, nil
}

// LoadOrDefaults loads the config file when present and falls back to
// defaults when it is missing.
func LoadOrDefaults(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		if walleterr.Is(err, walleterr.ErrConfigNotFound) {
			cfg = Defaults()
			cfg.normalize()
			return cfg, nil
		}
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the specified file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// StorageFile returns the absolute path of the file-backed storage area.
func (c *Config) StorageFile() string {
	if filepath.IsAbs(c.Storage.File) {
		return c.Storage.File
	}
	return filepath.Join(c.Home, c.Storage.File)
}

// normalize fills empty fields from defaults after loading.
func (c *Config) normalize() {
	defaults := Defaults()

	if c.Home == "" {
		c.Home = defaults.Home
	}
	if c.Provider.Currency == "" {
		c.Provider.Currency = defaults.Provider.Currency
	}
	if c.Storage.File == "" {
		c.Storage.File = defaults.Storage.File
	}
	if c.Session.ProbePerSecond <= 0 {
		c.Session.ProbePerSecond = defaults.Session.ProbePerSecond
	}
	if c.Session.ProbeBurst <= 0 {
		c.Session.ProbeBurst = defaults.Session.ProbeBurst
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaults.Logging.Level
	}
	if c.Logging.Format == "" {
		c.Logging.Format = defaults.Logging.Format
	}
}
