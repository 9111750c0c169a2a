package config

import (
	"os"
	"strconv"
	"strings"
)

// Environment variable names.
const (
	EnvHome        = "WALLETLINK_HOME"
	EnvCurrency    = "WALLETLINK_CURRENCY"
	EnvBridgeURL   = "WALLETLINK_BRIDGE_URL"
	EnvStorageFile = "WALLETLINK_STORAGE_FILE"
	EnvKeyring     = "WALLETLINK_KEYRING"
	EnvLogLevel    = "WALLETLINK_LOG_LEVEL"
	EnvLogFormat   = "WALLETLINK_LOG_FORMAT"
	EnvWatch       = "WALLETLINK_WATCH"
)

// ApplyEnvironment applies environment variable overrides to the
// configuration.
func ApplyEnvironment(cfg *Config) {
	if v := os.Getenv(EnvHome); v != "" {
		cfg.Home = v
	}

	if v := os.Getenv(EnvCurrency); v != "" {
		cfg.Provider.Currency = strings.ToUpper(v)
	}

	if v := os.Getenv(EnvBridgeURL); v != "" {
		cfg.Provider.BridgeURL = v
	}

	if v := os.Getenv(EnvStorageFile); v != "" {
		cfg.Storage.File = v
	}

	if v := os.Getenv(EnvKeyring); v != "" {
		cfg.Storage.Keyring = parseBool(v)
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}

	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}

	if v := os.Getenv(EnvWatch); v != "" {
		cfg.Session.Watch = parseBool(v)
	}
}

// parseBool parses common boolean spellings, defaulting to false.
func parseBool(v string) bool {
	parsed, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return false
	}
	return parsed
}
