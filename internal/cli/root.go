// Package cli implements the walletlink command-line interface.
//
// This package uses global variables to manage CLI state, which is the
// standard pattern for Cobra-based CLI applications. The globals are
// initialized in PersistentPreRunE and cleaned up in PersistentPostRun.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level state
package cli

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/minterra/walletlink/internal/config"
	"github.com/minterra/walletlink/internal/output"
	"github.com/minterra/walletlink/internal/provider"
	"github.com/minterra/walletlink/internal/session"
	"github.com/minterra/walletlink/internal/signing"
	"github.com/minterra/walletlink/internal/version"
	walleterr "github.com/minterra/walletlink/pkg/errors"
)

var (
	// Global flags
	homeDir      string
	outputFormat string
	bridgeURL    string
	verbose      bool

	// Global state initialized in PersistentPreRunE
	cfg         *config.Config
	logger      zerolog.Logger
	outFormat   output.Format
	connector   *provider.RPCConnector
	adapter     *provider.Adapter
	store       *session.Store
	coordinator *signing.Coordinator
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "walletlink",
	Short: "Wallet session and signing CLI for the marketplace bridge",
	Long: `Walletlink manages the wallet session and transaction signing against a
local wallet bridge.

It connects to the bridge over JSON-RPC, keeps the session mirrored in
durable storage so other processes see connects and disconnects, and signs
base64-encoded transaction payloads through the wallet's own approval UI.

Example:
  walletlink connect
  walletlink status --watch
  walletlink send --to 0x... --amount 0.1
  walletlink sign <base64-transaction>`,
	Version:       version.String(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return initGlobals()
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		cleanup()
	},
}

// Execute runs the root command. The command context cancels on SIGINT or
// SIGTERM so watch loops and pending RPC calls unwind cleanly.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		format := outFormat
		if format == "" {
			format = output.FormatText
		}
		_ = output.FormatError(os.Stderr, err, format)
		return err
	}
	return nil
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	return walleterr.ExitCode(err)
}

// initGlobals initializes configuration, logger, output format and the
// wallet session stack.
func initGlobals() error {
	home := homeDir
	if home == "" {
		home = os.Getenv(config.EnvHome)
	}
	if home == "" {
		home = config.DefaultHome()
	}

	var err error
	cfg, err = config.LoadOrDefaults(filepath.Join(home, config.DefaultConfigFileName))
	if err != nil {
		return err
	}
	cfg.Home = home

	config.ApplyEnvironment(cfg)

	// Command-line flags win over config and environment.
	if bridgeURL != "" {
		cfg.Provider.BridgeURL = bridgeURL
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}

	logger = config.NewLogger(cfg.Logging, os.Stderr)

	outFormat = output.DetectFormat(os.Stdout, output.ParseFormat(outputFormat))

	connector = provider.NewRPCConnector(cfg.Provider.BridgeURL)
	adapter = provider.New(connector, logger)

	storage := session.NewFileStorage(cfg.StorageFile())
	var extra []session.Storage
	if cfg.Storage.Keyring {
		service := cfg.Storage.KeyringService
		if service == "" {
			service = "walletlink"
		}
		keyring := session.NewKeyringStorage(service)
		if keyring.Available() {
			extra = append(extra, keyring)
		} else {
			logger.Warn().Msg("keyring storage enabled but unavailable, using file storage only")
		}
	}

	store = session.New(session.Config{
		Adapter:    adapter,
		Storage:    storage,
		Extra:      extra,
		Currency:   cfg.Provider.Currency,
		ProbeRate:  rate.Limit(cfg.Session.ProbePerSecond),
		ProbeBurst: cfg.Session.ProbeBurst,
		Logger:     logger,
	})
	coordinator = signing.New(adapter, store, logger)

	return nil
}

// cleanup releases resources.
func cleanup() {
	if store != nil {
		store.Close()
	}
	if connector != nil {
		connector.Close()
	}
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for flag registration
func init() {
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "walletlink data directory (default: ~/.walletlink)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "auto", "output format: text, json, auto")
	rootCmd.PersistentFlags().StringVar(&bridgeURL, "bridge", "", "wallet bridge JSON-RPC endpoint")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}
