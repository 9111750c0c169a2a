package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/minterra/walletlink/internal/config"
	"github.com/minterra/walletlink/internal/output"
)

// configCmd is the parent command for configuration operations.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage walletlink configuration",
}

// configShowCmd prints the effective configuration.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configShowCmd = &cobra.Command{
	Use:     "show",
	Short:   "Show the effective configuration",
	Long:    `Show the effective configuration after defaults, the config file, environment variables and flags are applied.`,
	Example: `  walletlink config show`,
	Args:    cobra.NoArgs,
	RunE:    runConfigShow,
}

// configInitCmd writes a starter config file.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configInitCmd = &cobra.Command{
	Use:     "init",
	Short:   "Write the default configuration file",
	Example: `  walletlink config init`,
	Args:    cobra.NoArgs,
	RunE:    runConfigInit,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	if outFormat.IsJSON() {
		// Round-trip through YAML so JSON keys match the config file's.
		var generic map[string]any
		if err := yaml.Unmarshal(data, &generic); err != nil {
			return err
		}
		return writeJSON(w, generic)
	}

	_, err = w.Write(data)
	return err
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	path := filepath.Join(cfg.Home, config.DefaultConfigFileName)
	if _, err := os.Stat(path); err == nil {
		out(cmd.OutOrStdout(), "Config already exists at %s\n", path)
		return nil
	}

	if err := cfg.Save(path); err != nil {
		return err
	}
	return output.FormatSuccess(cmd.OutOrStdout(), "Wrote "+path, outFormat)
}
