package cli

import (
	"github.com/spf13/cobra"

	"github.com/minterra/walletlink/internal/output"
)

// disconnectCmd tears down the wallet session.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var disconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "Disconnect the wallet and clear the stored session",
	Long: `Disconnect the wallet and clear the stored session.

Disconnect always succeeds: the provider-side teardown is best effort, and
the local session markers are removed even when the bridge is unreachable.
Processes watching the same storage disconnect too.`,
	Example: `  walletlink disconnect`,
	Args:    cobra.NoArgs,
	RunE:    runDisconnect,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(disconnectCmd)
}

func runDisconnect(cmd *cobra.Command, _ []string) error {
	store.Disconnect(cmd.Context())
	return output.FormatSuccess(cmd.OutOrStdout(), "Wallet disconnected", outFormat)
}
