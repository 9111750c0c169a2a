package cli

import (
	"github.com/spf13/cobra"

	"github.com/minterra/walletlink/internal/output"
)

// connectCmd opens the wallet connection prompt.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect a wallet through the bridge",
	Long: `Connect a wallet through the configured bridge.

The bridge opens the wallet's own approval prompt; the command blocks until
the user approves or rejects it. On approval the session is persisted so
later commands (and other processes watching the same storage) resume it
without prompting again.`,
	Example: `  walletlink connect
  walletlink connect --bridge http://localhost:8551`,
	Args: cobra.NoArgs,
	RunE: runConnect,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(connectCmd)
}

func runConnect(cmd *cobra.Command, _ []string) error {
	account, err := store.Connect(cmd.Context())
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if outFormat.IsJSON() {
		payload := struct {
			Address  string  `json:"address"`
			Balance  float64 `json:"balance"`
			Currency string  `json:"currency"`
			ClientID string  `json:"client_id"`
		}{
			Address:  account.Address,
			Balance:  account.Balance,
			Currency: cfg.Provider.Currency,
			ClientID: store.ClientID(),
		}
		return writeJSON(w, payload)
	}

	_ = output.FormatSuccess(w, "Wallet connected", outFormat)
	out(w, "  Address: %s\n", account.Address)
	out(w, "  Balance: %.6f %s\n", account.Balance, cfg.Provider.Currency)
	return nil
}
