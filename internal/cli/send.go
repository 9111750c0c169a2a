package cli

import (
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level state
var (
	sendTo       string
	sendAmount   float64
	sendCurrency string
)

// sendCmd submits a native-token transfer for wallet approval.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send native tokens through the connected wallet",
	Long: `Send native tokens through the connected wallet.

The transfer is built locally and submitted to the wallet for interactive
approval. The transaction appears in the session log immediately as
pending and resolves in place to confirmed or failed.`,
	Example: `  walletlink send --to 0x2222222222222222222222222222222222222222 --amount 0.25`,
	Args:    cobra.NoArgs,
	RunE:    runSend,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	sendCmd.Flags().StringVar(&sendTo, "to", "", "recipient address (required)")
	sendCmd.Flags().Float64Var(&sendAmount, "amount", 0, "amount to send (required)")
	sendCmd.Flags().StringVar(&sendCurrency, "currency", "", "display currency (defaults to config)")
	_ = sendCmd.MarkFlagRequired("to")
	_ = sendCmd.MarkFlagRequired("amount")
	rootCmd.AddCommand(sendCmd)
}

func runSend(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	// Resume a stored session so send works right after a restart.
	store.CheckConnection(ctx)

	record, err := store.SendTransaction(ctx, sendTo, sendAmount, sendCurrency)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if outFormat.IsJSON() {
		return writeJSON(w, record)
	}

	out(w, "Transfer %s\n", record.Status)
	out(w, "  ID:     %s\n", record.ID)
	out(w, "  To:     %s\n", record.To)
	out(w, "  Amount: %.6f %s\n", record.Amount, record.Currency)
	if record.Hash != "" {
		out(w, "  Hash:   %s\n", record.Hash)
	}
	return nil
}
