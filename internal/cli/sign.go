package cli

import (
	"github.com/spf13/cobra"
)

// signCmd signs base64-encoded transaction payloads.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var signCmd = &cobra.Command{
	Use:   "sign <transaction> [transaction...]",
	Short: "Sign base64-encoded transactions with the connected wallet",
	Long: `Sign base64-encoded transactions with the connected wallet.

All transactions are submitted as one batch under a single wallet
approval. The batch is atomic: if any transaction fails, nothing is
returned. Signed payloads are printed in input order, one per line.`,
	Example: `  walletlink sign 6QGEO5rKAIJSCJQiIiIiIiIiIiIiIiIiIiIiIiIiIgGAgIA=
  walletlink sign $(cat txns.b64)`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSign,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(signCmd)
}

func runSign(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// Resume a stored session so sign works right after a restart.
	store.CheckConnection(ctx)

	signed, err := coordinator.SignTransactions(ctx, args)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if outFormat.IsJSON() {
		return writeJSON(w, struct {
			Signed []string `json:"signed"`
		}{Signed: signed})
	}

	for _, blob := range signed {
		outln(w, blob)
	}
	return nil
}
