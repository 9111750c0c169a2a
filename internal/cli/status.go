package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/minterra/walletlink/internal/session"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level state
var statusWatch bool

// statusCmd shows the current wallet session.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the wallet session state",
	Long: `Show the wallet session state.

Status first probes the bridge for a resumable session, so a wallet
connected by another process (or a previous run) shows up as connected
here without an interactive prompt.

With --watch the command keeps running and prints a new snapshot on every
session change, including connects and disconnects made by other
processes sharing the same storage.`,
	Example: `  walletlink status
  walletlink status --watch`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	statusCmd.Flags().BoolVarP(&statusWatch, "watch", "w", false, "stream session snapshots until interrupted")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	store.CheckConnection(ctx)

	w := cmd.OutOrStdout()
	renderState(w, store.GetState())

	if !statusWatch {
		return nil
	}

	startSessionWatch(ctx)

	unsubscribe := store.Subscribe(func(state session.State) {
		renderState(w, state)
	})
	defer unsubscribe()

	<-ctx.Done()
	return nil
}

// startSessionWatch starts the cross-process storage watcher, unless the
// session.watch config knob turned it off.
func startSessionWatch(ctx context.Context) {
	if !cfg.Session.Watch {
		logger.Debug().Msg("storage watcher disabled by config, reporting in-process changes only")
		return
	}

	if err := store.WatchStorage(ctx, cfg.StorageFile()); err != nil {
		logger.Warn().Err(err).Msg("storage watcher unavailable, reporting in-process changes only")
	}
}

// statusPayload is the JSON shape of one session snapshot.
type statusPayload struct {
	Connected    bool                        `json:"connected"`
	Connecting   bool                        `json:"connecting"`
	Account      *session.Account            `json:"account,omitempty"`
	Balance      float64                     `json:"balance"`
	Currency     string                      `json:"currency"`
	Error        string                      `json:"error,omitempty"`
	Transactions []session.TransactionRecord `json:"transactions,omitempty"`
	ClientID     string                      `json:"client_id"`
}

func renderState(w io.Writer, state session.State) {
	if outFormat.IsJSON() {
		_ = writeJSON(w, statusPayload{
			Connected:    state.IsConnected,
			Connecting:   state.IsConnecting,
			Account:      state.Account,
			Balance:      state.Balance,
			Currency:     cfg.Provider.Currency,
			Error:        state.Error,
			Transactions: state.Transactions,
			ClientID:     store.ClientID(),
		})
		return
	}

	switch {
	case state.IsConnecting:
		outln(w, "Status: connecting (waiting for wallet approval)")
	case state.IsConnected:
		outln(w, "Status: connected")
		out(w, "  Address: %s\n", state.Account.Address)
		out(w, "  Balance: %.6f %s\n", state.Balance, cfg.Provider.Currency)
	default:
		outln(w, "Status: disconnected")
	}

	if state.Error != "" {
		out(w, "  Error: %s\n", state.Error)
	}

	if len(state.Transactions) > 0 {
		outln(w, "Recent transactions:")
		for _, record := range state.Transactions {
			line := string(record.Status)
			if record.Hash != "" {
				line += " " + record.Hash
			}
			out(w, "  %s  %s %.6f %s -> %s  [%s]\n",
				record.ID, record.Type, record.Amount, record.Currency, record.To, line)
		}
	}
}
