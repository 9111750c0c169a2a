// Package session owns the process-wide wallet session: connection state,
// the transaction log, listener fan-out, and the durable storage markers
// that let a restarted process attempt a silent reconnect.
package session

import (
	"strconv"
	"time"
)

// TxType classifies a transaction record.
type TxType string

// Transaction record types.
const (
	TxSend    TxType = "send"
	TxReceive TxType = "receive"
	TxSwap    TxType = "swap"
	TxMint    TxType = "mint"
	TxBurn    TxType = "burn"
)

// TxStatus is the lifecycle status of a transaction record.
type TxStatus string

// Transaction record statuses.
const (
	TxPending   TxStatus = "pending"
	TxConfirmed TxStatus = "confirmed"
	TxFailed    TxStatus = "failed"
)

// Account is the connected wallet account.
type Account struct {
	Address     string  `json:"address"`
	Balance     float64 `json:"balance"`
	IsConnected bool    `json:"is_connected"`
}

// TransactionRecord is one locally-initiated transfer in the session log.
// Records are created pending and replaced in place (same ID) once the
// transfer resolves.
type TransactionRecord struct {
	ID        string    `json:"id"`
	Type      TxType    `json:"type"`
	Amount    float64   `json:"amount"`
	Currency  string    `json:"currency"`
	From      string    `json:"from,omitempty"`
	To        string    `json:"to,omitempty"`
	Status    TxStatus  `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Hash      string    `json:"hash,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// newRecordID returns a creation-time-ordered record identifier.
func newRecordID(at time.Time) string {
	return "tx-" + strconv.FormatInt(at.UnixNano(), 10)
}

// State is a point-in-time snapshot of the wallet session. Listeners always
// receive a copy; mutating a snapshot never affects the store.
//
// Invariant: IsConnected is true exactly when Account is non-nil.
type State struct {
	IsConnected  bool
	IsConnecting bool
	Account      *Account
	Balance      float64
	Transactions []TransactionRecord
	Error        string
}

// clone returns a deep copy safe to hand to listeners.
func (s State) clone() State {
	out := s
	if s.Account != nil {
		account := *s.Account
		out.Account = &account
	}
	if s.Transactions != nil {
		out.Transactions = make([]TransactionRecord, len(s.Transactions))
		copy(out.Transactions, s.Transactions)
	}
	return out
}

// disconnectedState is the terminal shape every disconnect converges to.
func disconnectedState() State {
	return State{
		IsConnected:  false,
		IsConnecting: false,
		Account:      nil,
		Balance:      0,
		Transactions: nil,
		Error:        "",
	}
}
