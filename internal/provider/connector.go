// Package provider wraps the external wallet connector behind a small
// adapter. It is the only package that talks to the concrete connector;
// everything else sees classified errors and native transaction types.
package provider

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/core/types"
)

// Connector is the black-box interface of the external wallet connector.
// Implementations are expected to block on interactive calls until the user
// approves or rejects the request in the wallet's own UI; there is no
// application-imposed timeout on those prompts.
type Connector interface {
	// Available reports whether the wallet bridge is present in this
	// environment. Must not block or fail.
	Available() bool

	// Connect opens an interactive connection prompt and returns the
	// approved account addresses.
	Connect(ctx context.Context) ([]string, error)

	// ReconnectSession resumes a previously approved session without an
	// interactive prompt. Returns ErrNoPriorSession if the provider holds
	// no session for this client.
	ReconnectSession(ctx context.Context) ([]string, error)

	// Disconnect tears down the provider-side session.
	Disconnect(ctx context.Context) error

	// SignTransaction submits transaction groups for interactive approval
	// and returns the signed bytes, one entry per input transaction in
	// input order.
	SignTransaction(ctx context.Context, groups [][]SignerTransaction) ([][]byte, error)

	// Balance returns the native-token balance for an address.
	Balance(ctx context.Context, address string) (float64, error)

	// OnDisconnect registers a handler invoked when the provider ends the
	// session from its side (user disconnected in the wallet app).
	OnDisconnect(handler func())
}

// SignerTransaction pairs a native transaction with the addresses expected
// to sign it. An empty Signers slice marks the transaction as
// reference-only within its group (present for group validity, signed by
// another party).
type SignerTransaction struct {
	Txn     *types.Transaction
	Signers []string
}

// Connector-level sentinel errors. Concrete connectors return these (or
// errors wrapping them) so the adapter can classify failures without
// inspecting message text.
var (
	// ErrNoPriorSession indicates ReconnectSession found nothing to resume.
	ErrNoPriorSession = errors.New("no prior wallet session")

	// ErrRequestPending indicates the wallet already has a request awaiting
	// user approval and refuses to queue another.
	ErrRequestPending = errors.New("a request is already pending in the wallet")

	// ErrUserRejected indicates the user dismissed the prompt.
	ErrUserRejected = errors.New("user rejected the request")
)
