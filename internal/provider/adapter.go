package provider

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	walleterr "github.com/minterra/walletlink/pkg/errors"
)

// Adapter mediates between application code and the external wallet
// connector. It classifies connector failures into the stable error
// taxonomy and guarantees disconnect never propagates an error.
type Adapter struct {
	connector Connector
	log       zerolog.Logger
}

// New creates an adapter around the given connector. A nil connector is
// valid and yields an adapter that reports unavailable.
func New(connector Connector, log zerolog.Logger) *Adapter {
	return &Adapter{
		connector: connector,
		log:       log.With().Str("component", "provider").Logger(),
	}
}

var (
	defaultMu      sync.Mutex
	defaultAdapter *Adapter
)

// Default returns the process-wide adapter, constructing it on first call.
// Later calls ignore their arguments and return the original instance so
// the underlying connector is never wired up twice.
func Default(connector Connector, log zerolog.Logger) *Adapter {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultAdapter == nil {
		defaultAdapter = New(connector, log)
	}
	return defaultAdapter
}

// Available reports whether the external wallet bridge is present. Never
// panics, even with no connector wired.
func (a *Adapter) Available() bool {
	if a == nil || a.connector == nil {
		return false
	}
	return a.connector.Available()
}

// Connect opens the interactive connection prompt.
func (a *Adapter) Connect(ctx context.Context) ([]string, error) {
	if !a.Available() {
		return nil, walleterr.ErrProviderUnavailable
	}

	addresses, err := a.connector.Connect(ctx)
	if err != nil {
		return nil, a.classify(err, "connect")
	}
	if len(addresses) == 0 {
		return nil, walleterr.Wrap(walleterr.ErrSigningFailed, "provider returned no accounts")
	}
	return addresses, nil
}

// ReconnectSession resumes a prior provider-side session without prompting.
func (a *Adapter) ReconnectSession(ctx context.Context) ([]string, error) {
	if !a.Available() {
		return nil, walleterr.ErrProviderUnavailable
	}

	addresses, err := a.connector.ReconnectSession(ctx)
	if err != nil {
		return nil, a.classify(err, "reconnect")
	}
	if len(addresses) == 0 {
		return nil, walleterr.ErrNoSession
	}
	return addresses, nil
}

// Disconnect tears down the provider-side session. Best effort: provider
// errors are logged and swallowed because disconnect must always succeed
// from the application's point of view, even when the provider-side
// session is already gone.
func (a *Adapter) Disconnect(ctx context.Context) {
	if !a.Available() {
		return
	}

	if err := a.connector.Disconnect(ctx); err != nil {
		a.log.Warn().Err(err).Msg("provider disconnect failed, continuing teardown")
	}
}

// SignTransaction submits transaction groups for interactive approval.
func (a *Adapter) SignTransaction(ctx context.Context, groups [][]SignerTransaction) ([][]byte, error) {
	if !a.Available() {
		return nil, walleterr.ErrProviderUnavailable
	}

	signed, err := a.connector.SignTransaction(ctx, groups)
	if err != nil {
		return nil, a.classify(err, "sign")
	}
	return signed, nil
}

// Balance fetches the native-token balance for an address.
func (a *Adapter) Balance(ctx context.Context, address string) (float64, error) {
	if !a.Available() {
		return 0, walleterr.ErrProviderUnavailable
	}

	balance, err := a.connector.Balance(ctx, address)
	if err != nil {
		return 0, walleterr.Wrap(err, "fetching balance")
	}
	return balance, nil
}

// OnDisconnect registers a handler for provider-initiated disconnects.
func (a *Adapter) OnDisconnect(handler func()) {
	if a == nil || a.connector == nil {
		return
	}
	a.connector.OnDisconnect(handler)
}

// classify maps connector sentinel errors onto the stable taxonomy. The
// mapping happens here, at the provider boundary, so no caller ever has
// to inspect provider message text.
func (a *Adapter) classify(err error, op string) error {
	switch {
	case walleterr.Is(err, ErrNoPriorSession):
		return walleterr.Wrap(walleterr.ErrNoSession, "%s", op)
	case walleterr.Is(err, ErrRequestPending):
		return walleterr.Wrap(walleterr.ErrPendingRequest, "%s", op)
	case walleterr.Is(err, ErrUserRejected):
		return walleterr.WithDetails(
			walleterr.Wrap(walleterr.ErrSigningFailed, "%s", op),
			map[string]string{"reason": "rejected by user"},
		)
	default:
		return walleterr.Wrap(err, "provider %s", op)
	}
}
