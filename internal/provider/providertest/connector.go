// Package providertest provides a configurable fake wallet connector for
// tests across the session, signing, and bridge packages.
package providertest

import (
	"context"
	"fmt"
	"sync"

	"github.com/minterra/walletlink/internal/provider"
)

// FakeConnector is an in-memory Connector with scriptable failures. The
// zero value is unusable; use New.
type FakeConnector struct {
	mu sync.Mutex

	available  bool
	hasSession bool
	addresses  []string
	balances   map[string]float64

	connectErr   error
	reconnectErr error
	disconnect   error
	signErr      error
	balanceErr   error

	// signFailAt fails signing at the given zero-based flat transaction
	// index; -1 disables it.
	signFailAt int

	// connectGate, when set, blocks Connect between connectStarted being
	// closed and the gate being closed, so tests can overlap calls.
	connectGate    chan struct{}
	connectStarted chan struct{}

	disconnectHandlers []func()

	connectCalls    int
	reconnectCalls  int
	disconnectCalls int
	signCalls       int
}

// New creates an available fake connector with one account.
func New(addresses ...string) *FakeConnector {
	if len(addresses) == 0 {
		addresses = []string{"0x1111111111111111111111111111111111111111"}
	}
	return &FakeConnector{
		available:  true,
		addresses:  addresses,
		balances:   make(map[string]float64),
		signFailAt: -1,
	}
}

// Available implements provider.Connector.
func (f *FakeConnector) Available() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.available
}

// Connect implements provider.Connector.
func (f *FakeConnector) Connect(_ context.Context) ([]string, error) {
	f.mu.Lock()
	f.connectCalls++
	gate := f.connectGate
	started := f.connectStarted
	err := f.connectErr
	f.mu.Unlock()

	if gate != nil {
		if started != nil {
			close(started)
		}
		<-gate
	}

	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.hasSession = true
	return append([]string(nil), f.addresses...), nil
}

// ReconnectSession implements provider.Connector.
func (f *FakeConnector) ReconnectSession(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.reconnectCalls++
	if f.reconnectErr != nil {
		return nil, f.reconnectErr
	}
	if !f.hasSession {
		return nil, provider.ErrNoPriorSession
	}
	return append([]string(nil), f.addresses...), nil
}

// Disconnect implements provider.Connector.
func (f *FakeConnector) Disconnect(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.disconnectCalls++
	f.hasSession = false
	return f.disconnect
}

// SignTransaction implements provider.Connector. Signed bytes are a
// deterministic function of the transaction hash so tests can assert
// order preservation.
func (f *FakeConnector) SignTransaction(_ context.Context, groups [][]provider.SignerTransaction) ([][]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.signCalls++
	if f.signErr != nil {
		return nil, f.signErr
	}

	var signed [][]byte
	index := 0
	for _, group := range groups {
		for _, txn := range group {
			if f.signFailAt >= 0 && index == f.signFailAt {
				return nil, provider.ErrUserRejected
			}
			signed = append(signed, []byte(fmt.Sprintf("signed:%s", txn.Txn.Hash().Hex())))
			index++
		}
	}
	return signed, nil
}

// Balance implements provider.Connector.
func (f *FakeConnector) Balance(_ context.Context, address string) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.balanceErr != nil {
		return 0, f.balanceErr
	}
	return f.balances[address], nil
}

// OnDisconnect implements provider.Connector.
func (f *FakeConnector) OnDisconnect(handler func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disconnectHandlers = append(f.disconnectHandlers, handler)
}

// FireDisconnect simulates the provider ending the session from its side.
// Handlers are one-shot: registered handlers run once and are cleared.
func (f *FakeConnector) FireDisconnect() {
	f.mu.Lock()
	handlers := f.disconnectHandlers
	f.disconnectHandlers = nil
	f.hasSession = false
	f.mu.Unlock()

	for _, handler := range handlers {
		handler()
	}
}

// SetAvailable toggles bridge presence.
func (f *FakeConnector) SetAvailable(available bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.available = available
}

// SetSession seeds or clears the provider-side session.
func (f *FakeConnector) SetSession(has bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hasSession = has
}

// SetBalance seeds the balance returned for an address.
func (f *FakeConnector) SetBalance(address string, balance float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balances[address] = balance
}

// FailConnect makes Connect return err.
func (f *FakeConnector) FailConnect(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connectErr = err
}

// FailReconnect makes ReconnectSession return err.
func (f *FakeConnector) FailReconnect(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reconnectErr = err
}

// FailDisconnect makes Disconnect return err (the adapter must swallow it).
func (f *FakeConnector) FailDisconnect(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disconnect = err
}

// FailSign makes SignTransaction return err for every call.
func (f *FakeConnector) FailSign(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signErr = err
}

// FailSignAt fails signing at the given flat transaction index.
func (f *FakeConnector) FailSignAt(index int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signFailAt = index
}

// FailBalance makes Balance return err.
func (f *FakeConnector) FailBalance(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balanceErr = err
}

// GateConnect makes the next Connect block. It returns a channel closed
// when Connect has started, and a release function that lets it finish.
func (f *FakeConnector) GateConnect() (started <-chan struct{}, release func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.connectStarted = make(chan struct{})
	f.connectGate = make(chan struct{})

	gate := f.connectGate
	return f.connectStarted, func() {
		f.mu.Lock()
		f.connectGate = nil
		f.connectStarted = nil
		f.mu.Unlock()
		close(gate)
	}
}

// ConnectCalls returns how many times Connect ran.
func (f *FakeConnector) ConnectCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connectCalls
}

// ReconnectCalls returns how many times ReconnectSession ran.
func (f *FakeConnector) ReconnectCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reconnectCalls
}

// DisconnectCalls returns how many times Disconnect ran.
func (f *FakeConnector) DisconnectCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.disconnectCalls
}

// SignCalls returns how many times SignTransaction ran.
func (f *FakeConnector) SignCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.signCalls
}

// HasSession reports the provider-side session flag.
func (f *FakeConnector) HasSession() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hasSession
}

var _ provider.Connector = (*FakeConnector)(nil)
