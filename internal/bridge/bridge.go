// Package bridge mirrors the wallet session store into application-wide
// subscribers and cross-references it with the independently owned
// authentication state. The two state machines stay loosely synchronized:
// the bridge reads both and reports divergence, it never mutates either.
package bridge

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/minterra/walletlink/internal/session"
)

// AuthState is the read surface of the application's authentication
// store. Ownership of that state machine stays with its own store; the
// bridge only observes it.
type AuthState interface {
	// IsAuthenticated reports whether a user is signed in.
	IsAuthenticated() bool

	// User returns the signed-in user identifier, empty when signed out.
	User() string

	// Subscribe registers a callback for auth changes and returns an
	// unsubscribe function.
	Subscribe(func()) (unsubscribe func())
}

// Snapshot is the merged view handed to bridge subscribers.
type Snapshot struct {
	Wallet          session.State
	IsAuthenticated bool
	User            string
}

// Bridge fans the merged wallet+auth view out to its subscribers,
// re-emitting whenever either source changes.
type Bridge struct {
	mu        sync.Mutex
	listeners map[uint64]func(Snapshot)
	next      uint64

	store *session.Store
	auth  AuthState
	log   zerolog.Logger

	unsubWallet func()
	unsubAuth   func()
	divergent   bool
}

// New creates a bridge over the given store and auth state. Call Start to
// begin mirroring.
func New(store *session.Store, auth AuthState, log zerolog.Logger) *Bridge {
	return &Bridge{
		listeners: make(map[uint64]func(Snapshot)),
		store:     store,
		auth:      auth,
		log:       log.With().Str("component", "bridge").Logger(),
	}
}

// Start subscribes to both sources and emits an initial snapshot.
// Starting twice is a no-op.
func (b *Bridge) Start() {
	b.mu.Lock()
	if b.unsubWallet != nil {
		b.mu.Unlock()
		return
	}
	b.mu.Unlock()

	unsubWallet := b.store.Subscribe(func(state session.State) {
		b.emit(state)
	})
	unsubAuth := b.auth.Subscribe(func() {
		b.emit(b.store.GetState())
	})

	b.mu.Lock()
	b.unsubWallet = unsubWallet
	b.unsubAuth = unsubAuth
	b.mu.Unlock()

	b.emit(b.store.GetState())
}

// Stop unsubscribes from both sources. Subscribers stay registered and
// resume on the next Start.
func (b *Bridge) Stop() {
	b.mu.Lock()
	unsubWallet := b.unsubWallet
	unsubAuth := b.unsubAuth
	b.unsubWallet = nil
	b.unsubAuth = nil
	b.mu.Unlock()

	if unsubWallet != nil {
		unsubWallet()
	}
	if unsubAuth != nil {
		unsubAuth()
	}
}

// Snapshot returns the current merged view.
func (b *Bridge) Snapshot() Snapshot {
	return b.merge(b.store.GetState())
}

// Subscribe registers a callback invoked with the merged snapshot on
// every emission from either source.
func (b *Bridge) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	b.mu.Lock()
	id := b.next
	b.next++
	b.listeners[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.listeners, id)
		b.mu.Unlock()
	}
}

func (b *Bridge) merge(state session.State) Snapshot {
	return Snapshot{
		Wallet:          state,
		IsAuthenticated: b.auth.IsAuthenticated(),
		User:            b.auth.User(),
	}
}

func (b *Bridge) emit(state session.State) {
	snap := b.merge(state)
	b.observeDivergence(snap)

	b.mu.Lock()
	listeners := make([]func(Snapshot), 0, len(b.listeners))
	for _, fn := range b.listeners {
		listeners = append(listeners, fn)
	}
	b.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}

// observeDivergence logs once per transition into the
// connected-but-unauthenticated state. Forcing a wallet disconnect or a
// login from here would create a circular dependency between the two
// stores, so this stays an observation.
func (b *Bridge) observeDivergence(snap Snapshot) {
	divergent := snap.Wallet.IsConnected && !snap.IsAuthenticated

	b.mu.Lock()
	changed := divergent != b.divergent
	b.divergent = divergent
	b.mu.Unlock()

	if changed && divergent {
		address := ""
		if snap.Wallet.Account != nil {
			address = snap.Wallet.Account.Address
		}
		b.log.Info().Str("address", address).Msg("wallet connected without an authenticated user")
	}
}

// StaticAuth is a minimal AuthState for wiring the bridge where no real
// auth store exists (CLI usage, tests). It never changes after creation.
type StaticAuth struct {
	user string
}

// NewStaticAuth creates a StaticAuth; an empty user means signed out.
func NewStaticAuth(user string) *StaticAuth {
	return &StaticAuth{user: user}
}

// IsAuthenticated implements AuthState.
func (a *StaticAuth) IsAuthenticated() bool { return a.user != "" }

// User implements AuthState.
func (a *StaticAuth) User() string { return a.user }

// Subscribe implements AuthState. Static auth never emits.
func (a *StaticAuth) Subscribe(func()) (unsubscribe func()) {
	return func() {}
}
