package bridge_test

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minterra/walletlink/internal/bridge"
	"github.com/minterra/walletlink/internal/provider"
	"github.com/minterra/walletlink/internal/provider/providertest"
	"github.com/minterra/walletlink/internal/session"
)

const walletAddr = "0x1111111111111111111111111111111111111111"

// fakeAuth is a mutable AuthState that emits on every change.
type fakeAuth struct {
	mu        sync.Mutex
	user      string
	listeners map[uint64]func()
	next      uint64
}

func newFakeAuth(user string) *fakeAuth {
	return &fakeAuth{user: user, listeners: make(map[uint64]func())}
}

func (a *fakeAuth) IsAuthenticated() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.user != ""
}

func (a *fakeAuth) User() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.user
}

func (a *fakeAuth) Subscribe(fn func()) (unsubscribe func()) {
	a.mu.Lock()
	id := a.next
	a.next++
	a.listeners[id] = fn
	a.mu.Unlock()
	return func() {
		a.mu.Lock()
		delete(a.listeners, id)
		a.mu.Unlock()
	}
}

func (a *fakeAuth) SetUser(user string) {
	a.mu.Lock()
	a.user = user
	listeners := make([]func(), 0, len(a.listeners))
	for _, fn := range a.listeners {
		listeners = append(listeners, fn)
	}
	a.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

type testEnv struct {
	connector *providertest.FakeConnector
	store     *session.Store
	auth      *fakeAuth
	bridge    *bridge.Bridge
}

func newTestEnv(t *testing.T, user string) *testEnv {
	t.Helper()

	connector := providertest.New(walletAddr)
	store := session.New(session.Config{
		Adapter:    provider.New(connector, zerolog.Nop()),
		Storage:    session.NewMemoryStorage(),
		ProbeRate:  1000,
		ProbeBurst: 1000,
		Logger:     zerolog.Nop(),
	})
	t.Cleanup(store.Close)

	auth := newFakeAuth(user)
	b := bridge.New(store, auth, zerolog.Nop())
	t.Cleanup(b.Stop)

	return &testEnv{connector: connector, store: store, auth: auth, bridge: b}
}

// recorder collects merged snapshots from a bridge subscription.
type recorder struct {
	mu    sync.Mutex
	snaps []bridge.Snapshot
}

func (r *recorder) record(snap bridge.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, snap)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snaps)
}

func (r *recorder) last() bridge.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snaps[len(r.snaps)-1]
}

func TestSnapshotMergesBothSources(t *testing.T) {
	env := newTestEnv(t, "user-1")
	_, err := env.store.Connect(context.Background())
	require.NoError(t, err)

	snap := env.bridge.Snapshot()
	assert.True(t, snap.Wallet.IsConnected)
	require.NotNil(t, snap.Wallet.Account)
	assert.Equal(t, walletAddr, snap.Wallet.Account.Address)
	assert.True(t, snap.IsAuthenticated)
	assert.Equal(t, "user-1", snap.User)
}

func TestStartEmitsInitialSnapshot(t *testing.T) {
	env := newTestEnv(t, "")
	rec := &recorder{}
	defer env.bridge.Subscribe(rec.record)()

	env.bridge.Start()

	require.Equal(t, 1, rec.count())
	assert.False(t, rec.last().Wallet.IsConnected)
	assert.False(t, rec.last().IsAuthenticated)
}

func TestWalletChangesFanOut(t *testing.T) {
	env := newTestEnv(t, "user-1")
	rec := &recorder{}
	defer env.bridge.Subscribe(rec.record)()
	env.bridge.Start()
	before := rec.count()

	_, err := env.store.Connect(context.Background())
	require.NoError(t, err)

	assert.Greater(t, rec.count(), before)
	assert.True(t, rec.last().Wallet.IsConnected)
	assert.Equal(t, "user-1", rec.last().User)

	env.store.Disconnect(context.Background())
	assert.False(t, rec.last().Wallet.IsConnected)
}

func TestAuthChangesFanOut(t *testing.T) {
	env := newTestEnv(t, "")
	rec := &recorder{}
	defer env.bridge.Subscribe(rec.record)()
	env.bridge.Start()

	env.auth.SetUser("user-2")

	require.GreaterOrEqual(t, rec.count(), 2)
	assert.True(t, rec.last().IsAuthenticated)
	assert.Equal(t, "user-2", rec.last().User)
}

func TestDivergenceObservedNotCorrected(t *testing.T) {
	env := newTestEnv(t, "")
	env.bridge.Start()

	// Wallet connected while signed out: the bridge must report it as-is
	// and leave both state machines alone.
	_, err := env.store.Connect(context.Background())
	require.NoError(t, err)

	snap := env.bridge.Snapshot()
	assert.True(t, snap.Wallet.IsConnected)
	assert.False(t, snap.IsAuthenticated)
	assert.True(t, env.store.GetState().IsConnected, "bridge must not force a disconnect")
	assert.Equal(t, 0, env.connector.DisconnectCalls())
}

func TestStopSilencesSubscribers(t *testing.T) {
	env := newTestEnv(t, "user-1")
	rec := &recorder{}
	defer env.bridge.Subscribe(rec.record)()
	env.bridge.Start()
	env.bridge.Stop()
	quiet := rec.count()

	_, err := env.store.Connect(context.Background())
	require.NoError(t, err)
	env.auth.SetUser("user-2")

	assert.Equal(t, quiet, rec.count())
}

func TestStartTwiceIsNoOp(t *testing.T) {
	env := newTestEnv(t, "user-1")
	rec := &recorder{}
	defer env.bridge.Subscribe(rec.record)()

	env.bridge.Start()
	after := rec.count()
	env.bridge.Start()

	assert.Equal(t, after, rec.count())

	_, err := env.store.Connect(context.Background())
	require.NoError(t, err)
	// Exactly one wallet subscription: one connecting emission plus one
	// connected emission, not two of each.
	assert.Equal(t, after+2, rec.count())
}

func TestStaticAuth(t *testing.T) {
	signedIn := bridge.NewStaticAuth("user-1")
	assert.True(t, signedIn.IsAuthenticated())
	assert.Equal(t, "user-1", signedIn.User())

	signedOut := bridge.NewStaticAuth("")
	assert.False(t, signedOut.IsAuthenticated())

	unsubscribe := signedOut.Subscribe(func() {})
	unsubscribe()
}
