package session_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minterra/walletlink/internal/provider"
	"github.com/minterra/walletlink/internal/provider/providertest"
	"github.com/minterra/walletlink/internal/session"
)

func newWatchedStore(t *testing.T) (*providertest.FakeConnector, *session.FileStorage, *session.Store) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "storage.json")
	connector := providertest.New(addr1)
	storage := session.NewFileStorage(path)
	store := session.New(session.Config{
		Adapter:    provider.New(connector, zerolog.Nop()),
		Storage:    storage,
		ProbeRate:  1000,
		ProbeBurst: 1000,
		Logger:     zerolog.Nop(),
	})
	t.Cleanup(store.Close)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, store.WatchStorage(ctx, path))

	return connector, storage, store
}

func TestWatchStorage_ExternalDisconnect(t *testing.T) {
	t.Parallel()
	_, storage, store := newWatchedStore(t)

	_, err := store.Connect(context.Background())
	require.NoError(t, err)
	require.True(t, store.GetState().IsConnected)

	// Another process using the same storage tears the session down.
	other := session.NewFileStorage(storage.Path())
	session.PurgeMatching(other)

	assert.Eventually(t, func() bool {
		return !store.GetState().IsConnected
	}, 3*time.Second, 20*time.Millisecond, "external marker purge should disconnect this process")
}

func TestWatchStorage_ExternalConnect(t *testing.T) {
	t.Parallel()
	connector, storage, store := newWatchedStore(t)

	require.False(t, store.GetState().IsConnected)

	// Another process connected: provider session exists and the marker
	// lands in shared storage.
	connector.SetSession(true)
	other := session.NewFileStorage(storage.Path())
	require.NoError(t, other.Set(session.KeyConnected, "true"))
	require.NoError(t, other.Set(session.KeyAddress, addr1))

	assert.Eventually(t, func() bool {
		return store.GetState().IsConnected
	}, 3*time.Second, 20*time.Millisecond, "marker appearance should trigger a successful probe")
}

func TestWatchStorage_IgnoresUnrelatedFiles(t *testing.T) {
	t.Parallel()
	connector, storage, store := newWatchedStore(t)

	// Writes to sibling files in the watched directory are ignored.
	sibling := session.NewFileStorage(filepath.Join(filepath.Dir(storage.Path()), "other.json"))
	require.NoError(t, sibling.Set("wallet_connected", "true"))

	time.Sleep(150 * time.Millisecond)
	assert.False(t, store.GetState().IsConnected)
	assert.Zero(t, connector.ReconnectCalls())
}
