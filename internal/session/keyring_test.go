package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

// Keyring tests run against go-keyring's in-memory mock; the OS keychain
// is never touched.
func TestKeyringStorage(t *testing.T) {
	keyring.MockInit()

	t.Run("get set delete with index", func(t *testing.T) {
		storage := NewKeyringStorage("walletlink-test-a")

		_, ok := storage.Get("wallet_address")
		assert.False(t, ok)

		require.NoError(t, storage.Set("wallet_address", "0xAAAA"))
		require.NoError(t, storage.Set("wallet_connected", "true"))

		v, ok := storage.Get("wallet_address")
		require.True(t, ok)
		assert.Equal(t, "0xAAAA", v)

		keys, err := storage.Keys()
		require.NoError(t, err)
		assert.Equal(t, []string{"wallet_address", "wallet_connected"}, keys)

		require.NoError(t, storage.Delete("wallet_address"))
		keys, err = storage.Keys()
		require.NoError(t, err)
		assert.Equal(t, []string{"wallet_connected"}, keys)

		// Deleting an absent key is not an error.
		require.NoError(t, storage.Delete("wallet_address"))
	})

	t.Run("set twice does not duplicate index entries", func(t *testing.T) {
		storage := NewKeyringStorage("walletlink-test-b")

		require.NoError(t, storage.Set("wallet_connected", "true"))
		require.NoError(t, storage.Set("wallet_connected", "false"))

		keys, err := storage.Keys()
		require.NoError(t, err)
		assert.Equal(t, []string{"wallet_connected"}, keys)
	})

	t.Run("purge clears keyring markers", func(t *testing.T) {
		storage := NewKeyringStorage("walletlink-test-c")

		require.NoError(t, storage.Set("wallet_connected", "true"))
		require.NoError(t, storage.Set("wallet_address", "0xAAAA"))

		removed := PurgeMatching(storage)
		assert.Equal(t, 2, removed)

		keys, err := storage.Keys()
		require.NoError(t, err)
		assert.Empty(t, keys)
	})

	t.Run("available with mock backend", func(t *testing.T) {
		storage := NewKeyringStorage("walletlink-test-d")
		assert.True(t, storage.Available())
	})
}
