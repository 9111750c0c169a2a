package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStorage(t *testing.T) {
	t.Parallel()

	t.Run("get set delete", func(t *testing.T) {
		t.Parallel()
		storage := NewFileStorage(filepath.Join(t.TempDir(), "storage.json"))

		_, ok := storage.Get("missing")
		assert.False(t, ok)

		require.NoError(t, storage.Set("wallet_address", "0xAAAA"))
		v, ok := storage.Get("wallet_address")
		require.True(t, ok)
		assert.Equal(t, "0xAAAA", v)

		require.NoError(t, storage.Delete("wallet_address"))
		_, ok = storage.Get("wallet_address")
		assert.False(t, ok)

		// Deleting an absent key is not an error.
		require.NoError(t, storage.Delete("wallet_address"))
	})

	t.Run("persists across instances", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "storage.json")

		require.NoError(t, NewFileStorage(path).Set("wallet_connected", "true"))

		v, ok := NewFileStorage(path).Get("wallet_connected")
		require.True(t, ok)
		assert.Equal(t, "true", v)
	})

	t.Run("keys are sorted", func(t *testing.T) {
		t.Parallel()
		storage := NewFileStorage(filepath.Join(t.TempDir(), "storage.json"))
		require.NoError(t, storage.Set("b", "2"))
		require.NoError(t, storage.Set("a", "1"))

		keys, err := storage.Keys()
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, keys)
	})

	t.Run("corrupted file reads as empty", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "storage.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

		storage := NewFileStorage(path)
		keys, err := storage.Keys()
		require.NoError(t, err)
		assert.Empty(t, keys)

		// The next write rewrites the file cleanly.
		require.NoError(t, storage.Set("wallet_connected", "true"))
		v, ok := storage.Get("wallet_connected")
		require.True(t, ok)
		assert.Equal(t, "true", v)
	})
}

func TestMemoryStorage(t *testing.T) {
	t.Parallel()
	storage := NewMemoryStorage()

	require.NoError(t, storage.Set("k", "v"))
	v, ok := storage.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", v)

	keys, err := storage.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"k"}, keys)

	require.NoError(t, storage.Delete("k"))
	_, ok = storage.Get("k")
	assert.False(t, ok)
}

func TestPurgeMatching(t *testing.T) {
	t.Parallel()

	storage := NewMemoryStorage()
	seed := map[string]string{
		KeyConnected:               "true",
		KeyAddress:                 "0xAAAA",
		KeyClientID:                "client-1",
		"walletconnect_bridge":     "wss://example", // provider SDK drift
		"PeraWallet.sessionValue":  "x",
		"Provider.handshakeTopics": "y",
		"myAccountPrefs":           "z",
		"theme":                    "dark",
		"locale":                   "en",
	}
	for k, v := range seed {
		require.NoError(t, storage.Set(k, v))
	}

	removed := PurgeMatching(storage)
	assert.Equal(t, 7, removed)

	keys, err := storage.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"locale", "theme"}, keys)
}

func TestPurgeMatchingEmptyStorage(t *testing.T) {
	t.Parallel()
	assert.Zero(t, PurgeMatching(NewMemoryStorage()))
}
