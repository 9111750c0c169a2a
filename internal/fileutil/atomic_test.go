package fileutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAtomic(t *testing.T) {
	t.Parallel()

	t.Run("writes new file with permissions", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "storage.json")

		require.NoError(t, WriteAtomic(path, []byte(`{"a":1}`), 0o600))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, `{"a":1}`, string(data))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	})

	t.Run("replaces existing file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "storage.json")

		require.NoError(t, WriteAtomic(path, []byte("old"), 0o600))
		require.NoError(t, WriteAtomic(path, []byte("new"), 0o600))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "new", string(data))
	})

	t.Run("leaves no temp files behind", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		path := filepath.Join(dir, "storage.json")

		require.NoError(t, WriteAtomic(path, []byte("data"), 0o600))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("empty path", func(t *testing.T) {
		t.Parallel()
		require.ErrorIs(t, WriteAtomic("", []byte("data"), 0o600), ErrEmptyPath)
	})
}

func TestReadIfExists(t *testing.T) {
	t.Parallel()

	t.Run("missing file reads as empty", func(t *testing.T) {
		t.Parallel()
		data, err := ReadIfExists(filepath.Join(t.TempDir(), "absent.json"))
		require.NoError(t, err)
		assert.Nil(t, data)
	})

	t.Run("existing file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "present.json")
		require.NoError(t, os.WriteFile(path, []byte("hello"), 0o600))

		data, err := ReadIfExists(path)
		require.NoError(t, err)
		assert.Equal(t, "hello", string(data))
	})

	t.Run("empty path", func(t *testing.T) {
		t.Parallel()
		_, err := ReadIfExists("")
		require.ErrorIs(t, err, ErrEmptyPath)
	})
}
