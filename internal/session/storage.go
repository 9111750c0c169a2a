package session

import (
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"github.com/minterra/walletlink/internal/fileutil"
)

// Storage marker keys written on connect.
const (
	KeyConnected = "wallet_connected"
	KeyAddress   = "wallet_address"
	KeyClientID  = "wallet_client_id"
)

// purgeVocabulary lists the token fragments matched (case-insensitively)
// against storage keys when a disconnect purges durable state. Scanning
// every key rather than deleting the two known markers is deliberate: the
// provider SDK writes its own keys into the same storage area and those
// must not survive a disconnect either.
var purgeVocabulary = []string{
	"wallet",
	"session",
	"provider",
	"connect",
	"account",
}

// Storage is a durable key/value area for session markers. Marker presence
// is a reconnect hint only, never authoritative: the source of truth after
// any reconnect is a fresh round-trip to the provider.
type Storage interface {
	// Get returns the value for key; ok is false when the key is absent.
	Get(key string) (value string, ok bool)

	// Set writes a key/value pair durably.
	Set(key, value string) error

	// Delete removes a key. Removing an absent key is not an error.
	Delete(key string) error

	// Keys lists every key currently present.
	Keys() ([]string, error)
}

// PurgeMatching removes every key in storage whose name contains any of
// the wallet vocabulary tokens. Returns the number of keys removed.
func PurgeMatching(storage Storage) int {
	keys, err := storage.Keys()
	if err != nil {
		return 0
	}

	removed := 0
	for _, key := range keys {
		lower := strings.ToLower(key)
		for _, token := range purgeVocabulary {
			if strings.Contains(lower, token) {
				if storage.Delete(key) == nil {
					removed++
				}
				break
			}
		}
	}
	return removed
}

// storageFilePermissions is the permission mode for the storage file.
const storageFilePermissions = 0o600

// FileStorage is a Storage backed by a single JSON file, written
// atomically so concurrent processes watching the file never observe a
// torn write.
type FileStorage struct {
	mu   sync.Mutex
	path string
}

// NewFileStorage creates a file-backed storage at path. The file is
// created lazily on first Set.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// Path returns the backing file path, for watchers.
func (f *FileStorage) Path() string {
	return f.path
}

// Get returns the value for key.
func (f *FileStorage) Get(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		return "", false
	}
	value, ok := entries[key]
	return value, ok
}

// Set writes a key/value pair.
func (f *FileStorage) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		return err
	}
	entries[key] = value
	return f.save(entries)
}

// Delete removes a key.
func (f *FileStorage) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := entries[key]; !ok {
		return nil
	}
	delete(entries, key)
	return f.save(entries)
}

// Keys lists every key present, sorted for deterministic iteration.
func (f *FileStorage) Keys() ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

func (f *FileStorage) load() (map[string]string, error) {
	data, err := fileutil.ReadIfExists(f.path)
	if err != nil {
		return nil, err
	}

	entries := make(map[string]string)
	if len(data) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		// Corrupted storage file reads as empty; the next save rewrites it.
		return make(map[string]string), nil
	}
	return entries, nil
}

func (f *FileStorage) save(entries map[string]string) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return fileutil.WriteAtomic(f.path, data, storageFilePermissions)
}

// MemoryStorage is an in-memory Storage for tests and ephemeral use.
type MemoryStorage struct {
	mu      sync.Mutex
	entries map[string]string
}

// NewMemoryStorage creates an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{entries: make(map[string]string)}
}

// Get returns the value for key.
func (m *MemoryStorage) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.entries[key]
	return value, ok
}

// Set writes a key/value pair.
func (m *MemoryStorage) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	return nil
}

// Delete removes a key.
func (m *MemoryStorage) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// Keys lists every key present.
func (m *MemoryStorage) Keys() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]string, 0, len(m.entries))
	for key := range m.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}
