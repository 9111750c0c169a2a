package session

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/zalando/go-keyring"
)

// ServiceName is the keyring service name for walletlink markers.
const ServiceName = "walletlink"

// indexKey holds the list of keys this storage has written, since the OS
// keyring has no enumeration API of its own.
const indexKey = "walletlink-index"

// KeyringStorage is a Storage backed by the OS keychain. It is the
// preferred secondary storage area for session markers: entries survive
// reboots and are scoped to the OS user.
type KeyringStorage struct {
	mu      sync.Mutex
	service string
}

// NewKeyringStorage creates a keyring-backed storage under the given
// service name. An empty service falls back to ServiceName.
func NewKeyringStorage(service string) *KeyringStorage {
	if service == "" {
		service = ServiceName
	}
	return &KeyringStorage{service: service}
}

// Available probes the OS keyring with a set/get/delete round-trip.
func (k *KeyringStorage) Available() bool {
	const (
		probeKey   = "walletlink-probe"
		probeValue = "probe"
	)

	if err := keyring.Set(k.service, probeKey, probeValue); err != nil {
		return false
	}
	value, err := keyring.Get(k.service, probeKey)
	if err != nil || value != probeValue {
		_ = keyring.Delete(k.service, probeKey)
		return false
	}
	return keyring.Delete(k.service, probeKey) == nil
}

// Get returns the value for key.
func (k *KeyringStorage) Get(key string) (string, bool) {
	value, err := keyring.Get(k.service, key)
	if err != nil {
		return "", false
	}
	return value, true
}

// Set writes a key/value pair and records the key in the index entry.
func (k *KeyringStorage) Set(key, value string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if err := keyring.Set(k.service, key, value); err != nil {
		return err
	}
	return k.addToIndex(key)
}

// Delete removes a key and its index entry.
func (k *KeyringStorage) Delete(key string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if err := keyring.Delete(k.service, key); err != nil && err != keyring.ErrNotFound {
		return err
	}
	return k.removeFromIndex(key)
}

// Keys lists every key this storage has written.
func (k *KeyringStorage) Keys() ([]string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.readIndex()
}

func (k *KeyringStorage) readIndex() ([]string, error) {
	raw, err := keyring.Get(k.service, indexKey)
	if err != nil {
		if err == keyring.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}

	var keys []string
	if unmarshalErr := json.Unmarshal([]byte(raw), &keys); unmarshalErr != nil {
		// Corrupted index reads as empty; the next write rebuilds it.
		return nil, nil
	}
	sort.Strings(keys)
	return keys, nil
}

func (k *KeyringStorage) writeIndex(keys []string) error {
	data, err := json.Marshal(keys)
	if err != nil {
		return err
	}
	return keyring.Set(k.service, indexKey, string(data))
}

func (k *KeyringStorage) addToIndex(key string) error {
	keys, err := k.readIndex()
	if err != nil {
		return err
	}
	for _, existing := range keys {
		if existing == key {
			return nil
		}
	}
	return k.writeIndex(append(keys, key))
}

func (k *KeyringStorage) removeFromIndex(key string) error {
	keys, err := k.readIndex()
	if err != nil {
		return err
	}

	filtered := keys[:0]
	for _, existing := range keys {
		if existing != key {
			filtered = append(filtered, existing)
		}
	}
	if len(filtered) == 0 {
		if delErr := keyring.Delete(k.service, indexKey); delErr != nil && delErr != keyring.ErrNotFound {
			return delErr
		}
		return nil
	}
	return k.writeIndex(filtered)
}
