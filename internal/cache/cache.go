// Package cache provides last-known balance caching so the UI can render
// a balance while the provider is slow or briefly unreachable.
package cache

import (
	"sync"
	"time"
)

// DefaultStaleness is the duration after which cached balances are stale.
const DefaultStaleness = 5 * time.Minute

// Entry is a single cached balance.
type Entry struct {
	Address   string    `json:"address"`
	Balance   float64   `json:"balance"`
	Currency  string    `json:"currency"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BalanceCache stores the most recent balance seen per address.
type BalanceCache struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// New creates an empty balance cache.
func New() *BalanceCache {
	return &BalanceCache{
		entries: make(map[string]Entry),
	}
}

// Get retrieves the cached balance for an address, along with its age.
func (c *BalanceCache) Get(address string) (Entry, bool, time.Duration) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[address]
	if !ok {
		return Entry{}, false, 0
	}
	return entry, true, time.Since(entry.UpdatedAt)
}

// Set stores a balance entry, stamping it with the current time.
func (c *BalanceCache) Set(address string, balance float64, currency string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[address] = Entry{
		Address:   address,
		Balance:   balance,
		Currency:  currency,
		UpdatedAt: time.Now(),
	}
}

// IsStale reports whether the cached balance for an address is older than
// DefaultStaleness (or missing entirely).
func (c *BalanceCache) IsStale(address string) bool {
	_, ok, age := c.Get(address)
	if !ok {
		return true
	}
	return age > DefaultStaleness
}

// Clear removes all cached balances.
func (c *BalanceCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]Entry)
}
