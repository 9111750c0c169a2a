package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBalanceCache_GetSet(t *testing.T) {
	t.Parallel()
	c := New()

	_, ok, _ := c.Get("0xAAAA")
	assert.False(t, ok)

	c.Set("0xAAAA", 12.5, "ETH")
	entry, ok, age := c.Get("0xAAAA")
	require.True(t, ok)
	assert.Equal(t, 12.5, entry.Balance)
	assert.Equal(t, "ETH", entry.Currency)
	assert.Less(t, age, time.Second)
}

func TestBalanceCache_Staleness(t *testing.T) {
	t.Parallel()
	c := New()

	assert.True(t, c.IsStale("0xAAAA"), "missing entry is stale")

	c.Set("0xAAAA", 1, "ETH")
	assert.False(t, c.IsStale("0xAAAA"))

	c.entries["0xOLD"] = Entry{
		Address:   "0xOLD",
		Balance:   9,
		UpdatedAt: time.Now().Add(-DefaultStaleness - time.Minute),
	}
	assert.True(t, c.IsStale("0xOLD"), "entry past the staleness window")
}

func TestBalanceCache_Overwrite(t *testing.T) {
	t.Parallel()
	c := New()

	c.Set("0xAAAA", 1, "ETH")
	c.Set("0xAAAA", 2, "ETH")

	entry, ok, _ := c.Get("0xAAAA")
	require.True(t, ok)
	assert.Equal(t, 2.0, entry.Balance)
}

func TestBalanceCache_Clear(t *testing.T) {
	t.Parallel()
	c := New()

	c.Set("0xAAAA", 1, "ETH")
	c.Set("0xBBBB", 2, "ETH")

	c.Clear()
	_, ok, _ := c.Get("0xAAAA")
	assert.False(t, ok)
	_, ok, _ = c.Get("0xBBBB")
	assert.False(t, ok)
}
