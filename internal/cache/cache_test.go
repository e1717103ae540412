package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryGetSet(t *testing.T) {
	c := NewMemory()

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("k", []byte("v"), time.Minute)
	got, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), got)
}

func TestMemoryExpiry(t *testing.T) {
	c := NewMemory()
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return clock }

	c.Set("k", []byte("v"), 5*time.Minute)

	clock = clock.Add(4 * time.Minute)
	_, ok := c.Get("k")
	assert.True(t, ok, "entry within TTL should be served")

	clock = clock.Add(2 * time.Minute)
	_, ok = c.Get("k")
	assert.False(t, ok, "entry past TTL should be dropped")
}

func TestMemoryLastWriterWins(t *testing.T) {
	c := NewMemory()
	c.Set("k", []byte("old"), time.Minute)
	c.Set("k", []byte("new"), time.Minute)

	got, _ := c.Get("k")
	assert.Equal(t, []byte("new"), got)
}

func TestMemoryPurge(t *testing.T) {
	c := NewMemory()
	c.Set("k", []byte("v"), time.Minute)
	c.Purge()

	_, ok := c.Get("k")
	assert.False(t, ok)
}
