package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yourusername/sagnubg/internal/positionid"
)

func testKey(b Board, plies int) cacheKey {
	return cacheKey{pos: positionid.MakeKey(positionid.Board(b)), ctx: evalContext(plies, true)}
}

func TestEvalCacheSize(t *testing.T) {
	assert.Equal(t, 8, NewEvalCache(5).Size())
	assert.Equal(t, 2, NewEvalCache(0).Size())
	assert.Equal(t, maxCacheEntries, NewEvalCache(maxCacheEntries*4).Size())

	n := DefaultCacheEntries()
	assert.GreaterOrEqual(t, n, minCacheEntries)
	assert.LessOrEqual(t, n, maxCacheEntries)
	assert.Equal(t, (1<<20)/entryBytes, CacheEntriesForMB(1))
}

func TestEvalCacheLookup(t *testing.T) {
	c := NewEvalCache(1024)
	k := testKey(StartingPosition(), 2)

	_, ok := c.Lookup(k)
	assert.False(t, ok)

	p := Probs{0.5, 0.25, 0.125, 0.0625, 0}
	c.Add(k, p)
	got, ok := c.Lookup(k)
	assert.True(t, ok)
	assert.Equal(t, p, got)
	assert.InDelta(t, 50, c.HitRate(), 1e-9)

	// same position, other context
	_, ok = c.Lookup(testKey(StartingPosition(), 1))
	assert.False(t, ok)

	c.Flush()
	_, ok = c.Lookup(k)
	assert.False(t, ok)
}

func TestEvalCacheKeepsPrecision(t *testing.T) {
	c := NewEvalCache(16)
	k := testKey(raceBoard(), 0)

	// none of these is exact in float32
	p := Probs{0.1, 0.2, 0.3, 1.0 / 3, 0.15}
	c.Add(k, p)
	got, ok := c.Lookup(k)
	assert.True(t, ok)
	assert.Equal(t, p, got)
}

func TestEvalCacheTwoWays(t *testing.T) {
	c := NewEvalCache(2) // a single bucket
	a := testKey(StartingPosition(), 0)
	b := testKey(lastRollBoard(), 0)
	d := testKey(raceBoard(), 0)

	c.Add(a, Probs{0.25})
	c.Add(b, Probs{0.5})
	_, ok := c.Lookup(a)
	assert.True(t, ok)

	c.Add(d, Probs{0.75})
	_, ok = c.Lookup(a)
	assert.False(t, ok, "oldest entry is evicted")
	_, ok = c.Lookup(b)
	assert.True(t, ok)
}

func TestEvalContext(t *testing.T) {
	assert.NotEqual(t, evalContext(2, true), evalContext(2, false))
	assert.NotEqual(t, evalContext(1, true), evalContext(2, true))
}
