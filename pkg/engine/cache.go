package engine

import (
	"sync"

	"github.com/cespare/xxhash"
	"github.com/pbnjay/memory"

	"github.com/yourusername/sagnubg/internal/positionid"
)

const (
	minCacheEntries = 1 << 12
	maxCacheEntries = 1 << 22

	// memoryShare is the fraction of physical memory a default cache uses.
	memoryShare = 64
	entryBytes  = 56
)

// cacheKey identifies an evaluation: the position and the context it was
// evaluated in.
type cacheKey struct {
	pos positionid.Key
	ctx uint8
}

type cacheEntry struct {
	key   cacheKey
	valid bool
	probs Probs
}

// cacheNode holds the two ways of a bucket, most recent first.
type cacheNode struct {
	primary, secondary cacheEntry
}

// EvalCache is a two-way associative cache of evaluations, safe for
// concurrent use.
type EvalCache struct {
	mu    sync.Mutex
	nodes []cacheNode
	mask  uint64

	lookups, hits uint64
}

// DefaultCacheEntries sizes a cache from the machine's physical memory.
func DefaultCacheEntries() int {
	n := int(memory.TotalMemory() / memoryShare / entryBytes)
	return min(max(n, minCacheEntries), maxCacheEntries)
}

// CacheEntriesForMB converts a size in megabytes to a number of entries.
func CacheEntriesForMB(mb int) int {
	return max(mb<<20/entryBytes, 2)
}

// NewEvalCache returns a cache of at least size entries, rounded up to a
// power of two.
func NewEvalCache(size int) *EvalCache {
	n := 2
	for n < size && n < maxCacheEntries {
		n <<= 1
	}
	return &EvalCache{
		nodes: make([]cacheNode, n/2),
		mask:  uint64(n/2 - 1),
	}
}

func (c *EvalCache) bucket(k cacheKey) *cacheNode {
	var buf [len(positionid.Key{}) + 1]byte
	copy(buf[:], k.pos[:])
	buf[len(buf)-1] = k.ctx
	return &c.nodes[xxhash.Sum64(buf[:])&c.mask]
}

// Lookup returns the cached probabilities for k.
func (c *EvalCache) Lookup(k cacheKey) (Probs, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lookups++
	node := c.bucket(k)
	for _, e := range [2]*cacheEntry{&node.primary, &node.secondary} {
		if e.valid && e.key == k {
			c.hits++
			return e.probs, true
		}
	}
	return Probs{}, false
}

// Add stores p for k at full precision, so a hit returns exactly what the
// evaluation did. It demotes the bucket's previous primary entry.
func (c *EvalCache) Add(k cacheKey, p Probs) {
	c.mu.Lock()
	defer c.mu.Unlock()

	node := c.bucket(k)
	node.secondary = node.primary
	node.primary = cacheEntry{key: k, valid: true, probs: p}
}

// Flush empties the cache and resets its statistics.
func (c *EvalCache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.nodes)
	c.lookups, c.hits = 0, 0
}

// Size returns the number of entries the cache can hold.
func (c *EvalCache) Size() int {
	return 2 * len(c.nodes)
}

// HitRate returns the percentage of lookups that hit.
func (c *EvalCache) HitRate() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lookups == 0 {
		return 0
	}
	return float64(c.hits) / float64(c.lookups) * 100
}

// evalContext packs what besides the position an evaluation depends on.
func evalContext(plies int, shortcuts bool) uint8 {
	ctx := uint8(plies & 0x7f)
	if shortcuts {
		ctx |= 0x80
	}
	return ctx
}
