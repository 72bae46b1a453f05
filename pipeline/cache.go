package pipeline

import (
	"container/list"
	"encoding/binary"
	"sync"
	"sync/atomic"

	"github.com/zeebo/xxh3"

	"comboforge/ingest"
)

// DefaultCacheCapacity bounds the number of memoized runs.
const DefaultCacheCapacity = 8

// Key identifies a run by everything that can change its result: every
// parameter and the exact bytes and names of every source.
type Key [16]byte

// Purpose: Hash the full run input into a cache key.
// Key aspects: Fixed-layout little-endian framing (length-prefixed strings and
// buffers) so distinct inputs cannot collide by concatenation.
// Upstream: Runner.Run.
// Downstream: xxh3.Hasher.
func KeyFor(in Input, p Params) Key {
	h := xxh3.New()
	var buf [8]byte
	writeInt := func(v int) {
		binary.LittleEndian.PutUint64(buf[:], uint64(int64(v)))
		_, _ = h.Write(buf[:])
	}
	writeBytes := func(b []byte) {
		writeInt(len(b))
		_, _ = h.Write(b)
	}
	writeSource := func(src ingest.Source) {
		writeBytes([]byte(src.Name))
		writeBytes(src.Data)
	}

	writeInt(p.MaxNumber)
	writeInt(p.MinScore)
	writeInt(p.Selection.Target)
	writeInt(p.Selection.SegmentACap)
	writeInt(p.Selection.Density.Lo)
	writeInt(p.Selection.Density.Hi)
	writeInt(len(in.Variants))
	for _, src := range in.Variants {
		writeSource(src)
	}
	if in.Rounds == nil {
		writeInt(0)
	} else {
		writeInt(1)
		writeSource(*in.Rounds)
	}
	return Key(h.Sum128().Bytes())
}

// Cache memoizes completed runs with a bounded LRU. Stored results are shared
// between callers and must be treated as read-only.
type Cache struct {
	mu      sync.Mutex
	max     int
	order   *list.List
	entries map[Key]*list.Element

	lookups atomic.Uint64
	hits    atomic.Uint64
}

type cacheEntry struct {
	key    Key
	result *Result
}

// CacheMetrics reports cache effectiveness.
type CacheMetrics struct {
	Lookups uint64
	Hits    uint64
	Entries int
}

// NewCache creates a cache holding at most capacity results.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	return &Cache{
		max:     capacity,
		order:   list.New(),
		entries: make(map[Key]*list.Element, capacity),
	}
}

// Get returns the memoized result for key and marks it most recently used.
func (c *Cache) Get(key Key) (*Result, bool) {
	if c == nil {
		return nil, false
	}
	c.lookups.Add(1)
	c.mu.Lock()
	defer c.mu.Unlock()
	elem, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.hits.Add(1)
	c.order.MoveToFront(elem)
	return elem.Value.(*cacheEntry).result, true
}

// Put stores a completed result, evicting the least recently used entry when
// full. An existing entry for key is left untouched.
func (c *Cache) Put(key Key, result *Result) {
	if c == nil || result == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.entries[key]; ok {
		c.order.MoveToFront(elem)
		return
	}
	c.entries[key] = c.order.PushFront(&cacheEntry{key: key, result: result})
	for c.order.Len() > c.max {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
}

// Metrics returns a snapshot of the counters.
func (c *Cache) Metrics() CacheMetrics {
	if c == nil {
		return CacheMetrics{}
	}
	c.mu.Lock()
	entries := c.order.Len()
	c.mu.Unlock()
	return CacheMetrics{Lookups: c.lookups.Load(), Hits: c.hits.Load(), Entries: entries}
}
