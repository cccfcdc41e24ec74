package blockcache

import (
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/user-none/go-armjit/location"
)

// Entry is the triple the block cache stores per compiled block:
// where its host code lives, how large it is, and (optionally) what
// it should be reported as in the process perf map.
type Entry struct {
	Loc        location.Descriptor
	Code       []byte // host machine code, backed by an Arena chunk
	Size       int
	DebugLabel string
}

// CompileFunc compiles the block at loc, reserving its own space in
// arena and returning the finished Entry. Compile is expected to run
// the full translate/optimize/emit pipeline.
type CompileFunc func(loc location.Descriptor) (Entry, error)

// Cache maps LocationDescriptor to a compiled Entry, owns the backing
// Arena, and deduplicates concurrent compiles of the same descriptor
// so two dispatcher threads racing on a cold block only pay for one
// compile (spec §4.6: "insertion is single-threaded per compile").
type Cache struct {
	arena *Arena

	mu      sync.RWMutex
	entries map[location.Descriptor]*Entry

	group singleflight.Group

	perfMap *PerfMap
}

// NewCache builds an empty block cache backed by a fresh Arena.
func NewCache() *Cache {
	return &Cache{arena: NewArena(), entries: map[location.Descriptor]*Entry{}}
}

// Arena exposes the backing code arena so a Backend can Reserve
// executable space directly while compiling.
func (c *Cache) Arena() *Arena { return c.arena }

// SetPerfMap installs (or, passed nil, disables) perf-map recording
// for subsequently compiled blocks.
func (c *Cache) SetPerfMap(p *PerfMap) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.perfMap = p
}

// Get performs a read-only lookup; safe to call concurrently with
// GetOrCompile for other descriptors, and with Get for the same one.
func (c *Cache) Get(loc location.Descriptor) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[loc]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// GetOrCompile returns the cached Entry for loc, compiling it via fn
// if absent. Concurrent calls for the same loc share one compile.
func (c *Cache) GetOrCompile(loc location.Descriptor, fn CompileFunc) (Entry, error) {
	if e, ok := c.Get(loc); ok {
		return e, nil
	}

	key := mapKey(loc)
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// Re-check under the group: another goroutine may have
		// inserted while we were queued behind the singleflight call.
		if e, ok := c.Get(loc); ok {
			return e, nil
		}
		entry, err := fn(loc)
		if err != nil {
			return Entry{}, err
		}
		c.insert(loc, entry)
		return entry, nil
	})
	if err != nil {
		return Entry{}, err
	}
	return v.(Entry), nil
}

func (c *Cache) insert(loc location.Descriptor, e Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	stored := e
	c.entries[loc] = &stored
	if c.perfMap != nil {
		c.perfMap.Record(loc, e)
	}
}

// InvalidateBlock removes loc's entry. The arena space is not
// reclaimed immediately (spec §4.6: reclaimed lazily); a future arena
// compaction pass can sweep chunks whose every entry has been
// invalidated.
func (c *Cache) InvalidateBlock(loc location.Descriptor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, loc)
}

// InvalidateWhere drops every entry whose descriptor matches, e.g. a
// host address-range invalidation that must test each cached
// descriptor's guest PC against [start, start+size) without this
// package needing to know how a PC is packed into a Descriptor for a
// given arch.
func (c *Cache) InvalidateWhere(match func(loc location.Descriptor) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for loc := range c.entries {
		if match(loc) {
			delete(c.entries, loc)
		}
	}
}

// InvalidateAll drops every cached entry, e.g. after a guest
// self-modifying-code notification covering an entire region.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[location.Descriptor]*Entry{}
}

// Len reports how many blocks are currently cached.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func mapKey(loc location.Descriptor) string {
	// singleflight.Group keys on string; the descriptor's raw 64-bit
	// value round-trips losslessly through a fixed-width string.
	buf := [8]byte{}
	v := loc.Raw()
	for i := range buf {
		buf[i] = byte(v >> (8 * i))
	}
	return string(buf[:])
}
