// Package blockcache owns the compiled-code arena and the
// LocationDescriptor-keyed map from guest location to compiled entry.
package blockcache

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// arenaChunkSize is the size of each backing mmap region; blocks are
// packed into chunks sequentially and a chunk is retired once it
// can't fit the next block or once it has been finalized.
const arenaChunkSize = 2 * 1024 * 1024

// chunk is one mmap'd region of executable memory.
type chunk struct {
	mem    []byte
	offset int
	// finalized is true once Mprotect has flipped the chunk from
	// RW to RX; new code can no longer be appended to it (spec §4.6
	// W^X: a page is writable XOR executable, never both).
	finalized bool
}

// Arena allocates executable memory for compiled blocks, maintaining
// W^X at all times: a chunk is mapped PROT_READ|PROT_WRITE while code
// is being appended to it, then Mprotect'd to PROT_READ|PROT_EXEC
// before any of its code is allowed to run.
type Arena struct {
	mu     sync.Mutex
	chunks []*chunk
}

// NewArena returns an empty code arena.
func NewArena() *Arena { return &Arena{} }

// Reserve appends size bytes of writable space in the current chunk
// (mapping a fresh one if needed) and returns it along with its
// finalize function. The caller writes machine code into the slice,
// then must call finalize before any dispatcher is allowed to jump
// into it.
func (a *Arena) Reserve(size int) (code []byte, finalize func() error, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	c, err := a.currentChunk(size)
	if err != nil {
		return nil, nil, err
	}
	start := c.offset
	c.offset += size
	code = c.mem[start : start+size]

	finalize = func() error {
		return a.finalizeChunk(c)
	}
	return code, finalize, nil
}

func (a *Arena) currentChunk(size int) (*chunk, error) {
	if size > arenaChunkSize {
		return nil, fmt.Errorf("blockcache: block of %d bytes exceeds arena chunk size %d", size, arenaChunkSize)
	}
	if n := len(a.chunks); n > 0 {
		c := a.chunks[n-1]
		if !c.finalized && c.offset+size <= len(c.mem) {
			return c, nil
		}
		if !c.finalized {
			// Current chunk can't fit this block; finalize it (it
			// may still have room other blocks already wrote into)
			// and start a fresh one.
			if err := a.finalizeChunk(c); err != nil {
				return nil, err
			}
		}
	}
	mem, err := unix.Mmap(-1, 0, arenaChunkSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("blockcache: mmap arena chunk: %w", err)
	}
	c := &chunk{mem: mem}
	a.chunks = append(a.chunks, c)
	return c, nil
}

func (a *Arena) finalizeChunk(c *chunk) error {
	if c.finalized {
		return nil
	}
	if err := unix.Mprotect(c.mem, unix.PROT_READ|unix.PROT_EXEC); err != nil {
		return fmt.Errorf("blockcache: mprotect arena chunk: %w", err)
	}
	c.finalized = true
	return nil
}

// Close unmaps every chunk. Only safe once no compiled block from
// this arena can still be executing.
func (a *Arena) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	var firstErr error
	for _, c := range a.chunks {
		if err := unix.Munmap(c.mem); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.chunks = nil
	return firstErr
}
