package backend

// ConstantPool deduplicates 128-bit constants an emitted block needs
// to load via a RIP-relative (x64) or PC-relative literal (arm64)
// access, so two instructions folding to the same mask or splat value
// share one slot.
type ConstantPool struct {
	entries []constEntry
	index   map[[2]uint64]int
}

type constEntry struct {
	lo, hi uint64
	offset int // byte offset within the pool, 16-byte aligned
}

// NewConstantPool returns an empty pool.
func NewConstantPool() *ConstantPool {
	return &ConstantPool{index: map[[2]uint64]int{}}
}

// Add interns the 128-bit constant (lo, hi) and returns its byte
// offset from the start of the pool. Scalar constants pass hi=0.
func (p *ConstantPool) Add(lo, hi uint64) int {
	key := [2]uint64{lo, hi}
	if off, ok := p.index[key]; ok {
		return off
	}
	offset := len(p.entries) * 16
	p.entries = append(p.entries, constEntry{lo: lo, hi: hi, offset: offset})
	p.index[key] = offset
	return offset
}

// Len returns the number of distinct constants interned so far.
func (p *ConstantPool) Len() int { return len(p.entries) }

// Size returns the pool's total size in bytes (always a multiple of
// 16, since every entry is 16-byte aligned for SSE/NEON loads).
func (p *ConstantPool) Size() int { return len(p.entries) * 16 }

// Bytes renders the pool as a little-endian byte slice suitable for
// placing right after a block's code in the arena.
func (p *ConstantPool) Bytes() []byte {
	out := make([]byte, p.Size())
	for _, e := range p.entries {
		for i := 0; i < 8; i++ {
			out[e.offset+i] = byte(e.lo >> (8 * i))
			out[e.offset+8+i] = byte(e.hi >> (8 * i))
		}
	}
	return out
}
