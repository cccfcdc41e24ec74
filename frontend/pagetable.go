package frontend

// pageBits is the granularity of the A32 flat page table fast path
// (original_source/include/dynarmic/A32/config.h's page_table_address_space_bits
// defaults to a 4KiB page).
const pageBits = 12
const pageSize = 1 << pageBits

// PageTable is a flat array of host pointers to guest pages, indexed
// by vaddr>>pageBits. PageBackedFetcher reads code through it instead
// of through MemoryInterface.MemoryReadCode; a nil entry falls back to
// the callback path. Lookup always indexes the page by the low
// pageBits bits of vaddr; there is no absolute-offset indexing mode.
type PageTable struct {
	pages []*[pageSize]byte
}

// NewPageTable allocates a page table covering 2^addressBits bytes of
// guest address space.
func NewPageTable(addressBits int) *PageTable {
	return &PageTable{pages: make([]*[pageSize]byte, 1<<(addressBits-pageBits))}
}

// Map installs a host-backed page for the page containing vaddr.
func (pt *PageTable) Map(vaddr uint64, page *[pageSize]byte) {
	pt.pages[vaddr>>pageBits] = page
}

// Unmap clears the fast-path entry; subsequent accesses to vaddr fall
// back to MemoryInterface.
func (pt *PageTable) Unmap(vaddr uint64) {
	pt.pages[vaddr>>pageBits] = nil
}

// Lookup returns a pointer to the host byte and true if vaddr is backed
// by a mapped page, or (nil, false) to signal the callback fallback.
func (pt *PageTable) Lookup(vaddr uint64) (*byte, bool) {
	idx := vaddr >> pageBits
	if int(idx) >= len(pt.pages) {
		return nil, false
	}
	page := pt.pages[idx]
	if page == nil {
		return nil, false
	}
	return &page[vaddr&(pageSize-1)], true
}
