package dispatcher

import "github.com/user-none/go-armjit/location"

// fastDispatchEntry is one slot of the fast-dispatch hash table: the
// descriptor it was last filled with, and whether that slot is live.
type fastDispatchEntry struct {
	Loc   location.Descriptor
	Valid bool
}

// FastDispatchTable is the small, open-addressed, single-probe cache
// from LocationDescriptor to "this is a hot block" that spec.md §4.5
// describes as updated on every successful compile and consulted by
// FastDispatchHint terminals in O(1). Collisions simply evict -- a
// direct-mapped cache, not a chained one, matching the "single probe"
// requirement.
type FastDispatchTable struct {
	slots [fastDispatchSize]fastDispatchEntry
}

func (t *FastDispatchTable) index(loc location.Descriptor) uint64 {
	return loc.Raw() & (fastDispatchSize - 1)
}

// Insert records loc as freshly compiled, evicting whatever
// previously-cached descriptor hashed to the same slot.
func (t *FastDispatchTable) Insert(loc location.Descriptor) {
	t.slots[t.index(loc)] = fastDispatchEntry{Loc: loc, Valid: true}
}

// Lookup reports whether loc is currently the slot's resident
// descriptor -- a true result means the generated epilogue could have
// jumped directly to its compiled code without falling back to the
// dispatcher.
func (t *FastDispatchTable) Lookup(loc location.Descriptor) bool {
	e := t.slots[t.index(loc)]
	return e.Valid && e.Loc == loc
}
