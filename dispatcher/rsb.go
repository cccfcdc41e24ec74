package dispatcher

import "github.com/user-none/go-armjit/location"

// rsbEntry is one return-stack buffer slot: the location a LinkBlock
// expects to return to, and whether the slot currently holds a real
// push (a zero-value entry is indistinguishable from a real push at
// location 0, so Valid disambiguates an empty ring on startup).
type rsbEntry struct {
	Loc   location.Descriptor
	Valid bool
}

// RSB is the return-stack buffer: a fixed-size, power-of-two ring of
// speculative return-location hints. Entries hold only the location,
// not a pointer to compiled code. It is not a correctness mechanism -- every miss falls
// through to the dispatcher -- only a speed-up for the common
// call/return pattern.
type RSB struct {
	entries [rsbSize]rsbEntry
	top     int // index of the most recently pushed entry
}

// Push records loc as a return point, overwriting the oldest entry
// once the ring is full.
func (r *RSB) Push(loc location.Descriptor) {
	r.top = (r.top + 1) % rsbSize
	r.entries[r.top] = rsbEntry{Loc: loc, Valid: true}
}

// Pop checks whether the top of the ring matches loc (the current
// guest PC after a block returns). A match consumes the slot, so a
// later chain of returns can't spuriously match it again; a miss
// leaves the ring untouched, per spec.md §4.5 ("Popping a hint does
// not mutate the RSB; a successful match does").
func (r *RSB) Pop(loc location.Descriptor) bool {
	e := r.entries[r.top]
	if !e.Valid || e.Loc != loc {
		return false
	}
	r.entries[r.top] = rsbEntry{}
	r.top = (r.top - 1 + rsbSize) % rsbSize
	return true
}
