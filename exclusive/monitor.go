// Package exclusive implements the ExclusiveMonitor: the per-processor
// reservation set backing ARM's load-linked/store-conditional
// (LDREX/STREX, LDAXR/STLXR) instruction pairs.
package exclusive

import "sync/atomic"

// Granule is the reservation-address normalization rule, which spec.md
// §4.7 notes differs by guest architecture: A32 reserves the exact
// address; A64 reserves a 16-byte aligned block.
type Granule func(addr uint64) uint64

// ExactAddress is A32's granule: no normalization.
func ExactAddress(addr uint64) uint64 { return addr }

// Aligned16 is A64's granule: round down to a 16-byte boundary.
func Aligned16(addr uint64) uint64 { return addr &^ 0xF }

// reservation is one processor's outstanding (address, value) pair
// from its most recent ReadAndMark.
type reservation struct {
	valid bool
	addr  uint64
	size  uint64
	value []byte
}

func (r reservation) overlaps(addr, size uint64) bool {
	if !r.valid {
		return false
	}
	return addr < r.addr+r.size && r.addr < addr+size
}

// Monitor is the shared reservation table for every processor
// participating in the guest's exclusive-access protocol. All
// operations run under a single spin flag (test-and-set acquire,
// clear release), per spec.md §6 ("the ExclusiveMonitor's reservation
// table is protected by a single spin flag... for all participating
// processors").
type Monitor struct {
	granule      Granule
	spin         uint32
	reservations []reservation
}

// NewMonitor builds a Monitor for numProcessors participants, using
// granule to normalize reservation addresses.
func NewMonitor(numProcessors int, granule Granule) *Monitor {
	return &Monitor{
		granule:      granule,
		reservations: make([]reservation, numProcessors),
	}
}

func (m *Monitor) lock() {
	for !atomic.CompareAndSwapUint32(&m.spin, 0, 1) {
		// busy-wait: critical sections are a handful of slice writes
	}
}

func (m *Monitor) unlock() { atomic.StoreUint32(&m.spin, 0) }

// ReadAndMark acquires the spin flag, records a reservation of size
// bytes at addr for pid by running op to obtain the value, snapshots
// op's result as the reservation's value blob, clears every other
// processor's reservation overlapping the new one, releases the flag,
// and returns the value op produced.
func (m *Monitor) ReadAndMark(pid int, addr uint64, size uint64, op func() []byte) []byte {
	m.lock()
	defer m.unlock()

	value := op()
	normAddr := m.granule(addr)
	for i := range m.reservations {
		if i != pid && m.reservations[i].overlaps(normAddr, size) {
			m.reservations[i] = reservation{}
		}
	}
	m.reservations[pid] = reservation{
		valid: true,
		addr:  normAddr,
		size:  size,
		value: append([]byte(nil), value...),
	}
	return value
}

// DoExclusiveOperation checks, under the spin flag, whether pid holds
// a live reservation covering [addr, addr+size); if not, returns
// false without calling op. On a match, it invokes op with the value
// bytes ReadAndMark saved (the guest's conditional store can compare
// against them); if op reports success, every processor's reservation
// whose range overlaps [addr, addr+size) is cleared -- including
// pid's own, so a second STREX without an intervening LDREX always
// fails, matching spec.md §8 invariant 7.
func (m *Monitor) DoExclusiveOperation(pid int, addr uint64, size uint64, op func(saved []byte) bool) bool {
	m.lock()
	defer m.unlock()

	r := m.reservations[pid]
	normAddr := m.granule(addr)
	if !r.valid || r.addr != normAddr {
		return false
	}

	ok := op(r.value)
	if !ok {
		return false
	}
	for i := range m.reservations {
		if m.reservations[i].overlaps(normAddr, size) {
			m.reservations[i] = reservation{}
		}
	}
	return true
}

// ClearProcessor drops pid's reservation without affecting others.
func (m *Monitor) ClearProcessor(pid int) {
	m.lock()
	defer m.unlock()
	m.reservations[pid] = reservation{}
}

// Clear drops every processor's reservation.
func (m *Monitor) Clear() {
	m.lock()
	defer m.unlock()
	for i := range m.reservations {
		m.reservations[i] = reservation{}
	}
}
