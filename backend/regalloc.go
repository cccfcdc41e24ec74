package backend

import (
	"fmt"

	"github.com/user-none/go-armjit/ir"
)

// HostLocKind distinguishes the three storage classes a Value can be
// assigned to during single-pass register allocation.
type HostLocKind uint8

const (
	LocGPR HostLocKind = iota
	LocVector
	LocSpill
)

// HostLoc names one concrete allocation target: a GPR index, a
// vector/FP register index, or a spill-slot index, tagged by Kind.
type HostLoc struct {
	Kind HostLocKind
	Idx  int
}

// SpillCodec lets the shared, arch-agnostic RegAlloc ask a per-arch
// Emitter to emit the store/load half of an eviction or a
// rematerialization: RegAlloc only decides *when* a value needs to
// move to or from a spill slot (spec.md §4.4 steps 1-4), never *how*
// to encode that move, since the instruction bytes are
// architecture-specific. Every backend.Emitter also satisfies this.
type SpillCodec interface {
	// EmitSpillStore saves host register regIdx of class kind into
	// spill slot slot, evicting a still-live value to free the
	// register for something else.
	EmitSpillStore(buf CodeBuffer, kind HostLocKind, regIdx, slot int)
	// EmitSpillLoad loads spill slot slot's value into host register
	// regIdx of class kind, rematerializing a value that was spilled.
	EmitSpillLoad(buf CodeBuffer, slot int, kind HostLocKind, regIdx int)
}

// valueState tracks one live IR value: the class it was allocated
// under (fixed at Assign time, even if the value is later evicted to
// a spill slot and back), its current location, and how many of its
// uses remain unconsumed.
type valueState struct {
	class       HostLocKind
	loc         HostLoc
	usesPending int
}

// RegAlloc performs the single-pass register allocation spec.md §4.4
// calls for: walk the block once, assigning each Inst's result to a
// free register, evicting an unprotected occupant to a spill slot when
// none is free, and reloading a value out of its spill slot when it is
// next read. RegAlloc does not know how to encode instructions; it
// only tracks locations and asks its SpillCodec to emit the store/load
// bytes for an eviction or a reload. Per-arch Emitters call Location to
// learn where an argument lives and Assign to record where they chose
// to put a result.
type RegAlloc struct {
	numGPR, numVector, numSpill int
	codec                       SpillCodec

	gprOwner    []*ir.Inst
	vectorOwner []*ir.Inst
	spillFree   []bool

	values map[*ir.Inst]*valueState
}

// NewRegAlloc builds an allocator over numGPR general-purpose
// registers and numVector vector/FP registers, backed by numSpill
// stack spill slots should the block exhaust both. codec is consulted
// whenever a value must move to or from a spill slot.
func NewRegAlloc(numGPR, numVector, numSpill int, codec SpillCodec) *RegAlloc {
	return &RegAlloc{
		numGPR: numGPR, numVector: numVector, numSpill: numSpill,
		codec:       codec,
		gprOwner:    make([]*ir.Inst, numGPR),
		vectorOwner: make([]*ir.Inst, numVector),
		spillFree:   initFree(numSpill),
		values:      map[*ir.Inst]*valueState{},
	}
}

func initFree(n int) []bool {
	free := make([]bool, n)
	for i := range free {
		free[i] = true
	}
	return free
}

// wantsVector reports whether inst's result should prefer a
// vector/FP register over a GPR (A64 vector register ops and A32
// extended/vector register gets).
func wantsVector(op ir.Opcode) bool {
	switch op {
	case ir.OpGetVector, ir.OpSetVector, ir.OpGetExtendedRegister64, ir.OpGetExtendedRegister32:
		return true
	default:
		return false
	}
}

func classOf(op ir.Opcode) HostLocKind {
	if wantsVector(op) {
		return LocVector
	}
	return LocGPR
}

func classLabel(k HostLocKind) string {
	if k == LocVector {
		return "vector"
	}
	return "GPR"
}

func (ra *RegAlloc) ownersFor(class HostLocKind) []*ir.Inst {
	if class == LocVector {
		return ra.vectorOwner
	}
	return ra.gprOwner
}

func contains(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

func (ra *RegAlloc) pickSpill() (int, bool) {
	for i, free := range ra.spillFree {
		if free {
			ra.spillFree[i] = false
			return i, true
		}
	}
	return 0, false
}

// evict spills the value currently occupying register idx of class to
// a free spill slot (emitting the store via ra.codec) so idx can be
// reused, and returns whether a spill slot was available to do so.
func (ra *RegAlloc) evict(class HostLocKind, idx int, buf CodeBuffer) bool {
	owners := ra.ownersFor(class)
	victim := owners[idx]
	if victim == nil {
		return true
	}
	slot, ok := ra.pickSpill()
	if !ok {
		return false
	}
	ra.codec.EmitSpillStore(buf, class, idx, slot)
	ra.values[victim].loc = HostLoc{Kind: LocSpill, Idx: slot}
	owners[idx] = nil
	return true
}

// allocate finds a free register of class, evicting an unprotected
// occupant (one whose index isn't in protect, e.g. an operand register
// the caller is already holding live for the instruction it's
// currently emitting) if none is free outright.
func (ra *RegAlloc) allocate(class HostLocKind, buf CodeBuffer, protect []int) (int, bool) {
	owners := ra.ownersFor(class)
	for i, owner := range owners {
		if owner == nil {
			return i, true
		}
	}
	for i, owner := range owners {
		if owner == nil || contains(protect, i) {
			continue
		}
		if ra.evict(class, i, buf) {
			return i, true
		}
	}
	return 0, false
}

func (ra *RegAlloc) setOwner(loc HostLoc, inst *ir.Inst) {
	ra.ownersFor(loc.Kind)[loc.Idx] = inst
}

// Assign allocates a fresh register for inst's result -- evicting an
// unprotected occupant to a spill slot if the class is full, per
// spec.md §4.4's "Allocation for writing a value" algorithm -- and
// records it against inst's UseCount so the location can be freed once
// every consumer has been emitted. protect lists same-class register
// indices the caller is already holding live this instruction (e.g.
// operand registers just materialized by argGPR) that must not be
// chosen as eviction victims.
func (ra *RegAlloc) Assign(inst *ir.Inst, buf CodeBuffer, protect ...int) HostLoc {
	class := classOf(inst.Op)
	idx, ok := ra.allocate(class, buf, protect)
	if !ok {
		panic(fmt.Sprintf("backend: out of %s registers and spill slots", classLabel(class)))
	}
	loc := HostLoc{Kind: class, Idx: idx}
	ra.setOwner(loc, inst)
	ra.values[inst] = &valueState{class: class, loc: loc, usesPending: inst.UseCount()}
	return loc
}

// Location returns the host location previously assigned to inst's
// result, consuming one use. If the value currently lives in a spill
// slot it is first reloaded into a free register of its original
// class (evicting another unprotected occupant if needed), per
// spec.md §4.4's "materialize V in R" step; once the last use is
// consumed the location is returned to the free pool for reuse by a
// later Inst. protect has the same meaning as in Assign.
func (ra *RegAlloc) Location(inst *ir.Inst, buf CodeBuffer, protect ...int) HostLoc {
	st, ok := ra.values[inst]
	if !ok {
		panic("backend: Location on an Inst with no assigned result")
	}
	if st.loc.Kind == LocSpill {
		idx, ok := ra.allocate(st.class, buf, protect)
		if !ok {
			panic(fmt.Sprintf("backend: out of %s registers to reload a spilled value", classLabel(st.class)))
		}
		ra.codec.EmitSpillLoad(buf, st.loc.Idx, st.class, idx)
		ra.spillFree[st.loc.Idx] = true
		st.loc = HostLoc{Kind: st.class, Idx: idx}
		ra.setOwner(st.loc, inst)
	}

	loc := st.loc
	st.usesPending--
	if st.usesPending <= 0 {
		ra.release(loc)
		delete(ra.values, inst)
	}
	return loc
}

func (ra *RegAlloc) release(loc HostLoc) {
	switch loc.Kind {
	case LocGPR:
		ra.gprOwner[loc.Idx] = nil
	case LocVector:
		ra.vectorOwner[loc.Idx] = nil
	case LocSpill:
		ra.spillFree[loc.Idx] = true
	}
}
