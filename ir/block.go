package ir

import "github.com/user-none/go-armjit/location"

// Terminal is the tagged decision tree describing where control goes
// once a Block finishes executing. Every Block has exactly one
// Terminal; If/CheckBit/CheckHalt nest but must bottom out in a
// non-conditional variant.
type Terminal interface {
	isTerminal()
}

// Interpret falls back to the interpreter for one instruction at Loc.
type Interpret struct{ Loc location.Descriptor }

// ReturnToDispatch returns to the outer dispatch loop.
type ReturnToDispatch struct{}

// LinkBlock jumps directly to the compiled block at Loc, compiling on
// demand if it isn't cached yet.
type LinkBlock struct{ Loc location.Descriptor }

// LinkBlockFast is LinkBlock but elides the halt check.
type LinkBlockFast struct{ Loc location.Descriptor }

// PopRSBHint pops the return-stack buffer; falls back on a miss.
type PopRSBHint struct{}

// FastDispatchHint consults the fast-dispatch hash table; falls back on a miss.
type FastDispatchHint struct{}

// If branches on NZCV at runtime.
type If struct {
	Cond       CondCode
	Then, Else Terminal
}

// CheckBit branches on a dedicated bit in JitState at runtime.
type CheckBit struct {
	Then, Else Terminal
}

// CheckHalt returns to the dispatcher if the halt flag is set, else
// takes Inner.
type CheckHalt struct{ Inner Terminal }

func (Interpret) isTerminal()        {}
func (ReturnToDispatch) isTerminal() {}
func (LinkBlock) isTerminal()        {}
func (LinkBlockFast) isTerminal()    {}
func (PopRSBHint) isTerminal()       {}
func (FastDispatchHint) isTerminal() {}
func (If) isTerminal()               {}
func (CheckBit) isTerminal()         {}
func (CheckHalt) isTerminal()        {}

// Block is an ordered sequence of Insts plus entry/end LocationDescriptors,
// a cycle count, an optional non-AL condition prologue/epilogue, and a
// Terminal.
type Block struct {
	Entry location.Descriptor
	End   location.Descriptor

	// CycleCount defaults to the number of guest instructions lifted;
	// the front-end may bump it for instructions with extra latency.
	CycleCount uint64

	// CondPrologue/HasCond: when the first guest instruction under a
	// non-AL condition begins a predication region, the whole Block is
	// wrapped: CondPrologue tests NZCV and skips to the Block's single
	// epilogue on failure.
	HasCond     bool
	CondPrologue CondCode

	Terminal Terminal

	head, tail *Inst
	len        int
}

// NewBlock creates an empty Block starting at entry.
func NewBlock(entry location.Descriptor) *Block {
	return &Block{Entry: entry, End: entry, CycleCount: 0}
}

// Len returns the number of live Insts in the Block.
func (b *Block) Len() int { return b.len }

// First/Last return the head/tail of the intrusive Inst list.
func (b *Block) First() *Inst { return b.head }
func (b *Block) Last() *Inst  { return b.tail }

// Append adds inst to the end of the Block's instruction list.
func (b *Block) Append(inst *Inst) {
	if inst.block != nil {
		panic("ir: Inst already belongs to a Block")
	}
	inst.block = b
	inst.prev = b.tail
	inst.next = nil
	if b.tail != nil {
		b.tail.next = inst
	} else {
		b.head = inst
	}
	b.tail = inst
	b.len++
}

// Remove unlinks inst from the Block. Used only by optimizer passes
// (DeadCodeElimination, IdentityRemoval); the front-end never removes
// an Inst it has emitted.
func (b *Block) Remove(inst *Inst) {
	if inst.block != b {
		panic("ir: Remove called on Inst from a different Block")
	}
	if inst.prev != nil {
		inst.prev.next = inst.next
	} else {
		b.head = inst.next
	}
	if inst.next != nil {
		inst.next.prev = inst.prev
	} else {
		b.tail = inst.prev
	}
	inst.prev, inst.next, inst.block = nil, nil, nil
	b.len--

	// Removing an Inst drops its references to whatever it used, which
	// keeps the "use-count equals live argument references" invariant
	// intact for the Insts it pointed at (spec §8 invariant 2).
	for i := 0; i < inst.argN; i++ {
		if a := inst.Args[i]; a.kind == KindInstRef && a.ref != nil {
			a.ref.useCount--
		}
	}
}

// InsertBefore inserts newInst immediately before mark in the list.
func (b *Block) InsertBefore(mark, newInst *Inst) {
	if mark.block != b {
		panic("ir: InsertBefore mark not in this Block")
	}
	newInst.block = b
	newInst.prev = mark.prev
	newInst.next = mark
	if mark.prev != nil {
		mark.prev.next = newInst
	} else {
		b.head = newInst
	}
	mark.prev = newInst
	b.len++
}

// Insts returns a snapshot slice of the Block's instructions in order.
// Optimizer passes that need to mutate the list while iterating should
// walk First()/Next() directly instead, since Insts allocates.
func (b *Block) Insts() []*Inst {
	out := make([]*Inst, 0, b.len)
	for i := b.head; i != nil; i = i.next {
		out = append(out, i)
	}
	return out
}
