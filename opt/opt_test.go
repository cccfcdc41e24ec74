package opt

import (
	"testing"

	"github.com/user-none/go-armjit/ir"
	"github.com/user-none/go-armjit/location"
)

func newBlock() (*ir.Block, *ir.IREmitter) {
	b := ir.NewBlock(location.NewA32(0, true, false, 0))
	return b, ir.NewEmitter(b)
}

func TestConstantPropagationFoldsArithmetic(t *testing.T) {
	b, e := newBlock()
	sum := e.Add(ir.ImmU32(2), ir.ImmU32(3))
	e.SetRegister(ir.RefA32Reg(0), sum)
	ConstantPropagation(b)
	DeadCodeElimination(b)
	IdentityRemoval(b)

	last := b.Last()
	if last == nil || last.Op != ir.OpSetRegister {
		t.Fatalf("expected SetRegister to survive, got %v", last)
	}
	if got := last.Args[1]; !got.IsImmediate() || got.U64() != 5 {
		t.Fatalf("SetRegister value = %+v, want folded immediate 5", got)
	}
}

func TestConstantPropagationIdentityLaw(t *testing.T) {
	b, e := newBlock()
	r := e.GetRegister(ir.RefA32Reg(1))
	sum := e.Add(r, ir.ImmU32(0))
	e.SetRegister(ir.RefA32Reg(2), sum)
	ConstantPropagation(b)
	DeadCodeElimination(b)
	IdentityRemoval(b)

	last := b.Last()
	if last.Args[1].Inst() != r.Inst() {
		t.Fatalf("x+0 should fold straight to x")
	}
}

func TestDeadCodeEliminationKeepsSideEffects(t *testing.T) {
	b, e := newBlock()
	e.MemoryRead32(ir.ImmU32(0x1000), ir.ImmAccType(ir.AccNormal)) // unused result, but has a side effect
	DeadCodeElimination(b)
	if b.Len() != 1 {
		t.Fatalf("MemoryRead32 must survive DCE despite zero uses")
	}
}

func TestDeadCodeEliminationRemovesPureDead(t *testing.T) {
	b, e := newBlock()
	e.Add(ir.ImmU32(1), ir.ImmU32(2)) // never consumed
	DeadCodeElimination(b)
	if b.Len() != 0 {
		t.Fatalf("pure unused Add must be removed, len=%d", b.Len())
	}
}

func TestGetSetEliminationForwardsStore(t *testing.T) {
	b, e := newBlock()
	e.SetRegister(ir.RefA32Reg(3), ir.ImmU32(42))
	g := e.GetRegister(ir.RefA32Reg(3))
	e.SetRegister(ir.RefA32Reg(4), g)
	GetSetElimination(b)
	DeadCodeElimination(b)
	IdentityRemoval(b)

	last := b.Last()
	if !last.Args[1].IsImmediate() || last.Args[1].U64() != 42 {
		t.Fatalf("GetRegister after SetRegister should forward the stored immediate, got %+v", last.Args[1])
	}
}

func TestGetSetEliminationElidesRedundantStore(t *testing.T) {
	b, e := newBlock()
	e.SetRegister(ir.RefA32Reg(0), ir.ImmU32(1))
	e.SetRegister(ir.RefA32Reg(0), ir.ImmU32(2))
	GetSetElimination(b)
	count := 0
	for inst := b.First(); inst != nil; inst = inst.Next() {
		if inst.Op == ir.OpSetRegister {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected the first, dead store to be elided; got %d SetRegister insts", count)
	}
}

func TestPipelineIsIdempotent(t *testing.T) {
	b, e := newBlock()
	r := e.GetRegister(ir.RefA32Reg(5))
	sum := e.Add(r, ir.ImmU32(0))
	e.SetRegister(ir.RefA32Reg(6), sum)
	e.SetTerminal(ir.ReturnToDispatch{})

	Run(b, Options{Verify: true})
	firstLen := b.Len()
	Run(b, Options{Verify: true})
	if b.Len() != firstLen {
		t.Fatalf("pipeline not confluent: len went from %d to %d on second run", firstLen, b.Len())
	}
}
