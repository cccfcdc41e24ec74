package ir

import (
	"testing"

	"github.com/user-none/go-armjit/location"
)

func newTestBlock() (*Block, *IREmitter) {
	b := NewBlock(location.NewA32(0, true, false, 0))
	return b, NewEmitter(b)
}

func TestAddWithCarryProducesTriple(t *testing.T) {
	b, e := newTestBlock()
	a := e.GetRegister(RefA32Reg(0))
	sum := e.AddWithCarry(a, ImmU32(1), ImmU1(false))
	if sum.Result.Type() != Opaque {
		t.Fatalf("AddWithCarry result type = %s, want Opaque (carried from Opaque arg)", sum.Result.Type())
	}
	if sum.Carry.Type() != U1 || sum.Overflow.Type() != U1 {
		t.Fatalf("carry/overflow must be U1")
	}
	// Exactly 3 Insts: AddWithCarry, GetCarryFromOp, GetOverflowFromOp.
	if got := b.Len(); got != 1+1+1+1 { // +1 for the leading GetRegister
		t.Fatalf("block length = %d, want 4", got)
	}
}

func TestPseudoOpIsSingletonPerChannel(t *testing.T) {
	_, e := newTestBlock()
	a := e.GetRegister(RefA32Reg(1))
	sum := e.AddWithCarry(a, ImmU32(2), ImmU1(false))
	producer := sum.Result.Inst()
	again := e.NZCVFromOp(producer)
	sameAgain := e.NZCVFromOp(producer)
	if again.Inst() != sameAgain.Inst() {
		t.Fatalf("NZCVFromOp must return the same pseudo-op Inst on repeated calls for the same producer")
	}
	if producer.PseudoNZCV() != again.Inst() {
		t.Fatalf("producer.PseudoNZCV() not linked to the created pseudo-op")
	}
}

func TestUseCountAccumulates(t *testing.T) {
	_, e := newTestBlock()
	x := e.GetRegister(RefA32Reg(0))
	producer := x.Inst()
	if producer.UseCount() != 0 {
		t.Fatalf("fresh Inst should have UseCount 0, got %d", producer.UseCount())
	}
	_ = e.Add(x, x)
	if producer.UseCount() != 2 {
		t.Fatalf("UseCount = %d, want 2 after two references", producer.UseCount())
	}
}

func TestArgCountMismatchPanics(t *testing.T) {
	_, e := newTestBlock()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on argument-count mismatch")
		}
	}()
	e.emit(OpAdd, ImmU32(1)) // Add wants 2 args
}

func TestOpaqueMatchesAnyType(t *testing.T) {
	if !U32.Matches(Opaque) {
		t.Fatalf("U32 should match an Opaque-declared slot")
	}
	if !Opaque.Matches(U32) {
		t.Fatalf("a value carrying Opaque should match a U32-declared slot")
	}
	if U32.Matches(U16) {
		t.Fatalf("U32 must not match a U16-declared slot")
	}
}

func TestBlockAppendAndRemove(t *testing.T) {
	b, e := newTestBlock()
	a := e.Add(ImmU32(1), ImmU32(2))
	c := e.Add(ImmU32(3), ImmU32(4))
	if b.Len() != 2 {
		t.Fatalf("len = %d, want 2", b.Len())
	}
	b.Remove(a.Inst())
	if b.Len() != 1 || b.First() != c.Inst() {
		t.Fatalf("Remove did not unlink correctly")
	}
}
