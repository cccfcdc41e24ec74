package x64

import (
	"testing"

	"github.com/user-none/go-armjit/backend"
	"github.com/user-none/go-armjit/ir"
	"github.com/user-none/go-armjit/location"
)

func TestEmitBlockLowersAddAndRegisterAccess(t *testing.T) {
	block := ir.NewBlock(location.NewA32(0, true, false, 0))
	e := ir.NewEmitter(block)
	r1 := e.GetRegister(ir.RefA32Reg(1))
	sum := e.Add(r1, ir.ImmU32(2))
	e.SetRegister(ir.RefA32Reg(0), sum)
	e.SetTerminal(ir.ReturnToDispatch{})

	emitter := New(0)
	ra := backend.NewRegAlloc(8, 8, 4, emitter)
	buf := &backend.ByteBuffer{}
	if err := emitter.EmitBlock(block, ra, buf); err != nil {
		t.Fatalf("EmitBlock: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("expected non-empty machine code")
	}
}

func TestEmitBlockReportsUnlowerableOp(t *testing.T) {
	block := ir.NewBlock(location.NewA32(0, true, false, 0))
	e := ir.NewEmitter(block)
	e.Mul(ir.ImmU32(2), ir.ImmU32(3))
	e.SetTerminal(ir.ReturnToDispatch{})

	emitter := New(0)
	ra := backend.NewRegAlloc(8, 8, 4, emitter)
	buf := &backend.ByteBuffer{}
	if err := emitter.EmitBlock(block, ra, buf); err == nil {
		t.Fatal("expected an error for an unlowered opcode")
	}
}
