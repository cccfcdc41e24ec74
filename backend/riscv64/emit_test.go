package riscv64

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
	if buf.Len()%4 != 0 || buf.Len() == 0 {
		t.Fatalf("expected a non-empty, word-aligned instruction stream, got %d bytes", buf.Len())
	}
}

func TestEncodeADDOpcode(t *testing.T) {
	w := encodeADD(1, 2, 3)
	if opcode := w & 0x7F; opcode != 0x33 {
		t.Fatalf("opcode = %#x, want 0x33 (R-type)", opcode)
	}
	if rd := (w >> 7) & 0x1F; rd != 1 {
		t.Fatalf("rd = %d, want 1", rd)
	}
}
