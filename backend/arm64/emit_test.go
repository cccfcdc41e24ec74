package arm64

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

func TestEncodeLDRImmAlignsOffset(t *testing.T) {
	w := encodeLDRImm(0, 28, 12)
	if w>>22 != 0xB9400000>>22 {
		t.Fatalf("opcode bits corrupted: %#x", w)
	}
	if imm := (w >> 10) & 0xFFF; imm != 3 {
		t.Fatalf("imm12 = %d, want 3 (12 bytes / 4)", imm)
	}
}
