package frontend

import (
	"testing"

	"github.com/user-none/go-armjit/external"
	"github.com/user-none/go-armjit/ir"
	"github.com/user-none/go-armjit/location"
)

// fakeMemory is a flat code-only bus for translation tests; the data
// read/write methods panic if exercised, since translation never calls
// them directly (they surface in generated code, not the frontend).
// InterpreterFallback records that it was called; the other callbacks
// are inert stubs.
type fakeMemory struct {
	code     map[uint64]uint16
	fallback bool
}

func newFakeMemory(halfwords map[uint64]uint16) *fakeMemory {
	return &fakeMemory{code: halfwords}
}

func (m *fakeMemory) MemoryReadCode(vaddr uint64) (uint32, bool) {
	hw, ok := m.code[vaddr]
	return uint32(hw), ok
}
func (m *fakeMemory) MemoryRead8(uint64) uint8                     { panic("unused") }
func (m *fakeMemory) MemoryRead16(uint64) uint16                   { panic("unused") }
func (m *fakeMemory) MemoryRead32(uint64) uint32                   { panic("unused") }
func (m *fakeMemory) MemoryRead64(uint64) uint64                   { panic("unused") }
func (m *fakeMemory) MemoryRead128(uint64) (uint64, uint64)        { panic("unused") }
func (m *fakeMemory) MemoryWrite8(uint64, uint8) bool               { panic("unused") }
func (m *fakeMemory) MemoryWrite16(uint64, uint16) bool             { panic("unused") }
func (m *fakeMemory) MemoryWrite32(uint64, uint32) bool             { panic("unused") }
func (m *fakeMemory) MemoryWrite64(uint64, uint64) bool             { panic("unused") }
func (m *fakeMemory) MemoryWrite128(uint64, uint64, uint64) bool    { panic("unused") }
func (m *fakeMemory) IsReadOnlyMemory(uint64) bool                  { return true }
func (m *fakeMemory) InterpreterFallback(pc uint64, n int)          { m.fallback = true }
func (m *fakeMemory) CallSVC(uint32)                                {}
func (m *fakeMemory) ExceptionRaised(uint64, external.ExceptionKind) {}
func (m *fakeMemory) InstructionCacheOperationRaised(external.CacheOp, uint64) {}
func (m *fakeMemory) DataCacheOperationRaised(external.CacheOp, uint64)        {}
func (m *fakeMemory) AddTicks(uint64)                               {}
func (m *fakeMemory) GetTicksRemaining() int64                      { return 1 }

func TestTranslateThumbLSLS(t *testing.T) {
	mem := newFakeMemory(map[uint64]uint16{0x0: 0x0088, 0x2: 0xE7FE})
	loc := location.NewA32(0, true, false, 0)
	block := Translate(location.A32, loc, mem, DefaultOptions())

	var sawShift, sawSetReg bool
	for inst := block.First(); inst != nil; inst = inst.Next() {
		if inst.Op == ir.OpLogicalShiftLeft {
			sawShift = true
			if inst.Args[1].U64() != 2 {
				t.Errorf("shift amount = %d, want 2", inst.Args[1].U64())
			}
		}
		if inst.Op == ir.OpSetRegister && inst.Args[0].RegIndex() == 0 {
			sawSetReg = true
		}
	}
	if !sawShift || !sawSetReg {
		t.Fatalf("expected a LogicalShiftLeft feeding SetRegister(r0), block=%v", block.Insts())
	}
	if mem.fallback {
		t.Fatalf("LSLS should not need interpreter fallback")
	}
}

func TestTranslateThumbLSLSWithCarryShiftAmount(t *testing.T) {
	mem := newFakeMemory(map[uint64]uint16{0x0: 0x07C8, 0x2: 0xE7FE})
	loc := location.NewA32(0, true, false, 0)
	block := Translate(location.A32, loc, mem, DefaultOptions())

	for inst := block.First(); inst != nil; inst = inst.Next() {
		if inst.Op == ir.OpLogicalShiftLeft {
			if got := inst.Args[1].U64(); got != 31 {
				t.Fatalf("shift amount = %d, want 31 (0x07C8 = lsls r0, r1, #31)", got)
			}
			return
		}
	}
	t.Fatal("expected a LogicalShiftLeft instruction")
}

func TestTranslateThumbREVSH(t *testing.T) {
	mem := newFakeMemory(map[uint64]uint16{0x0: 0xBADC, 0x2: 0xE7FE})
	loc := location.NewA32(0, true, false, 0)
	block := Translate(location.A32, loc, mem, DefaultOptions())

	var sawRevHalf, sawSignExtend bool
	for inst := block.First(); inst != nil; inst = inst.Next() {
		if inst.Op == ir.OpByteReverseHalf {
			sawRevHalf = true
		}
		if inst.Op == ir.OpSignExtendHalfToWord {
			sawSignExtend = true
		}
	}
	if !sawRevHalf || !sawSignExtend {
		t.Fatalf("REVSH should lower to ByteReverseHalf + SignExtendHalfToWord, block=%v", block.Insts())
	}
}

func TestTranslateThumbBLForward(t *testing.T) {
	mem := newFakeMemory(map[uint64]uint16{0x0: 0xF039, 0x2: 0xFA2A, 0x4: 0xE7FE})
	loc := location.NewA32(0, true, false, 0)
	block := Translate(location.A32, loc, mem, DefaultOptions())

	link, ok := block.Terminal.(ir.LinkBlock)
	if !ok {
		t.Fatalf("terminal = %T, want ir.LinkBlock", block.Terminal)
	}
	if got := link.Loc.PC32(); got != 0x39458 {
		t.Fatalf("BL target = %#x, want 0x39458", got)
	}

	var sawLR bool
	for inst := block.First(); inst != nil; inst = inst.Next() {
		if inst.Op == ir.OpSetRegister && inst.Args[0].RegIndex() == 14 {
			sawLR = true
			if got := inst.Args[1].U64(); got != 0x5 {
				t.Fatalf("lr = %#x, want 0x5", got)
			}
		}
	}
	if !sawLR {
		t.Fatalf("BL should set lr (r14)")
	}
}

func TestTranslateUnknownOpcodeFallsBackToInterpreter(t *testing.T) {
	mem := newFakeMemory(map[uint64]uint16{0x0: 0xDEAD})
	loc := location.NewA32(0, true, false, 0)
	block := Translate(location.A32, loc, mem, DefaultOptions())

	if !mem.fallback {
		t.Fatalf("unrecognized encoding should invoke InterpreterFallback")
	}
	if _, ok := block.Terminal.(ir.Interpret); !ok {
		t.Fatalf("terminal = %T, want ir.Interpret", block.Terminal)
	}
}
