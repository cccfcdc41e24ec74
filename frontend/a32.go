package frontend

import (
	"github.com/user-none/go-armjit/external"
	"github.com/user-none/go-armjit/ir"
	"github.com/user-none/go-armjit/location"
)

// a32Visitor lifts one A32/T32 basic block. Only the encodings needed
// to exercise the translator end to end are decoded here; anything
// else falls back to MemoryInterface.InterpreterFallback and ends the
// block (per spec: the exhaustive per-instruction decoder tables are
// the middle-end's concern, not this front-end's).
type a32Visitor struct {
	e     *ir.IREmitter
	mem   external.MemoryInterface
	opts  Options
	thumb bool
	addr  uint32
}

func newA32Visitor(e *ir.IREmitter, mem external.MemoryInterface, loc location.Descriptor, opts Options) *a32Visitor {
	return &a32Visitor{e: e, mem: mem, opts: opts, thumb: loc.Thumb(), addr: loc.PC32()}
}

func (v *a32Visitor) pc() uint64 { return uint64(v.addr) }

func (v *a32Visitor) step() (size int, more bool) {
	if v.thumb {
		return v.stepThumb()
	}
	return v.stepARM()
}

func (v *a32Visitor) fetchHalf(addr uint32) (uint16, bool) {
	w, ok := v.mem.MemoryReadCode(uint64(addr))
	if !ok {
		return 0, false
	}
	return uint16(w), true
}

func (v *a32Visitor) fetchWord(addr uint32) (uint32, bool) {
	w, ok := v.mem.MemoryReadCode(uint64(addr))
	return w, ok
}

// is32BitThumb reports whether hw1 begins a 32-bit Thumb instruction
// (bits [15:11] of 0b11101, 0b11110, or 0b11111).
func is32BitThumb(hw1 uint16) bool {
	top5 := hw1 >> 11
	return top5 == 0b11101 || top5 == 0b11110 || top5 == 0b11111
}

func (v *a32Visitor) stepThumb() (int, bool) {
	hw1, ok := v.fetchHalf(v.addr)
	if !ok {
		v.interpretFallback()
		return 0, false
	}

	if is32BitThumb(hw1) {
		hw2, ok := v.fetchHalf(v.addr + 2)
		if !ok {
			v.interpretFallback()
			return 0, false
		}
		return v.thumb32(hw1, hw2)
	}
	return v.thumb16(hw1)
}

// thumb16 decodes a single 16-bit Thumb instruction at v.addr.
func (v *a32Visitor) thumb16(hw uint16) (int, bool) {
	switch {
	case hw&0xF800 == 0x0000, hw&0xF800 == 0x0800, hw&0xF800 == 0x1000:
		// Format 1: LSL/LSR/ASR Rd, Rm, #imm5 (top 3 bits 000, bits
		// 12:11 select the shift op, 0b11 is a different format).
		v.thumbShiftImm(hw)
		v.addr += 2
		return 2, true

	case hw&0xFFC0 == 0xBAC0:
		// REVSH Rd, Rm: 1011 1010 11 Rm Rd.
		v.thumbRevsh(hw)
		v.addr += 2
		return 2, true

	case hw&0xF800 == 0xE000:
		// Unconditional branch: 11100 imm11.
		v.thumbBranch(hw)
		return 2, false

	default:
		v.interpretFallback()
		return 0, false
	}
}

// thumbShiftImm lifts LSLS/LSRS/ASRS Rd, Rm, #imm5.
func (v *a32Visitor) thumbShiftImm(hw uint16) {
	op := (hw >> 11) & 0x3
	imm5 := uint8((hw >> 6) & 0x1F)
	rm := uint8((hw >> 3) & 0x7)
	rd := uint8(hw & 0x7)

	e := v.e
	value := e.GetRegister(ir.RefA32Reg(rm))
	carryIn := e.GetCFlag()

	var res ir.ShiftResult
	switch op {
	case 0b00: // LSL
		res = e.LogicalShiftLeft(value, ir.ImmU8(imm5), carryIn)
	case 0b01: // LSR (imm5==0 encodes a shift of 32)
		amount := imm5
		if amount == 0 {
			amount = 32
		}
		res = e.LogicalShiftRight(value, ir.ImmU8(amount), carryIn)
	case 0b10: // ASR (imm5==0 encodes a shift of 32)
		amount := imm5
		if amount == 0 {
			amount = 32
		}
		res = e.ArithmeticShiftRight(value, ir.ImmU8(amount), carryIn)
	}

	e.SetRegister(ir.RefA32Reg(rd), res.Result)
	v.setFlagsFromShift(res)
}

func (v *a32Visitor) setFlagsFromShift(res ir.ShiftResult) {
	e := v.e
	producer := res.Result.Inst()
	e.SetNZCV(e.NZCVFromOp(producer))
}

// thumbRevsh lifts REVSH Rd, Rm: byte-swap the low halfword of Rm then
// sign-extend it to 32 bits.
func (v *a32Visitor) thumbRevsh(hw uint16) {
	rm := uint8((hw >> 3) & 0x7)
	rd := uint8(hw & 0x7)

	e := v.e
	src := e.GetRegister(ir.RefA32Reg(rm))
	swapped := e.ByteReverseHalf(e.LeastSignificantHalf(src))
	result := e.SignExtendHalfToWord(swapped)
	e.SetRegister(ir.RefA32Reg(rd), result)
}

// thumbBranch lifts the unconditional 16-bit branch B<c> label, with
// an 11-bit signed halfword displacement relative to PC+4.
func (v *a32Visitor) thumbBranch(hw uint16) {
	imm11 := uint32(hw & 0x7FF)
	offset := int32(imm11<<21) >> 20 // sign extend imm11<<1
	target := uint32(int32(v.addr+4) + offset)
	v.e.SetTerminal(ir.LinkBlock{Loc: location.NewA32(target, true, false, 0)})
}

// thumb32 decodes the 32-bit Thumb instructions this front end lifts
// (currently just BL); anything else is an interpreter fallback.
func (v *a32Visitor) thumb32(hw1, hw2 uint16) (int, bool) {
	if hw1>>11 == 0b11110 && hw2&0xD000 == 0xD000 {
		v.thumbBL(hw1, hw2)
		return 4, false
	}
	v.interpretFallback()
	return 0, false
}

// thumbBL lifts BL<c> label (T2 encoding): sets LR to the return
// address (Thumb bit set) and terminates the block with an
// unconditional link to the call target.
func (v *a32Visitor) thumbBL(hw1, hw2 uint16) {
	s := uint32((hw1 >> 10) & 1)
	imm10 := uint32(hw1 & 0x3FF)
	j1 := uint32((hw2 >> 13) & 1)
	j2 := uint32((hw2 >> 11) & 1)
	imm11 := uint32(hw2 & 0x7FF)

	i1 := 1 - (j1 ^ s)
	i2 := 1 - (j2 ^ s)

	imm32 := (s << 24) | (i1 << 23) | (i2 << 22) | (imm10 << 12) | (imm11 << 1)
	// Sign-extend from bit 24.
	offset := int32(imm32<<7) >> 7

	nextAddr := v.addr + 4
	target := uint32(int32(nextAddr) + offset)

	e := v.e
	e.SetRegister(ir.RefA32Reg(14), ir.ImmU32(nextAddr|1))
	e.SetTerminal(ir.LinkBlock{Loc: location.NewA32(target, true, false, 0)})
}

// stepARM decodes a single 32-bit ARM (A32) instruction. Full A32
// decode is out of scope here (see disasm for read-only
// disassembly); any instruction reaching this path is handed to the
// interpreter.
func (v *a32Visitor) stepARM() (int, bool) {
	if _, ok := v.fetchWord(v.addr); !ok {
		v.interpretFallback()
		return 0, false
	}
	v.interpretFallback()
	return 0, false
}

func (v *a32Visitor) interpretFallback() {
	v.mem.InterpreterFallback(uint64(v.addr), 1)
	v.e.SetTerminal(ir.Interpret{Loc: location.NewA32(v.addr, v.thumb, false, 0)})
}
