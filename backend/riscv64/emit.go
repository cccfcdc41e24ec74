// Package riscv64 is the RV64GC code generator, hand-encoding 32-bit
// little-endian instruction words in the same spirit as the other two
// backend/<arch> packages.
package riscv64

import (
	"fmt"

	"github.com/user-none/go-armjit/backend"
	"github.com/user-none/go-armjit/ir"
)

// stateReg is the GPR permanently reserved for the JitState pointer
// (s7 / x23, callee-saved under the standard RISC-V calling convention).
const stateReg = 23

type Emitter struct {
	features backend.HostFeature
}

func New(features backend.HostFeature) *Emitter { return &Emitter{features: features} }

func (e *Emitter) Features() backend.HostFeature { return e.features }

func registerOffset(reg uint8) int32 { return 8 + int32(reg)*4 }

func (e *Emitter) EmitBlock(block *ir.Block, ra *backend.RegAlloc, buf backend.CodeBuffer) error {
	for inst := block.First(); inst != nil; inst = inst.Next() {
		if err := e.emitInst(inst, ra, buf); err != nil {
			return err
		}
	}
	return nil
}

func (e *Emitter) emitInst(inst *ir.Inst, ra *backend.RegAlloc, buf backend.CodeBuffer) error {
	switch inst.Op {
	case ir.OpIdentity, ir.OpGetCFlag, ir.OpGetNFlag, ir.OpGetZFlag, ir.OpGetVFlag:
		return nil

	case ir.OpGetRegister:
		loc := ra.Assign(inst, buf)
		reg := inst.Args[0].RegIndex()
		buf.Emit32(encodeLW(hostReg(loc), stateReg, registerOffset(reg)))
		return nil

	case ir.OpSetRegister:
		reg := inst.Args[0].RegIndex()
		src, tmp, err := argGPR(inst.Args[1], ra, buf)
		if err != nil {
			return err
		}
		buf.Emit32(encodeSW(stateReg, src, registerOffset(reg)))
		if tmp != nil {
			ra.Location(tmp, buf)
		}
		return nil

	case ir.OpAdd:
		return e.emitBinary(inst, ra, buf, encodeADD)
	case ir.OpSub:
		return e.emitBinary(inst, ra, buf, encodeSUB)
	case ir.OpAnd:
		return e.emitBinary(inst, ra, buf, encodeAND)
	case ir.OpOr:
		return e.emitBinary(inst, ra, buf, encodeOR)
	case ir.OpEor:
		return e.emitBinary(inst, ra, buf, encodeXOR)

	default:
		return fmt.Errorf("riscv64: %s not lowered, falls back to interpreter", inst.Op)
	}
}

type binOp3 func(rd, rs1, rs2 int) uint32

func (e *Emitter) emitBinary(inst *ir.Inst, ra *backend.RegAlloc, buf backend.CodeBuffer, op binOp3) error {
	var temps []*ir.Inst
	a, aTmp, err := argGPR(inst.Args[0], ra, buf)
	if err != nil {
		return err
	}
	if aTmp != nil {
		temps = append(temps, aTmp)
	}
	// a is still a live operand; don't let it be evicted while
	// materializing b or the destination register.
	b, bTmp, err := argGPR(inst.Args[1], ra, buf, a)
	if err != nil {
		return err
	}
	if bTmp != nil {
		temps = append(temps, bTmp)
	}
	dst := hostReg(ra.Assign(inst, buf, a, b))
	buf.Emit32(op(dst, a, b))
	for _, tmp := range temps {
		ra.Location(tmp, buf)
	}
	return nil
}

// argGPR materializes arg into a register: LUI+ADDI for an immediate,
// or the already-assigned register of a prior Inst. protect lists
// registers the caller already holds live this instruction, excluded
// from eviction while materializing arg.
func argGPR(arg ir.Value, ra *backend.RegAlloc, buf backend.CodeBuffer, protect ...int) (int, *ir.Inst, error) {
	if arg.IsImmediate() {
		tmp := ir.NewInst(ir.OpIdentity, arg)
		reg := hostReg(ra.Assign(tmp, buf, protect...))
		emitLoadImm32(buf, reg, uint32(arg.U64()))
		return reg, tmp, nil
	}
	ref := arg.Inst()
	if ref == nil {
		return 0, nil, fmt.Errorf("riscv64: argument has neither an immediate nor an Inst producer")
	}
	return hostReg(ra.Location(ref, buf, protect...)), nil, nil
}

// hostReg unwraps a HostLoc to a concrete register index. RegAlloc
// resolves a spilled value to a register before Location returns, so
// seeing LocSpill here means RegAlloc's own invariant broke.
func hostReg(loc backend.HostLoc) int {
	if loc.Kind == backend.LocSpill {
		panic("riscv64: RegAlloc returned an unresolved spill location")
	}
	return loc.Idx
}

// emitLoadImm32 emits LUI rd, imm[31:12]; ADDI rd, rd, imm[11:0],
// with a sign-adjustment on the upper immediate matching RISC-V's
// ADDI sign-extension (the standard li pseudo-instruction expansion
// for a 32-bit constant).
func emitLoadImm32(buf backend.CodeBuffer, rd int, imm uint32) {
	hi := (imm + 0x800) >> 12
	lo := int32(imm) - int32(hi<<12)
	buf.Emit32(encodeLUI(rd, hi))
	buf.Emit32(encodeADDI(rd, rd, lo))
}

// --- raw RV64 instruction encoding ---

func encodeLUI(rd int, imm20 uint32) uint32 {
	return imm20<<12 | uint32(rd&31)<<7 | 0x37
}

func encodeADDI(rd, rs1 int, imm12 int32) uint32 {
	return uint32(imm12&0xFFF)<<20 | uint32(rs1&31)<<15 | 0<<12 | uint32(rd&31)<<7 | 0x13
}

func rType(funct7 uint32, rs2, rs1, funct3, rd int, opcode uint32) uint32 {
	return funct7<<25 | uint32(rs2&31)<<20 | uint32(rs1&31)<<15 | uint32(funct3)<<12 | uint32(rd&31)<<7 | opcode
}

func encodeADD(rd, rs1, rs2 int) uint32 { return rType(0x00, rs2, rs1, 0x0, rd, 0x33) }
func encodeSUB(rd, rs1, rs2 int) uint32 { return rType(0x20, rs2, rs1, 0x0, rd, 0x33) }
func encodeAND(rd, rs1, rs2 int) uint32 { return rType(0x00, rs2, rs1, 0x7, rd, 0x33) }
func encodeOR(rd, rs1, rs2 int) uint32  { return rType(0x00, rs2, rs1, 0x6, rd, 0x33) }
func encodeXOR(rd, rs1, rs2 int) uint32 { return rType(0x00, rs2, rs1, 0x4, rd, 0x33) }

// encodeLW emits LW rd, offset(rs1); offset is assumed to fit in 12
// signed bits, true for every JitState register-file offset this
// module ever addresses.
func encodeLW(rd, rs1 int, offset int32) uint32 {
	return uint32(offset&0xFFF)<<20 | uint32(rs1&31)<<15 | 0x2<<12 | uint32(rd&31)<<7 | 0x03
}

func encodeSW(rs1, rs2 int, offset int32) uint32 {
	imm := uint32(offset & 0xFFF)
	imm11_5 := (imm >> 5) & 0x7F
	imm4_0 := imm & 0x1F
	return imm11_5<<25 | uint32(rs2&31)<<20 | uint32(rs1&31)<<15 | 0x2<<12 | imm4_0<<7 | 0x23
}

// spillOffset returns the JitState byte offset of spill slot slot
// (dispatcher.JitState.Spill, immediately after the header fields).
// encodeLW/encodeSW's 12-bit signed immediate covers this range
// without a new addressing form.
func spillOffset(slot int) int32 { return 368 + int32(slot)*4 }

// EmitSpillStore implements backend.SpillCodec.
func (e *Emitter) EmitSpillStore(buf backend.CodeBuffer, kind backend.HostLocKind, regIdx, slot int) {
	if kind != backend.LocGPR {
		panic("riscv64: vector spill unsupported -- this emitter never assigns vector locations")
	}
	buf.Emit32(encodeSW(stateReg, regIdx, spillOffset(slot)))
}

// EmitSpillLoad implements backend.SpillCodec.
func (e *Emitter) EmitSpillLoad(buf backend.CodeBuffer, slot int, kind backend.HostLocKind, regIdx int) {
	if kind != backend.LocGPR {
		panic("riscv64: vector spill unsupported -- this emitter never assigns vector locations")
	}
	buf.Emit32(encodeLW(regIdx, stateReg, spillOffset(slot)))
}
