// Package arm64 is the AArch64 code generator: machine code is
// hand-encoded 32-bit little-endian words, the same approach
// zhubert-rush's arm64 codegen in the retrieval corpus takes, rather
// than routing through an assembler package.
package arm64

import (
	"fmt"

	"github.com/user-none/go-armjit/backend"
	"github.com/user-none/go-armjit/ir"
)

// stateReg is the GPR permanently reserved for the JitState pointer
// (X28, one of AAPCS64's callee-saved registers).
const stateReg = 28

// Emitter lowers an ir.Block to AArch64 machine code, covering the
// same opcode subset as backend/x64 for the same reason: the
// remainder falls back to the interpreter rather than being hand
// decoded here.
type Emitter struct {
	features backend.HostFeature
}

func New(features backend.HostFeature) *Emitter { return &Emitter{features: features} }

func (e *Emitter) Features() backend.HostFeature { return e.features }

func registerOffset(reg uint8) uint32 { return 8 + uint32(reg)*4 }

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
		buf.Emit32(encodeLDRImm(hostReg(loc), stateReg, registerOffset(reg)))
		return nil

	case ir.OpSetRegister:
		reg := inst.Args[0].RegIndex()
		src, tmp, err := argGPR(inst.Args[1], ra, buf)
		if err != nil {
			return err
		}
		buf.Emit32(encodeSTRImm(src, stateReg, registerOffset(reg)))
		if tmp != nil {
			ra.Location(tmp, buf)
		}
		return nil

	case ir.OpAdd:
		return e.emitBinary(inst, ra, buf, func(dst, a, b int) uint32 { return encodeADDReg(dst, a, b) })
	case ir.OpSub:
		return e.emitBinary(inst, ra, buf, func(dst, a, b int) uint32 { return encodeSUBReg(dst, a, b) })
	case ir.OpAnd:
		return e.emitBinary(inst, ra, buf, func(dst, a, b int) uint32 { return encodeANDReg(dst, a, b) })
	case ir.OpOr:
		return e.emitBinary(inst, ra, buf, func(dst, a, b int) uint32 { return encodeORRReg(dst, a, b) })
	case ir.OpEor:
		return e.emitBinary(inst, ra, buf, func(dst, a, b int) uint32 { return encodeEORReg(dst, a, b) })

	default:
		return fmt.Errorf("arm64: %s not lowered, falls back to interpreter", inst.Op)
	}
}

type binOp3 func(dst, a, b int) uint32

func (e *Emitter) emitBinary(inst *ir.Inst, ra *backend.RegAlloc, buf backend.CodeBuffer, op binOp3) error {
	var temps []*ir.Inst
	a, aTmp, err := argGPR(inst.Args[0], ra, buf)
	if err != nil {
		return err
	}
	if aTmp != nil {
		temps = append(temps, aTmp)
	}
	// a is still live as an operand; keep it out of eviction candidacy
	// while materializing b and the destination register.
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

// argGPR materializes arg into a register, emitting a MOVZ/MOVK pair
// for an immediate. The returned Inst, when non-nil, is the synthetic
// producer the caller must release via ra.Location once done with
// its register. protect lists registers the caller already holds live
// for this instruction, excluded from eviction while materializing arg.
func argGPR(arg ir.Value, ra *backend.RegAlloc, buf backend.CodeBuffer, protect ...int) (int, *ir.Inst, error) {
	if arg.IsImmediate() {
		tmp := ir.NewInst(ir.OpIdentity, arg)
		reg := hostReg(ra.Assign(tmp, buf, protect...))
		emitMovImm32(buf, reg, uint32(arg.U64()))
		return reg, tmp, nil
	}
	ref := arg.Inst()
	if ref == nil {
		return 0, nil, fmt.Errorf("arm64: argument has neither an immediate nor an Inst producer")
	}
	return hostReg(ra.Location(ref, buf, protect...)), nil, nil
}

// hostReg unwraps a HostLoc to a concrete register index. RegAlloc
// resolves a spilled value to a register before Location returns, so
// seeing LocSpill here means RegAlloc's own invariant broke.
func hostReg(loc backend.HostLoc) int {
	if loc.Kind == backend.LocSpill {
		panic("arm64: RegAlloc returned an unresolved spill location")
	}
	return loc.Idx
}

// emitMovImm32 emits MOVZ Wd, #imm[15:0] followed by MOVK Wd,
// #imm[31:16], LSL #16 when the high half is non-zero.
func emitMovImm32(buf backend.CodeBuffer, reg int, imm uint32) {
	buf.Emit32(encodeMOVZ(reg, uint16(imm)))
	if hi := uint16(imm >> 16); hi != 0 {
		buf.Emit32(encodeMOVK(reg, hi))
	}
}

// --- raw AArch64 instruction encoding (32-bit GPR forms) ---

func encodeMOVZ(rd int, imm16 uint16) uint32 {
	return 0x52800000 | uint32(imm16)<<5 | uint32(rd&31)
}
func encodeMOVK(rd int, imm16 uint16) uint32 {
	return 0x72A00000 | uint32(imm16)<<5 | uint32(rd&31)
}

// encodeLDRImm emits LDR Wt, [Xn, #pimm] (unsigned offset form,
// pimm must be a multiple of 4, encoded as pimm/4 in bits [21:10]).
func encodeLDRImm(rt, rn int, byteOffset uint32) uint32 {
	imm12 := (byteOffset / 4) & 0xFFF
	return 0xB9400000 | imm12<<10 | uint32(rn&31)<<5 | uint32(rt&31)
}

func encodeSTRImm(rt, rn int, byteOffset uint32) uint32 {
	imm12 := (byteOffset / 4) & 0xFFF
	return 0xB9000000 | imm12<<10 | uint32(rn&31)<<5 | uint32(rt&31)
}

func encodeADDReg(rd, rn, rm int) uint32 {
	return 0x0B000000 | uint32(rm&31)<<16 | uint32(rn&31)<<5 | uint32(rd&31)
}
func encodeSUBReg(rd, rn, rm int) uint32 {
	return 0x4B000000 | uint32(rm&31)<<16 | uint32(rn&31)<<5 | uint32(rd&31)
}
func encodeANDReg(rd, rn, rm int) uint32 {
	return 0x0A000000 | uint32(rm&31)<<16 | uint32(rn&31)<<5 | uint32(rd&31)
}
func encodeORRReg(rd, rn, rm int) uint32 {
	return 0x2A000000 | uint32(rm&31)<<16 | uint32(rn&31)<<5 | uint32(rd&31)
}
func encodeEORReg(rd, rn, rm int) uint32 {
	return 0x4A000000 | uint32(rm&31)<<16 | uint32(rn&31)<<5 | uint32(rd&31)
}

// spillOffset returns the JitState byte offset of spill slot slot
// (dispatcher.JitState.Spill, immediately after the header fields).
// encodeLDRImm/encodeSTRImm's 12-bit scaled immediate covers this
// range without a new addressing form.
func spillOffset(slot int) uint32 { return 368 + uint32(slot)*4 }

// EmitSpillStore implements backend.SpillCodec.
func (e *Emitter) EmitSpillStore(buf backend.CodeBuffer, kind backend.HostLocKind, regIdx, slot int) {
	if kind != backend.LocGPR {
		panic("arm64: vector spill unsupported -- this emitter never assigns vector locations")
	}
	buf.Emit32(encodeSTRImm(regIdx, stateReg, spillOffset(slot)))
}

// EmitSpillLoad implements backend.SpillCodec.
func (e *Emitter) EmitSpillLoad(buf backend.CodeBuffer, slot int, kind backend.HostLocKind, regIdx int) {
	if kind != backend.LocGPR {
		panic("arm64: vector spill unsupported -- this emitter never assigns vector locations")
	}
	buf.Emit32(encodeLDRImm(regIdx, stateReg, spillOffset(slot)))
}
