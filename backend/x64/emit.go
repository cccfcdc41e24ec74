// Package x64 is the x86-64 code generator: one of the three
// per-arch implementations of backend.Emitter. Encodings are
// hand-rolled byte sequences, in the same spirit as the corpus's own
// JIT backends (tetratelabs/wazero's wazevo, zhubert-rush's arm64
// codegen) rather than built through an assembler package.
package x64

import (
	"fmt"

	"github.com/user-none/go-armjit/backend"
	"github.com/user-none/go-armjit/ir"
)

// stateReg is the GPR permanently reserved to hold the JitState
// pointer for the lifetime of a compiled block (RBP, callee-saved,
// never touched by the SysV calling convention for leaf code).
const stateReg = 5 // RBP encoding

// Emitter lowers an ir.Block to x86-64 machine code. It only handles
// the opcode subset this module's end-to-end scenarios exercise;
// anything else is reported back to the dispatcher as unlowerable so
// the block falls back to the interpreter, the same escape hatch the
// frontend uses for undecoded instructions.
type Emitter struct {
	features backend.HostFeature
}

// New returns an Emitter targeting the given host feature set.
func New(features backend.HostFeature) *Emitter { return &Emitter{features: features} }

func (e *Emitter) Features() backend.HostFeature { return e.features }

// registerOffset returns the JitState byte offset for A32 register
// reg (register file laid out immediately after the fixed JitState
// header fields -- see dispatcher.JitState).
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
		// Pure bookkeeping ops with no side effect that survived to
		// codegen (shouldn't normally happen post-DCE, but emitting
		// nothing for them is still correct): skip.
		return nil

	case ir.OpGetRegister:
		loc := ra.Assign(inst, buf)
		reg := inst.Args[0].RegIndex()
		emitMovLoad(buf, hostReg(loc), stateReg, registerOffset(reg))
		return nil

	case ir.OpSetRegister:
		reg := inst.Args[0].RegIndex()
		src, tmp, err := argGPR(inst.Args[1], ra, buf)
		if err != nil {
			return err
		}
		emitMovStore(buf, stateReg, registerOffset(reg), src)
		if tmp != nil {
			ra.Location(tmp, buf)
		}
		return nil

	case ir.OpAdd:
		return e.emitBinary(inst, ra, buf, emitAddReg)
	case ir.OpSub:
		return e.emitBinary(inst, ra, buf, emitSubReg)
	case ir.OpAnd:
		return e.emitBinary(inst, ra, buf, emitAndReg)
	case ir.OpOr:
		return e.emitBinary(inst, ra, buf, emitOrReg)
	case ir.OpEor:
		return e.emitBinary(inst, ra, buf, emitXorReg)

	default:
		return fmt.Errorf("x64: %s not lowered, falls back to interpreter", inst.Op)
	}
}

type binOp func(buf backend.CodeBuffer, dst, src int)

func (e *Emitter) emitBinary(inst *ir.Inst, ra *backend.RegAlloc, buf backend.CodeBuffer, op binOp) error {
	var temps []*ir.Inst
	a, aTmp, err := argGPR(inst.Args[0], ra, buf)
	if err != nil {
		return err
	}
	if aTmp != nil {
		temps = append(temps, aTmp)
	}
	// Protect a's register: it's still live as an operand and must not
	// be chosen as an eviction victim while materializing b or dst.
	b, bTmp, err := argGPR(inst.Args[1], ra, buf, a)
	if err != nil {
		return err
	}
	if bTmp != nil {
		temps = append(temps, bTmp)
	}

	dst := hostReg(ra.Assign(inst, buf, a, b))
	if dst != a {
		emitMovReg(buf, dst, a)
	}
	op(buf, dst, b)

	// Immediates materialized into scratch registers for this
	// instruction only; release them now that the op has consumed
	// their values, not before (two immediate operands must not be
	// handed the same physical register while both are still live).
	for _, tmp := range temps {
		ra.Location(tmp, buf)
	}
	return nil
}

// argGPR materializes arg's value into a GPR, loading an immediate
// with MOV r32, imm32 or resolving a prior Inst's assigned register.
// When arg is an immediate, the returned Inst is the synthetic
// producer the caller must later free via ra.Location once the
// register is no longer needed as an operand. protect lists registers
// the caller is already holding live for this instruction and that
// must not be picked as eviction victims while materializing arg.
func argGPR(arg ir.Value, ra *backend.RegAlloc, buf backend.CodeBuffer, protect ...int) (int, *ir.Inst, error) {
	if arg.IsImmediate() {
		tmp := ir.NewInst(ir.OpIdentity, arg)
		reg := hostReg(ra.Assign(tmp, buf, protect...))
		emitMovImm32(buf, reg, uint32(arg.U64()))
		return reg, tmp, nil
	}
	ref := arg.Inst()
	if ref == nil {
		return 0, nil, fmt.Errorf("x64: argument has neither an immediate nor an Inst producer")
	}
	return hostReg(ra.Location(ref, buf, protect...)), nil, nil
}

// hostReg unwraps a HostLoc to a concrete register index. RegAlloc
// never hands Assign/Location's caller a LocSpill: a spilled value is
// reloaded to a register before Location returns, so seeing one here
// would mean RegAlloc's own invariant broke, not that this emitter hit
// register pressure it declined to handle.
func hostReg(loc backend.HostLoc) int {
	if loc.Kind == backend.LocSpill {
		panic("x64: RegAlloc returned an unresolved spill location")
	}
	return loc.Idx
}

// --- raw instruction encoding ---
//
// All of the following use 32-bit operand size (no REX.W) since the
// guest registers this module lifts are 32-bit A32 GPRs; a REX prefix
// is still emitted when either operand register is R8-R15.

func rex(w bool, r, x, b int) byte {
	v := byte(0x40)
	if w {
		v |= 0x08
	}
	if r&8 != 0 {
		v |= 0x04
	}
	if x&8 != 0 {
		v |= 0x02
	}
	if b&8 != 0 {
		v |= 0x01
	}
	return v
}

func modrm(mod, reg, rm int) byte {
	return byte(mod<<6 | (reg&7)<<3 | (rm & 7))
}

func emitMovImm32(buf backend.CodeBuffer, reg int, imm uint32) {
	if reg&8 != 0 {
		buf.Emit(rex(false, 0, 0, reg))
	}
	buf.Emit(0xB8 + byte(reg&7))
	buf.Emit32(imm)
}

func emitMovReg(buf backend.CodeBuffer, dst, src int) {
	buf.Emit(rex(false, src, 0, dst))
	buf.Emit(0x89, modrm(3, src, dst))
}

// emitMovLoad emits MOV dst, [base+disp8].
func emitMovLoad(buf backend.CodeBuffer, dst, base int, disp int32) {
	buf.Emit(rex(false, dst, 0, base))
	buf.Emit(0x8B, modrm(1, dst, base), byte(disp))
}

// emitMovStore emits MOV [base+disp8], src.
func emitMovStore(buf backend.CodeBuffer, base int, disp int32, src int) {
	buf.Emit(rex(false, src, 0, base))
	buf.Emit(0x89, modrm(1, src, base), byte(disp))
}

// emitMovLoadDisp32 emits MOV dst, [base+disp32] (ModRM mod=2, a full
// 4-byte displacement), needed once an offset no longer fits in the
// disp8 form emitMovLoad uses -- the spill area sits well past the
// register file in JitState.
func emitMovLoadDisp32(buf backend.CodeBuffer, dst, base int, disp int32) {
	buf.Emit(rex(false, dst, 0, base))
	buf.Emit(0x8B, modrm(2, dst, base))
	buf.Emit32(uint32(disp))
}

// emitMovStoreDisp32 emits MOV [base+disp32], src.
func emitMovStoreDisp32(buf backend.CodeBuffer, base int, disp int32, src int) {
	buf.Emit(rex(false, src, 0, base))
	buf.Emit(0x89, modrm(2, src, base))
	buf.Emit32(uint32(disp))
}

// spillOffset returns the JitState byte offset of spill slot slot
// (dispatcher.JitState.Spill, a fixed array of uint32 slots
// immediately after the header fields).
func spillOffset(slot int) int32 { return 368 + int32(slot)*4 }

// EmitSpillStore implements backend.SpillCodec: save regIdx to
// spill slot slot so RegAlloc can free the register for reuse.
func (e *Emitter) EmitSpillStore(buf backend.CodeBuffer, kind backend.HostLocKind, regIdx, slot int) {
	if kind != backend.LocGPR {
		panic("x64: vector spill unsupported -- this emitter never assigns vector locations")
	}
	emitMovStoreDisp32(buf, stateReg, spillOffset(slot), regIdx)
}

// EmitSpillLoad implements backend.SpillCodec: reload spill slot
// slot's value into regIdx, rematerializing a previously evicted
// value.
func (e *Emitter) EmitSpillLoad(buf backend.CodeBuffer, slot int, kind backend.HostLocKind, regIdx int) {
	if kind != backend.LocGPR {
		panic("x64: vector spill unsupported -- this emitter never assigns vector locations")
	}
	emitMovLoadDisp32(buf, regIdx, stateReg, spillOffset(slot))
}

func emitAddReg(buf backend.CodeBuffer, dst, src int) {
	buf.Emit(rex(false, src, 0, dst))
	buf.Emit(0x01, modrm(3, src, dst))
}
func emitSubReg(buf backend.CodeBuffer, dst, src int) {
	buf.Emit(rex(false, src, 0, dst))
	buf.Emit(0x29, modrm(3, src, dst))
}
func emitAndReg(buf backend.CodeBuffer, dst, src int) {
	buf.Emit(rex(false, src, 0, dst))
	buf.Emit(0x21, modrm(3, src, dst))
}
func emitOrReg(buf backend.CodeBuffer, dst, src int) {
	buf.Emit(rex(false, src, 0, dst))
	buf.Emit(0x09, modrm(3, src, dst))
}
func emitXorReg(buf backend.CodeBuffer, dst, src int) {
	buf.Emit(rex(false, src, 0, dst))
	buf.Emit(0x31, modrm(3, src, dst))
}
