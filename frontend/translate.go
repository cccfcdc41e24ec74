package frontend

import (
	"github.com/user-none/go-armjit/external"
	"github.com/user-none/go-armjit/ir"
	"github.com/user-none/go-armjit/location"
)

// maxBlockInsts bounds how many guest instructions a single Translate
// call will lift before forcing a block boundary, so a guest straight
// line of non-branching instructions (e.g. a NOP sled) can't produce
// an unbounded IR block.
const maxBlockInsts = 512

// visitor is implemented once per guest instruction set. Step decodes
// and emits the IR for exactly one guest instruction at the current
// program counter, returning the number of bytes consumed (2 or 4 for
// Thumb, always 4 for A32/A64, 0 when the instruction is handed to
// InterpreterFallback) and whether the block should continue
// translating after it (false once a terminal is set or after a
// fallback).
type visitor interface {
	pc() uint64
	step() (size int, more bool)
}

// Translate lifts one guest basic block starting at loc to an IR
// block, calling mem for code fetches and to report any
// InterpreterFallback. The returned Block always has a non-nil
// Terminal.
func Translate(arch location.Arch, loc location.Descriptor, mem external.MemoryInterface, opts Options) *ir.Block {
	block := ir.NewBlock(loc)
	e := ir.NewEmitter(block)

	var v visitor
	switch arch {
	case location.A32:
		v = newA32Visitor(e, mem, loc, opts)
	case location.A64:
		v = newA64Visitor(e, mem, loc, opts)
	default:
		panic("frontend: unknown arch")
	}

	insts := 0
	for insts < maxBlockInsts {
		_, more := v.step()
		block.CycleCount++
		insts++
		if !more {
			break
		}
	}
	block.End = endLocation(arch, loc, v.pc())
	if block.Terminal == nil {
		// Ran out of budget without hitting a branch; link straight
		// through to the next block rather than leaving it dangling.
		block.Terminal = ir.LinkBlock{Loc: block.End}
	}
	return block
}

func endLocation(arch location.Arch, start location.Descriptor, pc uint64) location.Descriptor {
	switch arch {
	case location.A32:
		return location.NewA32(uint32(pc), start.Thumb(), start.BigEndian(), 0)
	default:
		return location.NewA64(pc, 0, start.SingleStep())
	}
}
