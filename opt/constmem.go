package opt

import "github.com/user-none/go-armjit/ir"

// ConstantMemoryReads replaces a MemoryRead* whose address has folded
// to a constant with the observed immediate, when IsReadOnlyMemory says
// the backing page can't change underneath the compiled block and
// peek can supply the bytes. The callback is conservative by contract
// (spec §6: "false is always safe"), so a nil IsReadOnlyMemory disables
// the pass entirely rather than guessing.
//
// peek reads width bytes (1/2/4/8/16) at vaddr and returns them
// zero-extended into the low bits of the return value (the high 64 bits
// are only meaningful for width==16, via hi).
type PeekFunc func(vaddr uint64, width int) (lo, hi uint64)

func ConstantMemoryReads(block *ir.Block, isReadOnlyMemory func(vaddr uint64) bool) {
	ConstantMemoryReadsWithPeek(block, isReadOnlyMemory, nil)
}

// ConstantMemoryReadsWithPeek is ConstantMemoryReads with an explicit
// peek function; production callers that actually want the fold to fire
// wire both callbacks from the same MemoryCallbacks table the
// translator used (peek is just a synchronous re-read through
// MemoryRead* with AccType NORMAL, since read-only memory can't
// observably change between the translator's read and the optimizer's).
func ConstantMemoryReadsWithPeek(block *ir.Block, isReadOnlyMemory func(vaddr uint64) bool, peek PeekFunc) {
	if isReadOnlyMemory == nil || peek == nil {
		return
	}
	for inst := block.First(); inst != nil; inst = inst.Next() {
		width, typ, isRead := readWidthType(inst.Op)
		if !isRead {
			continue
		}
		vaddr := inst.Args[0]
		if !vaddr.IsImmediate() {
			continue
		}
		addr := vaddr.U64()
		if !isReadOnlyMemory(addr) {
			continue
		}
		lo, hi := peek(addr, width)
		var folded ir.Value
		if typ == ir.U128 {
			folded = ir.ImmU128(lo, hi)
		} else {
			folded = foldedScalar(typ, lo)
		}
		ir.Retarget(block, inst, folded)
		// The read itself no longer has any uses; demoting it to
		// Identity (rather than leaving it as a side-effecting
		// MemoryRead*) lets DeadCodeElimination collect it even though
		// raw memory reads are otherwise kept for ordering.
		inst.Op = ir.OpIdentity
	}
}

func foldedScalar(typ ir.Type, v uint64) ir.Value {
	switch typ {
	case ir.U8:
		return ir.ImmU8(uint8(v))
	case ir.U16:
		return ir.ImmU16(uint16(v))
	case ir.U32:
		return ir.ImmU32(uint32(v))
	default:
		return ir.ImmU64(v)
	}
}

func readWidthType(op ir.Opcode) (width int, typ ir.Type, ok bool) {
	switch op {
	case ir.OpMemoryRead8:
		return 1, ir.U8, true
	case ir.OpMemoryRead16:
		return 2, ir.U16, true
	case ir.OpMemoryRead32:
		return 4, ir.U32, true
	case ir.OpMemoryRead64:
		return 8, ir.U64, true
	case ir.OpMemoryRead128:
		return 16, ir.U128, true
	default:
		return 0, ir.Void, false
	}
}
