// Package external defines the capability surface a host embedder
// implements to supply code, data, and exception handling to the
// translated blocks: the "v-table of callbacks" the source expresses
// as virtual methods, re-architected as a single handle passed by
// register through generated code (see SPEC_FULL.md's design notes).
package external

import "github.com/user-none/go-armjit/ir"

// ExceptionKind enumerates the raised-exception causes a guest block
// can report back to the host.
type ExceptionKind uint8

const (
	ExceptionUndefinedInstruction ExceptionKind = iota
	ExceptionUnpredictableInstruction
	ExceptionDecodeError
	ExceptionBreakpoint
	ExceptionNoExecuteFault
	ExceptionWaitForInterrupt
	ExceptionWaitForEvent
	ExceptionSendEvent
	ExceptionSendEventLocal
	ExceptionYield
	ExceptionCheckHalt
)

func (k ExceptionKind) String() string {
	switch k {
	case ExceptionUndefinedInstruction:
		return "UndefinedInstruction"
	case ExceptionUnpredictableInstruction:
		return "UnpredictableInstruction"
	case ExceptionDecodeError:
		return "DecodeError"
	case ExceptionBreakpoint:
		return "Breakpoint"
	case ExceptionNoExecuteFault:
		return "NoExecuteFault"
	case ExceptionWaitForInterrupt:
		return "WaitForInterrupt"
	case ExceptionWaitForEvent:
		return "WaitForEvent"
	case ExceptionSendEvent:
		return "SendEvent"
	case ExceptionSendEventLocal:
		return "SendEventLocal"
	case ExceptionYield:
		return "Yield"
	case ExceptionCheckHalt:
		return "CheckHalt"
	default:
		return "ExceptionKind(?)"
	}
}

// CacheOp enumerates the IC/DC maintenance operations a guest can
// request; the host owns the actual cache-coherence policy.
type CacheOp uint8

const (
	CacheOpInvalidateByAddress CacheOp = iota
	CacheOpInvalidateAll
	CacheOpCleanByAddress
	CacheOpCleanAndInvalidateByAddress
)

// MemoryInterface is the callback table a host embeds to back a
// translated block's code fetches, data accesses, and side effects.
// Implementations must be safe to call from translated code running
// on the interpreter-fallback path as well as directly from the JIT
// trampoline.
type MemoryInterface interface {
	// MemoryReadCode fetches an instruction word for translation; it
	// is never called from generated code, only from the frontend.
	MemoryReadCode(vaddr uint64) (uint32, bool)

	MemoryRead8(vaddr uint64) uint8
	MemoryRead16(vaddr uint64) uint16
	MemoryRead32(vaddr uint64) uint32
	MemoryRead64(vaddr uint64) uint64
	MemoryRead128(vaddr uint64) (lo, hi uint64)

	MemoryWrite8(vaddr uint64, value uint8) bool
	MemoryWrite16(vaddr uint64, value uint16) bool
	MemoryWrite32(vaddr uint64, value uint32) bool
	MemoryWrite64(vaddr uint64, value uint64) bool
	MemoryWrite128(vaddr uint64, lo, hi uint64) bool

	// IsReadOnlyMemory reports whether vaddr lies in memory that cannot
	// change; it has the shape opt.ConstantMemoryReadsWithPeek takes.
	// Nothing in this module passes it to the optimizer, so no load is
	// folded on its answer.
	IsReadOnlyMemory(vaddr uint64) bool

	// InterpreterFallback is invoked when the translator hits an
	// instruction it declines to lift (spec: decoder tables are owned
	// by the middle-end, not this package). numInsts is always 1.
	InterpreterFallback(pc uint64, numInsts int)

	CallSVC(swi uint32)
	ExceptionRaised(pc uint64, kind ExceptionKind)

	InstructionCacheOperationRaised(op CacheOp, vaddr uint64)
	DataCacheOperationRaised(op CacheOp, vaddr uint64)

	AddTicks(ticks uint64)
	GetTicksRemaining() int64
}

// Coprocessor models one of A32's 16 coprocessor slots (CP0-CP15).
// Most slots are unimplemented in a given host; CoprocessorSet
// returns nil for those and the translator lowers their instructions
// to InterpreterFallback.
type Coprocessor interface {
	CompileInternalOperation(twoWord bool, coprocInfo [4]uint32) (*ir.Inst, bool)
	CompileSendOneWord(twoWord bool, coprocInfo [4]uint32) ir.Value
	CompileSendTwoWords(twoWord bool, coprocInfo [4]uint32) (ir.Value, ir.Value)
	CompileGetOneWord(twoWord bool, coprocInfo [4]uint32) ir.Value
	CompileGetTwoWords(twoWord bool, coprocInfo [4]uint32) (ir.Value, ir.Value)
	CompileLoadWords(twoWord, hasOption bool, coprocInfo [4]uint32) ir.Value
	CompileStoreWords(twoWord, hasOption bool, coprocInfo [4]uint32) ir.Value
}

// CoprocessorSet maps CP index (0-15) to an optional implementation.
type CoprocessorSet [16]Coprocessor
