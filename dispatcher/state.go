// Package dispatcher drives block-to-block execution: JitState, the
// return-stack buffer, the fast-dispatch hash table, tick accounting,
// and the halt check that together implement the cooperative
// dispatch loop spec.md §4.5 describes as a hand-emitted
// run_code(JitState*) function plus per-terminal epilogue stubs.
//
// Invoking real, JIT-compiled machine code from Go requires a small
// per-arch assembly trampoline (to cross the Go/C calling-convention
// boundary into a raw function pointer); that trampoline is beyond
// this package's scope. Runtime instead interprets a Block's Terminal
// directly, which is exactly the decision the generated epilogue
// would make -- "on exit, the dispatcher reads the block's terminal
// to decide where to go next" (spec.md line 35) -- without requiring
// the host CPU to actually execute the emitted bytes.
package dispatcher

import "sync/atomic"

// rsbSize is the return-stack buffer's fixed ring size (spec.md §4.5:
// "Fixed-size, power-of-two ring (default 8)").
const rsbSize = 8

// fastDispatchSize is the fast-dispatch hash table's slot count, a
// power of two so indexing is a plain mask over the descriptor bits.
const fastDispatchSize = 1024

// numA32ExtReg is the number of 32-bit lanes backing the A32 extended
// register file (32 double-precision D registers as 2 lanes each).
const numA32ExtReg = 64

// numSpillSlots is the fixed count of backend.RegAlloc spill slots
// backed by JitState.Spill (spec.md §4.4's spill area).
const numSpillSlots = 64

// JitState is the host-visible storage block every compiled block
// reads and writes directly by byte offset; its layout is frozen
// because the per-arch emitters (backend/x64, backend/arm64,
// backend/riscv64) hard-code offsets into it (see registerOffset in
// each package).
//
// CyclesRemaining sits at offset 0, the hottest field -- every
// compiled block's epilogue decrements it by the block's cycle count,
// so it gets the cheapest-to-reach offset. Regs immediately follows
// at offset 8, matching every backend's registerOffset(reg) = 8 +
// reg*4.
type JitState struct {
	CyclesRemaining int64 // offset 0

	Regs [16]uint32 // offset 8: guest r0-r15 (A32) or the low 32 bits of x0-x15 (A64, extended separately)

	ExtRegs [numA32ExtReg]uint32 // SIMD/FP register file, flattened

	CPSR         uint32
	FPSCR        uint32
	HostFPCRSave uint32 // host FPCR/MXCSR saved across a block, restored on exit

	CyclesToRun int64

	haltRequested uint32 // accessed only via atomic helpers below
	CheckBit      uint8  // branch bit consulted by ir.CheckBit terminals

	ExclusiveScratch uint64 // exclusive-monitor reservation scratch, spec.md §4.5

	// Spill backs backend.RegAlloc's spill slots: register values
	// evicted under pressure live here until reloaded. Its offset (368)
	// is hard-coded as spillOffset in each backend/<arch> package, same
	// as Regs above.
	Spill [numSpillSlots]uint32
}

// NewJitState returns a zeroed JitState ready for execution to begin
// at some initial PC (the caller sets Regs[15]/PC separately via the
// public Jit accessor, as JitState itself has no concept of "which
// register is the PC" -- that's an A32-vs-A64 convention owned by the
// frontend).
func NewJitState() *JitState { return &JitState{} }

// RequestHalt sets the halt flag; observed by CheckHalt terminals and
// by Runtime.Run at the next block boundary, never mid-block (spec.md
// §4.5: "Halt... observed at block boundaries only").
func (s *JitState) RequestHalt() { atomic.StoreUint32(&s.haltRequested, 1) }

// ClearHalt resets the halt flag, e.g. before resuming execution.
func (s *JitState) ClearHalt() { atomic.StoreUint32(&s.haltRequested, 0) }

// HaltRequested reports whether a halt has been requested.
func (s *JitState) HaltRequested() bool { return atomic.LoadUint32(&s.haltRequested) != 0 }
