package armjit

import (
	"github.com/user-none/go-armjit/dispatcher"
	"github.com/user-none/go-armjit/exclusive"
	"github.com/user-none/go-armjit/location"
)

// Jit is one guest CPU instance: a dispatcher.Runtime (block cache,
// compiler, run loop), a dispatcher.JitState (the host-side register
// file and tick accounting the backend reads/writes directly), and
// the current guest location execution will resume at. A Jit is
// strictly single-threaded at the level of Run -- only one goroutine
// may be inside Run for a given Jit at a time -- but HaltExecution
// may be called concurrently from another goroutine to cancel it, and
// multiple Jit instances may run concurrently on different goroutines.
type Jit struct {
	cfg     Config
	rt      *dispatcher.Runtime
	state   *dispatcher.JitState
	monitor *exclusive.Monitor
	pid     int

	loc location.Descriptor
}

func granuleFor(arch location.Arch) exclusive.Granule {
	if arch == location.A64 {
		return exclusive.Aligned16
	}
	return exclusive.ExactAddress
}

// New builds a Jit that begins execution at entry once Run is first
// called. cfg.Mem and cfg.Arch must already be set; cfg.Emitter, if
// nil, is filled in with DetectEmitter().
func New(cfg Config, entry location.Descriptor) *Jit {
	emitter := cfg.Emitter
	if emitter == nil {
		emitter = DetectEmitter()
	}

	j := &Jit{
		cfg: cfg,
		rt: dispatcher.NewRuntime(dispatcher.Config{
			Arch:            cfg.Arch,
			Mem:             cfg.Mem,
			FrontendOptions: cfg.FrontendOptions,
			OptOptions:      cfg.OptOptions,
			Emitter:         emitter,
			NumGPR:          cfg.NumGPR,
			NumVector:       cfg.NumVector,
			NumSpill:        cfg.NumSpill,
		}),
		state: dispatcher.NewJitState(),
		pid:   cfg.ProcessorID,
		loc:   entry,
	}
	j.state.CyclesToRun = cfg.CyclesToRun

	j.monitor = cfg.Monitor
	if j.monitor == nil {
		j.monitor = exclusive.NewMonitor(1, granuleFor(cfg.Arch))
		j.pid = 0
	}
	return j
}

// Run begins execution at the current PC and returns once the host
// requests a halt (via a concurrent HaltExecution call) or the host's
// tick budget is exhausted at a block boundary. It clears any stale
// halt request from a prior Run before starting, so each call to Run
// is a fresh execution rather than an immediate no-op.
func (j *Jit) Run() error {
	j.state.ClearHalt()
	next, err := j.rt.Run(j.state, j.loc)
	j.loc = next
	return err
}

// HaltExecution requests that a Run in progress return at the next
// block boundary. Safe to call from a goroutine other than the one
// inside Run.
func (j *Jit) HaltExecution() {
	j.state.RequestHalt()
}

// Monitor exposes the ExclusiveMonitor backing this Jit's LDREX/STREX
// handling, along with the processor ID it was assigned within it, so
// a host's coprocessor or memory callback can perform the matching
// read/write half of an exclusive pair.
func (j *Jit) Monitor() (*exclusive.Monitor, int) {
	return j.monitor, j.pid
}

// Regs returns a snapshot of the sixteen A32 general-purpose
// registers (r13 is sp, r14 is lr; r15/pc is tracked separately -- see
// PC).
func (j *Jit) Regs() [16]uint32 {
	return j.state.Regs
}

// SetRegs overwrites the general-purpose register file.
func (j *Jit) SetRegs(regs [16]uint32) {
	j.state.Regs = regs
}

// ExtendedRegs returns a snapshot of the VFP/NEON extended register
// file, as 32-bit words.
func (j *Jit) ExtendedRegs() [64]uint32 {
	return j.state.ExtRegs
}

// Vectors returns the extended register file grouped into sixteen
// 128-bit NEON quadword vectors (four words each).
func (j *Jit) Vectors() [16][4]uint32 {
	var v [16][4]uint32
	for i := range v {
		copy(v[i][:], j.state.ExtRegs[i*4:i*4+4])
	}
	return v
}

// PC returns the guest program counter execution will next resume at.
func (j *Jit) PC() uint64 {
	if j.cfg.Arch == location.A64 {
		return j.loc.PC64()
	}
	return uint64(j.loc.PC32())
}

// SP returns the active stack pointer (A32 r13).
func (j *Jit) SP() uint32 {
	return j.state.Regs[13]
}

// CPSR returns the A32 current program status register.
func (j *Jit) CPSR() uint32 {
	return j.state.CPSR
}

// FPSCR returns the A32 floating-point status/control register.
func (j *Jit) FPSCR() uint32 {
	return j.state.FPSCR
}

// FPCR returns the A64 floating-point control register. A32 and A64
// share one JitState slot for this (JitState.FPSCR); callers running A64 guest code
// should read FPCR rather than FPSCR, but both return the same value.
func (j *Jit) FPCR() uint32 {
	return j.state.FPSCR
}

// SetCPSR/SetFPSCR let a host establish initial guest state before
// the first Run, the same role CPU.SetState plays for the teacher's
// register file.
func (j *Jit) SetCPSR(v uint32)  { j.state.CPSR = v }
func (j *Jit) SetFPSCR(v uint32) { j.state.FPSCR = v }

// InvalidateCacheRange drops every compiled block whose guest entry PC
// falls in [start, start+size), for a host's self-modifying-code
// notification.
func (j *Jit) InvalidateCacheRange(start, size uint64) {
	j.rt.InvalidateRange(start, size)
}

// Reset drops the entire compiled-block cache, forcing every guest
// location to recompile on its next use. This is cache maintenance
// only; it does not touch register state (see SetRegs/SetCPSR/SetFPSCR
// for that) or the current PC.
func (j *Jit) Reset() {
	j.rt.Reset()
}
