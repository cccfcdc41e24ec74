package armjit

import (
	"runtime"

	"github.com/user-none/go-armjit/backend"
	"github.com/user-none/go-armjit/backend/arm64"
	"github.com/user-none/go-armjit/backend/riscv64"
	"github.com/user-none/go-armjit/backend/x64"
	"github.com/user-none/go-armjit/exclusive"
	"github.com/user-none/go-armjit/external"
	"github.com/user-none/go-armjit/frontend"
	"github.com/user-none/go-armjit/location"
	"github.com/user-none/go-armjit/opt"
)

// Config configures a Jit instance: which guest architecture it
// translates, the host callback table backing its memory and side
// effects, and the front/middle/back-end options each compile uses.
// A zero Config is not usable; start from DefaultConfig and fill in
// its fields.
type Config struct {
	Arch location.Arch
	Mem  external.MemoryInterface

	FrontendOptions frontend.Options
	OptOptions      opt.Options

	// Emitter selects the per-arch backend. Nil selects the emitter
	// matching runtime.GOARCH via DetectEmitter.
	Emitter backend.Emitter

	// NumGPR/NumVector/NumSpill size the single-pass register
	// allocator (DefaultConfig uses 12 GPRs). backend/x64 uses the
	// allocator's GPR index directly as the host register number (see
	// backend/x64's hostReg).
	NumGPR    int
	NumVector int
	NumSpill  int

	// CyclesToRun seeds JitState.CyclesToRun when New builds the Jit
	// (Jit.Reset does not reseed it); Run consumes
	// it one compiled block at a time and refills it from
	// Mem.GetTicksRemaining() at exhaustion (spec's tick-accounting
	// contract).
	CyclesToRun int64

	// Monitor is the shared ExclusiveMonitor backing LDREX/STREX and
	// LDAXR/STLXR for this Jit's guest processor. Pass the same
	// *exclusive.Monitor to every Jit instance modeling cores that
	// share a reservation domain; leave nil for a single-core
	// embedding, which gets a private one-processor Monitor.
	Monitor *exclusive.Monitor

	// ProcessorID selects this Jit's slot within Monitor. Ignored
	// when Monitor is nil.
	ProcessorID int
}

// DetectEmitter returns the Emitter matching the running host's
// architecture, built with the host's detected feature set. Unknown
// hosts fall back to x64, matching the teacher's own practice of a
// safe default rather than a panic for unrecognized configuration.
func DetectEmitter() backend.Emitter {
	features := backend.DetectHostFeature()
	switch runtime.GOARCH {
	case "arm64":
		return arm64.New(features)
	case "riscv64":
		return riscv64.New(features)
	default:
		return x64.New(features)
	}
}

// DefaultConfig returns a Config for A32 user-mode guest code with
// the host's auto-detected backend. Mem must still be set by the
// caller; everything else is a reasonable starting point.
func DefaultConfig(mem external.MemoryInterface) Config {
	return Config{
		Arch:            location.A32,
		Mem:             mem,
		FrontendOptions: frontend.DefaultOptions(),
		OptOptions:      opt.Options{},
		Emitter:         DetectEmitter(),
		NumGPR:          12,
		NumVector:       8,
		NumSpill:        16,
		CyclesToRun:     1 << 16,
	}
}
