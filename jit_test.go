package armjit

import (
	"testing"
	"time"

	"github.com/user-none/go-armjit/backend"
	"github.com/user-none/go-armjit/backend/x64"
	"github.com/user-none/go-armjit/external"
	"github.com/user-none/go-armjit/frontend"
	"github.com/user-none/go-armjit/location"
	"github.com/user-none/go-armjit/opt"
)

// fakeMemory is a minimal code-only MemoryInterface, mirroring the
// fixture used by the frontend and dispatcher packages' own tests.
type fakeMemory struct {
	code           map[uint64]uint16
	ticksRemaining int64
}

func (m *fakeMemory) MemoryReadCode(vaddr uint64) (uint32, bool) {
	hw, ok := m.code[vaddr]
	return uint32(hw), ok
}
func (m *fakeMemory) MemoryRead8(uint64) uint8                   { panic("unused") }
func (m *fakeMemory) MemoryRead16(uint64) uint16                 { panic("unused") }
func (m *fakeMemory) MemoryRead32(uint64) uint32                 { panic("unused") }
func (m *fakeMemory) MemoryRead64(uint64) uint64                 { panic("unused") }
func (m *fakeMemory) MemoryRead128(uint64) (uint64, uint64)      { panic("unused") }
func (m *fakeMemory) MemoryWrite8(uint64, uint8) bool            { panic("unused") }
func (m *fakeMemory) MemoryWrite16(uint64, uint16) bool          { panic("unused") }
func (m *fakeMemory) MemoryWrite32(uint64, uint32) bool          { panic("unused") }
func (m *fakeMemory) MemoryWrite64(uint64, uint64) bool          { panic("unused") }
func (m *fakeMemory) MemoryWrite128(uint64, uint64, uint64) bool { panic("unused") }
func (m *fakeMemory) IsReadOnlyMemory(uint64) bool                { return true }
func (m *fakeMemory) InterpreterFallback(uint64, int)             {}
func (m *fakeMemory) CallSVC(uint32)                              {}
func (m *fakeMemory) ExceptionRaised(uint64, external.ExceptionKind) {}
func (m *fakeMemory) InstructionCacheOperationRaised(external.CacheOp, uint64) {}
func (m *fakeMemory) DataCacheOperationRaised(external.CacheOp, uint64)        {}
func (m *fakeMemory) AddTicks(uint64)             {}
func (m *fakeMemory) GetTicksRemaining() int64 { return m.ticksRemaining }

// selfBranchingBL is a single T2 BL instruction (0xF7FF 0xFFFE) whose
// 25-bit signed displacement encodes -4, so its target is its own
// entry address: an infinite self-call. It only lowers to a
// SetRegister(lr) plus a LinkBlock terminal, both within the
// opcode subset backend/x64 actually emits.
var selfBranchingBL = map[uint64]uint16{0x0: 0xF7FF, 0x2: 0xFFFE}

func newTestJit(mem *fakeMemory, entry location.Descriptor, cyclesToRun int64) *Jit {
	cfg := Config{
		Arch:            location.A32,
		Mem:             mem,
		FrontendOptions: frontend.DefaultOptions(),
		OptOptions:      opt.Options{},
		Emitter:         x64.New(backend.HostFeature(0)),
		NumGPR:          4,
		NumVector:       2,
		NumSpill:        4,
		CyclesToRun:     cyclesToRun,
	}
	return New(cfg, entry)
}

func TestJitHaltExecutionStopsAConcurrentRun(t *testing.T) {
	mem := &fakeMemory{code: selfBranchingBL, ticksRemaining: 1 << 30}
	j := newTestJit(mem, location.NewA32(0, true, false, 0), 1<<30)

	done := make(chan error, 1)
	go func() { done <- j.Run() }()

	time.Sleep(20 * time.Millisecond)
	j.HaltExecution()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after HaltExecution")
	}
}

func TestJitPCTracksExecution(t *testing.T) {
	mem := &fakeMemory{code: selfBranchingBL, ticksRemaining: 0}
	j := newTestJit(mem, location.NewA32(0, true, false, 0), 5)
	if err := j.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if j.PC() != 0 {
		t.Fatalf("PC() = %#x, want 0 (self-loop returns to its own entry)", j.PC())
	}
}

func TestJitInvalidateCacheRangeForcesRecompile(t *testing.T) {
	mem := &fakeMemory{code: selfBranchingBL, ticksRemaining: 0}
	j := newTestJit(mem, location.NewA32(0, true, false, 0), 5)
	if err := j.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if j.rt.Cache().Len() != 1 {
		t.Fatalf("Cache().Len() = %d, want 1", j.rt.Cache().Len())
	}
	j.InvalidateCacheRange(0, 4)
	if j.rt.Cache().Len() != 0 {
		t.Fatal("InvalidateCacheRange(0,4) should have dropped the block at pc=0")
	}
}

func TestJitResetClearsWholeCache(t *testing.T) {
	mem := &fakeMemory{code: selfBranchingBL, ticksRemaining: 0}
	j := newTestJit(mem, location.NewA32(0, true, false, 0), 5)
	if err := j.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	j.Reset()
	if j.rt.Cache().Len() != 0 {
		t.Fatal("Reset should drop every cached block")
	}
}

func TestJitRegsRoundTrip(t *testing.T) {
	mem := &fakeMemory{code: selfBranchingBL, ticksRemaining: 0}
	j := newTestJit(mem, location.NewA32(0, true, false, 0), 5)

	var regs [16]uint32
	regs[0] = 0xDEADBEEF
	regs[13] = 0x1000
	j.SetRegs(regs)
	j.SetCPSR(0x30)

	if got := j.Regs(); got[0] != 0xDEADBEEF {
		t.Fatalf("Regs()[0] = %#x, want 0xDEADBEEF", got[0])
	}
	if j.SP() != 0x1000 {
		t.Fatalf("SP() = %#x, want 0x1000", j.SP())
	}
	if j.CPSR() != 0x30 {
		t.Fatalf("CPSR() = %#x, want 0x30", j.CPSR())
	}
}

func TestJitMonitorIsPrivateWhenUnconfigured(t *testing.T) {
	mem := &fakeMemory{code: selfBranchingBL, ticksRemaining: 0}
	j := newTestJit(mem, location.NewA32(0, true, false, 0), 5)
	mon, pid := j.Monitor()
	if mon == nil {
		t.Fatal("expected a default private Monitor when Config.Monitor is nil")
	}
	if pid != 0 {
		t.Fatalf("pid = %d, want 0 for a private single-processor Monitor", pid)
	}
}
