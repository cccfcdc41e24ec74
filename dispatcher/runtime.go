package dispatcher

import (
	"fmt"
	"sync"

	"github.com/user-none/go-armjit/backend"
	"github.com/user-none/go-armjit/blockcache"
	"github.com/user-none/go-armjit/external"
	"github.com/user-none/go-armjit/frontend"
	"github.com/user-none/go-armjit/ir"
	"github.com/user-none/go-armjit/location"
	"github.com/user-none/go-armjit/opt"
)

// Config bundles everything Runtime needs to compile and run blocks:
// the guest architecture, the host embedding surface, and the
// front/middle/back-end options each compile uses.
type Config struct {
	Arch            location.Arch
	Mem             external.MemoryInterface
	FrontendOptions frontend.Options
	OptOptions      opt.Options
	Emitter         backend.Emitter
	NumGPR          int
	NumVector       int
	NumSpill        int
}

// compiled is everything about a block the dispatcher needs beyond
// its host code bytes: the decision tree it ends on and how many
// ticks it costs. blockcache.Entry only carries the bytes (a JIT's
// real codegen encodes the terminal directly as jumps), so Runtime
// keeps this side table of its own, filled by the same compile that
// populates the Cache.
type compiled struct {
	Terminal   ir.Terminal
	End        location.Descriptor
	CycleCount uint64
}

// Runtime is the cooperative dispatcher: it owns the block cache, the
// return-stack buffer, and the fast-dispatch table, and drives guest
// execution by repeatedly compiling (or reusing) the block at the
// current location and then resolving its Terminal (spec.md §4.5).
type Runtime struct {
	cfg   Config
	cache *blockcache.Cache

	mu        sync.Mutex
	terminals map[location.Descriptor]compiled

	rsb          RSB
	fastDispatch FastDispatchTable
}

// NewRuntime builds a Runtime over a fresh block cache.
func NewRuntime(cfg Config) *Runtime {
	return &Runtime{
		cfg:       cfg,
		cache:     blockcache.NewCache(),
		terminals: map[location.Descriptor]compiled{},
	}
}

// Cache exposes the backing block cache, e.g. so a host can call
// InvalidateBlock/InvalidateAll on a self-modifying-code notification.
func (rt *Runtime) Cache() *blockcache.Cache { return rt.cache }

// Reset drops every compiled block and performance-hint entry,
// forcing every subsequent location to recompile from scratch. This
// is the "reset()" half of the public cache-maintenance surface
// (invalidate_cache_range being the other half): unlike
// InvalidateRange it doesn't test any address, it just starts over.
func (rt *Runtime) Reset() {
	rt.mu.Lock()
	rt.terminals = map[location.Descriptor]compiled{}
	rt.mu.Unlock()

	rt.cache.InvalidateAll()
	rt.fastDispatch = FastDispatchTable{}
	rt.rsb = RSB{}
}

// InvalidateRange drops every compiled block whose guest entry PC
// falls in [start, start+size), for a host's self-modifying-code
// notification. The fast-dispatch table and return-stack buffer are
// cleared outright rather than scrubbed entry-by-entry: both are pure
// performance hints (see resolve's PopRSBHint/FastDispatchHint
// handling), so dropping them early only costs a future recompile,
// never correctness.
func (rt *Runtime) InvalidateRange(start, size uint64) {
	rt.mu.Lock()
	for loc := range rt.terminals {
		pc := pcOf(rt.cfg.Arch, loc)
		if pc >= start && pc < start+size {
			delete(rt.terminals, loc)
		}
	}
	rt.mu.Unlock()

	rt.cache.InvalidateWhere(func(loc location.Descriptor) bool {
		pc := pcOf(rt.cfg.Arch, loc)
		return pc >= start && pc < start+size
	})
	rt.fastDispatch = FastDispatchTable{}
	rt.rsb = RSB{}
}

// compile runs translate -> optimize -> register-alloc -> emit for
// loc, reserves arena space for the result, and records its Terminal.
// Concurrent callers for the same loc are deduplicated by the
// underlying Cache's singleflight group.
func (rt *Runtime) compile(loc location.Descriptor) (blockcache.Entry, error) {
	block := frontend.Translate(rt.cfg.Arch, loc, rt.cfg.Mem, rt.cfg.FrontendOptions)
	opt.Run(block, rt.cfg.OptOptions)

	ra := backend.NewRegAlloc(rt.cfg.NumGPR, rt.cfg.NumVector, rt.cfg.NumSpill, rt.cfg.Emitter)
	buf := &backend.ByteBuffer{}
	if err := rt.cfg.Emitter.EmitBlock(block, ra, buf); err != nil {
		return blockcache.Entry{}, fmt.Errorf("dispatcher: emit %v: %w", loc, err)
	}

	bytes := buf.Bytes()
	code, finalize, err := rt.cache.Arena().Reserve(len(bytes))
	if err != nil {
		return blockcache.Entry{}, err
	}
	copy(code, bytes)
	if err := finalize(); err != nil {
		return blockcache.Entry{}, err
	}

	rt.mu.Lock()
	rt.terminals[loc] = compiled{Terminal: block.Terminal, End: block.End, CycleCount: block.CycleCount}
	rt.mu.Unlock()

	return blockcache.Entry{Loc: loc, Code: code, Size: len(code)}, nil
}

// Compile ensures loc has a cached, compiled entry, compiling it on
// demand, and marks it as the most recently compiled slot in the
// fast-dispatch table.
func (rt *Runtime) Compile(loc location.Descriptor) error {
	if _, err := rt.cache.GetOrCompile(loc, rt.compile); err != nil {
		return err
	}
	rt.fastDispatch.Insert(loc)
	return nil
}

func pcOf(arch location.Arch, loc location.Descriptor) uint64 {
	if arch == location.A32 {
		return uint64(loc.PC32())
	}
	return loc.PC64()
}

func (rt *Runtime) terminalFor(loc location.Descriptor) compiled {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.terminals[loc]
}

// Run executes guest code starting at entry until the host requests a
// halt or tick exhaustion leaves no further ticks to run, returning
// the location execution stopped at.
func (rt *Runtime) Run(state *JitState, entry location.Descriptor) (location.Descriptor, error) {
	state.CyclesRemaining = state.CyclesToRun
	loc := entry

	for {
		if state.HaltRequested() {
			return loc, nil
		}
		if state.CyclesRemaining <= 0 {
			spent := state.CyclesToRun - state.CyclesRemaining
			if spent < 0 {
				spent = 0
			}
			rt.cfg.Mem.AddTicks(uint64(spent))
			remaining := rt.cfg.Mem.GetTicksRemaining()
			if remaining <= 0 {
				return loc, nil
			}
			state.CyclesToRun = remaining
			state.CyclesRemaining = remaining
		}

		if err := rt.Compile(loc); err != nil {
			return loc, err
		}
		c := rt.terminalFor(loc)
		state.CyclesRemaining -= int64(c.CycleCount)

		next, stop, err := rt.resolve(state, c.End, c.Terminal)
		if err != nil {
			return loc, err
		}
		if stop {
			return next, nil
		}
		loc = next
	}
}

// resolve walks a (possibly nested) Terminal to the location the
// dispatcher should resume at, returning stop=true for terminals that
// hand control back to the host entirely.
func (rt *Runtime) resolve(state *JitState, blockEnd location.Descriptor, term ir.Terminal) (location.Descriptor, bool, error) {
	switch t := term.(type) {
	case ir.LinkBlock:
		return t.Loc, false, nil
	case ir.LinkBlockFast:
		return t.Loc, false, nil
	case ir.ReturnToDispatch:
		return blockEnd, false, nil
	case ir.PopRSBHint:
		rt.rsb.Pop(blockEnd) // bookkeeping only; routing always continues at blockEnd
		return blockEnd, false, nil
	case ir.FastDispatchHint:
		rt.fastDispatch.Lookup(blockEnd) // bookkeeping only, see PopRSBHint
		return blockEnd, false, nil
	case ir.Interpret:
		rt.cfg.Mem.InterpreterFallback(pcOf(rt.cfg.Arch, t.Loc), 1)
		return blockEnd, false, nil
	case ir.CheckHalt:
		if state.HaltRequested() {
			return blockEnd, true, nil
		}
		return rt.resolve(state, blockEnd, t.Inner)
	case ir.CheckBit:
		if state.CheckBit != 0 {
			return rt.resolve(state, blockEnd, t.Then)
		}
		return rt.resolve(state, blockEnd, t.Else)
	case ir.If:
		if evalCond(t.Cond, state.CPSR) {
			return rt.resolve(state, blockEnd, t.Then)
		}
		return rt.resolve(state, blockEnd, t.Else)
	default:
		return blockEnd, false, fmt.Errorf("dispatcher: unknown terminal %T", term)
	}
}
