package blockcache

import (
	"fmt"
	"io"
	"sync"

	"github.com/user-none/go-armjit/location"
)

// PerfMap writes a Linux perf(1) "/tmp/perf-<pid>.map"-style symbol
// map so compiled blocks show up with readable names in a profiler.
// It is the only process-wide mutable piece of this package's state
// (spec §9: "the only process-wide state is an optional perf-map file
// handle, guarded by a mutex"), so construction is explicit and
// ownership stays with whoever builds the Jit rather than living in a
// package-level global.
type PerfMap struct {
	mu sync.Mutex
	w  io.Writer
}

// NewPerfMap wraps w (typically an os.File opened at
// /tmp/perf-<pid>.map) for perf-map recording.
func NewPerfMap(w io.Writer) *PerfMap { return &PerfMap{w: w} }

// Record appends one symbol-map line for a freshly compiled entry.
// Errors are swallowed: perf-map recording is a best-effort debugging
// aid and must never fail a compile.
func (p *PerfMap) Record(loc location.Descriptor, e Entry) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(e.Code) == 0 {
		return
	}
	addr := fmt.Sprintf("%x", uintptrOf(e.Code))
	label := e.DebugLabel
	if label == "" {
		label = fmt.Sprintf("jit_%016x", loc.Raw())
	}
	fmt.Fprintf(p.w, "%s %x %s\n", addr, e.Size, label)
}
