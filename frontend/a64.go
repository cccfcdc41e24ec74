package frontend

import (
	"github.com/user-none/go-armjit/external"
	"github.com/user-none/go-armjit/ir"
	"github.com/user-none/go-armjit/location"
)

// a64Visitor lifts one A64 basic block. Like a32Visitor it only
// decodes the handful of encodings exercised by this module's test
// suite; everything else is an interpreter fallback.
type a64Visitor struct {
	e    *ir.IREmitter
	mem  external.MemoryInterface
	opts Options
	addr uint64
}

func newA64Visitor(e *ir.IREmitter, mem external.MemoryInterface, loc location.Descriptor, opts Options) *a64Visitor {
	return &a64Visitor{e: e, mem: mem, opts: opts, addr: loc.PC64()}
}

func (v *a64Visitor) pc() uint64 { return v.addr }

func (v *a64Visitor) step() (int, bool) {
	word, ok := v.mem.MemoryReadCode(v.addr)
	if !ok {
		v.interpretFallback()
		return 0, false
	}

	switch {
	case word&0xFFE0FC00 == 0x8B000000:
		// ADD (shifted register), Xd = Xn + Xm with shift 0: a
		// minimal but real slice of the ADD (shifted register)
		// family (sf=1, opc=00, no shift).
		v.addRegister(word)
		v.addr += 4
		return 4, true
	default:
		v.interpretFallback()
		return 0, false
	}
}

func (v *a64Visitor) addRegister(word uint32) {
	rd := uint8(word & 0x1F)
	rn := uint8((word >> 5) & 0x1F)
	rm := uint8((word >> 16) & 0x1F)

	e := v.e
	a := e.GetRegister(ir.RefA64Reg(rn))
	b := e.GetRegister(ir.RefA64Reg(rm))
	sum := e.Add(a, b)
	e.SetRegister(ir.RefA64Reg(rd), sum)
}

func (v *a64Visitor) interpretFallback() {
	v.mem.InterpreterFallback(v.addr, 1)
	v.e.SetTerminal(ir.Interpret{Loc: location.NewA64(v.addr, 0, false)})
}
