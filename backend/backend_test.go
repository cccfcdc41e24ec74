package backend

import (
	"testing"

	"github.com/user-none/go-armjit/ir"
	"github.com/user-none/go-armjit/location"
)

// nopCodec is a SpillCodec stub for tests that never exercise a real
// spill (numSpill == 0 means RegAlloc can never call it, since
// eviction always needs a free slot first).
type nopCodec struct{}

func (nopCodec) EmitSpillStore(CodeBuffer, HostLocKind, int, int) {}
func (nopCodec) EmitSpillLoad(CodeBuffer, int, HostLocKind, int)  {}

func TestRegAllocReleasesOnLastUse(t *testing.T) {
	block := ir.NewBlock(location.NewA32(0, true, false, 0))
	e := ir.NewEmitter(block)
	a := e.Add(ir.ImmU32(1), ir.ImmU32(2))
	e.SetRegister(ir.RefA32Reg(0), a)
	e.SetRegister(ir.RefA32Reg(1), a)

	buf := &ByteBuffer{}
	ra := NewRegAlloc(1, 1, 0, nopCodec{})
	var producer *ir.Inst
	for inst := block.First(); inst != nil; inst = inst.Next() {
		if inst.Op == ir.OpAdd {
			producer = inst
			ra.Assign(inst, buf)
		}
	}
	if producer == nil {
		t.Fatal("expected an Add instruction")
	}
	// Two consumers: only the GPR reserved for producer's result is
	// in play, so a second Assign before both uses are drained must
	// fail (no free GPR, no spill slot to evict into).
	ra.Location(producer, buf)
	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("expected Assign to panic while the sole GPR is still held")
			}
		}()
		other := ir.NewInst(ir.OpAdd, ir.ImmU32(3), ir.ImmU32(4))
		ra.Assign(other, buf)
	}()
	ra.Location(producer, buf) // drains the second use, freeing the GPR
}

func TestConstantPoolDeduplicates(t *testing.T) {
	p := NewConstantPool()
	a := p.Add(0x1234, 0)
	b := p.Add(0x1234, 0)
	c := p.Add(0x5678, 0)
	if a != b {
		t.Fatalf("identical constants should share an offset: %d != %d", a, b)
	}
	if c == a {
		t.Fatalf("distinct constants must not share an offset")
	}
	if p.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", p.Len())
	}
	if p.Size() != 32 {
		t.Fatalf("Size() = %d, want 32", p.Size())
	}
}

func TestHostFeatureString(t *testing.T) {
	f := FeatureAVX2 | FeatureBMI2
	if got := f.String(); got != "AVX2|BMI2" {
		t.Fatalf("String() = %q, want %q", got, "AVX2|BMI2")
	}
	if !f.Has(FeatureAVX2) || f.Has(FeatureAES) {
		t.Fatalf("Has() mismatch for %v", f)
	}
}
