package location

import "testing"

func TestNewA32DistinguishesMode(t *testing.T) {
	arm := NewA32(0x1000, false, false, 0)
	thumb := NewA32(0x1000, true, false, 0)
	if arm == thumb {
		t.Fatalf("ARM and Thumb descriptors at the same PC must differ: %x == %x", arm.Raw(), thumb.Raw())
	}
	if arm.PC32() != 0x1000 || thumb.PC32() != 0x1000 {
		t.Fatalf("PC32 mismatch: arm=%x thumb=%x", arm.PC32(), thumb.PC32())
	}
	if arm.Thumb() || !thumb.Thumb() {
		t.Fatalf("Thumb() bit not round-tripped")
	}
}

func TestNewA32FPSCRModeAffectsDescriptor(t *testing.T) {
	base := NewA32(0x2000, false, false, 0)
	roundUp := NewA32(0x2000, false, false, 1)
	if base == roundUp {
		t.Fatalf("differing FPSCR mode bits must produce differing descriptors")
	}
}

func TestNewA64PCAndSingleStep(t *testing.T) {
	pc := uint64(1) << 48
	a := NewA64(pc, 0, false)
	b := NewA64(pc, 0, true)
	if a == b {
		t.Fatalf("single-step flag must change the descriptor")
	}
	if a.PC64() != pc || b.PC64() != pc {
		t.Fatalf("PC64 not round-tripped: a=%x b=%x want=%x", a.PC64(), b.PC64(), pc)
	}
	if a.SingleStep() || !b.SingleStep() {
		t.Fatalf("SingleStep() not round-tripped")
	}
}

func TestNewA64FPCRModeDoesNotCollideWithSingleStepOrPC(t *testing.T) {
	// NewA64(0, 1<<10, true) and NewA64(0, 0, false): a prior XOR-fold
	// packing of the FPCR mode bits overlapped the single-step bit and
	// silently collapsed these two distinct descriptors to the same
	// raw value.
	a := NewA64(0, 1<<10, true)
	b := NewA64(0, 0, false)
	if a == b {
		t.Fatalf("descriptors differing in single-step must not collide: %x == %x", a.Raw(), b.Raw())
	}
	if !a.SingleStep() || b.SingleStep() {
		t.Fatalf("SingleStep() corrupted by FPCR packing: a=%v b=%v", a.SingleStep(), b.SingleStep())
	}

	pc := uint64(1) << 48
	withMode := NewA64(pc, 1<<3, false)
	withoutMode := NewA64(pc, 0, false)
	if withMode == withoutMode {
		t.Fatalf("a nonzero FPCR mode bit must produce a distinct descriptor")
	}
	if withMode.PC64() != pc || withMode.SingleStep() {
		t.Fatalf("PC/single-step corrupted by FPCR packing: pc=%x step=%v", withMode.PC64(), withMode.SingleStep())
	}
	if withMode.FPCRMode() != 1<<3 {
		t.Fatalf("FPCRMode() = %d, want %d", withMode.FPCRMode(), 1<<3)
	}
}

func TestDescriptorIsMapKey(t *testing.T) {
	m := map[Descriptor]int{}
	d1 := NewA32(4, true, false, 3)
	d2 := NewA32(8, true, false, 3)
	m[d1] = 1
	m[d2] = 2
	if m[d1] != 1 || m[d2] != 2 {
		t.Fatalf("Descriptor did not behave as a stable map key")
	}
}
