package exclusive

import (
	"sync"
	"testing"
)

// TestTwoProcessorScenario reproduces the exact sequence spec.md §8
// scenario 6 names: P0 marks 0x1000, P1 marks the same address under
// a different pid, P0's store must now fail, P1's store succeeds, and
// a further P0 attempt still fails.
func TestTwoProcessorScenario(t *testing.T) {
	m := NewMonitor(2, ExactAddress)
	const p0, p1 = 0, 1

	v := m.ReadAndMark(p0, 0x1000, 4, func() []byte { return []byte{1, 2, 3, 4} })
	if len(v) != 4 {
		t.Fatalf("ReadAndMark(p0) returned %d bytes, want 4", len(v))
	}

	m.ReadAndMark(p1, 0x1000, 4, func() []byte { return []byte{5, 6, 7, 8} })

	if m.DoExclusiveOperation(p0, 0x1000, 4, func([]byte) bool { return true }) {
		t.Fatal("p0's reservation was invalidated by p1's ReadAndMark; its store must fail")
	}
	if !m.DoExclusiveOperation(p1, 0x1000, 4, func([]byte) bool { return true }) {
		t.Fatal("p1 holds the only live reservation at 0x1000; its store must succeed")
	}
	if m.DoExclusiveOperation(p0, 0x1000, 4, func([]byte) bool { return true }) {
		t.Fatal("p0's store must still fail after p1's successful store")
	}
}

func TestDoExclusiveOperationClearsOverlappingReservations(t *testing.T) {
	m := NewMonitor(2, ExactAddress)
	m.ReadAndMark(0, 0x2000, 8, func() []byte { return make([]byte, 8) })
	m.ReadAndMark(1, 0x2000, 8, func() []byte { return make([]byte, 8) })

	if !m.DoExclusiveOperation(1, 0x2000, 8, func([]byte) bool { return true }) {
		t.Fatal("p1's fresh reservation should succeed")
	}
	// Re-mark p0 and confirm a successful exclusive op clears it too.
	m.ReadAndMark(0, 0x2000, 8, func() []byte { return make([]byte, 8) })
	if !m.DoExclusiveOperation(0, 0x2000, 8, func([]byte) bool { return true }) {
		t.Fatal("p0 re-marked after the clear; its store should succeed")
	}
	if m.DoExclusiveOperation(0, 0x2000, 8, func([]byte) bool { return true }) {
		t.Fatal("p0's own successful store must clear its own reservation")
	}
}

func TestDoExclusiveOperationFailingOpDoesNotClearReservation(t *testing.T) {
	m := NewMonitor(1, ExactAddress)
	m.ReadAndMark(0, 0x3000, 4, func() []byte { return []byte{0, 0, 0, 0} })
	if m.DoExclusiveOperation(0, 0x3000, 4, func([]byte) bool { return false }) {
		t.Fatal("op reporting failure must make DoExclusiveOperation report failure")
	}
	if !m.DoExclusiveOperation(0, 0x3000, 4, func([]byte) bool { return true }) {
		t.Fatal("a prior failing op must not have cleared the reservation")
	}
}

func TestClearProcessorOnlyAffectsThatProcessor(t *testing.T) {
	m := NewMonitor(2, ExactAddress)
	m.ReadAndMark(0, 0x4000, 4, func() []byte { return []byte{1, 1, 1, 1} })
	m.ReadAndMark(1, 0x5000, 4, func() []byte { return []byte{2, 2, 2, 2} })

	m.ClearProcessor(0)
	if m.DoExclusiveOperation(0, 0x4000, 4, func([]byte) bool { return true }) {
		t.Fatal("p0's reservation was cleared; its store must fail")
	}
	if !m.DoExclusiveOperation(1, 0x5000, 4, func([]byte) bool { return true }) {
		t.Fatal("p1's reservation should be untouched by ClearProcessor(0)")
	}
}

func TestAligned16Granule(t *testing.T) {
	m := NewMonitor(1, Aligned16)
	m.ReadAndMark(0, 0x1008, 8, func() []byte { return make([]byte, 8) })
	// 0x1000 and 0x1008 fall in the same 16-byte-aligned granule.
	if !m.DoExclusiveOperation(0, 0x1000, 8, func([]byte) bool { return true }) {
		t.Fatal("A64 granule should treat 0x1000 and 0x1008 as the same reservation")
	}
}

func TestMonitorConcurrentAccessIsSerialized(t *testing.T) {
	m := NewMonitor(4, ExactAddress)
	var wg sync.WaitGroup
	for pid := 0; pid < 4; pid++ {
		wg.Add(1)
		go func(pid int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				m.ReadAndMark(pid, 0x9000, 4, func() []byte { return []byte{byte(pid)} })
				m.DoExclusiveOperation(pid, 0x9000, 4, func([]byte) bool { return true })
			}
		}(pid)
	}
	wg.Wait()
}
