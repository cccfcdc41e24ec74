package blockcache

import (
	"bytes"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/user-none/go-armjit/location"
)

func TestArenaReserveIsWritableThenExecutable(t *testing.T) {
	a := NewArena()
	defer a.Close()

	code, finalize, err := a.Reserve(16)
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	copy(code, []byte{0xC3, 0x90, 0x90, 0x90}) // ret; nop; nop; nop
	if err := finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if code[0] != 0xC3 {
		t.Fatalf("code not preserved across finalize: %v", code[:4])
	}
}

func TestArenaRejectsOversizedBlock(t *testing.T) {
	a := NewArena()
	defer a.Close()
	if _, _, err := a.Reserve(arenaChunkSize + 1); err == nil {
		t.Fatal("expected an error for a block larger than one arena chunk")
	}
}

func TestCacheGetOrCompileCachesResult(t *testing.T) {
	c := NewCache()
	defer c.Arena().Close()

	loc := location.NewA32(0x1000, true, false, 0)
	var compiles int32
	fn := func(loc location.Descriptor) (Entry, error) {
		atomic.AddInt32(&compiles, 1)
		return Entry{Loc: loc, Code: []byte{0x90}, Size: 1}, nil
	}

	for i := 0; i < 3; i++ {
		if _, err := c.GetOrCompile(loc, fn); err != nil {
			t.Fatalf("GetOrCompile: %v", err)
		}
	}
	if compiles != 1 {
		t.Fatalf("compiled %d times, want exactly 1", compiles)
	}
	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", c.Len())
	}
}

func TestCacheGetOrCompileDedupsConcurrentCallers(t *testing.T) {
	c := NewCache()
	defer c.Arena().Close()

	loc := location.NewA32(0x2000, true, false, 0)
	start := make(chan struct{})
	var compiles int32
	fn := func(loc location.Descriptor) (Entry, error) {
		<-start
		atomic.AddInt32(&compiles, 1)
		return Entry{Loc: loc, Code: []byte{0x90}, Size: 1}, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.GetOrCompile(loc, fn); err != nil {
				t.Errorf("GetOrCompile: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	if compiles != 1 {
		t.Fatalf("compiled %d times under concurrent lookup, want exactly 1", compiles)
	}
}

func TestCacheInvalidate(t *testing.T) {
	c := NewCache()
	defer c.Arena().Close()
	loc := location.NewA32(0x3000, true, false, 0)
	fn := func(loc location.Descriptor) (Entry, error) {
		return Entry{Loc: loc, Code: []byte{0x90}, Size: 1}, nil
	}
	if _, err := c.GetOrCompile(loc, fn); err != nil {
		t.Fatal(err)
	}
	c.InvalidateBlock(loc)
	if _, ok := c.Get(loc); ok {
		t.Fatal("expected InvalidateBlock to remove the entry")
	}

	if _, err := c.GetOrCompile(loc, fn); err != nil {
		t.Fatal(err)
	}
	c.InvalidateAll()
	if c.Len() != 0 {
		t.Fatalf("Len() = %d after InvalidateAll, want 0", c.Len())
	}
}

func TestPerfMapRecordsLine(t *testing.T) {
	var buf bytes.Buffer
	p := NewPerfMap(&buf)
	loc := location.NewA32(0x4000, true, false, 0)
	p.Record(loc, Entry{Code: []byte{0x90, 0x90}, Size: 2, DebugLabel: "jit_test"})
	if !strings.Contains(buf.String(), "jit_test") {
		t.Fatalf("perf map line missing label: %q", buf.String())
	}
}
