package backend

import "github.com/user-none/go-armjit/ir"

// CodeBuffer is the append-only byte sink an Emitter writes machine
// code into; ByteBuffer, a plain []byte wrapper, implements it and is
// what the compile path emits into before copying the bytes into the
// arena.
type CodeBuffer interface {
	Emit(b ...byte)
	Emit32(v uint32)
	Emit64(v uint64)
	Len() int
	// Patch overwrites 4 bytes at offset, for back-patching a forward
	// branch once its target address is known.
	Patch32(offset int, v uint32)
}

// Emitter is the contract each per-arch backend (x64, arm64, riscv64)
// implements: given a register-allocated, optimized Block, emit host
// machine code for it into buf. EmitBlock returns only an error; it
// reports no constant-pool entries to the caller.
type Emitter interface {
	// Features reports which HostFeature bits this Emitter was built
	// to target; EmitBlock may choose a narrower encoding when a bit
	// is unset (e.g. no AVX2 means no 256-bit ops).
	Features() HostFeature

	// EmitBlock lowers every Inst in block, in order, consulting ra
	// for argument/result locations, and appends the resulting
	// machine code to buf.
	EmitBlock(block *ir.Block, ra *RegAlloc, buf CodeBuffer) error

	// SpillCodec supplies the store/load encodings RegAlloc needs to
	// evict a register to a spill slot and reload it later.
	SpillCodec
}

// ByteBuffer is a minimal CodeBuffer over a plain slice, used by the
// per-arch emitter tests and by dispatcher.Runtime's compile path.
type ByteBuffer struct {
	b []byte
}

func (c *ByteBuffer) Emit(b ...byte) { c.b = append(c.b, b...) }
func (c *ByteBuffer) Emit32(v uint32) {
	c.b = append(c.b, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}
func (c *ByteBuffer) Emit64(v uint64) {
	c.Emit32(uint32(v))
	c.Emit32(uint32(v >> 32))
}
func (c *ByteBuffer) Len() int { return len(c.b) }
func (c *ByteBuffer) Patch32(offset int, v uint32) {
	c.b[offset] = byte(v)
	c.b[offset+1] = byte(v >> 8)
	c.b[offset+2] = byte(v >> 16)
	c.b[offset+3] = byte(v >> 24)
}
func (c *ByteBuffer) Bytes() []byte { return c.b }
