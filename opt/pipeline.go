// Package opt implements the fixed, ordered optimizer pipeline: each
// pass is a pure function from *ir.Block to *ir.Block (mutation in
// place is allowed, but every pass must be idempotent -- running the
// pipeline twice must yield the same Block as running it once).
package opt

import "github.com/user-none/go-armjit/ir"

// PolyfillOptions configures the Polyfill pass (spec §4.3 step 1).
type PolyfillOptions struct {
	// SHA256 selects lowering of SHA-256 helper opcodes to word-op
	// sequences. ir defines no SHA-256 opcodes, so setting it changes
	// no Block.
	SHA256 bool
	// PMULL selects lowering of 64x64->128 polynomial multiply to a
	// shift-xor sequence. ir defines no polynomial-multiply opcode, so
	// setting it changes no Block.
	PMULL bool
}

// Options bundles the per-pass configuration the pipeline needs.
type Options struct {
	Polyfill PolyfillOptions
	// IsReadOnlyMemory is handed to the ConstantMemoryReads pass (spec
	// §4.3 step 3). A nil func is treated as "always false" (always
	// safe, per the external-interface contract in spec §6). Run calls
	// that pass without a PeekFunc, so it folds no read in this
	// pipeline whatever this func returns.
	IsReadOnlyMemory func(vaddr uint64) bool
	// Verify runs the debug-only Verification pass (step 7). Disabled
	// by default (the zero value), unlike ir.DebugChecks, which
	// defaults to on.
	Verify bool
}

// Run executes the fixed pipeline over block in place and returns it.
func Run(block *ir.Block, opts Options) *ir.Block {
	Polyfill(block, opts.Polyfill)
	GetSetElimination(block)
	ConstantMemoryReads(block, opts.IsReadOnlyMemory)
	ConstantPropagation(block)
	DeadCodeElimination(block)
	IdentityRemoval(block)
	if opts.Verify {
		if err := Verify(block); err != nil {
			panic("opt: verification failed: " + err.Error())
		}
	}
	return block
}
