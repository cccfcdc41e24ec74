package opt

import "github.com/user-none/go-armjit/ir"

// Polyfill is the pipeline's slot for rewriting opcodes absent from the
// current host feature set into supported sequences. ir's Opcode set
// has no SHA-256 or polynomial-multiply opcodes, so the pass leaves
// every Block unchanged whichever PolyfillOptions are set.
func Polyfill(block *ir.Block, opts PolyfillOptions) {
	if !opts.SHA256 && !opts.PMULL {
		return
	}
	// Both polyfills operate on opcodes not modeled by this reduced
	// Opcode set (SHA256MessageSchedule0/1, SHA256Hash, PMULL), so
	// there is nothing to rewrite and the pass is trivially idempotent.
	_ = block
}
