package opt

import (
	"fmt"

	"github.com/user-none/go-armjit/ir"
)

// Verify checks the invariants from spec §8 against block: every Inst's
// argument types match its opcode, every argument references an Inst
// earlier in the Block (or a valid immediate/register), every use-count
// matches the actual number of references, and every pseudo-op has its
// producer. It is a debug-only pass -- production compiles skip it the
// same way ir.DebugChecks is normally left off outside of tests.
func Verify(block *ir.Block) error {
	seen := map[*ir.Inst]bool{}
	actualUses := map[*ir.Inst]int{}

	for inst := block.First(); inst != nil; inst = inst.Next() {
		want := inst.Op.ArgTypes()
		args := inst.ArgValues()
		if len(want) != 0 && len(want) != len(args) {
			return fmt.Errorf("opt: %s has %d args, opcode wants %d", inst.Op, len(args), len(want))
		}
		for i, a := range args {
			if len(want) != 0 && !a.Type().Matches(want[i]) {
				return fmt.Errorf("opt: %s arg %d type %s does not match %s", inst.Op, i, a.Type(), want[i])
			}
			if ref := a.Inst(); ref != nil {
				if !seen[ref] {
					return fmt.Errorf("opt: %s references an Inst not earlier in the Block", inst.Op)
				}
				actualUses[ref]++
			}
		}
		if inst.Op.IsPseudoOp() && inst.Producer() == nil {
			return fmt.Errorf("opt: pseudo-op %s has no producer link", inst.Op)
		}
		seen[inst] = true
	}

	for inst := block.First(); inst != nil; inst = inst.Next() {
		if inst.UseCount() != actualUses[inst] {
			return fmt.Errorf("opt: %s use-count %d does not match %d actual references", inst.Op, inst.UseCount(), actualUses[inst])
		}
	}
	return nil
}
