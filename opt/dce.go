package opt

import "github.com/user-none/go-armjit/ir"

// DeadCodeElimination removes any Inst whose use-count is zero and
// which has no side effect (spec §4.3 step 5 / §8 invariant 4). Removal
// can make a newly-unreferenced producer dead in turn (e.g. folding a
// chain of Identity wrappers), so this runs to a fixed point.
func DeadCodeElimination(block *ir.Block) {
	for {
		removed := false
		for inst := block.First(); inst != nil; {
			next := inst.Next()
			if inst.UseCount() == 0 && !inst.Op.HasSideEffect() {
				block.Remove(inst)
				removed = true
			}
			inst = next
		}
		if !removed {
			return
		}
	}
}
