package opt

import "github.com/user-none/go-armjit/ir"

// IdentityRemoval removes Identity ops inserted by earlier passes,
// rewiring their uses to the underlying value. Runs after
// DeadCodeElimination so most Identity wrappers created by folding are
// already gone by the time this walks the block; this pass catches the
// rest (Identity chains, or an Identity whose only use is another
// Identity).
func IdentityRemoval(block *ir.Block) {
	for inst := block.First(); inst != nil; {
		next := inst.Next()
		if inst.Op == ir.OpIdentity {
			underlying := inst.Args[0]
			ir.Retarget(block, inst, underlying)
			if inst.UseCount() == 0 {
				block.Remove(inst)
			}
		}
		inst = next
	}
}
