package ir

import "fmt"

// Inst is one IR instruction: an Opcode, its argument Values, a running
// use-count, and (for ops with side-channel outputs) links to the
// pseudo-ops that extract those channels. Insts live in an intrusive
// doubly-linked list inside their parent Block.
type Inst struct {
	Op   Opcode
	Args [4]Value
	argN int

	useCount int

	// Pseudo-op links: set on the producer when IREmitter creates the
	// corresponding GetXFromOp pseudo-instruction. Spec §4.2 invariant:
	// at most one pseudo-op per producer per channel.
	pseudoCarry    *Inst
	pseudoOverflow *Inst
	pseudoGE       *Inst
	pseudoNZCV     *Inst

	// pseudoOf is set on a pseudo-op Inst itself, pointing back at its
	// producer -- the "pseudo-op must reference the op that produces
	// it" invariant.
	pseudoOf *Inst

	prev, next *Inst
	block      *Block
}

// NewInst allocates a detached Inst. Callers normally go through
// IREmitter instead of calling this directly, so that signatures get
// checked and the Inst is appended to a Block.
func NewInst(op Opcode, args ...Value) *Inst {
	if len(args) > len(Inst{}.Args) {
		panic(fmt.Sprintf("ir: opcode %s takes more than %d arguments (%d given)", op, len(Inst{}.Args), len(args)))
	}
	inst := &Inst{Op: op, argN: len(args)}
	copy(inst.Args[:], args)
	return inst
}

// ArgValues returns the Inst's argument Values.
func (i *Inst) ArgValues() []Value { return i.Args[:i.argN] }

// UseCount returns the number of argument slots that reference this
// Inst's result (bumped when IREmitter emits an Inst taking it as an
// argument, and kept current by ReplaceArg and Block.Remove).
func (i *Inst) UseCount() int { return i.useCount }

// Type returns the result Type of this Inst's Opcode.
func (i *Inst) Type() Type { return i.Op.ResultType() }

// Block returns the Block this Inst currently lives in, or nil if detached.
func (i *Inst) Block() *Block { return i.block }

// Prev/Next walk the intrusive list within the parent Block.
func (i *Inst) Prev() *Inst { return i.prev }
func (i *Inst) Next() *Inst { return i.next }

// PseudoCarry/PseudoOverflow/PseudoGE/PseudoNZCV return the pseudo-op
// Inst extracting that channel from this producer, or nil if no such
// pseudo-op has been created.
func (i *Inst) PseudoCarry() *Inst    { return i.pseudoCarry }
func (i *Inst) PseudoOverflow() *Inst { return i.pseudoOverflow }
func (i *Inst) PseudoGE() *Inst       { return i.pseudoGE }
func (i *Inst) PseudoNZCV() *Inst     { return i.pseudoNZCV }

// Producer returns the Inst a pseudo-op extracts a channel from.
func (i *Inst) Producer() *Inst { return i.pseudoOf }

func (i *Inst) String() string {
	return fmt.Sprintf("%%%p = %s", i, i.Op)
}

// checkArgs validates args against op's declared signature. It panics on
// mismatch: per spec §3 this is a construction-time (debug) check, and
// a mismatch here is a translator/optimizer bug, not a guest error.
func checkArgs(op Opcode, args []Value) {
	if !DebugChecks {
		return
	}
	want := op.ArgTypes()
	if len(want) != 0 && len(want) != len(args) {
		panic(fmt.Sprintf("ir: %s expects %d args, got %d", op, len(want), len(args)))
	}
	for idx, w := range want {
		if !args[idx].Type().Matches(w) {
			panic(fmt.Sprintf("ir: %s arg %d: type %s does not match expected %s", op, idx, args[idx].Type(), w))
		}
	}
}

// ReplaceArg swaps argument idx for newVal, maintaining use-count
// bookkeeping on both the displaced and the newly-referenced Inst (if
// either is a KindInstRef Value). Optimizer passes use this to rewire
// uses away from an Inst they are about to delete (IdentityRemoval,
// GetSetElimination).
func (i *Inst) ReplaceArg(idx int, newVal Value) {
	old := i.Args[idx]
	if old.kind == KindInstRef && old.ref != nil {
		old.ref.useCount--
	}
	if newVal.kind == KindInstRef && newVal.ref != nil {
		newVal.ref.useCount++
	}
	i.Args[idx] = newVal
}

// Retarget rewrites every use of old's result across block into newVal,
// by walking every live Inst's argument list. Returns the number of
// argument slots rewritten.
func Retarget(block *Block, old *Inst, newVal Value) int {
	n := 0
	for inst := block.First(); inst != nil; inst = inst.Next() {
		for i := 0; i < inst.argN; i++ {
			if a := inst.Args[i]; a.kind == KindInstRef && a.ref == old {
				inst.ReplaceArg(i, newVal)
				n++
			}
		}
	}
	return n
}

// DebugChecks gates IR construction-time type checking and the
// Verification optimizer pass. Production embedders compiling many
// blocks per second typically disable it; tests leave it on.
var DebugChecks = true
