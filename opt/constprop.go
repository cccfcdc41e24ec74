package opt

import "github.com/user-none/go-armjit/ir"

// ConstantPropagation folds IR arithmetic/logic/shift ops whose
// arguments are all immediates, and applies the standard zero/identity
// laws (x+0, x*1, x&0, x|0, x^0) even when the other operand isn't
// constant. Every use of a folded Inst is retargeted to the computed
// value and the Inst itself is demoted to Identity with its original
// operands, same convention as the other folding passes in this
// package, so DeadCodeElimination/IdentityRemoval finish the job.
func ConstantPropagation(block *ir.Block) {
	for inst := block.First(); inst != nil; inst = inst.Next() {
		if v, ok := fold(inst); ok {
			ir.Retarget(block, inst, v)
			inst.Op = ir.OpIdentity
		}
	}
}

func concreteType(v ir.Value) ir.Type {
	switch v.Type() {
	case ir.U8, ir.U16, ir.U32, ir.U64:
		return v.Type()
	default:
		return ir.Void
	}
}

func width(t ir.Type) int {
	switch t {
	case ir.U8:
		return 8
	case ir.U16:
		return 16
	case ir.U32:
		return 32
	case ir.U64:
		return 64
	default:
		return 0
	}
}

func mask(bits int) uint64 {
	if bits >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << bits) - 1
}

func scalarOf(t ir.Type, v uint64) ir.Value {
	switch t {
	case ir.U8:
		return ir.ImmU8(uint8(v))
	case ir.U16:
		return ir.ImmU16(uint16(v))
	case ir.U32:
		return ir.ImmU32(uint32(v))
	default:
		return ir.ImmU64(v)
	}
}

// fold attempts to compute inst's result at compile time. It returns
// ok==false for anything it doesn't know how to reduce (U128 arithmetic,
// multi-result ops, non-scalar types) -- those are left to the backend.
func fold(inst *ir.Inst) (ir.Value, bool) {
	switch inst.Op {
	case ir.OpAdd, ir.OpSub, ir.OpAnd, ir.OpOr, ir.OpEor, ir.OpMul:
		a, b := inst.Args[0], inst.Args[1]
		// Add/Sub/And/Or/Eor/Mul are declared Opaque-in-Opaque-out;
		// the concrete width lives on whichever operand actually
		// carries a scalar Type.
		t := concreteType(a)
		if t == ir.Void {
			t = concreteType(b)
		}
		bits := width(t)
		if bits == 0 {
			return ir.Value{}, false
		}
		if a.IsImmediate() && b.IsImmediate() {
			av, bv := a.U64()&mask(bits), b.U64()&mask(bits)
			var r uint64
			switch inst.Op {
			case ir.OpAdd:
				r = av + bv
			case ir.OpSub:
				r = av - bv
			case ir.OpAnd:
				r = av & bv
			case ir.OpOr:
				r = av | bv
			case ir.OpEor:
				r = av ^ bv
			case ir.OpMul:
				r = av * bv
			}
			return scalarOf(t, r&mask(bits)), true
		}
		// Identity laws, only meaningful when the result type is the
		// same concrete width as the non-constant operand (guaranteed
		// here since Add/Sub/And/Or/Eor/Mul take matching-width args).
		switch inst.Op {
		case ir.OpAdd, ir.OpOr, ir.OpEor:
			if a.IsImmediate() && a.U64()&mask(bits) == 0 {
				return b, true
			}
			if b.IsImmediate() && b.U64()&mask(bits) == 0 {
				return a, true
			}
		case ir.OpAnd:
			if a.IsImmediate() && a.U64()&mask(bits) == mask(bits) {
				return b, true
			}
			if b.IsImmediate() && b.U64()&mask(bits) == mask(bits) {
				return a, true
			}
			if (a.IsImmediate() && a.U64()&mask(bits) == 0) || (b.IsImmediate() && b.U64()&mask(bits) == 0) {
				return scalarOf(t, 0), true
			}
		case ir.OpMul:
			if a.IsImmediate() && a.U64()&mask(bits) == 1 {
				return b, true
			}
			if b.IsImmediate() && b.U64()&mask(bits) == 1 {
				return a, true
			}
		}
		return ir.Value{}, false

	case ir.OpNot:
		a := inst.Args[0]
		t := concreteType(a)
		bits := width(t)
		if bits != 0 && a.IsImmediate() {
			return scalarOf(t, (^a.U64())&mask(bits)), true
		}
		return ir.Value{}, false

	case ir.OpByteReverseWord:
		if a := inst.Args[0]; a.IsImmediate() {
			v := uint32(a.U64())
			return ir.ImmU32(v>>24 | (v>>8)&0xFF00 | (v<<8)&0xFF0000 | v<<24), true
		}
		return ir.Value{}, false

	case ir.OpSignExtendByteToWord:
		if a := inst.Args[0]; a.IsImmediate() {
			return ir.ImmU32(uint32(int32(int8(uint8(a.U64()))))), true
		}
		return ir.Value{}, false

	case ir.OpSignExtendHalfToWord:
		if a := inst.Args[0]; a.IsImmediate() {
			return ir.ImmU32(uint32(int32(int16(uint16(a.U64()))))), true
		}
		return ir.Value{}, false

	case ir.OpZeroExtendByteToWord:
		if a := inst.Args[0]; a.IsImmediate() {
			return ir.ImmU32(uint32(uint8(a.U64()))), true
		}
		return ir.Value{}, false

	case ir.OpZeroExtendHalfToWord:
		if a := inst.Args[0]; a.IsImmediate() {
			return ir.ImmU32(uint32(uint16(a.U64()))), true
		}
		return ir.Value{}, false

	default:
		return ir.Value{}, false
	}
}
