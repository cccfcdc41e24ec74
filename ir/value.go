package ir

// ValueKind discriminates the tagged union that Value implements.
type ValueKind uint8

const (
	KindImmediate ValueKind = iota
	KindInstRef
	KindA32Reg
	KindA32ExtReg
	KindA64Reg
	KindA64Vec
	KindCond
	KindAccType
	KindTable
)

// maxTableValues bounds the inline Table payload: vector-lane ops and
// coprocessor word lists never exceed this in practice (A64 LD4/ST4 is
// the widest consumer, at 4 registers plus an address).
const maxTableValues = 6

// Value is a tagged union of {immediate, reference to an Inst result in
// the same block, reference to an architectural register by symbolic
// index, a Cond/AccType enum immediate, a small inline Table of Values}.
// Value is a small value type (only a Table payload is heap-allocated)
// so it can be passed and copied freely while building a Block.
type Value struct {
	kind ValueKind
	typ  Type

	imm    uint64 // immediate payload for KindImmediate (U1..U64, zero-extended)
	imm128 [2]uint64
	ref    *Inst // KindInstRef: the producing Inst
	reg    uint8 // KindA32Reg/A32ExtReg/A64Reg/A64Vec: symbolic register index
	cond   CondCode
	acc    MemAccType

	table    []Value
	tableLen int
}

// imm constructs an immediate Value of the given Type. width-checking
// against the Type is the caller's responsibility via the typed
// constructors below (ImmU8, ImmU32, ...); imm itself is the common path
// they funnel through.
func imm(t Type, v uint64) Value { return Value{kind: KindImmediate, typ: t, imm: v} }

func ImmU1(v bool) Value {
	var x uint64
	if v {
		x = 1
	}
	return imm(U1, x)
}
func ImmU8(v uint8) Value   { return imm(U8, uint64(v)) }
func ImmU16(v uint16) Value { return imm(U16, uint64(v)) }
func ImmU32(v uint32) Value { return imm(U32, uint64(v)) }
func ImmU64(v uint64) Value { return imm(U64, v) }

// ImmU128 constructs a 128-bit immediate from its low and high 64-bit halves.
func ImmU128(lo, hi uint64) Value {
	return Value{kind: KindImmediate, typ: U128, imm128: [2]uint64{lo, hi}}
}

// ImmCond constructs a Cond-typed immediate.
func ImmCond(c CondCode) Value { return Value{kind: KindCond, typ: Cond, cond: c} }

// ImmAccType constructs an AccType-typed immediate.
func ImmAccType(a MemAccType) Value { return Value{kind: KindAccType, typ: AccType, acc: a} }

// RefA32Reg references an A32 general-purpose register by index (0-15,
// 15 being PC read-as-PC+offset per the architecture's own quirks,
// handled by the front-end, not by this reference).
func RefA32Reg(n uint8) Value { return Value{kind: KindA32Reg, typ: A32Reg, reg: n} }

// RefA32ExtReg references an A32 extended (VFP/NEON) register by index.
func RefA32ExtReg(n uint8) Value { return Value{kind: KindA32ExtReg, typ: A32ExtReg, reg: n} }

// RefA64Reg references an A64 general-purpose register by index (0-30;
// 31 is context-dependent SP/ZR, resolved by the front-end).
func RefA64Reg(n uint8) Value { return Value{kind: KindA64Reg, typ: A64Reg, reg: n} }

// RefA64Vec references an A64 SIMD/FP vector register by index (0-31).
func RefA64Vec(n uint8) Value { return Value{kind: KindA64Vec, typ: A64Vec, reg: n} }

// fromInst builds a reference Value to the result of inst. It does not
// touch the use-count: IREmitter bumps that when the Value is passed as
// an argument to an emitted Inst.
func fromInst(inst *Inst) Value {
	if inst == nil {
		panic("ir: fromInst called with nil Inst")
	}
	return Value{kind: KindInstRef, typ: inst.Op.ResultType(), ref: inst}
}

// NewTable packs up to maxTableValues Values into a single Table-typed
// Value, used by vector ops (pack/unpack, LD4/ST4 register lists) whose
// opcode signature wants a single variadic-ish operand slot.
func NewTable(vs ...Value) Value {
	if len(vs) > maxTableValues {
		panic("ir: table value overflow")
	}
	v := Value{kind: KindTable, typ: Table, tableLen: len(vs)}
	v.table = append([]Value(nil), vs...)
	return v
}

// Type returns the Value's Type tag.
func (v Value) Type() Type { return v.typ }

// Kind returns the Value's tagged-union discriminant.
func (v Value) Kind() ValueKind { return v.kind }

// IsImmediate reports whether v carries a compile-time-known value
// (immediate, Cond, or AccType payload) as opposed to an Inst reference
// or register reference. The constant-propagation pass uses this.
func (v Value) IsImmediate() bool {
	switch v.kind {
	case KindImmediate, KindCond, KindAccType:
		return true
	default:
		return false
	}
}

// U64 returns the zero-extended 64-bit payload of an immediate Value.
// Panics if v is not an immediate narrower than or equal to 64 bits.
func (v Value) U64() uint64 {
	if v.kind != KindImmediate || v.typ == U128 {
		panic("ir: U64() on non-scalar-immediate Value")
	}
	return v.imm
}

// U128 returns the (lo, hi) halves of a U128 immediate.
func (v Value) U128() (lo, hi uint64) {
	if v.kind != KindImmediate || v.typ != U128 {
		panic("ir: U128() on non-u128 Value")
	}
	return v.imm128[0], v.imm128[1]
}

// CondVal returns the CondCode payload of a Cond-typed Value.
func (v Value) CondVal() CondCode {
	if v.kind != KindCond {
		panic("ir: CondVal() on non-Cond Value")
	}
	return v.cond
}

// AccessType returns the MemAccType payload of an AccType-typed Value.
func (v Value) AccessType() MemAccType {
	if v.kind != KindAccType {
		panic("ir: AccessType() on non-AccType Value")
	}
	return MemAccType(v.acc)
}

// RegIndex returns the symbolic register index for A32Reg/A32ExtReg/
// A64Reg/A64Vec Values.
func (v Value) RegIndex() uint8 {
	switch v.kind {
	case KindA32Reg, KindA32ExtReg, KindA64Reg, KindA64Vec:
		return v.reg
	default:
		panic("ir: RegIndex() on non-register Value")
	}
}

// Inst returns the producing Inst for a KindInstRef Value, or nil.
func (v Value) Inst() *Inst {
	if v.kind != KindInstRef {
		return nil
	}
	return v.ref
}

// Table returns the slice of Values packed into a Table-typed Value.
func (v Value) Table() []Value {
	if v.kind != KindTable {
		panic("ir: Table() on non-table Value")
	}
	return v.table[:v.tableLen]
}
