package ir

// IREmitter is the builder the front-end drives to construct a Block
// one guest instruction at a time. Every method type-checks its
// arguments (when DebugChecks is set), appends exactly the Insts it
// describes to the current Block, and returns typed handles to the new
// Insts.
type IREmitter struct {
	Block *Block
}

// NewEmitter returns an IREmitter appending to block.
func NewEmitter(block *Block) *IREmitter { return &IREmitter{Block: block} }

func (e *IREmitter) emit(op Opcode, args ...Value) *Inst {
	checkArgs(op, args)
	inst := NewInst(op, args...)
	for _, a := range args {
		if a.kind == KindInstRef && a.ref != nil {
			a.ref.useCount++
		}
	}
	e.Block.Append(inst)
	return inst
}

func (e *IREmitter) val(op Opcode, args ...Value) Value {
	return fromInst(e.emit(op, args...))
}

// pseudo returns the existing pseudo-op Inst for producer/op if one was
// already created, otherwise emits a new one and records the link. This
// enforces "exactly one pseudo-op per producer per extracted channel".
func (e *IREmitter) pseudo(producer *Inst, op Opcode, slot **Inst) Value {
	if *slot != nil {
		return fromInst(*slot)
	}
	p := e.emit(op, Value{kind: KindInstRef, typ: Opaque, ref: producer})
	p.pseudoOf = producer
	*slot = p
	return fromInst(p)
}

// Identity wraps v in an Identity op; IdentityRemoval later elides it,
// rewiring uses straight to v. It suits a guest operation that is
// architecturally a no-op copy (e.g. MOV Rd, Rd-shifted-by-0) but still
// needs an Inst to hang a use on; the A32/A64 visitors here do not call it.
func (e *IREmitter) Identity(v Value) Value { return e.val(OpIdentity, v) }

// Add emits an addition with no carry/overflow output.
func (e *IREmitter) Add(a, b Value) Value { return e.val(OpAdd, a, b) }

// Sub emits a subtraction with no borrow/overflow output.
func (e *IREmitter) Sub(a, b Value) Value { return e.val(OpSub, a, b) }

// AddWithCarryResult bundles the three outputs of AddWithCarry /
// SubWithCarry: the sum, the carry-out, and the signed overflow flag.
type AddWithCarryResult struct {
	Result, Carry, Overflow Value
}

// AddWithCarry emits a+b+carryIn, returning {result, carry_out, overflow}
// by pairing the op with GetCarryFromOp/GetOverflowFromOp pseudo-ops.
func (e *IREmitter) AddWithCarry(a, b, carryIn Value) AddWithCarryResult {
	inst := e.emit(OpAddWithCarry, a, b, carryIn)
	return AddWithCarryResult{
		Result:   fromInst(inst),
		Carry:    e.pseudo(inst, OpGetCarryFromOp, &inst.pseudoCarry),
		Overflow: e.pseudo(inst, OpGetOverflowFromOp, &inst.pseudoOverflow),
	}
}

// SubWithCarry emits a-b-1+carryIn (dynarmic/ARM convention: SBC uses
// the same carry sense as ADC), returning {result, carry_out, overflow}.
func (e *IREmitter) SubWithCarry(a, b, carryIn Value) AddWithCarryResult {
	inst := e.emit(OpSubWithCarry, a, b, carryIn)
	return AddWithCarryResult{
		Result:   fromInst(inst),
		Carry:    e.pseudo(inst, OpGetCarryFromOp, &inst.pseudoCarry),
		Overflow: e.pseudo(inst, OpGetOverflowFromOp, &inst.pseudoOverflow),
	}
}

func (e *IREmitter) Mul(a, b Value) Value { return e.val(OpMul, a, b) }
func (e *IREmitter) SignedMultiplyHigh(a, b Value) Value   { return e.val(OpSignedMultiplyHigh, a, b) }
func (e *IREmitter) UnsignedMultiplyHigh(a, b Value) Value { return e.val(OpUnsignedMultiplyHigh, a, b) }

func (e *IREmitter) And(a, b Value) Value { return e.val(OpAnd, a, b) }
func (e *IREmitter) Or(a, b Value) Value  { return e.val(OpOr, a, b) }
func (e *IREmitter) Eor(a, b Value) Value { return e.val(OpEor, a, b) }
func (e *IREmitter) Not(a Value) Value    { return e.val(OpNot, a) }

// ShiftResult bundles a shift's result and carry-out, per spec §4.2
// ("shift operations returning {result, carry_out}").
type ShiftResult struct {
	Result, Carry Value
}

func (e *IREmitter) shift(op Opcode, value, amount, carryIn Value) ShiftResult {
	inst := e.emit(op, value, amount, carryIn)
	return ShiftResult{
		Result: fromInst(inst),
		Carry:  e.pseudo(inst, OpGetCarryFromOp, &inst.pseudoCarry),
	}
}

func (e *IREmitter) LogicalShiftLeft(value, amount, carryIn Value) ShiftResult {
	return e.shift(OpLogicalShiftLeft, value, amount, carryIn)
}
func (e *IREmitter) LogicalShiftRight(value, amount, carryIn Value) ShiftResult {
	return e.shift(OpLogicalShiftRight, value, amount, carryIn)
}
func (e *IREmitter) ArithmeticShiftRight(value, amount, carryIn Value) ShiftResult {
	return e.shift(OpArithmeticShiftRight, value, amount, carryIn)
}
func (e *IREmitter) RotateRight(value, amount, carryIn Value) ShiftResult {
	return e.shift(OpRotateRight, value, amount, carryIn)
}
func (e *IREmitter) RotateRightExtended(value, carryIn Value) ShiftResult {
	inst := e.emit(OpRotateRightExtended, value, carryIn)
	return ShiftResult{
		Result: fromInst(inst),
		Carry:  e.pseudo(inst, OpGetCarryFromOp, &inst.pseudoCarry),
	}
}

func (e *IREmitter) ByteReverseWord(a Value) Value { return e.val(OpByteReverseWord, a) }
func (e *IREmitter) ByteReverseHalf(a Value) Value { return e.val(OpByteReverseHalf, a) }
func (e *IREmitter) ByteReverseDual(a Value) Value { return e.val(OpByteReverseDual, a) }

func (e *IREmitter) SignExtendByteToWord(a Value) Value { return e.val(OpSignExtendByteToWord, a) }
func (e *IREmitter) SignExtendHalfToWord(a Value) Value { return e.val(OpSignExtendHalfToWord, a) }
func (e *IREmitter) SignExtendWordToLong(a Value) Value { return e.val(OpSignExtendWordToLong, a) }
func (e *IREmitter) ZeroExtendByteToWord(a Value) Value { return e.val(OpZeroExtendByteToWord, a) }
func (e *IREmitter) ZeroExtendHalfToWord(a Value) Value { return e.val(OpZeroExtendHalfToWord, a) }
func (e *IREmitter) ZeroExtendWordToLong(a Value) Value { return e.val(OpZeroExtendWordToLong, a) }
func (e *IREmitter) LeastSignificantWord(a Value) Value { return e.val(OpLeastSignificantWord, a) }
func (e *IREmitter) LeastSignificantHalf(a Value) Value { return e.val(OpLeastSignificantHalf, a) }
func (e *IREmitter) MostSignificantWord(a Value) Value  { return e.val(OpMostSignificantWord, a) }

func (e *IREmitter) GetCFlag() Value { return e.val(OpGetCFlag) }
func (e *IREmitter) GetNFlag() Value { return e.val(OpGetNFlag) }
func (e *IREmitter) GetZFlag() Value { return e.val(OpGetZFlag) }
func (e *IREmitter) GetVFlag() Value { return e.val(OpGetVFlag) }
func (e *IREmitter) SetNZCV(flags Value)        { e.emit(OpSetNZCV, flags) }
func (e *IREmitter) NZCVFromFlags(n, z, c, v Value) Value {
	return e.val(OpNZCVFromFlags, n, z, c, v)
}

// NZCVFromOp extracts {N,Z,C,V} produced implicitly by a flag-setting op
// such as a shift or AddWithCarry that also defines NZCV as a unit
// (e.g. A64's ADDS/SUBS lowering). Reuses the same one-pseudo-per-
// channel link as the carry/overflow extractors.
func (e *IREmitter) NZCVFromOp(producer *Inst) Value {
	return e.pseudo(producer, OpGetNZCVFromOp, &producer.pseudoNZCV)
}

func (e *IREmitter) GetRegister(reg Value) Value          { return e.val(OpGetRegister, reg) }
func (e *IREmitter) SetRegister(reg, value Value)         { e.emit(OpSetRegister, reg, value) }
func (e *IREmitter) GetExtendedRegister32(reg Value) Value { return e.val(OpGetExtendedRegister32, reg) }
func (e *IREmitter) GetExtendedRegister64(reg Value) Value { return e.val(OpGetExtendedRegister64, reg) }
func (e *IREmitter) SetExtendedRegister32(reg, v Value)     { e.emit(OpSetExtendedRegister32, reg, v) }
func (e *IREmitter) SetExtendedRegister64(reg, v Value)     { e.emit(OpSetExtendedRegister64, reg, v) }
func (e *IREmitter) GetVector(reg Value) Value              { return e.val(OpGetVector, reg) }
func (e *IREmitter) SetVector(reg, v Value)                 { e.emit(OpSetVector, reg, v) }

func (e *IREmitter) MemoryRead8(vaddr, acc Value) Value   { return e.val(OpMemoryRead8, vaddr, acc) }
func (e *IREmitter) MemoryRead16(vaddr, acc Value) Value  { return e.val(OpMemoryRead16, vaddr, acc) }
func (e *IREmitter) MemoryRead32(vaddr, acc Value) Value  { return e.val(OpMemoryRead32, vaddr, acc) }
func (e *IREmitter) MemoryRead64(vaddr, acc Value) Value  { return e.val(OpMemoryRead64, vaddr, acc) }
func (e *IREmitter) MemoryRead128(vaddr, acc Value) Value { return e.val(OpMemoryRead128, vaddr, acc) }

func (e *IREmitter) MemoryWrite8(vaddr, v, acc Value)   { e.emit(OpMemoryWrite8, vaddr, v, acc) }
func (e *IREmitter) MemoryWrite16(vaddr, v, acc Value)  { e.emit(OpMemoryWrite16, vaddr, v, acc) }
func (e *IREmitter) MemoryWrite32(vaddr, v, acc Value)  { e.emit(OpMemoryWrite32, vaddr, v, acc) }
func (e *IREmitter) MemoryWrite64(vaddr, v, acc Value)  { e.emit(OpMemoryWrite64, vaddr, v, acc) }
func (e *IREmitter) MemoryWrite128(vaddr, v, acc Value) { e.emit(OpMemoryWrite128, vaddr, v, acc) }

func (e *IREmitter) ExclusiveReadMemory8(vaddr Value) Value  { return e.val(OpExclusiveReadMemory8, vaddr) }
func (e *IREmitter) ExclusiveReadMemory16(vaddr Value) Value { return e.val(OpExclusiveReadMemory16, vaddr) }
func (e *IREmitter) ExclusiveReadMemory32(vaddr Value) Value { return e.val(OpExclusiveReadMemory32, vaddr) }
func (e *IREmitter) ExclusiveReadMemory64(vaddr Value) Value { return e.val(OpExclusiveReadMemory64, vaddr) }
func (e *IREmitter) ExclusiveWriteMemory8(vaddr, v Value) Value {
	return e.val(OpExclusiveWriteMemory8, vaddr, v)
}
func (e *IREmitter) ExclusiveWriteMemory16(vaddr, v Value) Value {
	return e.val(OpExclusiveWriteMemory16, vaddr, v)
}
func (e *IREmitter) ExclusiveWriteMemory32(vaddr, v Value) Value {
	return e.val(OpExclusiveWriteMemory32, vaddr, v)
}
func (e *IREmitter) ExclusiveWriteMemory64(vaddr, v Value) Value {
	return e.val(OpExclusiveWriteMemory64, vaddr, v)
}

func (e *IREmitter) CallSupervisor(imm Value)             { e.emit(OpCallSupervisor, imm) }
func (e *IREmitter) ExceptionRaised(pc, kind Value)       { e.emit(OpExceptionRaised, pc, kind) }
func (e *IREmitter) InstructionCacheOperationRaised(op, addr Value) {
	e.emit(OpInstructionCacheOperationRaised, op, addr)
}
func (e *IREmitter) DataCacheOperationRaised(op, addr Value) {
	e.emit(OpDataCacheOperationRaised, op, addr)
}

func (e *IREmitter) CoprocInternalOperation(info, words Value) { e.emit(OpCoprocInternalOperation, info, words) }
func (e *IREmitter) CoprocSendOneWord(info, w Value)           { e.emit(OpCoprocSendOneWord, info, w) }
func (e *IREmitter) CoprocSendTwoWords(info, w1, w2 Value)     { e.emit(OpCoprocSendTwoWords, info, w1, w2) }
func (e *IREmitter) CoprocGetOneWord(info Value) Value         { return e.val(OpCoprocGetOneWord, info) }
func (e *IREmitter) CoprocGetTwoWords(info Value) Value        { return e.val(OpCoprocGetTwoWords, info) }
func (e *IREmitter) CoprocLoadWords(info, addr Value)          { e.emit(OpCoprocLoadWords, info, addr) }
func (e *IREmitter) CoprocStoreWords(info, addr Value)         { e.emit(OpCoprocStoreWords, info, addr) }

// SetTerminal installs t as the Block's Terminal. The front-end calls
// this exactly once per Block (the last thing any visitor does before
// returning control to the translator loop).
func (e *IREmitter) SetTerminal(t Terminal) { e.Block.Terminal = t }
