package ir

// Opcode identifies an IR instruction. The full per-instruction ARM
// semantics (e.g. every addressing-mode variant) live in the front-end;
// this set is the fixed vocabulary the optimizer and backend switch on.
// It is intentionally not exhaustive of every opcode a production
// decoder would ever emit (spec §1 keeps decoder tables out of scope),
// but every shape named in spec.md §3/§4 has a representative here.
type Opcode uint16

const (
	OpInvalid Opcode = iota

	// Pseudo-op left by optimizer passes that demote a folded or
	// forwarded Inst; removed by DeadCodeElimination/IdentityRemoval.
	OpIdentity

	// Arithmetic.
	OpAdd
	OpSub
	OpAddWithCarry
	OpSubWithCarry
	OpMul
	OpSignedMultiplyHigh
	OpUnsignedMultiplyHigh

	// Logic.
	OpAnd
	OpOr
	OpEor
	OpNot

	// Shifts. Each shift takes (value, shiftAmount, carryIn) and is
	// paired with a GetCarryFromOp pseudo-op for its carry-out channel.
	OpLogicalShiftLeft
	OpLogicalShiftRight
	OpArithmeticShiftRight
	OpRotateRight
	OpRotateRightExtended

	// Byte/halfword reversal.
	OpByteReverseWord
	OpByteReverseHalf
	OpByteReverseDual

	// Sign/zero extension and truncation.
	OpSignExtendByteToWord
	OpSignExtendHalfToWord
	OpSignExtendWordToLong
	OpZeroExtendByteToWord
	OpZeroExtendHalfToWord
	OpZeroExtendWordToLong
	OpLeastSignificantWord
	OpLeastSignificantHalf
	OpMostSignificantWord

	// Pseudo-ops extracting a side channel from the Inst that produced
	// the value threaded through GetXFromOp's single argument.
	OpGetCarryFromOp
	OpGetOverflowFromOp
	OpGetGEFromOp
	OpGetNZCVFromOp

	// Flags.
	OpGetCFlag
	OpGetNFlag
	OpGetZFlag
	OpGetVFlag
	OpSetNZCV
	OpNZCVFromFlags

	// Register file access (symbolic index carried on the Value, not
	// the opcode -- GetRegister's sole argument is the register Value).
	OpGetRegister
	OpSetRegister
	OpGetExtendedRegister32
	OpGetExtendedRegister64
	OpSetExtendedRegister32
	OpSetExtendedRegister64
	OpGetVector
	OpSetVector

	// Memory. arg0 = vaddr (U32 for A32, U64 for A64), arg1 = AccType.
	// MemoryWrite additionally takes the value to store.
	OpMemoryRead8
	OpMemoryRead16
	OpMemoryRead32
	OpMemoryRead64
	OpMemoryRead128
	OpMemoryWrite8
	OpMemoryWrite16
	OpMemoryWrite32
	OpMemoryWrite64
	OpMemoryWrite128
	OpExclusiveReadMemory8
	OpExclusiveReadMemory16
	OpExclusiveReadMemory32
	OpExclusiveReadMemory64
	OpExclusiveWriteMemory8
	OpExclusiveWriteMemory16
	OpExclusiveWriteMemory32
	OpExclusiveWriteMemory64

	// Call-outs. All are Void-typed and side-effecting.
	OpCallSupervisor
	OpExceptionRaised
	OpInstructionCacheOperationRaised
	OpDataCacheOperationRaised

	// Coprocessor (A32). CoprocInfo carries {coproc#, opc1, opc2, CRn, CRm}.
	OpCoprocInternalOperation
	OpCoprocSendOneWord
	OpCoprocSendTwoWords
	OpCoprocGetOneWord
	OpCoprocGetTwoWords
	OpCoprocLoadWords
	OpCoprocStoreWords

	opcodeCount
)

type sig struct {
	args   []Type
	result Type
	effect bool // has a side effect DCE must not remove
}

var signatures = [opcodeCount]sig{
	OpIdentity:     {args: []Type{Opaque}, result: Opaque},
	OpAdd:          {args: []Type{Opaque, Opaque}, result: Opaque},
	OpSub:          {args: []Type{Opaque, Opaque}, result: Opaque},
	OpAddWithCarry: {args: []Type{Opaque, Opaque, U1}, result: Opaque},
	OpSubWithCarry: {args: []Type{Opaque, Opaque, U1}, result: Opaque},
	OpMul:          {args: []Type{Opaque, Opaque}, result: Opaque},
	OpSignedMultiplyHigh:   {args: []Type{U32, U32}, result: U32},
	OpUnsignedMultiplyHigh: {args: []Type{U32, U32}, result: U32},

	OpAnd: {args: []Type{Opaque, Opaque}, result: Opaque},
	OpOr:  {args: []Type{Opaque, Opaque}, result: Opaque},
	OpEor: {args: []Type{Opaque, Opaque}, result: Opaque},
	OpNot: {args: []Type{Opaque}, result: Opaque},

	OpLogicalShiftLeft:     {args: []Type{Opaque, U8, U1}, result: Opaque},
	OpLogicalShiftRight:    {args: []Type{Opaque, U8, U1}, result: Opaque},
	OpArithmeticShiftRight: {args: []Type{Opaque, U8, U1}, result: Opaque},
	OpRotateRight:          {args: []Type{Opaque, U8, U1}, result: Opaque},
	OpRotateRightExtended:  {args: []Type{Opaque, U1}, result: Opaque},

	OpByteReverseWord: {args: []Type{U32}, result: U32},
	OpByteReverseHalf: {args: []Type{U16}, result: U16},
	OpByteReverseDual: {args: []Type{U64}, result: U64},

	OpSignExtendByteToWord: {args: []Type{U8}, result: U32},
	OpSignExtendHalfToWord: {args: []Type{U16}, result: U32},
	OpSignExtendWordToLong: {args: []Type{U32}, result: U64},
	OpZeroExtendByteToWord: {args: []Type{U8}, result: U32},
	OpZeroExtendHalfToWord: {args: []Type{U16}, result: U32},
	OpZeroExtendWordToLong: {args: []Type{U32}, result: U64},
	OpLeastSignificantWord: {args: []Type{U64}, result: U32},
	OpLeastSignificantHalf: {args: []Type{U32}, result: U16},
	OpMostSignificantWord:  {args: []Type{U64}, result: U32},

	OpGetCarryFromOp:    {args: []Type{Opaque}, result: U1},
	OpGetOverflowFromOp: {args: []Type{Opaque}, result: U1},
	OpGetGEFromOp:       {args: []Type{Opaque}, result: U8},
	OpGetNZCVFromOp:     {args: []Type{Opaque}, result: NZCVFlags},

	OpGetCFlag:      {result: U1},
	OpGetNFlag:      {result: U1},
	OpGetZFlag:      {result: U1},
	OpGetVFlag:      {result: U1},
	OpSetNZCV:       {args: []Type{NZCVFlags}, result: Void, effect: true},
	OpNZCVFromFlags: {args: []Type{U1, U1, U1, U1}, result: NZCVFlags},

	OpGetRegister:           {args: []Type{Opaque}, result: Opaque},
	OpSetRegister:           {args: []Type{Opaque, Opaque}, result: Void, effect: true},
	OpGetExtendedRegister32: {args: []Type{A32ExtReg}, result: U32},
	OpGetExtendedRegister64: {args: []Type{A32ExtReg}, result: U64},
	OpSetExtendedRegister32: {args: []Type{A32ExtReg, U32}, result: Void, effect: true},
	OpSetExtendedRegister64: {args: []Type{A32ExtReg, U64}, result: Void, effect: true},
	OpGetVector:             {args: []Type{A64Vec}, result: U128},
	OpSetVector:             {args: []Type{A64Vec, U128}, result: Void, effect: true},

	OpMemoryRead8:    {args: []Type{Opaque, AccType}, result: U8, effect: true},
	OpMemoryRead16:   {args: []Type{Opaque, AccType}, result: U16, effect: true},
	OpMemoryRead32:   {args: []Type{Opaque, AccType}, result: U32, effect: true},
	OpMemoryRead64:   {args: []Type{Opaque, AccType}, result: U64, effect: true},
	OpMemoryRead128:  {args: []Type{Opaque, AccType}, result: U128, effect: true},
	OpMemoryWrite8:   {args: []Type{Opaque, U8, AccType}, result: Void, effect: true},
	OpMemoryWrite16:  {args: []Type{Opaque, U16, AccType}, result: Void, effect: true},
	OpMemoryWrite32:  {args: []Type{Opaque, U32, AccType}, result: Void, effect: true},
	OpMemoryWrite64:  {args: []Type{Opaque, U64, AccType}, result: Void, effect: true},
	OpMemoryWrite128: {args: []Type{Opaque, U128, AccType}, result: Void, effect: true},

	OpExclusiveReadMemory8:   {args: []Type{Opaque}, result: U8, effect: true},
	OpExclusiveReadMemory16:  {args: []Type{Opaque}, result: U16, effect: true},
	OpExclusiveReadMemory32:  {args: []Type{Opaque}, result: U32, effect: true},
	OpExclusiveReadMemory64:  {args: []Type{Opaque}, result: U64, effect: true},
	OpExclusiveWriteMemory8:  {args: []Type{Opaque, U8}, result: U1, effect: true},
	OpExclusiveWriteMemory16: {args: []Type{Opaque, U16}, result: U1, effect: true},
	OpExclusiveWriteMemory32: {args: []Type{Opaque, U32}, result: U1, effect: true},
	OpExclusiveWriteMemory64: {args: []Type{Opaque, U64}, result: U1, effect: true},

	OpCallSupervisor:                   {args: []Type{U32}, result: Void, effect: true},
	OpExceptionRaised:                  {args: []Type{U64, U8}, result: Void, effect: true},
	OpInstructionCacheOperationRaised:  {args: []Type{U8, U64}, result: Void, effect: true},
	OpDataCacheOperationRaised:         {args: []Type{U8, U64}, result: Void, effect: true},

	OpCoprocInternalOperation: {args: []Type{CoprocInfo, Table}, result: Void, effect: true},
	OpCoprocSendOneWord:       {args: []Type{CoprocInfo, U32}, result: Void, effect: true},
	OpCoprocSendTwoWords:      {args: []Type{CoprocInfo, U32, U32}, result: Void, effect: true},
	OpCoprocGetOneWord:        {args: []Type{CoprocInfo}, result: U32, effect: true},
	OpCoprocGetTwoWords:       {args: []Type{CoprocInfo}, result: U64, effect: true},
	OpCoprocLoadWords:         {args: []Type{CoprocInfo, Opaque}, result: Void, effect: true},
	OpCoprocStoreWords:        {args: []Type{CoprocInfo, Opaque}, result: Void, effect: true},
}

// ArgTypes returns the declared argument Types for op.
func (op Opcode) ArgTypes() []Type { return signatures[op].args }

// ResultType returns the Type an Inst of this Opcode produces.
func (op Opcode) ResultType() Type { return signatures[op].result }

// HasSideEffect reports whether an Inst of this Opcode must be retained
// even with a zero use-count (memory read or write, register write,
// call-out, coprocessor op, or exception raise -- per spec §4.3 pass 5).
func (op Opcode) HasSideEffect() bool { return signatures[op].effect }

// IsPseudoOp reports whether op extracts a side channel from another
// Inst (GetCarryFromOp and friends), as opposed to producing an
// independent value.
func (op Opcode) IsPseudoOp() bool {
	switch op {
	case OpGetCarryFromOp, OpGetOverflowFromOp, OpGetGEFromOp, OpGetNZCVFromOp:
		return true
	default:
		return false
	}
}

func (op Opcode) String() string {
	if int(op) < len(opcodeNames) && opcodeNames[op] != "" {
		return opcodeNames[op]
	}
	return "Op?"
}
