package ir

var opcodeNames = [opcodeCount]string{
	OpInvalid:      "Invalid",
	OpIdentity:     "Identity",
	OpAdd:          "Add",
	OpSub:          "Sub",
	OpAddWithCarry: "AddWithCarry",
	OpSubWithCarry: "SubWithCarry",
	OpMul:          "Mul",
	OpSignedMultiplyHigh:   "SignedMultiplyHigh",
	OpUnsignedMultiplyHigh: "UnsignedMultiplyHigh",

	OpAnd: "And",
	OpOr:  "Or",
	OpEor: "Eor",
	OpNot: "Not",

	OpLogicalShiftLeft:     "LogicalShiftLeft",
	OpLogicalShiftRight:    "LogicalShiftRight",
	OpArithmeticShiftRight: "ArithmeticShiftRight",
	OpRotateRight:          "RotateRight",
	OpRotateRightExtended:  "RotateRightExtended",

	OpByteReverseWord: "ByteReverseWord",
	OpByteReverseHalf: "ByteReverseHalf",
	OpByteReverseDual: "ByteReverseDual",

	OpSignExtendByteToWord: "SignExtendByteToWord",
	OpSignExtendHalfToWord: "SignExtendHalfToWord",
	OpSignExtendWordToLong: "SignExtendWordToLong",
	OpZeroExtendByteToWord: "ZeroExtendByteToWord",
	OpZeroExtendHalfToWord: "ZeroExtendHalfToWord",
	OpZeroExtendWordToLong: "ZeroExtendWordToLong",
	OpLeastSignificantWord: "LeastSignificantWord",
	OpLeastSignificantHalf: "LeastSignificantHalf",
	OpMostSignificantWord:  "MostSignificantWord",

	OpGetCarryFromOp:    "GetCarryFromOp",
	OpGetOverflowFromOp: "GetOverflowFromOp",
	OpGetGEFromOp:       "GetGEFromOp",
	OpGetNZCVFromOp:     "GetNZCVFromOp",

	OpGetCFlag:      "GetCFlag",
	OpGetNFlag:      "GetNFlag",
	OpGetZFlag:      "GetZFlag",
	OpGetVFlag:      "GetVFlag",
	OpSetNZCV:       "SetNZCV",
	OpNZCVFromFlags: "NZCVFromFlags",

	OpGetRegister:           "GetRegister",
	OpSetRegister:           "SetRegister",
	OpGetExtendedRegister32: "GetExtendedRegister32",
	OpGetExtendedRegister64: "GetExtendedRegister64",
	OpSetExtendedRegister32: "SetExtendedRegister32",
	OpSetExtendedRegister64: "SetExtendedRegister64",
	OpGetVector:             "GetVector",
	OpSetVector:             "SetVector",

	OpMemoryRead8:    "MemoryRead8",
	OpMemoryRead16:   "MemoryRead16",
	OpMemoryRead32:   "MemoryRead32",
	OpMemoryRead64:   "MemoryRead64",
	OpMemoryRead128:  "MemoryRead128",
	OpMemoryWrite8:   "MemoryWrite8",
	OpMemoryWrite16:  "MemoryWrite16",
	OpMemoryWrite32:  "MemoryWrite32",
	OpMemoryWrite64:  "MemoryWrite64",
	OpMemoryWrite128: "MemoryWrite128",

	OpExclusiveReadMemory8:   "ExclusiveReadMemory8",
	OpExclusiveReadMemory16:  "ExclusiveReadMemory16",
	OpExclusiveReadMemory32:  "ExclusiveReadMemory32",
	OpExclusiveReadMemory64:  "ExclusiveReadMemory64",
	OpExclusiveWriteMemory8:  "ExclusiveWriteMemory8",
	OpExclusiveWriteMemory16: "ExclusiveWriteMemory16",
	OpExclusiveWriteMemory32: "ExclusiveWriteMemory32",
	OpExclusiveWriteMemory64: "ExclusiveWriteMemory64",

	OpCallSupervisor:                  "CallSupervisor",
	OpExceptionRaised:                 "ExceptionRaised",
	OpInstructionCacheOperationRaised: "InstructionCacheOperationRaised",
	OpDataCacheOperationRaised:        "DataCacheOperationRaised",

	OpCoprocInternalOperation: "CoprocInternalOperation",
	OpCoprocSendOneWord:       "CoprocSendOneWord",
	OpCoprocSendTwoWords:      "CoprocSendTwoWords",
	OpCoprocGetOneWord:        "CoprocGetOneWord",
	OpCoprocGetTwoWords:       "CoprocGetTwoWords",
	OpCoprocLoadWords:         "CoprocLoadWords",
	OpCoprocStoreWords:        "CoprocStoreWords",
}
