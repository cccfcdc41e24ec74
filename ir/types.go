// Package ir implements the typed intermediate representation the
// front-end lowers guest instructions into: Values, Insts, Blocks, and
// Terminals, plus the IREmitter builder used to construct them.
package ir

import "fmt"

// Type tags every Value. Opcodes declare the Types they accept for each
// argument slot and the Type of the result they produce; Opaque matches
// any Type and is used for the opcodes that are polymorphic in operand
// width or payload (arithmetic, logic, shifts, register access,
// coprocessor transfer).
type Type uint16

const (
	Void Type = iota
	U1
	U8
	U16
	U32
	U64
	U128
	NZCVFlags
	Cond
	AccType
	CoprocInfo
	A32Reg
	A32ExtReg
	A64Reg
	A64Vec
	Table
	Opaque
)

func (t Type) String() string {
	switch t {
	case Void:
		return "Void"
	case U1:
		return "U1"
	case U8:
		return "U8"
	case U16:
		return "U16"
	case U32:
		return "U32"
	case U64:
		return "U64"
	case U128:
		return "U128"
	case NZCVFlags:
		return "NZCVFlags"
	case Cond:
		return "Cond"
	case AccType:
		return "AccType"
	case CoprocInfo:
		return "CoprocInfo"
	case A32Reg:
		return "A32Reg"
	case A32ExtReg:
		return "A32ExtReg"
	case A64Reg:
		return "A64Reg"
	case A64Vec:
		return "A64Vec"
	case Table:
		return "Table"
	case Opaque:
		return "Opaque"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// Matches reports whether a Value of Type t is an acceptable argument
// where Type want is declared. Opaque is a universal acceptor on either
// side: an opcode slot declared Opaque accepts any argument, and a
// Value carrying Opaque (e.g. a raw coprocessor payload) is accepted
// anywhere.
func (t Type) Matches(want Type) bool {
	return want == Opaque || t == Opaque || t == want
}

// CondCode is the guest condition-code enumeration (A32/A64 share the
// encoding: EQ, NE, CS, CC, MI, PL, VS, VC, HI, LS, GE, LT, GT, LE, AL, NV).
type CondCode uint8

const (
	CondEQ CondCode = iota
	CondNE
	CondCS
	CondCC
	CondMI
	CondPL
	CondVS
	CondVC
	CondHI
	CondLS
	CondGE
	CondLT
	CondGT
	CondLE
	CondAL
	CondNV
)

func (c CondCode) String() string {
	names := [...]string{"EQ", "NE", "CS", "CC", "MI", "PL", "VS", "VC", "HI", "LS", "GE", "LT", "GT", "LE", "AL", "NV"}
	if int(c) < len(names) {
		return names[c]
	}
	return "?"
}

// MemAccType is the memory-access ordering classification carried on
// every memory read/write op. NORMAL accesses may be reordered by the
// host; ATOMIC and stronger require a host-level fence (see spec §5).
type MemAccType uint8

const (
	AccNormal MemAccType = iota
	AccAtomic
	AccOrdered
	AccLimitedOrdered
	AccUnpriv
	AccVec
)

func (a MemAccType) String() string {
	switch a {
	case AccNormal:
		return "NORMAL"
	case AccAtomic:
		return "ATOMIC"
	case AccOrdered:
		return "ORDERED"
	case AccLimitedOrdered:
		return "LIMITEDORDERED"
	case AccUnpriv:
		return "UNPRIV"
	case AccVec:
		return "VEC"
	default:
		return "?"
	}
}
