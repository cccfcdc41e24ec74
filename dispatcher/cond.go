package dispatcher

import "github.com/user-none/go-armjit/ir"

const (
	cpsrNBit = 1 << 31
	cpsrZBit = 1 << 30
	cpsrCBit = 1 << 29
	cpsrVBit = 1 << 28
)

// evalCond evaluates an ARM condition code against the N/Z/C/V bits
// packed into CPSR bits [31:28], the standard ARM architecture layout.
func evalCond(cond ir.CondCode, cpsr uint32) bool {
	n := cpsr&cpsrNBit != 0
	z := cpsr&cpsrZBit != 0
	c := cpsr&cpsrCBit != 0
	v := cpsr&cpsrVBit != 0

	switch cond {
	case ir.CondEQ:
		return z
	case ir.CondNE:
		return !z
	case ir.CondCS:
		return c
	case ir.CondCC:
		return !c
	case ir.CondMI:
		return n
	case ir.CondPL:
		return !n
	case ir.CondVS:
		return v
	case ir.CondVC:
		return !v
	case ir.CondHI:
		return c && !z
	case ir.CondLS:
		return !c || z
	case ir.CondGE:
		return n == v
	case ir.CondLT:
		return n != v
	case ir.CondGT:
		return !z && n == v
	case ir.CondLE:
		return z || n != v
	case ir.CondAL:
		return true
	default: // CondNV
		return false
	}
}
