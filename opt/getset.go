package opt

import "github.com/user-none/go-armjit/ir"

// regKey identifies an architectural register/flag the GetSet pass
// tracks, independent of which Opcode touched it.
type regKey struct {
	op  ir.Opcode // which Get/Set family (disambiguates A32Reg vs A32ExtReg etc)
	idx uint8
}

// GetSetElimination forwards the latest SetRegister/SetExtendedRegister/
// SetVector/SetNZCV-component to subsequent Get* reads within the same
// Block, and elides an earlier store made dead by a later one to the
// same location. Observable order is preserved at any call-out (SVC,
// memory op, exception raise) and at the Block's Terminal: the pass
// resets all tracked state when it crosses one, since a call-out may
// read back registers via the external interpreter fallback.
func GetSetElimination(block *ir.Block) {
	sets := map[regKey]ir.Value{}
	lastSetInst := map[regKey]*ir.Inst{}
	flags := map[uint8]ir.Value{} // 0=N 1=Z 2=C 3=V, from NZCVFromFlags producers only

	resetAll := func() {
		for k := range sets {
			delete(sets, k)
		}
		for k := range lastSetInst {
			delete(lastSetInst, k)
		}
		for k := range flags {
			delete(flags, k)
		}
	}

	var toRemove []*ir.Inst

	for inst := block.First(); inst != nil; inst = inst.Next() {
		switch inst.Op {
		case ir.OpGetRegister, ir.OpGetExtendedRegister32, ir.OpGetExtendedRegister64, ir.OpGetVector:
			reg := inst.Args[0]
			if reg.Kind() == ir.KindInstRef {
				continue // dynamically-computed register index, can't track
			}
			k := regKey{op: inst.Op, idx: reg.RegIndex()}
			if v, ok := sets[k]; ok {
				ir.Retarget(block, inst, v)
				inst.Op = ir.OpIdentity // becomes a pass-through; IdentityRemoval finishes the job
			}

		case ir.OpSetRegister, ir.OpSetExtendedRegister32, ir.OpSetExtendedRegister64, ir.OpSetVector:
			reg := inst.Args[0]
			if reg.Kind() == ir.KindInstRef {
				resetAll()
				continue
			}
			k := regKey{op: setKeyFor(inst.Op), idx: reg.RegIndex()}
			if prev, ok := lastSetInst[k]; ok {
				toRemove = append(toRemove, prev)
			}
			sets[k] = inst.Args[1]
			lastSetInst[k] = inst

		case ir.OpGetNFlag, ir.OpGetZFlag, ir.OpGetCFlag, ir.OpGetVFlag:
			idx := flagIndex(inst.Op)
			if v, ok := flags[idx]; ok {
				ir.Retarget(block, inst, v)
				inst.Op = ir.OpIdentity
			}

		case ir.OpSetNZCV:
			producer := inst.Args[0].Inst()
			if producer != nil && producer.Op == ir.OpNZCVFromFlags {
				flags[0] = producer.Args[0]
				flags[1] = producer.Args[1]
				flags[2] = producer.Args[2]
				flags[3] = producer.Args[3]
			} else {
				flags = map[uint8]ir.Value{}
			}

		default:
			if inst.Op.HasSideEffect() {
				resetAll()
			}
		}
	}

	for _, inst := range toRemove {
		if inst.Block() == block {
			block.Remove(inst)
		}
	}
}

// setKeyFor maps a Set opcode onto the Get opcode family it shadows, so
// SetRegister/GetRegister share a key independent of which one is seen
// first.
func setKeyFor(op ir.Opcode) ir.Opcode {
	switch op {
	case ir.OpSetRegister:
		return ir.OpGetRegister
	case ir.OpSetExtendedRegister32:
		return ir.OpGetExtendedRegister32
	case ir.OpSetExtendedRegister64:
		return ir.OpGetExtendedRegister64
	case ir.OpSetVector:
		return ir.OpGetVector
	default:
		return op
	}
}

func flagIndex(op ir.Opcode) uint8 {
	switch op {
	case ir.OpGetNFlag:
		return 0
	case ir.OpGetZFlag:
		return 1
	case ir.OpGetCFlag:
		return 2
	case ir.OpGetVFlag:
		return 3
	default:
		return 255
	}
}
