package ir

import "github.com/slowlang/adreno/adreno/isa"

func (i *Instr) IsKillOrDemote() bool {
	return i.Opc == isa.OpcKill || i.Opc == isa.OpcDemote
}

func (i *Instr) IsNop() bool { return i.Opc == isa.OpcNop }

// IsInput reports whether i fetches a varying.
func (i *Instr) IsInput() bool {
	return i.Opc == isa.OpcLdlv || i.Opc == isa.OpcBaryF
}

// IsBool reports whether i produces a 0/1 value.
func (i *Instr) IsBool() bool {
	switch i.Opc {
	case isa.OpcCmpsF, isa.OpcCmpsS, isa.OpcCmpsU:
		return true
	default:
		return false
	}
}

func (i *Instr) IsStore() bool { return isa.IsStore(i.Opc) }
func (i *Instr) IsLoad() bool  { return isa.IsLoad(i.Opc) }

// IsSameTypeMov reports whether i copies its source unchanged:
// a mov without conversion or an absneg without modifiers or saturation.
func (s *Shader) IsSameTypeMov(i *Instr) bool {
	if len(i.Dsts) != 1 || len(i.Srcs) != 1 {
		return false
	}

	dst, src := s.regs[i.Dsts[0]], s.regs[i.Srcs[0]]

	switch i.Opc {
	case isa.OpcMov:
		p, ok := i.Payload.(Cat1)
		if !ok || p.SrcType != p.DstType {
			return false
		}
	case isa.OpcAbsnegF, isa.OpcAbsnegS:
		if i.Flags&InstrSat != 0 || src.Flags&(RegNegMask|RegAbsMask) != 0 {
			return false
		}
	default:
		return false
	}

	if !SameTypeRegs(dst, src) {
		return false
	}

	if dst.Num == isa.Reg(isa.RegA0, 0) || dst.Num == isa.Reg(isa.RegP0, 0) {
		return false
	}

	return dst.Flags&(RegRelative|RegArray) == 0
}

// IsConstMov reports whether i moves a const or immediate
// without changing its kind or widening it.
func (s *Shader) IsConstMov(i *Instr) bool {
	if i.Opc != isa.OpcMov || len(i.Srcs) != 1 {
		return false
	}

	src := s.regs[i.Srcs[0]]
	if src.Flags&(RegConst|RegImmed) == 0 || src.Flags&RegRelative != 0 {
		return false
	}

	p, ok := i.Payload.(Cat1)
	if !ok {
		return false
	}

	st, dt := p.SrcType, p.DstType

	switch {
	case st.Float() && dt.Float():
	case st.Uint() && dt.Uint():
	case st.Sint() && dt.Sint():
	default:
		return false
	}

	return st.Width() >= dt.Width()
}

// WritesGPR reports whether i writes a general purpose register.
func (s *Shader) WritesGPR(i *Instr) bool {
	if len(i.Dsts) == 0 {
		return false
	}

	n := s.regs[i.Dsts[0]].Num

	return !n.IsAddr() && !n.IsPred()
}

func (s *Shader) WritesAddr0(i *Instr) bool {
	return len(i.Dsts) != 0 && s.regs[i.Dsts[0]].Num == isa.Reg(isa.RegA0, 0)
}

func (s *Shader) WritesAddr1(i *Instr) bool {
	return len(i.Dsts) != 0 && s.regs[i.Dsts[0]].Num == isa.Reg(isa.RegA0, 1)
}

func (s *Shader) WritesPred(i *Instr) bool {
	return len(i.Dsts) != 0 && s.regs[i.Dsts[0]].Num.IsPred()
}

// SameTypeRegs reports whether a and b live in the same register file.
func SameTypeRegs(a, b *Register) bool {
	const m = RegHalf | RegShared

	return a.Flags&m == b.Flags&m
}
