package ir

import (
	"context"

	"tlog.app/go/errors"

	"github.com/slowlang/adreno/adreno/isa"
)

// Validate checks structural invariants of the shader.
// It recalculates dominance.
func (s *Shader) Validate(ctx context.Context) (err error) {
	s.CalculateDominance(ctx)

	pos := make(map[InstrID]int, len(s.instrs))

	for b := range s.Blocks() {
		for k, id := range b.Instrs {
			pos[id] = k
		}
	}

	for b := range s.Blocks() {
		for i := range s.Instrs(b) {
			err = s.validateInstr(b, i, pos)
			if err != nil {
				return errors.Wrap(err, "block%d: i%d (%v)", b.ID, i.ID, i.Opc)
			}
		}
	}

	return nil
}

func (s *Shader) validateInstr(b *Block, i *Instr, pos map[InstrID]int) error {
	if i.Block != b.ID {
		return errors.New("listed in block%d, belongs to block%d", b.ID, i.Block)
	}

	if i.Repeat > 7 || i.Nop > 7 {
		return errors.New("repeat %d nop %d out of range", i.Repeat, i.Nop)
	}

	if i.Flags&InstrSat != 0 && !isa.IsSatCompatible(i.Opc) {
		return errors.New("sat on incompatible opcode")
	}

	if i.Address != NoInstr {
		a := s.instrs[i.Address]
		if !s.WritesAddr0(a) && !s.WritesAddr1(a) {
			return errors.New("address dep i%d writes no address register", a.ID)
		}
	}

	for k, r := range s.Dsts(i) {
		if r.Instr != i.ID {
			return errors.New("dst %d: owned by i%d", k, r.Instr)
		}

		if r.Flags&(RegConst|RegImmed) != 0 {
			return errors.New("dst %d: const or immediate", k)
		}

		err := s.validateTie(i, r)
		if err != nil {
			return errors.Wrap(err, "dst %d", k)
		}
	}

	for k, r := range s.Srcs(i) {
		if r.Instr != i.ID {
			return errors.New("src %d: owned by i%d", k, r.Instr)
		}

		n := 0
		for _, f := range []RegFlags{RegConst, RegImmed, RegSSA, RegArray} {
			if r.Flags&f != 0 {
				n++
			}
		}

		if n > 1 {
			return errors.New("src %d: conflicting kinds %#x", k, r.Flags)
		}

		err := s.validateTie(i, r)
		if err != nil {
			return errors.Wrap(err, "src %d", k)
		}

		if r.Flags&RegSSA == 0 || i.Opc == isa.OpcMetaPhi {
			continue
		}

		if r.Def == NoReg {
			return errors.New("src %d: ssa without def", k)
		}

		def := s.instrs[s.regs[r.Def].Instr]

		switch {
		case def.ID == i.ID:
			return errors.New("src %d: reads itself", k)
		case def.Block == i.Block:
			if pos[def.ID] > pos[i.ID] {
				return errors.New("src %d: def i%d comes later", k, def.ID)
			}
		case !s.Dominates(def.Block, i.Block):
			return errors.New("src %d: def i%d in block%d does not dominate", k, def.ID, def.Block)
		}
	}

	return nil
}

func (s *Shader) validateTie(i *Instr, r *Register) error {
	if r.Tied == NoReg {
		return nil
	}

	t := s.regs[r.Tied]

	if t.Tied != r.ID {
		return errors.New("tie to ssa_%d is not symmetric", int(t.ID))
	}

	if t.Instr != i.ID {
		return errors.New("tied to ssa_%d of i%d", int(t.ID), t.Instr)
	}

	return nil
}
