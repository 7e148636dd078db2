package ir

import (
	"iter"
	"slices"
)

// Blocks iterates blocks in order.
func (s *Shader) Blocks() iter.Seq[*Block] {
	return func(yield func(*Block) bool) {
		for _, id := range s.Order {
			if !yield(s.blocks[id]) {
				return
			}
		}
	}
}

func (s *Shader) BlocksReverse() iter.Seq[*Block] {
	return func(yield func(*Block) bool) {
		for k := len(s.Order) - 1; k >= 0; k-- {
			if !yield(s.blocks[s.Order[k]]) {
				return
			}
		}
	}
}

// BlocksSafe iterates a snapshot of the block order,
// so blocks can be removed on the way.
func (s *Shader) BlocksSafe() iter.Seq[*Block] {
	return func(yield func(*Block) bool) {
		for _, id := range slices.Clone(s.Order) {
			if !yield(s.blocks[id]) {
				return
			}
		}
	}
}

func (s *Shader) Instrs(b *Block) iter.Seq[*Instr] {
	return func(yield func(*Instr) bool) {
		for _, id := range b.Instrs {
			if !yield(s.instrs[id]) {
				return
			}
		}
	}
}

func (s *Shader) InstrsReverse(b *Block) iter.Seq[*Instr] {
	return func(yield func(*Instr) bool) {
		for k := len(b.Instrs) - 1; k >= 0; k-- {
			if !yield(s.instrs[b.Instrs[k]]) {
				return
			}
		}
	}
}

// InstrsSafe iterates a snapshot of b's instructions.
func (s *Shader) InstrsSafe(b *Block) iter.Seq[*Instr] {
	return func(yield func(*Instr) bool) {
		for _, id := range slices.Clone(b.Instrs) {
			if !yield(s.instrs[id]) {
				return
			}
		}
	}
}

// AllInstrs iterates instructions of all blocks in order.
func (s *Shader) AllInstrs() iter.Seq[*Instr] {
	return func(yield func(*Instr) bool) {
		for b := range s.Blocks() {
			for i := range s.Instrs(b) {
				if !yield(i) {
					return
				}
			}
		}
	}
}

func (s *Shader) Srcs(i *Instr) iter.Seq2[int, *Register] {
	return s.regList(i.Srcs)
}

func (s *Shader) Dsts(i *Instr) iter.Seq2[int, *Register] {
	return s.regList(i.Dsts)
}

func (s *Shader) regList(l []Reg) iter.Seq2[int, *Register] {
	return func(yield func(int, *Register) bool) {
		for k, r := range l {
			if !yield(k, s.regs[r]) {
				return
			}
		}
	}
}

// SSASrcs iterates instructions i reads values of,
// then its false dependencies. Indexes past the sources
// are dependency slots.
func (s *Shader) SSASrcs(i *Instr) iter.Seq2[int, *Instr] {
	return func(yield func(int, *Instr) bool) {
		for k, id := range i.Srcs {
			r := s.regs[id]
			if r.Flags&RegSSA == 0 || r.Def == NoReg {
				continue
			}

			if !yield(k, s.instrs[s.regs[r.Def].Instr]) {
				return
			}
		}

		for k, d := range i.Deps {
			if d == NoInstr {
				continue
			}

			if !yield(len(i.Srcs)+k, s.instrs[d]) {
				return
			}
		}
	}
}

// InputInstrs iterates shader input instructions.
func (s *Shader) InputInstrs() iter.Seq[*Instr] {
	return s.instrList(s.Inputs)
}

func (s *Shader) instrList(l []InstrID) iter.Seq[*Instr] {
	return func(yield func(*Instr) bool) {
		for _, id := range l {
			if !yield(s.instrs[id]) {
				return
			}
		}
	}
}

func (s *Shader) Arrays() iter.Seq[*Array] {
	return func(yield func(*Array) bool) {
		for _, a := range s.arrays {
			if !yield(a) {
				return
			}
		}
	}
}
