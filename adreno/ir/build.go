package ir

import (
	"slices"

	"tlog.app/go/errors"

	"github.com/slowlang/adreno/adreno/isa"
)

func New(gpuID int) *Shader {
	return &Shader{GPUID: gpuID}
}

func (s *Shader) Block(id BlockID) *Block { return s.blocks[id] }
func (s *Shader) Instr(id InstrID) *Instr { return s.instrs[id] }
func (s *Shader) Reg(id Reg) *Register    { return s.regs[id] }
func (s *Shader) Array(id ArrayID) *Array { return s.arrays[id] }

// NewBlock appends an empty block to the block order.
func (s *Shader) NewBlock() *Block {
	b := &Block{
		ID:     BlockID(len(s.blocks)),
		Succs:  [2]BlockID{NoBlock, NoBlock},
		Cond:   NoInstr,
		IDom:   NoBlock,
		DomPre: -1,
	}

	s.blocks = append(s.blocks, b)
	s.Order = append(s.Order, b.ID)

	return b
}

// Link sets successors of b. Predecessor lists are kept in sync.
func (s *Shader) Link(b *Block, succ ...BlockID) {
	if len(succ) > 2 {
		panic(errors.New("block%d: %d successors", b.ID, len(succ)))
	}

	for _, x := range b.Succ() {
		p := s.blocks[x]
		p.Preds = remove(p.Preds, b.ID)
	}

	b.Succs = [2]BlockID{NoBlock, NoBlock}

	for k, x := range succ {
		b.Succs[k] = x

		p := s.blocks[x]
		if !slices.Contains(p.Preds, b.ID) {
			p.Preds = append(p.Preds, b.ID)
		}
	}
}

// RemoveBlock drops an unreachable block from the block order.
// Its arena slot stays so ids remain valid.
func (s *Shader) RemoveBlock(b *Block) {
	if len(b.Preds) != 0 {
		panic(errors.New("block%d: has predecessors", b.ID))
	}

	s.Link(b)
	s.Order = remove(s.Order, b.ID)
}

func (s *Shader) NewArray(length int, half bool) *Array {
	a := &Array{
		ID:        ArrayID(len(s.arrays)),
		Length:    length,
		Half:      half,
		Base:      isa.InvalidReg,
		LastWrite: NoReg,
	}

	s.arrays = append(s.arrays, a)

	return a
}

// InstrCreate appends a new instruction to b.
// ndst and nsrc are capacity hints.
func (s *Shader) InstrCreate(b BlockID, op isa.Opc, ndst, nsrc int) *Instr {
	i := s.newInstr(b, op, ndst, nsrc)

	blk := s.blocks[b]
	blk.Instrs = append(blk.Instrs, i.ID)

	return i
}

func (s *Shader) newInstr(b BlockID, op isa.Opc, ndst, nsrc int) *Instr {
	i := &Instr{
		ID:      InstrID(len(s.instrs)),
		Block:   b,
		Opc:     op,
		Dsts:    make([]Reg, 0, ndst),
		Srcs:    make([]Reg, 0, nsrc),
		Address: NoInstr,
		Serial:  s.serial,
		IP:      -1,
	}

	s.serial++
	s.instrs = append(s.instrs, i)

	switch op {
	case isa.OpcBaryF, isa.OpcLdlv:
		s.Baryfs = append(s.Baryfs, i.ID)
	case isa.OpcMetaInput:
		s.Inputs = append(s.Inputs, i.ID)
	case isa.OpcMetaTexPrefetch:
		s.TexPrefetches = append(s.TexPrefetches, i.ID)
	}

	return i
}

func (s *Shader) newReg(i *Instr, num isa.RegID, flags RegFlags) *Register {
	r := &Register{
		ID:     Reg(len(s.regs)),
		Instr:  i.ID,
		Flags:  flags,
		Num:    num,
		Wrmask: 1,
		Array:  NoArray,
		Def:    NoReg,
		Tied:   NoReg,
	}

	s.regs = append(s.regs, r)

	return r
}

// DstCreate appends a destination register to i.
func (s *Shader) DstCreate(i *Instr, num isa.RegID, flags RegFlags) *Register {
	r := s.newReg(i, num, flags)
	i.Dsts = append(i.Dsts, r.ID)

	return r
}

// SrcCreate appends a source register to i.
// Instructions reading a0, a1 or p0 get indexed.
func (s *Shader) SrcCreate(i *Instr, num isa.RegID, flags RegFlags) *Register {
	r := s.newReg(i, num, flags)
	i.Srcs = append(i.Srcs, r.ID)

	s.indexSrc(i, r)

	return r
}

func (s *Shader) indexSrc(i *Instr, r *Register) {
	if r.Flags&(RegConst|RegImmed|RegSSA|RegArray) != 0 {
		return
	}

	switch {
	case r.Num == isa.Reg(isa.RegA0, 0):
		s.A0Users = appendOnce(s.A0Users, i.ID)
	case r.Num == isa.Reg(isa.RegA0, 1):
		s.A1Users = appendOnce(s.A1Users, i.ID)
	case r.Num.IsPred():
		s.PredUsers = appendOnce(s.PredUsers, i.ID)
	}
}

// SSASrc appends a source reading the value def defines.
func (s *Shader) SSASrc(i *Instr, def *Register, flags RegFlags) *Register {
	r := s.SrcCreate(i, def.Num, flags|RegSSA|def.Flags&(RegHalf|RegShared))
	r.Def = def.ID
	r.Wrmask = def.Wrmask

	return r
}

// SetAddress makes i read the address register addr writes.
func (s *Shader) SetAddress(i, addr *Instr) {
	i.Address = addr.ID

	switch {
	case s.WritesAddr0(addr):
		s.A0Users = appendOnce(s.A0Users, i.ID)
	case s.WritesAddr1(addr):
		s.A1Users = appendOnce(s.A1Users, i.ID)
	}
}

// RegClone returns a copy of r owned by the same instruction
// but not listed in it. The copy is not tied.
func (s *Shader) RegClone(r *Register) *Register {
	c := *r
	c.ID = Reg(len(s.regs))
	c.Tied = NoReg

	s.regs = append(s.regs, &c)

	return &c
}

// InstrClone deep copies i to the end of its block.
// Registers are copied, ties between them are carried over.
func (s *Shader) InstrClone(i *Instr) *Instr {
	c := s.InstrCreate(i.Block, i.Opc, len(i.Dsts), len(i.Srcs))

	id, serial := c.ID, c.Serial
	*c = *i
	c.ID, c.Serial = id, serial
	c.Dsts = make([]Reg, 0, len(i.Dsts))
	c.Srcs = make([]Reg, 0, len(i.Srcs))
	c.Deps = append([]InstrID(nil), i.Deps...)
	c.Flags &^= InstrMark
	c.IP = -1

	m := map[Reg]Reg{}

	for _, l := range []*[]Reg{&i.Dsts, &i.Srcs} {
		for _, r := range *l {
			x := s.RegClone(s.regs[r])
			x.Instr = c.ID
			m[r] = x.ID

			if l == &i.Dsts {
				c.Dsts = append(c.Dsts, x.ID)
			} else {
				c.Srcs = append(c.Srcs, x.ID)
				s.indexSrc(c, x)
			}
		}
	}

	for old, x := range m {
		if t := s.regs[old].Tied; t != NoReg {
			s.regs[x].Tied = m[t]
		}
	}

	return c
}

// RegTie ties dst and src of one instruction to the same register.
func (s *Shader) RegTie(dst, src *Register) {
	if dst.Tied != NoReg && dst.Tied != src.ID || src.Tied != NoReg && src.Tied != dst.ID {
		panic(errors.New("ssa_%d already tied", int(dst.ID)))
	}

	dst.Tied = src.ID
	src.Tied = dst.ID
}

// CheckMark sets the mark flag and reports whether it was already set.
func (i *Instr) CheckMark() bool {
	if i.Flags&InstrMark != 0 {
		return true
	}

	i.Flags |= InstrMark

	return false
}

func (s *Shader) ClearMarks() {
	for _, i := range s.instrs {
		i.Flags &^= InstrMark
	}
}

func remove[T comparable](l []T, x T) []T {
	if k := slices.Index(l, x); k >= 0 {
		return slices.Delete(l, k, k+1)
	}

	return l
}

func appendOnce[T comparable](l []T, x T) []T {
	if slices.Contains(l, x) {
		return l
	}

	return append(l, x)
}
