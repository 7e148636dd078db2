package ir

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slowlang/adreno/adreno/isa"
)

func r(num, comp int) isa.RegID { return isa.Reg(num, comp) }

func TestInstrCreate(t *testing.T) {
	s := New(630)
	b := s.NewBlock()

	bary := s.InstrCreate(b.ID, isa.OpcBaryF, 1, 2)
	in := s.InstrCreate(b.ID, isa.OpcMetaInput, 1, 0)
	tp := s.InstrCreate(b.ID, isa.OpcMetaTexPrefetch, 1, 0)

	rel := s.InstrCreate(b.ID, isa.OpcMov, 1, 1)
	s.DstCreate(rel, r(1, 0), 0)
	s.SrcCreate(rel, r(isa.RegA0, 0), 0)

	a1 := s.InstrCreate(b.ID, isa.OpcMov, 1, 1)
	s.SrcCreate(a1, r(isa.RegA0, 1), 0)

	br := s.InstrCreate(b.ID, isa.OpcBr, 0, 1)
	s.SrcCreate(br, r(isa.RegP0, 0), 0)
	s.SrcCreate(br, r(isa.RegP0, 0), RegBNot)

	cnst := s.InstrCreate(b.ID, isa.OpcMov, 1, 1)
	s.SrcCreate(cnst, r(isa.RegA0, 0), RegConst)

	assert.Equal(t, []InstrID{bary.ID}, s.Baryfs)
	assert.Equal(t, []InstrID{in.ID}, s.Inputs)
	assert.Equal(t, []InstrID{tp.ID}, s.TexPrefetches)
	assert.Equal(t, []InstrID{rel.ID}, s.A0Users)
	assert.Equal(t, []InstrID{a1.ID}, s.A1Users)
	assert.Equal(t, []InstrID{br.ID}, s.PredUsers)

	assert.Equal(t, []InstrID{bary.ID, in.ID, tp.ID, rel.ID, a1.ID, br.ID, cnst.ID}, b.Instrs)

	for k, id := range b.Instrs {
		i := s.Instr(id)
		assert.Equal(t, k, i.Serial)
		assert.Equal(t, b.ID, i.Block)
		assert.Equal(t, NoInstr, i.Address)
	}
}

func TestSetAddress(t *testing.T) {
	s := New(630)
	b := s.NewBlock()

	a0 := s.InstrCreate(b.ID, isa.OpcMov, 1, 1)
	s.DstCreate(a0, r(isa.RegA0, 0), 0)

	a1 := s.InstrCreate(b.ID, isa.OpcMov, 1, 1)
	s.DstCreate(a1, r(isa.RegA0, 1), 0)

	x := s.InstrCreate(b.ID, isa.OpcMov, 1, 1)
	y := s.InstrCreate(b.ID, isa.OpcMov, 1, 1)

	s.SetAddress(x, a0)
	s.SetAddress(y, a1)

	assert.Equal(t, a0.ID, x.Address)
	assert.Equal(t, a1.ID, y.Address)
	assert.Equal(t, []InstrID{x.ID}, s.A0Users)
	assert.Equal(t, []InstrID{y.ID}, s.A1Users)
}

func TestInstrClone(t *testing.T) {
	s := New(630)
	b := s.NewBlock()

	i := s.InstrCreate(b.ID, isa.OpcMadF32, 1, 3)
	i.Flags = InstrSS | InstrSat
	i.Repeat = 2
	i.Payload = Cat2{Cond: isa.CondGE}

	dst := s.DstCreate(i, r(2, 0), 0)
	s.SrcCreate(i, r(0, 0), RegFNeg)
	s.SrcCreate(i, r(1, 0), RegConst)
	src := s.SrcCreate(i, r(2, 0), 0)
	s.RegTie(dst, src)

	i.Deps = []InstrID{NoInstr}

	c := s.InstrClone(i)

	require.NotEqual(t, i.ID, c.ID)
	assert.Equal(t, i.Serial+1, c.Serial)
	assert.Equal(t, []InstrID{i.ID, c.ID}, b.Instrs)

	assert.Equal(t, i.Opc, c.Opc)
	assert.Equal(t, i.Flags, c.Flags)
	assert.Equal(t, i.Repeat, c.Repeat)
	assert.Equal(t, i.Payload, c.Payload)
	assert.Equal(t, i.Deps, c.Deps)

	require.Len(t, c.Dsts, 1)
	require.Len(t, c.Srcs, 3)

	for k := range i.Srcs {
		x, y := s.Reg(i.Srcs[k]), s.Reg(c.Srcs[k])

		assert.NotEqual(t, x.ID, y.ID)
		assert.Equal(t, c.ID, y.Instr)

		if diff := cmp.Diff(x, y, cmp.FilterPath(func(p cmp.Path) bool {
			switch p.Last().String() {
			case ".ID", ".Instr", ".Tied":
				return true
			}

			return false
		}, cmp.Ignore())); diff != "" {
			t.Errorf("src %d differs: %s", k, diff)
		}
	}

	cd := s.Reg(c.Dsts[0])
	cs := s.Reg(c.Srcs[2])

	assert.Equal(t, cs.ID, cd.Tied)
	assert.Equal(t, cd.ID, cs.Tied)

	// the cloned instruction keeps its own tie
	assert.Equal(t, src.ID, dst.Tied)

	c.Deps[0] = 5
	assert.Equal(t, NoInstr, i.Deps[0])

	// clones are indexed like the instruction and come unmarked
	rel := s.InstrCreate(b.ID, isa.OpcMov, 1, 1)
	s.DstCreate(rel, r(3, 0), 0)
	s.SrcCreate(rel, r(isa.RegA0, 0), 0)

	br := s.InstrCreate(b.ID, isa.OpcBr, 0, 1)
	s.SrcCreate(br, r(isa.RegP0, 0), 0)

	assert.False(t, rel.CheckMark())

	rc, bc := s.InstrClone(rel), s.InstrClone(br)

	assert.Zero(t, rc.Flags&InstrMark)
	assert.Equal(t, []InstrID{rel.ID, rc.ID}, s.A0Users)
	assert.Equal(t, []InstrID{br.ID, bc.ID}, s.PredUsers)
}

func TestRegTie(t *testing.T) {
	s := New(630)
	b := s.NewBlock()

	i := s.InstrCreate(b.ID, isa.OpcMadF32, 1, 3)
	d := s.DstCreate(i, r(0, 0), 0)
	a := s.SrcCreate(i, r(0, 0), 0)
	c := s.SrcCreate(i, r(1, 0), 0)

	s.RegTie(d, a)
	s.RegTie(d, a)

	assert.Equal(t, a.ID, d.Tied)
	assert.Equal(t, d.ID, a.Tied)

	assert.Panics(t, func() { s.RegTie(d, c) })

	x := s.RegClone(a)
	assert.Equal(t, NoReg, x.Tied)
	assert.Equal(t, a.Num, x.Num)
	assert.NotEqual(t, a.ID, x.ID)
}

func TestCheckMark(t *testing.T) {
	s := New(630)
	b := s.NewBlock()
	i := s.InstrCreate(b.ID, isa.OpcNop, 0, 0)

	assert.False(t, i.CheckMark())
	assert.True(t, i.CheckMark())

	s.ClearMarks()

	assert.False(t, i.CheckMark())
}

func TestPredicates(t *testing.T) {
	s := New(630)
	b := s.NewBlock()

	mov := func(st, dt isa.Type, dnum isa.RegID, dflags, sflags RegFlags) *Instr {
		i := s.InstrCreate(b.ID, isa.OpcMov, 1, 1)
		i.Payload = Cat1{SrcType: st, DstType: dt}
		s.DstCreate(i, dnum, dflags)
		s.SrcCreate(i, r(1, 0), sflags)

		return i
	}

	absneg := func(flags InstrFlags, sflags RegFlags) *Instr {
		i := s.InstrCreate(b.ID, isa.OpcAbsnegF, 1, 1)
		i.Flags = flags
		s.DstCreate(i, r(2, 0), 0)
		s.SrcCreate(i, r(1, 0), sflags)

		return i
	}

	assert.True(t, s.IsSameTypeMov(mov(isa.TypeF32, isa.TypeF32, r(0, 0), 0, 0)))
	assert.False(t, s.IsSameTypeMov(mov(isa.TypeF32, isa.TypeF16, r(0, 0), RegHalf, 0)))
	assert.False(t, s.IsSameTypeMov(mov(isa.TypeF16, isa.TypeF16, r(0, 0), RegHalf, 0)))
	assert.True(t, s.IsSameTypeMov(mov(isa.TypeF16, isa.TypeF16, r(0, 0), RegHalf, RegHalf)))
	assert.False(t, s.IsSameTypeMov(mov(isa.TypeU32, isa.TypeU32, r(isa.RegA0, 0), 0, 0)))
	assert.False(t, s.IsSameTypeMov(mov(isa.TypeU32, isa.TypeU32, r(isa.RegP0, 0), 0, 0)))
	assert.False(t, s.IsSameTypeMov(mov(isa.TypeU32, isa.TypeU32, r(0, 0), RegRelative, 0)))
	assert.False(t, s.IsSameTypeMov(mov(isa.TypeU32, isa.TypeU32, r(0, 0), RegArray, 0)))

	assert.True(t, s.IsSameTypeMov(absneg(0, 0)))
	assert.False(t, s.IsSameTypeMov(absneg(InstrSat, 0)))
	assert.False(t, s.IsSameTypeMov(absneg(0, RegFNeg)))
	assert.False(t, s.IsSameTypeMov(absneg(0, RegHalf)))

	assert.True(t, s.IsConstMov(mov(isa.TypeF32, isa.TypeF32, r(0, 0), 0, RegConst)))
	assert.True(t, s.IsConstMov(mov(isa.TypeU32, isa.TypeU16, r(0, 0), RegHalf, RegImmed)))
	assert.False(t, s.IsConstMov(mov(isa.TypeU16, isa.TypeU32, r(0, 0), 0, RegImmed)))
	assert.False(t, s.IsConstMov(mov(isa.TypeF32, isa.TypeS32, r(0, 0), 0, RegConst)))
	assert.False(t, s.IsConstMov(mov(isa.TypeF32, isa.TypeF32, r(0, 0), 0, 0)))
	assert.False(t, s.IsConstMov(mov(isa.TypeF32, isa.TypeF32, r(0, 0), 0, RegConst|RegRelative)))

	gpr := mov(isa.TypeU32, isa.TypeU32, r(3, 0), 0, 0)
	a0 := mov(isa.TypeU32, isa.TypeU32, r(isa.RegA0, 0), 0, 0)
	a1 := mov(isa.TypeU32, isa.TypeU32, r(isa.RegA0, 1), 0, 0)
	p0 := mov(isa.TypeU32, isa.TypeU32, r(isa.RegP0, 2), 0, 0)
	nop := s.InstrCreate(b.ID, isa.OpcNop, 0, 0)

	for _, tc := range []struct {
		i                     *Instr
		gpr, addr0, addr1, pr bool
	}{
		{gpr, true, false, false, false},
		{a0, false, true, false, false},
		{a1, false, false, true, false},
		{p0, false, false, false, true},
		{nop, false, false, false, false},
	} {
		assert.Equal(t, tc.gpr, s.WritesGPR(tc.i), "gpr i%d", tc.i.ID)
		assert.Equal(t, tc.addr0, s.WritesAddr0(tc.i), "a0 i%d", tc.i.ID)
		assert.Equal(t, tc.addr1, s.WritesAddr1(tc.i), "a1 i%d", tc.i.ID)
		assert.Equal(t, tc.pr, s.WritesPred(tc.i), "p0 i%d", tc.i.ID)
	}

	for _, tc := range []struct {
		op                                  isa.Opc
		kill, nop, input, boolean, st, load bool
	}{
		{isa.OpcKill, true, false, false, false, false, false},
		{isa.OpcDemote, true, false, false, false, false, false},
		{isa.OpcNop, false, true, false, false, false, false},
		{isa.OpcBaryF, false, false, true, false, false, false},
		{isa.OpcLdlv, false, false, true, false, false, true},
		{isa.OpcCmpsF, false, false, false, true, false, false},
		{isa.OpcCmpsU, false, false, false, true, false, false},
		{isa.OpcStg, false, false, false, false, true, false},
		{isa.OpcSam, false, false, false, false, false, true},
	} {
		i := &Instr{Opc: tc.op}

		assert.Equal(t, tc.kill, i.IsKillOrDemote(), "%v", tc.op)
		assert.Equal(t, tc.nop, i.IsNop(), "%v", tc.op)
		assert.Equal(t, tc.input, i.IsInput(), "%v", tc.op)
		assert.Equal(t, tc.boolean, i.IsBool(), "%v", tc.op)
		assert.Equal(t, tc.st, i.IsStore(), "%v", tc.op)
		assert.Equal(t, tc.load, i.IsLoad(), "%v", tc.op)
	}

	assert.True(t, SameTypeRegs(&Register{Flags: RegHalf | RegConst}, &Register{Flags: RegHalf}))
	assert.False(t, SameTypeRegs(&Register{Flags: RegHalf}, &Register{Flags: RegShared | RegHalf}))
}

func TestIterators(t *testing.T) {
	s := New(630)
	b0 := s.NewBlock()
	b1 := s.NewBlock()
	b2 := s.NewBlock()

	def := s.InstrCreate(b0.ID, isa.OpcMov, 1, 1)
	d := s.DstCreate(def, r(0, 0), 0)

	other := s.InstrCreate(b0.ID, isa.OpcNop, 0, 0)

	use := s.InstrCreate(b1.ID, isa.OpcAddF, 1, 2)
	s.SSASrc(use, d, 0)
	s.SrcCreate(use, r(1, 0), RegConst)
	use.Deps = []InstrID{other.ID}

	var got []InstrID
	var idx []int

	for k, i := range s.SSASrcs(use) {
		idx = append(idx, k)
		got = append(got, i.ID)
	}

	assert.Equal(t, []int{0, 2}, idx)
	assert.Equal(t, []InstrID{def.ID, other.ID}, got)

	var order []BlockID
	for b := range s.BlocksReverse() {
		order = append(order, b.ID)
	}

	assert.Equal(t, []BlockID{b2.ID, b1.ID, b0.ID}, order)

	order = order[:0]
	for b := range s.BlocksSafe() {
		order = append(order, b.ID)

		if b.ID == b0.ID {
			s.RemoveBlock(b2)
		}
	}

	assert.Equal(t, []BlockID{b0.ID, b1.ID, b2.ID}, order)
	assert.Equal(t, []BlockID{b0.ID, b1.ID}, s.Order)

	var instrs []InstrID
	for i := range s.AllInstrs() {
		instrs = append(instrs, i.ID)
	}

	assert.Equal(t, []InstrID{def.ID, other.ID, use.ID}, instrs)

	instrs = instrs[:0]
	for i := range s.InstrsReverse(b0) {
		instrs = append(instrs, i.ID)
	}

	assert.Equal(t, []InstrID{other.ID, def.ID}, instrs)

	a := s.NewArray(4, true)
	n := 0
	for x := range s.Arrays() {
		assert.Equal(t, a, x)
		n++
	}

	assert.Equal(t, 1, n)
}

func TestDominance(t *testing.T) {
	s := New(630)

	b := make([]*Block, 6)
	for k := range b {
		b[k] = s.NewBlock()
	}

	s.Link(b[0], b[1].ID, b[2].ID)
	s.Link(b[1], b[3].ID)
	s.Link(b[2], b[3].ID)
	s.Link(b[3], b[4].ID)
	s.Link(b[4], b[1].ID)
	// b[5] is unreachable

	s.CalculateDominance(context.Background())

	assert.Equal(t, NoBlock, b[0].IDom)
	assert.Equal(t, b[0].ID, b[1].IDom)
	assert.Equal(t, b[0].ID, b[2].IDom)
	assert.Equal(t, b[0].ID, b[3].IDom)
	assert.Equal(t, b[3].ID, b[4].IDom)
	assert.Equal(t, NoBlock, b[5].IDom)

	assert.Equal(t, []BlockID{1, 2, 3}, b[0].DomChildren)
	assert.Equal(t, []BlockID{4}, b[3].DomChildren)

	dom := [][2]int{{0, 0}, {0, 1}, {0, 2}, {0, 3}, {0, 4}, {3, 4}, {1, 1}, {4, 4}}
	notdom := [][2]int{{1, 3}, {2, 3}, {1, 4}, {4, 3}, {3, 0}, {0, 5}, {5, 5}}

	for _, p := range dom {
		assert.True(t, s.Dominates(BlockID(p[0]), BlockID(p[1])), "%d dom %d", p[0], p[1])
	}

	for _, p := range notdom {
		assert.False(t, s.Dominates(BlockID(p[0]), BlockID(p[1])), "%d !dom %d", p[0], p[1])
	}

	assert.Equal(t, -1, b[5].DomPre)

	// recalculation after an edge change
	s.Link(b[0], b[3].ID)
	s.Link(b[5], b[1].ID)
	s.Link(b[5], b[2].ID)

	s.CalculateDominance(context.Background())

	assert.Equal(t, b[0].ID, b[3].IDom)
	assert.Equal(t, b[3].ID, b[4].IDom)
	assert.Equal(t, b[4].ID, b[1].IDom)
	assert.Equal(t, NoBlock, b[2].IDom)
	assert.Equal(t, []BlockID{3}, b[0].DomChildren)
	assert.False(t, s.Dominates(b[1].ID, b[3].ID))
}

func TestLiveness(t *testing.T) {
	s := New(630)
	b0 := s.NewBlock()
	b1 := s.NewBlock()
	b2 := s.NewBlock()
	b3 := s.NewBlock()

	s.Link(b0, b1.ID, b2.ID)
	s.Link(b1, b3.ID)
	s.Link(b2, b3.ID)

	mk := func(b *Block, num int) *Register {
		i := s.InstrCreate(b.ID, isa.OpcMov, 1, 1)
		s.SrcCreate(i, r(0, 0), RegImmed)

		return s.DstCreate(i, r(num, 0), 0)
	}

	x := mk(b0, 1)
	y := mk(b0, 2)
	z := mk(b1, 3)

	use := s.InstrCreate(b2.ID, isa.OpcAddF, 1, 2)
	s.DstCreate(use, r(4, 0), 0)
	s.SSASrc(use, x, 0)
	s.SSASrc(use, x, 0)

	phi := s.InstrCreate(b3.ID, isa.OpcMetaPhi, 1, 2)
	p := s.DstCreate(phi, r(5, 0), 0)
	s.SSASrc(phi, z, 0)
	s.SSASrc(phi, y, 0)

	end := s.InstrCreate(b3.ID, isa.OpcMov, 1, 1)
	s.DstCreate(end, r(6, 0), 0)
	s.SSASrc(end, p, 0)

	s.CalculateLiveness(context.Background())

	ids := func(b interface{ IsSet(Reg) bool }, l ...*Register) []bool {
		r := make([]bool, len(l))
		for k, x := range l {
			r[k] = b.IsSet(x.ID)
		}

		return r
	}

	assert.Equal(t, []bool{true, true}, ids(b0.LiveOut, x, y))
	assert.Equal(t, []bool{false, false, true}, ids(b1.LiveOut, x, y, z))
	assert.Equal(t, []bool{false, false, false}, ids(b1.LiveIn, x, y, z))
	assert.Equal(t, []bool{true, true, false}, ids(b2.LiveIn, x, y, z))
	assert.Equal(t, []bool{false, true, false}, ids(b2.LiveOut, x, y, z))
	assert.Equal(t, 0, b3.LiveIn.Size())
	assert.Equal(t, 0, b3.LiveOut.Size())
	assert.Equal(t, 0, b0.LiveIn.Size())
}

func TestValidate(t *testing.T) {
	ctx := context.Background()

	build := func() (*Shader, *Instr, *Instr) {
		s := New(630)
		b0 := s.NewBlock()
		b1 := s.NewBlock()
		s.Link(b0, b1.ID)

		def := s.InstrCreate(b0.ID, isa.OpcMov, 1, 1)
		s.SrcCreate(def, r(0, 0), RegImmed)
		d := s.DstCreate(def, r(1, 0), 0)

		use := s.InstrCreate(b1.ID, isa.OpcAddF, 1, 2)
		s.DstCreate(use, r(2, 0), 0)
		s.SSASrc(use, d, 0)
		s.SrcCreate(use, r(3, 0), RegConst)

		return s, def, use
	}

	s, _, _ := build()
	require.NoError(t, s.Validate(ctx))

	for name, f := range map[string]func(s *Shader, def, use *Instr){
		"repeat": func(s *Shader, def, use *Instr) { use.Repeat = 8 },
		"nop":    func(s *Shader, def, use *Instr) { use.Nop = 8 },
		"sat":    func(s *Shader, def, use *Instr) { def.Flags |= InstrSat },
		"dst_const": func(s *Shader, def, use *Instr) {
			s.Reg(use.Dsts[0]).Flags |= RegConst
		},
		"dst_imm": func(s *Shader, def, use *Instr) {
			s.Reg(use.Dsts[0]).Flags |= RegImmed
		},
		"src_kinds": func(s *Shader, def, use *Instr) {
			s.Reg(use.Srcs[1]).Flags |= RegImmed
		},
		"tie": func(s *Shader, def, use *Instr) {
			s.Reg(use.Dsts[0]).Tied = use.Srcs[1]
		},
		"foreign_tie": func(s *Shader, def, use *Instr) {
			x, y := s.Reg(use.Dsts[0]), s.Reg(def.Dsts[0])
			x.Tied, y.Tied = y.ID, x.ID
		},
		"address": func(s *Shader, def, use *Instr) { use.Address = def.ID },
		"not_dominated": func(s *Shader, def, use *Instr) {
			s.Link(s.Block(0))
		},
		"later_def": func(s *Shader, def, use *Instr) {
			b := s.Block(1)
			x := s.InstrCreate(b.ID, isa.OpcMov, 1, 1)
			xd := s.DstCreate(x, r(5, 0), 0)
			s.SrcCreate(x, r(0, 0), RegImmed)
			s.SSASrc(use, xd, 0)
		},
		"self": func(s *Shader, def, use *Instr) {
			s.SSASrc(use, s.Reg(use.Dsts[0]), 0)
		},
		"wrong_block": func(s *Shader, def, use *Instr) { use.Block = 0 },
	} {
		t.Run(name, func(t *testing.T) {
			s, def, use := build()
			f(s, def, use)

			assert.Error(t, s.Validate(ctx))
		})
	}

	t.Run("phi", func(t *testing.T) {
		s, _, use := build()
		b1 := s.Block(1)
		s.Link(b1, b1.ID)

		phi := s.InstrCreate(b1.ID, isa.OpcMetaPhi, 1, 2)
		s.DstCreate(phi, r(7, 0), 0)
		s.SSASrc(phi, s.Reg(use.Dsts[0]), 0)

		assert.NoError(t, s.Validate(ctx))
	})
}
