package ir

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/adreno/adreno/codec"
	"github.com/slowlang/adreno/adreno/isa"
	"github.com/slowlang/adreno/adreno/set"
)

// Build lifts a program into a shader. Blocks start at branch targets
// and after branches. Registers stay physical, no ssa is built.
func Build(ctx context.Context, gpuID int, words []uint64) (s *Shader, err error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "ir_build", "words", len(words), "gpu", gpuID)
	defer tr.Finish("err", &err)

	dec := codec.Decoder{GPUID: gpuID, Assert: codec.Report}

	l := make([]codec.Instr, len(words))
	leaders := set.MakeBits(0)

	for n, w := range words {
		l[n], err = dec.Decode(w)
		if err != nil {
			return nil, errors.Wrap(err, "word %d", n)
		}

		t, ok, err := branchTarget(n, l[n])
		if err != nil {
			return nil, errors.Wrap(err, "word %d", n)
		}

		if !ok {
			continue
		}

		if t >= 0 && t < len(words) {
			leaders.Set(t)
		}

		if n+1 < len(words) {
			leaders.Set(n + 1)
		}
	}

	s = New(gpuID)

	if len(words) == 0 {
		return s, nil
	}

	start := make(map[int]BlockID, leaders.Size())

	for n := range leaders.All() {
		start[n] = s.NewBlock().ID
	}

	var cur BlockID

	for n, ci := range l {
		if id, ok := start[n]; ok {
			cur = id
		}

		i, err := s.Lift(cur, ci)
		if err != nil {
			return nil, errors.Wrap(err, "word %d", n)
		}

		i.IP = n
	}

	for k, id := range s.Order {
		b := s.blocks[id]
		last := s.instrs[b.Instrs[len(b.Instrs)-1]]

		next := NoBlock
		if k+1 < len(s.Order) {
			next = s.Order[k+1]
		}

		t, _, _ := branchTarget(last.IP, l[last.IP])
		target, ok := start[t]
		if !ok {
			target = NoBlock
		}

		_, cond := isa.BranchType(last.Opc)

		switch {
		case last.Opc == isa.OpcEnd, last.Opc == isa.OpcRet, last.Opc == isa.OpcChsh:
			s.Link(b)
		case last.Opc == isa.OpcJump && target != NoBlock:
			s.Link(b, target)
		case cond && target != NoBlock && target != next && next != NoBlock:
			s.Link(b, next, target)
			b.Cond = last.ID
		case cond && target != NoBlock:
			s.Link(b, target)
		case next != NoBlock:
			s.Link(b, next)
		}
	}

	tr.Printw("shader built", "blocks", len(s.Order), "instrs", len(s.instrs))

	return s, nil
}

func branchTarget(n int, ci codec.Instr) (int, bool, error) {
	c, ok := ci.(*codec.Cat0)
	if !ok {
		return 0, false, nil
	}

	op, err := c.Opc()
	if err != nil {
		return 0, false, err
	}

	if _, ok := isa.BranchType(op); !ok && op != isa.OpcJump {
		return 0, false, nil
	}

	return n + c.Offset(), true, nil
}

// Lift appends the decoded instruction to block b.
// Operands become physical registers, the rest of the word
// is kept in the category payload so Emit can restore it.
func (s *Shader) Lift(b BlockID, ci codec.Instr) (*Instr, error) {
	op, err := ci.Opc()
	if err != nil {
		return nil, errors.Wrap(err, "lift")
	}

	i := s.InstrCreate(b, op, 1, 3)

	h := ci.Hdr()

	i.Flags |= flagIf(h.Sy, InstrSY) | flagIf(h.Jp, InstrJP) |
		flagIf(codec.SS(ci), InstrSS) | flagIf(codec.UL(ci), InstrUL) | flagIf(codec.Sat(ci), InstrSat)
	i.Repeat = codec.Repeat(ci)
	i.Nop = codec.Nop(ci)

	switch c := ci.(type) {
	case *codec.Cat0:
		s.liftCat0(i, c)
	case *codec.Cat1:
		s.liftCat1(i, c)
	case *codec.Cat2:
		s.liftCat2(i, c)
	case *codec.Cat3:
		s.liftCat3(i, c)
	case *codec.Cat4:
		s.liftCat4(i, c)
	case *codec.Cat5:
		s.liftCat5(i, c)
	case *codec.Cat6:
		s.liftCat6(i, c)
	case *codec.Cat6LdGB:
		s.liftCat6LdGB(i, c)
	case *codec.Cat6StGB:
		s.liftCat6StGB(i, c)
	case *codec.Cat6A6xx:
		s.liftCat6A6xx(i, c)
	case *codec.Cat7:
		i.Payload = Cat7{W: c.W, R: c.R, L: c.L, G: c.G}
	default:
		panic(ci)
	}

	return i, nil
}

func (s *Shader) liftCat0(i *Instr, c *codec.Cat0) {
	i.Payload = Cat0{
		Immed:  c.Immed,
		Idx:    c.Idx,
		BrType: c.BrType,
		Eq:     c.Eq,
		Inv0:   c.Inv0,
		Inv1:   c.Inv1,
		Comp0:  c.Comp0,
		Comp1:  c.Comp1,
	}

	n := 0

	if t, ok := isa.BranchType(i.Opc); ok {
		n = t.Srcs()
	}

	switch i.Opc {
	case isa.OpcKill, isa.OpcDemote, isa.OpcPredt, isa.OpcPredf:
		n = 1
	}

	if n > 0 {
		s.SrcCreate(i, isa.Reg(isa.RegP0, int(c.Comp0)), flagIf(c.Inv0, RegBNot))
	}

	if n > 1 {
		s.SrcCreate(i, isa.Reg(isa.RegP0, int(c.Comp1)), flagIf(c.Inv1, RegBNot))
	}
}

func (s *Shader) liftCat1(i *Instr, c *codec.Cat1) {
	i.Payload = Cat1{
		SrcType: c.SrcType,
		DstType: c.DstType,
		Round:   c.Round(),
		SrcC:    c.SrcC,
		RelC:    c.SrcRelC(),
	}

	dst := s.DstCreate(i, isa.RegID(c.Dst), flagIf(!c.DstType.Full(), RegHalf))
	if c.DstRel {
		dst.Flags |= RegRelative
		dst.Offset = int(c.Dst)
	}

	f := flagIf(c.SrcR, RegR) | flagIf(!c.SrcType.Full(), RegHalf)

	switch c.MovKind() {
	case isa.OpcMovImmed:
		r := s.SrcCreate(i, 0, f|RegImmed)
		r.Imm = c.Src
	case isa.OpcMovRelConst:
		r := s.SrcCreate(i, 0, f|RegRelative|RegConst)
		r.Offset = c.SrcOff()
	case isa.OpcMovRelGPR:
		r := s.SrcCreate(i, 0, f|RegRelative)
		r.Offset = c.SrcOff()
	case isa.OpcMovConst:
		s.SrcCreate(i, c.SrcReg(), f|RegConst)
	default:
		s.SrcCreate(i, c.SrcReg(), f)
	}
}

func (s *Shader) liftCat2(i *Instr, c *codec.Cat2) {
	i.Payload = Cat2{Cond: c.Cond}

	neg, abs := RegSNeg, RegSAbs
	if isa.IsCat2Float(i.Opc) {
		neg, abs = RegFNeg, RegFAbs
	}

	rpt := c.Repeat != 0
	half := !c.Full

	s.DstCreate(i, isa.RegID(c.Dst), flagIf(half != c.DstHalf, RegHalf)|flagIf(c.EI, RegEI))

	s.liftSrc(i, c.Src1, c.Src1Im, half,
		flagIf(c.Src1Neg, neg)|flagIf(c.Src1Abs, abs)|flagIf(rpt && c.Src1R, RegR))

	src2 := c.Src2.Raw() != 0 || c.Src2Im || c.Src2Neg || c.Src2Abs || rpt && c.Src2R
	if c.Srcs() < 2 && !src2 {
		return
	}

	s.liftSrc(i, c.Src2, c.Src2Im, half,
		flagIf(c.Src2Neg, neg)|flagIf(c.Src2Abs, abs)|flagIf(rpt && c.Src2R, RegR))
}

func (s *Shader) liftCat3(i *Instr, c *codec.Cat3) {
	neg := RegSNeg
	if isa.IsCat3Float(i.Opc) {
		neg = RegFNeg
	}

	rpt := c.Repeat != 0
	half := !c.Full()

	s.DstCreate(i, isa.RegID(c.Dst), flagIf(half != c.DstHalf, RegHalf))

	s.liftSrc(i, c.Src1, false, half, flagIf(c.Src1Neg, neg)|flagIf(rpt && c.Src1R, RegR))

	s.SrcCreate(i, isa.RegID(c.Src2), flagIf(half, RegHalf)|flagIf(c.Src2C, RegConst)|
		flagIf(c.Src2Neg, neg)|flagIf(rpt && c.Src2R, RegR))

	s.liftSrc(i, c.Src3, false, half, flagIf(c.Src3Neg, neg)|flagIf(c.Src3R, RegR))
}

func (s *Shader) liftCat4(i *Instr, c *codec.Cat4) {
	half := !c.Full

	s.DstCreate(i, isa.RegID(c.Dst), flagIf(half != c.DstHalf, RegHalf))

	s.liftSrc(i, c.Src, c.SrcIm, half,
		flagIf(c.SrcNeg, RegFNeg)|flagIf(c.SrcAbs, RegFAbs)|flagIf(c.SrcR, RegR))
}

func (s *Shader) liftSrc(i *Instr, src codec.Src, im, half bool, f RegFlags) *Register {
	f |= flagIf(half, RegHalf)

	switch {
	case im:
		r := s.SrcCreate(i, 0, f|RegImmed)
		r.Imm = uint32(src.Raw())

		return r
	case src.Kind == codec.SrcRel:
		r := s.SrcCreate(i, 0, f|RegRelative|flagIf(src.RelC, RegConst))
		r.Offset = src.Off()

		return r
	case src.Kind == codec.SrcConst:
		return s.SrcCreate(i, src.Reg(), f|RegConst)
	default:
		return s.SrcCreate(i, src.Reg(), f)
	}
}

func (s *Shader) liftCat5(i *Instr, c *codec.Cat5) {
	p := Cat5{
		Type: c.Type,
		Full: c.Full,
		Base: c.Base(),
	}

	i.Flags |= flagIf(c.Is3D, Instr3D) | flagIf(c.IsA, InstrA) | flagIf(c.IsS, InstrS) |
		flagIf(c.IsS2EN, InstrS2EN) | flagIf(c.IsO, InstrO) | flagIf(c.IsP, InstrP)

	dst := s.DstCreate(i, isa.RegID(c.Dst), flagIf(!c.Type.Full(), RegHalf))
	dst.Wrmask = c.Wrmask

	src1, src2, _, _ := c.Operands()
	half := flagIf(!c.Full, RegHalf)

	if src1 {
		s.SrcCreate(i, isa.RegID(c.Src1), half)
	}

	if src2 {
		s.SrcCreate(i, isa.RegID(c.Src2), half)
	}

	if c.IsS2EN {
		p.DescMode = c.DescMode()

		i.Flags |= flagIf(p.DescMode.Bindless(), InstrBindless) | flagIf(p.DescMode.A1(), InstrA1EN) |
			flagIf(!p.DescMode.Uniform() && !p.DescMode.Imm(), InstrNonuniform)

		s.SrcCreate(i, isa.RegID(c.Src3()), 0)
	} else {
		p.Samp, p.Tex = c.Samp(), c.Tex()
	}

	i.Payload = p
}

func (s *Shader) liftCat6(i *Instr, c *codec.Cat6) {
	i.Payload = Cat6{
		Form:   Cat6Legacy,
		Type:   c.Type,
		Off:    c.Offset(),
		SrcOff: c.SrcOff,
		DstOff: c.DstOff,
		G:      c.G,
	}

	if i.IsStore() {
		s.SrcCreate(i, isa.RegID(c.Dst), 0)
	} else {
		s.DstCreate(i, isa.RegID(c.Dst), flagIf(!c.Type.Full(), RegHalf))
	}

	s.liftMemSrc(i, c.Src1, c.Src1Im)
	s.liftMemSrc(i, c.Src2, c.Src2Im)
}

func (s *Shader) liftCat6LdGB(i *Instr, c *codec.Cat6LdGB) {
	i.Payload = Cat6{
		Form:     Cat6LdGB,
		Type:     c.Type,
		G:        c.G,
		D:        c.D,
		Typed:    c.Typed,
		TypeSize: c.TypeSize,
		Pad0:     c.Pad0,
	}

	s.DstCreate(i, isa.RegID(c.Dst), flagIf(!c.Type.Full(), RegHalf))

	s.liftMemSrc(i, c.SrcSSBO, c.SrcSSBOIm)
	s.liftMemSrc(i, c.Src1, c.Src1Im)
	s.liftMemSrc(i, c.Src2, c.Src2Im)
	s.liftMemSrc(i, c.Src3, false)
}

func (s *Shader) liftCat6StGB(i *Instr, c *codec.Cat6StGB) {
	i.Payload = Cat6{
		Form:     Cat6StGB,
		Type:     c.Type,
		D:        c.D,
		Typed:    c.Typed,
		TypeSize: c.TypeSize,
		Pad3:     c.Pad3,
	}

	s.liftMemSrc(i, c.DstSSBO, true)
	s.liftMemSrc(i, c.Src1, false)
	s.liftMemSrc(i, c.Src2, c.Src2Im)
	s.liftMemSrc(i, c.Src3, c.Src3Im)
}

func (s *Shader) liftCat6A6xx(i *Instr, c *codec.Cat6A6xx) {
	i.Payload = Cat6{
		Form:     Cat6A6xx,
		Type:     c.Type,
		D:        c.D,
		Typed:    c.Typed,
		TypeSize: c.TypeSize,
		DescMode: c.DescMode,
		Base:     c.Base,
		Pad1:     c.Pad1,
		Pad3:     c.Pad3,
		Pad5:     c.Pad5,
	}

	if !i.IsStore() {
		s.DstCreate(i, isa.RegID(c.Src2), flagIf(!c.Type.Full(), RegHalf))
	}

	s.liftMemSrc(i, c.SSBO, !c.DescMode.Indirect())
	s.liftMemSrc(i, c.Src1, false)

	if i.IsStore() {
		s.liftMemSrc(i, c.Src2, false)
	}
}

func (s *Shader) liftMemSrc(i *Instr, v uint8, im bool) {
	if im {
		r := s.SrcCreate(i, 0, RegImmed)
		r.Imm = uint32(v)

		return
	}

	s.SrcCreate(i, isa.RegID(v), 0)
}

func flagIf[F ~uint32](c bool, f F) F {
	if c {
		return f
	}

	return 0
}
