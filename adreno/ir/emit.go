package ir

import (
	"tlog.app/go/errors"

	"github.com/slowlang/adreno/adreno/codec"
	"github.com/slowlang/adreno/adreno/isa"
)

// Emit converts i back to its encoding structure.
// Emit(Lift(Decode(w))) encodes to w for words with zero padding.
func (s *Shader) Emit(i *Instr) (codec.Instr, error) {
	h := codec.Header{
		Jp: i.Flags&InstrJP != 0,
		Sy: i.Flags&InstrSY != 0,
	}

	switch i.Cat() {
	case isa.Cat0:
		return s.emitCat0(i, h)
	case isa.Cat1:
		return s.emitCat1(i, h)
	case isa.Cat2:
		return s.emitCat2(i, h)
	case isa.Cat3:
		return s.emitCat3(i, h)
	case isa.Cat4:
		return s.emitCat4(i, h)
	case isa.Cat5:
		return s.emitCat5(i, h)
	case isa.Cat6:
		return s.emitCat6(i, h)
	case isa.Cat7:
		p, _ := i.Payload.(Cat7)

		return &codec.Cat7{
			Header: h,
			SS:     i.Flags&InstrSS != 0,
			W:      p.W,
			R:      p.R,
			L:      p.L,
			G:      p.G,
			RawOpc: i.Opc.Sub(),
		}, nil
	}

	return nil, errors.New("%v: no encoding", i.Opc)
}

// Words emits the whole shader in block order.
func (s *Shader) Words() ([]uint64, error) {
	var l []uint64

	for i := range s.AllInstrs() {
		ci, err := s.Emit(i)
		if err != nil {
			return nil, errors.Wrap(err, "i%d", i.ID)
		}

		l = append(l, ci.Encode())
	}

	return l, nil
}

func (s *Shader) emitCat0(i *Instr, h codec.Header) (codec.Instr, error) {
	p, _ := i.Payload.(Cat0)

	c := &codec.Cat0{
		Header: h,
		Immed:  p.Immed,
		Idx:    p.Idx,
		BrType: p.BrType,
		Repeat: uint8(i.Repeat),
		SS:     i.Flags&InstrSS != 0,
		Inv0:   p.Inv0,
		Inv1:   p.Inv1,
		Comp0:  p.Comp0,
		Comp1:  p.Comp1,
		Eq:     p.Eq,
		GPUID:  s.GPUID,
	}

	switch t, ok := isa.BranchType(i.Opc); {
	case ok:
		c.BrType = t
		c.SetHWOpc(int(isa.OpcB.Sub()))
	case i.Opc == isa.OpcDemote:
		c.SetHWOpc(isa.DemoteHW)
	default:
		c.SetHWOpc(int(i.Opc.Sub()))
	}

	return c, nil
}

func (s *Shader) emitCat1(i *Instr, h codec.Header) (codec.Instr, error) {
	if len(i.Dsts) != 1 || len(i.Srcs) != 1 {
		return nil, errors.New("%v: %d dsts %d srcs", i.Opc, len(i.Dsts), len(i.Srcs))
	}

	p, _ := i.Payload.(Cat1)

	c := &codec.Cat1{
		Header:  h,
		Repeat:  uint8(i.Repeat),
		SS:      i.Flags&InstrSS != 0,
		UL:      i.Flags&InstrUL != 0,
		DstType: p.DstType,
		SrcType: p.SrcType,
		SrcC:    p.SrcC,
	}

	c.SetRound(p.Round)

	switch i.Opc {
	case isa.OpcMov:
	case isa.OpcMovp:
		c.RawOpc = 1
	case isa.OpcMovmsk:
		c.RawOpc = 3
	case isa.OpcSwz, isa.OpcGat, isa.OpcSct:
		c.RawOpc = 2
		c.Repeat = uint8(i.Opc - isa.OpcSwz)
	default:
		return nil, errors.New("%v: not a cat1 opcode", i.Opc)
	}

	dst := s.regs[i.Dsts[0]]

	if dst.Flags&RegRelative != 0 {
		c.DstRel = true
		c.Dst = uint8(dst.Offset)
	} else {
		c.Dst = uint8(dst.Num)
	}

	src := s.regs[i.Srcs[0]]

	c.SrcR = src.Flags&RegR != 0

	switch {
	case src.Flags&RegImmed != 0:
		c.SrcIm = true
		c.Src = src.Imm
	case src.Flags&RegRelative != 0:
		c.Src = uint32(src.Offset)&0x3ff | uint32(b2i(p.RelC))<<10 | 1<<11
	default:
		c.Src = uint32(src.Num) & 0x7ff
	}

	return c, nil
}

func (s *Shader) emitCat2(i *Instr, h codec.Header) (codec.Instr, error) {
	if len(i.Dsts) != 1 || len(i.Srcs) < 1 || len(i.Srcs) > 2 {
		return nil, errors.New("%v: %d dsts %d srcs", i.Opc, len(i.Dsts), len(i.Srcs))
	}

	p, _ := i.Payload.(Cat2)
	dst := s.regs[i.Dsts[0]]
	src1 := s.regs[i.Srcs[0]]

	half := src1.Flags&RegHalf != 0

	c := &codec.Cat2{
		Header:  h,
		Dst:     uint8(dst.Num),
		Repeat:  uint8(i.Repeat),
		Sat:     i.Flags&InstrSat != 0,
		SS:      i.Flags&InstrSS != 0,
		UL:      i.Flags&InstrUL != 0,
		DstHalf: dst.Flags&RegHalf != 0 != half,
		EI:      dst.Flags&RegEI != 0,
		Cond:    p.Cond,
		Full:    !half,
		RawOpc:  i.Opc.Sub(),
	}

	var r1, r2 bool

	c.Src1, c.Src1Im, c.Src1Neg, c.Src1Abs, r1 = emitSrc(src1)

	if len(i.Srcs) > 1 {
		c.Src2, c.Src2Im, c.Src2Neg, c.Src2Abs, r2 = emitSrc(s.regs[i.Srcs[1]])
	}

	c.Src1R, c.Src2R = rptBits(i, r1, r2)

	return c, nil
}

func (s *Shader) emitCat3(i *Instr, h codec.Header) (codec.Instr, error) {
	if len(i.Dsts) != 1 || len(i.Srcs) != 3 {
		return nil, errors.New("%v: %d dsts %d srcs", i.Opc, len(i.Dsts), len(i.Srcs))
	}

	dst := s.regs[i.Dsts[0]]
	src2 := s.regs[i.Srcs[1]]

	c := &codec.Cat3{
		Header:  h,
		Src2C:   src2.Flags&RegConst != 0,
		Src2Neg: src2.Flags&RegNegMask != 0,
		Src2:    uint8(src2.Num),
		Dst:     uint8(dst.Num),
		Repeat:  uint8(i.Repeat),
		Sat:     i.Flags&InstrSat != 0,
		SS:      i.Flags&InstrSS != 0,
		UL:      i.Flags&InstrUL != 0,
		RawOpc:  i.Opc.Sub(),
	}

	c.DstHalf = dst.Flags&RegHalf != 0 != !c.Full()

	var r1 bool

	c.Src1, _, c.Src1Neg, _, r1 = emitSrc(s.regs[i.Srcs[0]])
	c.Src3, _, c.Src3Neg, _, c.Src3R = emitSrc(s.regs[i.Srcs[2]])

	c.Src1R, c.Src2R = rptBits(i, r1, src2.Flags&RegR != 0)

	return c, nil
}

func (s *Shader) emitCat4(i *Instr, h codec.Header) (codec.Instr, error) {
	if len(i.Dsts) != 1 || len(i.Srcs) != 1 {
		return nil, errors.New("%v: %d dsts %d srcs", i.Opc, len(i.Dsts), len(i.Srcs))
	}

	dst := s.regs[i.Dsts[0]]
	src := s.regs[i.Srcs[0]]

	half := src.Flags&RegHalf != 0

	c := &codec.Cat4{
		Header:  h,
		Dst:     uint8(dst.Num),
		Repeat:  uint8(i.Repeat),
		Sat:     i.Flags&InstrSat != 0,
		SS:      i.Flags&InstrSS != 0,
		UL:      i.Flags&InstrUL != 0,
		DstHalf: dst.Flags&RegHalf != 0 != half,
		Full:    !half,
		RawOpc:  i.Opc.Sub(),
	}

	c.Src, c.SrcIm, c.SrcNeg, c.SrcAbs, c.SrcR = emitSrc(src)

	return c, nil
}

func emitSrc(r *Register) (src codec.Src, im, neg, abs, rpt bool) {
	switch {
	case r.Flags&RegImmed != 0:
		src, im = codec.SrcFromRaw(uint64(r.Imm)), true
	case r.Flags&RegRelative != 0:
		src = codec.RelSrc(r.Offset, r.Flags&RegConst != 0)
	case r.Flags&RegConst != 0:
		src = codec.ConstSrc(r.Num)
	default:
		src = codec.RegSrc(r.Num)
	}

	return src, im, r.Flags&RegNegMask != 0, r.Flags&RegAbsMask != 0, r.Flags&RegR != 0
}

// rptBits returns src1_r and src2_r: (r) flags with repeat,
// the nop count otherwise.
func rptBits(i *Instr, r1, r2 bool) (bool, bool) {
	if i.Repeat != 0 {
		return r1, r2
	}

	return i.Nop&1 != 0, i.Nop&2 != 0
}

func (s *Shader) emitCat5(i *Instr, h codec.Header) (codec.Instr, error) {
	if len(i.Dsts) != 1 {
		return nil, errors.New("%v: %d dsts", i.Opc, len(i.Dsts))
	}

	if i.Opc.Sub() > 31 {
		return nil, errors.New("%v: no encoding", i.Opc)
	}

	p, _ := i.Payload.(Cat5)
	dst := s.regs[i.Dsts[0]]

	c := &codec.Cat5{
		Header: h,
		Full:   p.Full,
		Dst:    uint8(dst.Num),
		Wrmask: dst.Wrmask,
		Type:   p.Type,
		BaseLo: p.Base&1 != 0,
		Is3D:   i.Flags&Instr3D != 0,
		IsA:    i.Flags&InstrA != 0,
		IsS:    i.Flags&InstrS != 0,
		IsO:    i.Flags&InstrO != 0,
		IsP:    i.Flags&InstrP != 0,
		RawOpc: i.Opc.Sub(),
	}

	src1, src2, _, _ := c.Operands()

	srcs := i.Srcs
	next := func() (uint8, error) {
		if len(srcs) == 0 {
			return 0, errors.New("%v: not enough srcs", i.Opc)
		}

		r := s.regs[srcs[0]]
		srcs = srcs[1:]

		return uint8(r.Num), nil
	}

	var err error

	if src1 {
		c.Src1, err = next()
		if err != nil {
			return nil, err
		}
	}

	if src2 {
		c.Src2, err = next()
		if err != nil {
			return nil, err
		}
	}

	if i.Flags&InstrS2EN != 0 {
		src3, err := next()
		if err != nil {
			return nil, err
		}

		c.SetS2EN(src3, p.DescMode, p.Base)
	} else {
		c.SetSampTex(p.Samp, p.Tex)
	}

	return c, nil
}

func (s *Shader) emitCat6(i *Instr, h codec.Header) (codec.Instr, error) {
	p, _ := i.Payload.(Cat6)

	var srcs []uint8
	var ims []bool

	for _, r := range s.Srcs(i) {
		if r.Flags&RegImmed != 0 {
			srcs = append(srcs, uint8(r.Imm))
		} else {
			srcs = append(srcs, uint8(r.Num))
		}

		ims = append(ims, r.Flags&RegImmed != 0)
	}

	var dst uint8
	if len(i.Dsts) != 0 {
		dst = uint8(s.regs[i.Dsts[0]].Num)
	}

	store := i.IsStore()

	want := map[Cat6Form]int{Cat6Legacy: 2, Cat6LdGB: 4, Cat6StGB: 4, Cat6A6xx: 2}[p.Form]
	if p.Form == Cat6Legacy && store || p.Form == Cat6A6xx && store {
		want++
	}

	if len(srcs) != want {
		return nil, errors.New("%v: %d srcs, want %d", i.Opc, len(srcs), want)
	}

	switch p.Form {
	case Cat6Legacy:
		c := &codec.Cat6{
			Header: h,
			SrcOff: p.SrcOff,
			Off:    uint16(p.Off) & 0x1fff,
			Dst:    dst,
			DstOff: p.DstOff,
			Type:   p.Type,
			G:      p.G,
			RawOpc: i.Opc.Sub(),
		}

		if store {
			c.Dst, srcs, ims = srcs[0], srcs[1:], ims[1:]
		}

		c.Src1, c.Src1Im = srcs[0], ims[0]
		c.Src2, c.Src2Im = srcs[1], ims[1]

		return c, nil
	case Cat6LdGB:
		return &codec.Cat6LdGB{
			Header:    h,
			Pad0:      p.Pad0,
			SrcSSBO:   srcs[0],
			SrcSSBOIm: ims[0],
			Src1:      srcs[1],
			Src1Im:    ims[1],
			Src2:      srcs[2],
			Src2Im:    ims[2],
			Src3:      srcs[3],
			D:         p.D,
			Typed:     p.Typed,
			TypeSize:  p.TypeSize,
			Dst:       dst,
			Type:      p.Type,
			G:         p.G,
			RawOpc:    i.Opc.Sub(),
		}, nil
	case Cat6StGB:
		return &codec.Cat6StGB{
			Header:   h,
			Mustbe1:  true,
			DstSSBO:  srcs[0],
			Src1:     srcs[1],
			Src2:     srcs[2],
			Src2Im:   ims[2],
			Src3:     srcs[3],
			Src3Im:   ims[3],
			D:        p.D,
			Typed:    p.Typed,
			TypeSize: p.TypeSize,
			Type:     p.Type,
			Pad3:     p.Pad3,
			RawOpc:   i.Opc.Sub(),
		}, nil
	case Cat6A6xx:
		raw, ok := codec.A6xxRawOpc(i.Opc)
		if !ok {
			return nil, errors.New("%v: no a6xx encoding", i.Opc)
		}

		c := &codec.Cat6A6xx{
			Header:   h,
			Pad1:     p.Pad1,
			Base:     p.Base,
			DescMode: p.DescMode,
			D:        p.D,
			Typed:    p.Typed,
			TypeSize: p.TypeSize,
			RawOpc:   raw,
			Pad3:     p.Pad3,
			SSBO:     srcs[0],
			Src1:     srcs[1],
			Src2:     dst,
			Type:     p.Type,
			Pad5:     p.Pad5,
		}

		if store {
			c.Src2 = srcs[2]
		}

		return c, nil
	}

	return nil, errors.New("%v: unknown cat6 form %d", i.Opc, p.Form)
}

func b2i(v bool) int {
	if v {
		return 1
	}

	return 0
}
