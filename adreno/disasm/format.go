package disasm

import (
	"math/bits"

	"github.com/nikandfor/hacked/hfmt"

	"github.com/slowlang/adreno/adreno/codec"
	"github.com/slowlang/adreno/adreno/isa"
)

type flags struct {
	hdr codec.Header
	ss  bool
	rpt int
	nop int
	ul  bool
	sat bool
	ei  bool
}

const comps = "xyzw"

// format appends the instruction text reporting fields on the way.
func (d *disasm) format(b []byte, i codec.Instr) (_ []byte, stop bool) {
	op, err := i.Opc()

	name := isa.Name(op)
	if err != nil {
		name = "???"
	}

	switch i := i.(type) {
	case *codec.Cat0:
		b = d.flags(b, flags{hdr: i.Hdr(), ss: i.SS, rpt: int(i.Repeat)})
		stop = d.name(name)
		b = d.cat0(b, i, op, name)
	case *codec.Cat1:
		b = d.flags(b, flags{hdr: i.Hdr(), ss: i.SS, rpt: i.Rpt(), ul: i.UL})
		stop = d.name(name)
		b = d.cat1(b, i, op, name)
	case *codec.Cat2:
		b = d.flags(b, flags{hdr: i.Hdr(), ss: i.SS, rpt: int(i.Repeat), nop: i.Nop(), ul: i.UL, sat: i.Sat, ei: i.EI})
		stop = d.name(name)
		b = d.cat2(b, i, op, name)
	case *codec.Cat3:
		b = d.flags(b, flags{hdr: i.Hdr(), ss: i.SS, rpt: int(i.Repeat), nop: i.Nop(), ul: i.UL, sat: i.Sat})
		stop = d.name(name)
		b = d.cat3(b, i, name)
	case *codec.Cat4:
		b = d.flags(b, flags{hdr: i.Hdr(), ss: i.SS, rpt: int(i.Repeat), ul: i.UL, sat: i.Sat})
		stop = d.name(name)
		b = d.cat4(b, i, name)
	case *codec.Cat5:
		b = d.flags(b, flags{hdr: i.Hdr()})
		stop = d.name(name)
		b = d.cat5(b, i, name)
	case *codec.Cat6:
		b = d.flags(b, flags{hdr: i.Hdr()})
		stop = d.name(name)
		b = d.cat6(b, i, op, name)
	case *codec.Cat6LdGB:
		b = d.flags(b, flags{hdr: i.Hdr()})
		stop = d.name(name)
		b = d.cat6ldgb(b, i, op, name)
	case *codec.Cat6StGB:
		b = d.flags(b, flags{hdr: i.Hdr()})
		stop = d.name(name)
		b = d.cat6stgb(b, i, name)
	case *codec.Cat6A6xx:
		b = d.flags(b, flags{hdr: i.Hdr()})
		stop = d.name(name)
		b = d.cat6a6xx(b, i, op, name)
	case *codec.Cat7:
		b = d.flags(b, flags{hdr: i.Hdr(), ss: i.SS})
		stop = d.name(name)
		b = d.cat7(b, i, name)
	default:
		panic(i)
	}

	if d.Debug&Verbose != 0 {
		b = d.pads(b, i)
	}

	return b, stop
}

func (d *disasm) flags(b []byte, f flags) []byte {
	d.field("SY", b2i(f.hdr.Sy))
	d.field("SS", b2i(f.ss))
	d.field("REPEAT", f.rpt)
	d.field("NOP", f.nop)

	st := len(b)

	if f.hdr.Sy {
		b = append(b, "(sy)"...)
	}
	if f.ss {
		b = append(b, "(ss)"...)
	}
	if f.hdr.Jp {
		b = append(b, "(jp)"...)
	}
	if f.sat {
		b = append(b, "(sat)"...)
	}
	if f.rpt != 0 {
		b = hfmt.Appendf(b, "(rpt%d)", f.rpt)
	}
	if f.nop != 0 {
		b = hfmt.Appendf(b, "(nop%d)", f.nop)
	}
	if f.ul {
		b = append(b, "(ul)"...)
	}
	if f.ei {
		b = append(b, "(ei)"...)
	}

	if len(b) != st {
		b = append(b, ' ')
	}

	return b
}

func (d *disasm) cat0(b []byte, i *codec.Cat0, op isa.Opc, name string) []byte {
	b = append(b, name...)

	if op == isa.OpcBrac {
		b = hfmt.Appendf(b, ".%d", i.Idx)
	}

	pred := func(b []byte, inv bool, comp uint8) []byte {
		if inv {
			b = append(b, '!')
		}

		return hfmt.Appendf(b, "p0.%c", comps[comp&3])
	}

	if bt, ok := isa.BranchType(op); ok {
		switch bt.Srcs() {
		case 1:
			b = append(b, ' ')
			b = pred(b, i.Inv0, i.Comp0)
			b = append(b, ',')
		case 2:
			b = append(b, ' ')
			b = pred(b, i.Inv0, i.Comp0)
			b = append(b, ", "...)
			b = pred(b, i.Inv1, i.Comp1)
			b = append(b, ',')
		}
	}

	switch op {
	case isa.OpcKill, isa.OpcDemote, isa.OpcPredt, isa.OpcPredf:
		b = append(b, ' ')
		b = pred(b, i.Inv0, i.Comp0)
	}

	if isBranch(op) {
		b = append(b, ' ')

		if l, ok := d.labels[d.n+i.Offset()]; ok {
			b = hfmt.Appendf(b, "#l%d", l)
		} else {
			b = hfmt.Appendf(b, "#%d", i.Offset())
		}
	}

	return b
}

func (d *disasm) cat1(b []byte, i *codec.Cat1, op isa.Opc, name string) []byte {
	b = append(b, name...)

	switch op {
	case isa.OpcMov:
		b = hfmt.Appendf(b, ".%v%v", i.SrcType, i.DstType)
		if !i.IsMov() {
			b = append(b, i.Round().String()...)
		}
	case isa.OpcMovmsk:
		b = hfmt.Appendf(b, ".w%d", 32*(i.Rpt()+1))
	}

	b = append(b, ' ')

	dstHalf := !i.DstType.Full()

	if i.DstRel {
		b = hfmt.Appendf(b, "%s<a0.x + %d>", regPrefix(dstHalf, false), i.Dst)
	} else {
		b = d.dst(b, isa.RegID(i.Dst), dstHalf)
	}

	if op == isa.OpcMovmsk {
		return b
	}

	b = append(b, ", "...)

	srcHalf := !i.SrcType.Full()

	switch i.MovKind() {
	case isa.OpcMovImmed:
		switch {
		case i.SrcType.Float():
			b = hfmt.Appendf(b, "(%v)", i.ImmFloat())
		case i.SrcType.Sint():
			b = hfmt.Appendf(b, "%d", i.ImmInt())
		default:
			b = hfmt.Appendf(b, "0x%x", i.ImmUint())
		}
	case isa.OpcMovRelConst:
		b = hfmt.Appendf(b, "c<a0.x + %d>", i.SrcOff())
	case isa.OpcMovRelGPR:
		b = hfmt.Appendf(b, "%s<a0.x + %d>", regPrefix(srcHalf, false), i.SrcOff())
	case isa.OpcMovConst:
		b = d.src(b, i.SrcReg(), srcHalf, true, "SRC_R", i.SrcR)
	default:
		b = d.src(b, i.SrcReg(), srcHalf, false, "SRC_R", i.SrcR)
	}

	return b
}

func (d *disasm) cat2(b []byte, i *codec.Cat2, op isa.Opc, name string) []byte {
	b = append(b, name...)

	switch op {
	case isa.OpcCmpsF, isa.OpcCmpsU, isa.OpcCmpsS, isa.OpcCmpvF, isa.OpcCmpvU, isa.OpcCmpvS:
		b = hfmt.Appendf(b, ".%v", i.Cond)
	}

	half := !i.Full
	rpt := i.Repeat != 0 // src_r bits are nopN otherwise

	b = append(b, ' ')
	b = d.dst(b, isa.RegID(i.Dst), half != i.DstHalf)

	b = append(b, ", "...)
	b = d.aluSrc(b, i.Src1, i.Src1Im, i.Src1Neg, i.Src1Abs, half, "SRC1_R", rpt && i.Src1R)

	if i.Srcs() == 2 {
		b = append(b, ", "...)
		b = d.aluSrc(b, i.Src2, i.Src2Im, i.Src2Neg, i.Src2Abs, half, "SRC2_R", rpt && i.Src2R)
	}

	return b
}

func (d *disasm) cat3(b []byte, i *codec.Cat3, name string) []byte {
	half := !i.Full()
	rpt := i.Repeat != 0

	b = append(b, name...)
	b = append(b, ' ')
	b = d.dst(b, isa.RegID(i.Dst), half != i.DstHalf)

	b = append(b, ", "...)
	b = d.aluSrc(b, i.Src1, false, i.Src1Neg, false, half, "SRC1_R", rpt && i.Src1R)

	b = append(b, ", "...)
	if i.Src2Neg {
		b = append(b, '-')
	}
	b = d.src(b, isa.RegID(i.Src2), half, i.Src2C, "SRC2_R", rpt && i.Src2R)

	b = append(b, ", "...)
	b = d.aluSrc(b, i.Src3, false, i.Src3Neg, false, half, "SRC3_R", i.Src3R)

	return b
}

func (d *disasm) cat4(b []byte, i *codec.Cat4, name string) []byte {
	half := !i.Full

	b = append(b, name...)
	b = append(b, ' ')
	b = d.dst(b, isa.RegID(i.Dst), half != i.DstHalf)

	b = append(b, ", "...)
	b = d.aluSrc(b, i.Src, i.SrcIm, i.SrcNeg, i.SrcAbs, half, "SRC_R", i.SrcR)

	return b
}

func (d *disasm) cat5(b []byte, i *codec.Cat5, name string) []byte {
	b = append(b, name...)

	for _, x := range []struct {
		f bool
		s string
	}{
		{i.Is3D, ".3d"},
		{i.IsA, ".a"},
		{i.IsO, ".o"},
		{i.IsP, ".p"},
		{i.IsS, ".s"},
		{i.IsS2EN, ".s2en"},
	} {
		if x.f {
			b = append(b, x.s...)
		}
	}

	if i.IsS2EN {
		b = hfmt.Appendf(b, ".%v", cat5DescNames[i.DescMode()&7])
	}

	b = hfmt.Appendf(b, " (%v)(", i.Type)

	for c := 0; c < 4; c++ {
		if i.Wrmask&(1<<c) != 0 {
			b = append(b, comps[c])
		}
	}

	b = append(b, ')')

	// the destination is a vector up to the highest written component
	last := max(bits.Len8(i.Wrmask)-1, 0)
	d.field("GPR", int(i.Dst>>2))
	d.field("DST_HALF", b2i(!i.Type.Full()))
	d.field("SWIZ", int(i.Dst&3)+last)
	b = isa.AppendReg(b, isa.RegID(i.Dst), !i.Type.Full(), false)

	src1, src2, samp, tex := i.Operands()
	half := !i.Full

	if src1 {
		b = append(b, ", "...)
		b = d.src(b, isa.RegID(i.Src1), half, false, "", false)
	}

	if src2 {
		b = append(b, ", "...)
		b = d.src(b, isa.RegID(i.Src2), half, false, "", false)
	}

	if i.IsS2EN {
		mode := i.DescMode()

		b = append(b, ", "...)
		b = d.src(b, isa.RegID(i.Src3()), false, false, "", false)

		if mode.A1() {
			b = append(b, ", a1.x"...)
		}

		if mode.Bindless() {
			b = hfmt.Appendf(b, ", base%d", i.Base())
		}

		return b
	}

	if samp {
		b = hfmt.Appendf(b, ", s#%d", i.Samp())
	}

	if tex {
		b = hfmt.Appendf(b, ", t#%d", i.Tex())
	}

	return b
}

var cat5DescNames = [8]string{
	"nonuniform", "bindless_a1_uniform", "bindless_nonuniform", "bindless_a1_nonuniform",
	"uniform", "bindless_uniform", "bindless_imm", "bindless_a1_imm",
}

func (d *disasm) cat6(b []byte, i *codec.Cat6, op isa.Opc, name string) []byte {
	half := !i.Type.Full()

	b = append(b, name...)
	if i.G && isa.IsAtomic(op) {
		b = append(b, ".g"...)
	} else if isa.IsAtomic(op) {
		b = append(b, ".l"...)
	}
	b = hfmt.Appendf(b, ".%v ", i.Type)

	mem := "g"
	switch op {
	case isa.OpcLdl, isa.OpcStl, isa.OpcLdlw, isa.OpcStlw, isa.OpcLdlv:
		mem = "l"
	case isa.OpcLdp, isa.OpcStp:
		mem = "p"
	}

	switch i.Shape() {
	case codec.Cat6A, codec.Cat6B:
		b = d.dst(b, isa.RegID(i.Dst), half)
		b = hfmt.Appendf(b, ", %s[", mem)
		b = d.imsrc(b, i.Src1, i.Src1Im)

		if i.Shape() == codec.Cat6A {
			b = hfmt.Appendf(b, "%+d", i.Offset())
		}

		b = append(b, "], "...)
		b = d.imsrc(b, i.Src2, i.Src2Im)
	case codec.Cat6C, codec.Cat6D:
		b = hfmt.Appendf(b, "%s[", mem)
		b = d.src(b, isa.RegID(i.Dst), false, false, "", false)

		if i.Shape() == codec.Cat6C {
			b = hfmt.Appendf(b, "%+d", i.Offset())
		}

		b = append(b, "], "...)
		b = d.imsrc(b, i.Src1, i.Src1Im)
		b = append(b, ", "...)
		b = d.imsrc(b, i.Src2, i.Src2Im)
	}

	return b
}

var dims = [4]string{"1d", "2d", "3d", "4d"}

func typed(t bool) string {
	if t {
		return "typed"
	}

	return "untyped"
}

func (d *disasm) cat6ldgb(b []byte, i *codec.Cat6LdGB, op isa.Opc, name string) []byte {
	b = append(b, name...)
	if isa.IsAtomic(op) {
		b = append(b, ".g"...)
	}
	b = hfmt.Appendf(b, ".%s.%s.%v.%d ", typed(i.Typed), dims[i.D], i.Type, i.TypeSize+1)

	b = d.dst(b, isa.RegID(i.Dst), !i.Type.Full())
	b = append(b, ", g["...)
	b = d.imsrc(b, i.SrcSSBO, i.SrcSSBOIm)
	b = append(b, "], "...)
	b = d.imsrc(b, i.Src1, i.Src1Im)
	b = append(b, ", "...)
	b = d.imsrc(b, i.Src2, i.Src2Im)

	if isa.IsAtomic(op) {
		b = append(b, ", "...)
		b = d.src(b, isa.RegID(i.Src3), false, false, "", false)
	}

	return b
}

func (d *disasm) cat6stgb(b []byte, i *codec.Cat6StGB, name string) []byte {
	b = append(b, name...)
	b = hfmt.Appendf(b, ".%s.%s.%v.%d ", typed(i.Typed), dims[i.D], i.Type, i.TypeSize+1)

	b = hfmt.Appendf(b, "g[%d], ", i.DstSSBO)
	b = d.src(b, isa.RegID(i.Src1), !i.Type.Full(), false, "", false)
	b = append(b, ", "...)
	b = d.imsrc(b, i.Src2, i.Src2Im)
	b = append(b, ", "...)
	b = d.imsrc(b, i.Src3, i.Src3Im)

	return b
}

func (d *disasm) cat6a6xx(b []byte, i *codec.Cat6A6xx, op isa.Opc, name string) []byte {
	b = append(b, name...)
	b = hfmt.Appendf(b, ".%s.%s.%v.%d.%v", typed(i.Typed), dims[i.D], i.Type, i.TypeSize+1, i.DescMode)

	if i.DescMode.Bindless() {
		b = hfmt.Appendf(b, ".base%d", i.Base)
	}

	b = append(b, ' ')

	if isa.IsStore(op) {
		b = d.src(b, isa.RegID(i.Src2), !i.Type.Full(), false, "", false)
	} else {
		b = d.dst(b, isa.RegID(i.Src2), !i.Type.Full())
	}

	b = append(b, ", "...)

	if i.DescMode.Indirect() {
		b = d.src(b, isa.RegID(i.SSBO), false, false, "", false)
	} else {
		b = hfmt.Appendf(b, "%d", i.SSBO)
	}

	b = append(b, ", "...)
	b = d.src(b, isa.RegID(i.Src1), false, false, "", false)

	if i.LegacyOpcSet() {
		b = append(b, " (legacy-opc)"...)
	}

	return b
}

func (d *disasm) cat7(b []byte, i *codec.Cat7, name string) []byte {
	b = append(b, name...)

	for _, x := range []struct {
		f bool
		s string
	}{
		{i.R, ".r"},
		{i.W, ".w"},
		{i.L, ".l"},
		{i.G, ".g"},
	} {
		if x.f {
			b = append(b, x.s...)
		}
	}

	return b
}

func (d *disasm) dst(b []byte, r isa.RegID, half bool) []byte {
	d.field("GPR", r.Num())
	d.field("DST_HALF", b2i(half))
	d.field("DST", 1)
	d.field("SWIZ", r.Comp())

	return isa.AppendReg(b, r, half, false)
}

// src reports an operand read. rfield names its repeat flag, if any.
func (d *disasm) src(b []byte, r isa.RegID, half, konst bool, rfield string, rpt bool) []byte {
	if konst {
		d.field("CONST", r.Num())
	} else {
		d.field("GPR", r.Num())
	}

	d.field("SRC_HALF", b2i(half && !konst))

	if rfield != "" {
		d.field(rfield, b2i(rpt))
	}

	d.field("SWIZ", r.Comp())

	if rpt {
		b = append(b, "(r)"...)
	}

	return isa.AppendReg(b, r, half, konst)
}

func (d *disasm) imsrc(b []byte, v uint8, im bool) []byte {
	if im {
		return hfmt.Appendf(b, "%d", v)
	}

	return d.src(b, isa.RegID(v), false, false, "", false)
}

func (d *disasm) aluSrc(b []byte, s codec.Src, im, neg, abs, half bool, rfield string, rpt bool) []byte {
	if neg {
		b = append(b, '-')
	}

	if abs {
		b = append(b, '|')
	}

	switch {
	case im:
		b = hfmt.Appendf(b, "%d", s.Imm())
	case s.Kind == codec.SrcRel:
		p := regPrefix(half, s.RelC)
		b = hfmt.Appendf(b, "%s<a0.x + %d>", p, s.Off())
	default:
		b = d.src(b, s.Reg(), half, s.Kind == codec.SrcConst, rfield, rpt)
	}

	if abs {
		b = append(b, '|')
	}

	return b
}

func regPrefix(half, konst bool) string {
	switch {
	case konst:
		return "c"
	case half:
		return "hr"
	default:
		return "r"
	}
}

// pads appends non-zero padding fields.
func (d *disasm) pads(b []byte, i codec.Instr) []byte {
	type pad struct {
		n string
		v uint64
	}

	var l []pad

	switch i := i.(type) {
	case *codec.Cat0:
		l = []pad{{"dummy3", uint64(b2i(i.Dummy3))}, {"dummy4", uint64(i.Dummy4)}}
	case *codec.Cat1:
		if !i.SrcIm {
			l = []pad{{"src_pad", uint64(i.SrcPad())}}
		}
	case *codec.Cat4:
		l = []pad{{"dummy1", uint64(i.Dummy1)}, {"dummy2", uint64(i.Dummy2)}}
	case *codec.Cat5:
		if i.IsS2EN {
			l = []pad{{"pad", uint64(i.S2ENPad())}}
		} else {
			l = []pad{{"dummy1", uint64(i.Dummy1())}}
		}
	case *codec.Cat6:
		l = []pad{{"pad3", uint64(i.Pad3)}, {"pad4", uint64(b2i(i.Pad4))}}

		// fields the shape does not print
		switch i.Shape() {
		case codec.Cat6A:
			l = append(l, pad{"dst_off", uint64(b2i(i.DstOff))})
		case codec.Cat6B:
			l = append(l, pad{"off", uint64(i.Off)}, pad{"dst_off", uint64(b2i(i.DstOff))})
		case codec.Cat6C:
			l = append(l, pad{"src_off", uint64(b2i(i.SrcOff))})
		case codec.Cat6D:
			l = append(l, pad{"off", uint64(i.Off)}, pad{"src_off", uint64(b2i(i.SrcOff))})
		}
	case *codec.Cat6LdGB:
		// pad0 is 1 for atomic.g and 0 for ldgb
		op := isa.MakeOpc(isa.Cat6, int(i.RawOpc))
		if i.Pad0 != isa.IsAtomic(op) {
			l = []pad{{"pad0", uint64(b2i(i.Pad0))}}
		}
	case *codec.Cat6StGB:
		l = []pad{{"pad0", uint64(i.Pad0)}, {"pad3", uint64(i.Pad3)}}
	case *codec.Cat6A6xx:
		l = []pad{{"pad1", uint64(b2i(i.Pad1))}, {"pad3", uint64(i.Pad3)}, {"pad5", uint64(i.Pad5)}}
	case *codec.Cat7:
		l = []pad{{"pad1", uint64(i.Pad1)}, {"pad2", uint64(i.Pad2)}, {"pad3", uint64(i.Pad3)}}
	}

	for _, p := range l {
		if p.v != 0 {
			b = hfmt.Appendf(b, " {%s: %#x}", p.n, p.v)
		}
	}

	return b
}

func b2i(v bool) int {
	if v {
		return 1
	}

	return 0
}
