package ir

import (
	"github.com/nikandfor/hacked/hfmt"

	"github.com/slowlang/adreno/adreno/isa"
)

// Print appends a listing of the shader to b.
func (s *Shader) Print(b []byte) []byte {
	for blk := range s.Blocks() {
		b = hfmt.Appendf(b, "block%d:", blk.ID)

		if len(blk.Preds) != 0 {
			b = append(b, " preds:"...)

			for _, p := range blk.Preds {
				b = hfmt.Appendf(b, " block%d", p)
			}
		}

		if succ := blk.Succ(); len(succ) != 0 {
			b = append(b, " succs:"...)

			for _, x := range succ {
				b = hfmt.Appendf(b, " block%d", x)
			}
		}

		b = append(b, '\n')

		for i := range s.Instrs(blk) {
			b = s.appendInstr(b, i)
		}
	}

	return b
}

var instrFlagNames = []struct {
	f InstrFlags
	n string
}{
	{InstrSY, "(sy)"},
	{InstrSS, "(ss)"},
	{InstrJP, "(jp)"},
	{InstrSat, "(sat)"},
	{InstrUL, "(ul)"},
}

func (s *Shader) appendInstr(b []byte, i *Instr) []byte {
	b = hfmt.Appendf(b, "\ti%d: ", i.ID)

	for _, x := range instrFlagNames {
		if i.Flags&x.f != 0 {
			b = append(b, x.n...)
		}
	}

	if i.Repeat != 0 {
		b = hfmt.Appendf(b, "(rpt%d)", i.Repeat)
	}

	if i.Nop != 0 {
		b = hfmt.Appendf(b, "(nop%d)", i.Nop)
	}

	b = append(b, i.Opc.String()...)

	if p, ok := i.Payload.(Cat1); ok {
		b = hfmt.Appendf(b, ".%s%s", p.SrcType.String(), p.DstType.String())
	}

	sep := " "

	for _, l := range [][]Reg{i.Dsts, i.Srcs} {
		for _, r := range l {
			b = append(b, sep...)
			b = s.appendReg(b, s.regs[r])
			sep = ", "
		}
	}

	if i.Address != NoInstr {
		b = hfmt.Appendf(b, " addr:i%d", i.Address)
	}

	for _, d := range i.Deps {
		b = hfmt.Appendf(b, " dep:i%d", d)
	}

	return append(b, '\n')
}

func (s *Shader) appendReg(b []byte, r *Register) []byte {
	if r.Flags&RegR != 0 {
		b = append(b, "(r)"...)
	}

	if r.Flags&RegNegMask != 0 {
		b = append(b, '-')
	}

	abs := r.Flags&RegAbsMask != 0
	if abs {
		b = append(b, '|')
	}

	switch {
	case r.Flags&RegSSA != 0:
		b = hfmt.Appendf(b, "ssa_%d", r.Def)
	case r.Flags&RegImmed != 0:
		b = hfmt.Appendf(b, "#%#x", r.Imm)
	case r.Flags&RegRelative != 0:
		f := 'r'
		if r.Flags&RegConst != 0 {
			f = 'c'
		}

		b = hfmt.Appendf(b, "%c<a0.x + %d>", f, r.Offset)
	case r.Flags&RegArray != 0:
		b = hfmt.Appendf(b, "arr[%d][%d]", r.Array, r.Offset)
	default:
		b = isa.AppendReg(b, r.Num, r.Flags&RegHalf != 0, r.Flags&RegConst != 0)
	}

	if abs {
		b = append(b, '|')
	}

	return b
}
