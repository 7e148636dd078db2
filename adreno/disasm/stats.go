package disasm

import (
	"strings"

	"tlog.app/go/tlog/tlwire"

	"github.com/slowlang/adreno/adreno/isa"
	"github.com/slowlang/adreno/adreno/set"
)

type (
	// Stats are shader statistics gathered while disassembling.
	// Register fields are register numbers, -1 if nothing was touched.
	Stats struct {
		InstrsCount int // repeat and nopN expanded
		NopsCount   int
		MovCount    int
		CovCount    int

		MaxReg     int
		MaxHalfReg int
		MaxConst   int

		SY     int
		SS     int
		SStall int

		LastBaryf int

		InstrsPerCat [8]int

		// scalar register ids: num<<2 | comp
		UsedRegs     set.Bits[int]
		UsedHalfRegs set.Bits[int]
		UsedConsts   set.Bits[int]
	}

	regFile uint8

	// operand being reported field by field
	operand struct {
		file regFile
		num  int
		half bool
		rpt  bool
	}

	// instruction being accounted
	pending struct {
		valid bool
		cat   isa.Category
		rpt   int
		nop   int
		ss    bool
	}
)

const (
	fileNone regFile = iota
	fileGPR
	fileConst
)

// cycles an sfu result takes to be ready
const sfuDelay = 10

func (s *Stats) reset() {
	*s = Stats{
		MaxReg:     -1,
		MaxHalfReg: -1,
		MaxConst:   -1,
		LastBaryf:  -1,

		UsedRegs:     set.MakeBits[int](),
		UsedHalfRegs: set.MakeBits[int](),
		UsedConsts:   set.MakeBits[int](),
	}
}

// pre is called for every word before it is decoded.
func (d *disasm) pre(w uint64, cat isa.Category) {
	d.finalize()

	d.cur = pending{valid: true, cat: cat}
	d.st.InstrsPerCat[cat]++

	if cat != isa.Cat1 || w>>57&3 != 0 {
		return
	}

	if w>>50&7 == w>>46&7 {
		d.st.MovCount++
	} else {
		d.st.CovCount++
	}
}

// finalize accounts the pending instruction once its fields are known.
func (d *disasm) finalize() {
	p := d.cur
	if !p.valid {
		return
	}

	d.cur.valid = false

	cycles := 1 + p.rpt + p.nop
	d.st.InstrsCount += cycles

	if p.cat == isa.Cat4 {
		if p.ss {
			d.st.SStall += d.budget
		}

		d.budget = sfuDelay

		return
	}

	d.budget -= min(d.budget, cycles)

	if p.ss {
		d.st.SStall += d.budget
		d.budget = 0
	}
}

// field is called for every decoded field of the current instruction.
func (d *disasm) field(name string, v int) {
	if d.tr.If("disasm_field") {
		d.tr.Printw("field", "n", d.n, "name", name, "val", v)
	}

	st := d.st

	switch name {
	case "REPEAT":
		d.cur.rpt = v
	case "NOP":
		d.cur.nop = v
		st.InstrsPerCat[0] += v
		st.NopsCount += v
	case "SY":
		st.SY += v
	case "SS":
		st.SS += v
		d.cur.ss = v != 0
	case "CONST":
		d.op = operand{file: fileConst, num: v}
	case "GPR":
		d.op = operand{file: fileGPR, num: v}
	case "DST":
		d.op.rpt = true
	case "SRC_R", "SRC1_R", "SRC2_R", "SRC3_R":
		d.op.rpt = v != 0
	case "SWIZ":
		d.use(v)
	default:
		if strings.Contains(name, "HALF") {
			d.op.half = v != 0
		}
	}
}

// name is the NAME field. It reports whether decoding stops after
// the current instruction.
func (d *disasm) name(n string) (stop bool) {
	if d.tr.If("disasm_field") {
		d.tr.Printw("field", "n", d.n, "name", "NAME", "val", n)
	}

	if n == "nop" {
		d.st.NopsCount += 1 + d.cur.rpt

		if d.ended {
			d.endNops++
		}
	} else {
		d.endNops = 0
	}

	switch n {
	case "end":
		d.ended = true
	case "chsh":
		return true
	case "bary.f":
		d.st.LastBaryf = d.n
	}

	return false
}

func (d *disasm) use(comp int) {
	op := d.op
	d.op = operand{}

	id := op.num<<2 + comp
	if op.rpt {
		id += d.cur.rpt
	}

	st := d.st

	switch op.file {
	case fileConst:
		st.MaxConst = max(st.MaxConst, id>>2)
		st.UsedConsts.Set(id)
	case fileGPR:
		if op.num >= isa.SharedBase {
			return
		}

		if op.half {
			st.MaxHalfReg = max(st.MaxHalfReg, id>>2)
			st.UsedHalfRegs.Set(id)
		} else {
			st.MaxReg = max(st.MaxReg, id>>2)
			st.UsedRegs.Set(id)
		}
	}
}

// mergeRegs folds half registers into full ones for gpus where
// they share the register file.
func (s *Stats) mergeRegs(gpuID int) {
	if gpuID < 600 || s.MaxHalfReg < 0 {
		return
	}

	full := max(s.MaxReg+1, (s.MaxHalfReg+2)/2)

	s.MaxReg = full - 1
	s.MaxHalfReg = -1
}

// AppendStats appends the shaderdb statistics block.
func AppendStats(b []byte, level int, s *Stats) []byte {
	nonNops := s.InstrsCount - s.NopsCount

	b = app(b, level, "Stats:\n")
	b = app(b, level, "- shaderdb: %d instructions, %d nops, %d non-nops, %d last-baryf, %d half, %d full\n",
		s.InstrsCount, s.NopsCount, nonNops, s.LastBaryf, s.MaxHalfReg+1, s.MaxReg+1)
	b = app(b, level, "- shaderdb: %d constlen\n", s.MaxConst+1)

	b = app(b, level, "- shaderdb:")
	for c, n := range s.InstrsPerCat {
		if c != 0 {
			b = append(b, ',')
		}

		b = app(b, 0, " %d cat%d", n, c)
	}
	b = append(b, '\n')

	b = app(b, level, "- shaderdb: %d sstall, %d (ss), %d (sy)\n", s.SStall, s.SS, s.SY)
	b = app(b, level, "- shaderdb: %d mov, %d cov\n", s.MovCount, s.CovCount)

	return b
}

func (s *Stats) TlogAppend(b []byte) []byte {
	var e tlwire.LowEncoder

	kv := []struct {
		k string
		v int
	}{
		{"instrs_count", s.InstrsCount},
		{"nops_count", s.NopsCount},
		{"mov_count", s.MovCount},
		{"cov_count", s.CovCount},
		{"max_reg", s.MaxReg},
		{"max_half_reg", s.MaxHalfReg},
		{"max_const", s.MaxConst},
		{"sy", s.SY},
		{"ss", s.SS},
		{"sstall", s.SStall},
		{"last_baryf", s.LastBaryf},
	}

	b = e.AppendTag(b, tlwire.Map, len(kv)+1)

	for _, x := range kv {
		b = e.AppendString(b, x.k)
		b = e.AppendInt(b, x.v)
	}

	b = e.AppendString(b, "instrs_per_cat")
	b = e.AppendTag(b, tlwire.Array, len(s.InstrsPerCat))

	for _, n := range s.InstrsPerCat {
		b = e.AppendInt(b, n)
	}

	return b
}
