// Package disasm prints Adreno shader binaries and gathers
// shader statistics on the way.
package disasm

import (
	"context"
	"io"

	"github.com/nikandfor/hacked/hfmt"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/adreno/adreno/codec"
	"github.com/slowlang/adreno/adreno/isa"
	"github.com/slowlang/adreno/adreno/set"
)

type disasm struct {
	Options

	tr  tlog.Span
	dec codec.Decoder
	w   io.Writer
	b   []byte
	st  *Stats

	try bool

	words  []uint64
	labels map[int]int // word index -> label number

	n   int // index of the current instruction
	cur pending
	op  operand

	budget int

	ended   bool
	endNops int

	asserted bool
}

// DisasmStat disassembles dwords to w and fills st.
// A trailing odd dword is ignored.
func DisasmStat(ctx context.Context, w io.Writer, dwords []uint32, opts Options, st *Stats) (Status, error) {
	return run(ctx, w, dwords, opts, st, false)
}

// Disasm is DisasmStat discarding the statistics.
func Disasm(ctx context.Context, w io.Writer, dwords []uint32, opts Options) (Status, error) {
	var st Stats

	return run(ctx, w, dwords, opts, &st, false)
}

// TryDisasm is Disasm which survives decoder assertions.
// A word failing one is printed as a marker line and skipped.
func TryDisasm(ctx context.Context, w io.Writer, dwords []uint32, opts Options) (Status, error) {
	var st Stats

	return run(ctx, w, dwords, opts, &st, true)
}

// InstrName returns the mnemonic of op, "??meta??" for meta opcodes.
func InstrName(op isa.Opc) string {
	return isa.Name(op)
}

func run(ctx context.Context, w io.Writer, dwords []uint32, opts Options, st *Stats, try bool) (status Status, err error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "disasm", "dwords", len(dwords), "gpu", opts.GPUID, "try", try)
	defer tr.Finish("err", &err)

	st.reset()

	d := &disasm{
		Options: opts,
		tr:      tr,
		dec: codec.Decoder{
			GPUID:  opts.GPUID,
			Assert: opts.Assert,
		},
		w:     w,
		st:    st,
		try:   try,
		words: words(dwords),
	}

	if try && d.dec.Assert == nil {
		d.dec.Assert = codec.Abort
	}

	d.collectLabels()

	status = StatusEOF

	for d.n = 0; d.n < len(d.words); d.n++ {
		x := d.words[d.n]

		if d.ended && d.endNops == 3 && d.isNop(x) {
			status = StatusEnd
			break
		}

		stop, err := d.instr(x)
		if err != nil {
			return status, errors.Wrap(err, "instr %d", d.n)
		}

		if stop {
			d.n++
			status = StatusEnd
			break
		}
	}

	d.finalize()
	st.mergeRegs(opts.GPUID)

	if opts.Debug&PrintStats != 0 {
		d.b = AppendStats(d.b[:0], opts.Level, st)

		err = d.flush()
		if err != nil {
			return status, err
		}
	}

	if d.asserted {
		status = StatusAssert
	}

	tr.Printw("disasm done", "instrs", d.n, "stats", st)

	return status, nil
}

func words(dw []uint32) []uint64 {
	l := make([]uint64, len(dw)/2)

	for i := range l {
		l[i] = codec.Word(dw[2*i], dw[2*i+1])
	}

	return l
}

func (d *disasm) instr(x uint64) (stop bool, err error) {
	cat := codec.Category(x)

	d.pre(x, cat)

	cycle := d.st.InstrsCount

	if l, ok := d.labels[d.n]; ok {
		d.b = app(d.b[:0], d.Level, "l%d:\n", l)
	} else {
		d.b = d.b[:0]
	}

	d.b = indent(d.b, d.Level)

	if d.Debug&PrintRaw != 0 {
		lo, hi := codec.Split(x)
		d.b = hfmt.Appendf(d.b, "%d:%04d:%04d[%08x_%08x] ", cat, d.n, cycle, hi, lo)
	}

	i, aerr := d.decode(x)
	if i == nil {
		d.asserted = true
		d.b = hfmt.Appendf(d.b, "; assert: %v\n", aerr.Msg)

		return false, d.flush()
	}

	if d.tr.If("disasm_instr") {
		d.tr.Printw("instr", "n", d.n, "cat", cat, "word", tlog.FormatNext("%#016x"), x)
	}

	d.b, stop = d.format(d.b, i)

	if aerr != nil {
		d.asserted = true
		d.b = hfmt.Appendf(d.b, " ; assert: %v", aerr.Msg)
	}

	d.b = append(d.b, '\n')

	return stop, d.flush()
}

// decode returns nil Instr if the assertion handler panicked
// and the panic was trapped.
func (d *disasm) decode(x uint64) (i codec.Instr, aerr *codec.AssertError) {
	if d.try {
		defer func() {
			p := recover()
			if p == nil {
				return
			}

			e, ok := p.(*codec.AssertError)
			if !ok {
				panic(p)
			}

			i, aerr = nil, e
		}()
	}

	i, err := d.dec.Decode(x)
	if err != nil {
		aerr, _ = err.(*codec.AssertError)
	}

	return i, aerr
}

func (d *disasm) isNop(x uint64) bool {
	if codec.Category(x) != isa.Cat0 {
		return false
	}

	i, _ := d.dec.Decode(x)
	op, err := i.Opc()

	return err == nil && op == isa.OpcNop
}

func (d *disasm) flush() error {
	if len(d.b) == 0 {
		return nil
	}

	_, err := d.w.Write(d.b)
	if err != nil {
		return errors.Wrap(err, "write")
	}

	return nil
}

// collectLabels numbers branch targets inside the stream in stream order.
func (d *disasm) collectLabels() {
	targets := set.MakeBits[int]()

	for n, x := range d.words {
		t, ok := d.target(n, x)
		if !ok || t < 0 || t >= len(d.words) {
			continue
		}

		targets.Set(t)
	}

	if targets.Size() == 0 {
		return
	}

	d.labels = make(map[int]int, targets.Size())

	for t := range targets.All() {
		d.labels[t] = len(d.labels)
	}
}

// target returns the branch target of the word at index n.
func (d *disasm) target(n int, x uint64) (int, bool) {
	if codec.Category(x) != isa.Cat0 {
		return 0, false
	}

	i, _ := d.dec.Decode(x)
	c := i.(*codec.Cat0)

	op, err := c.Opc()
	if err != nil || !isBranch(op) {
		return 0, false
	}

	return n + c.Offset(), true
}

func isBranch(op isa.Opc) bool {
	if _, ok := isa.BranchType(op); ok {
		return true
	}

	switch op {
	case isa.OpcJump, isa.OpcCall, isa.OpcGetone, isa.OpcShps, isa.OpcBkt:
		return true
	default:
		return false
	}
}

const tabs = "\t\t\t\t\t\t\t\t\t"

func indent(b []byte, d int) []byte {
	if d > len(tabs) {
		return append(b, 'x')
	}

	return append(b, tabs[:d]...)
}

func app(b []byte, d int, f string, args ...any) []byte {
	b = indent(b, d)
	b = hfmt.Appendf(b, f, args...)
	return b
}
