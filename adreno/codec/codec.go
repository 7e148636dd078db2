// Package codec converts 64 bit Adreno instruction words to per category
// structures and back.
//
// Every structure keeps every bit of its word, including padding,
// so Encode(Decode(w)) == w holds for any w.
package codec

import (
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/adreno/adreno/isa"
)

type (
	Instr interface {
		Cat() isa.Category
		Hdr() Header

		// Opc returns the logical opcode.
		// ErrInvalidOpcode is returned for holes in the opcode space.
		Opc() (isa.Opc, error)

		Encode() uint64
	}

	// Header holds the bits every category has at the same place.
	Header struct {
		Jp bool // 59
		Sy bool // 60
	}

	Decoder struct {
		GPUID int

		// Assert is called for every asserted bit found set.
		// nil means Abort.
		Assert AssertHandler
	}
)

const (
	bitJp  = 59
	bitSy  = 60
	catLo  = 61
	bitSS  = 44 // cat0-4, cat7
	bitUL  = 45 // cat1-4
	dword1 = 32
)

var ErrInvalidOpcode = errors.New("invalid opcode")

func (h Header) Hdr() Header { return h }

func (h Header) put(w *bitw) {
	w.set(bitJp, h.Jp)
	w.set(bitSy, h.Sy)
}

func decodeHeader(w bitw) Header {
	return Header{
		Jp: w.flag(bitJp),
		Sy: w.flag(bitSy),
	}
}

func putCat(w *bitw, c isa.Category) {
	w.put(catLo, 3, uint64(c))
}

// Category returns the category held in bits 61-63.
func Category(w uint64) isa.Category {
	return isa.Category(w >> catLo)
}

// Decode decodes a word.
// A non-nil error is *AssertError returned after the handler declined
// to abort. The returned Instr is valid even then.
func (d *Decoder) Decode(w uint64) (i Instr, err error) {
	b := bitw(w)

	switch Category(w) {
	case isa.Cat0:
		i = decodeCat0(b, d.GPUID)
	case isa.Cat1:
		i = decodeCat1(b)
	case isa.Cat2:
		i = decodeCat2(b)
	case isa.Cat3:
		i = decodeCat3(b)
	case isa.Cat4:
		i = decodeCat4(b)
	case isa.Cat5:
		i = decodeCat5(b)
	case isa.Cat6:
		if IsCat6Legacy(w, d.GPUID) {
			i = decodeCat6Legacy(b)
		} else {
			i = decodeCat6A6xx(b)
		}
	case isa.Cat7:
		i = decodeCat7(b)
	default:
		panic(w)
	}

	if c, ok := i.(checker); ok {
		if msg := c.check(); msg != "" {
			return i, d.assert(w, msg)
		}
	}

	return i, nil
}

// Decode decodes w with the default abort handler.
func Decode(w uint64, gpuID int) (Instr, error) {
	d := Decoder{GPUID: gpuID}

	return d.Decode(w)
}

func Encode(i Instr) uint64 {
	return i.Encode()
}

// IsCat6Legacy reports whether a cat6 word uses the pre-a6xx layout.
// a6xx+ words are recognized by pad3 bit 2 and pad5 bit 1 both set.
func IsCat6Legacy(w uint64, gpuID int) bool {
	if gpuID < 600 {
		return true
	}

	b := bitw(w)

	return !(b.flag(a6xxPad3Lo+2) && b.flag(dword1+a6xxPad5Lo+1))
}

// Repeat returns the repeat field for categories 0-4 and 0 otherwise.
func Repeat(i Instr) int {
	switch i := i.(type) {
	case *Cat0:
		return int(i.Repeat)
	case *Cat1:
		return i.Rpt()
	case *Cat2:
		return int(i.Repeat)
	case *Cat3:
		return int(i.Repeat)
	case *Cat4:
		return int(i.Repeat)
	default:
		return 0
	}
}

// Nop returns the nopN encoded in src_r bits of cat2 and cat3
// when repeat is zero.
func Nop(i Instr) int {
	switch i := i.(type) {
	case *Cat2:
		return i.Nop()
	case *Cat3:
		return i.Nop()
	default:
		return 0
	}
}

// Sat returns the saturation flag for categories 2-4.
func Sat(i Instr) bool {
	switch i := i.(type) {
	case *Cat2:
		return i.Sat
	case *Cat3:
		return i.Sat
	case *Cat4:
		return i.Sat
	default:
		return false
	}
}

// SS returns the (ss) flag of categories having one.
func SS(i Instr) bool {
	switch i := i.(type) {
	case *Cat0:
		return i.SS
	case *Cat1:
		return i.SS
	case *Cat2:
		return i.SS
	case *Cat3:
		return i.SS
	case *Cat4:
		return i.SS
	case *Cat7:
		return i.SS
	default:
		return false
	}
}

// UL returns the (ul) flag of categories 1-4.
func UL(i Instr) bool {
	switch i := i.(type) {
	case *Cat1:
		return i.UL
	case *Cat2:
		return i.UL
	case *Cat3:
		return i.UL
	case *Cat4:
		return i.UL
	default:
		return false
	}
}

func invalid(cat isa.Category, sub int) (isa.Opc, error) {
	return isa.MakeOpc(cat, sub), errors.Wrap(ErrInvalidOpcode, "cat%d opc %d", cat, sub)
}

func known(cat isa.Category, sub int) (isa.Opc, error) {
	op := isa.MakeOpc(cat, sub)
	if !isa.Known(op) {
		return invalid(cat, sub)
	}

	return op, nil
}

func logAssert(e *AssertError) {
	if tlog.If("codec_assert") {
		tlog.Printw("codec assert", "word", tlog.FormatNext("%#016x"), e.Word, "gpu", e.GPUID, "msg", e.Msg, "from", e.PC)
	}
}
