// Package ir is the in-memory model of an Adreno shader: blocks of
// instructions with register operands, kept in per-shader arenas
// and linked by index.
package ir

import (
	"tlog.app/go/tlog/tlwire"

	"github.com/slowlang/adreno/adreno/isa"
	"github.com/slowlang/adreno/adreno/set"
)

type (
	BlockID int
	InstrID int
	Reg     int
	ArrayID int

	RegFlags   uint32
	InstrFlags uint32

	Shader struct {
		GPUID int

		// Order is the block order, entry first.
		Order []BlockID

		blocks []*Block
		instrs []*Instr
		regs   []*Register
		arrays []*Array

		A0Users       []InstrID
		A1Users       []InstrID
		PredUsers     []InstrID
		Inputs        []InstrID
		Baryfs        []InstrID
		TexPrefetches []InstrID

		serial int
	}

	Block struct {
		ID BlockID

		Instrs []InstrID

		Succs [2]BlockID
		Preds []BlockID

		// Cond is the instruction producing the predicate
		// selecting Succs[1].
		Cond InstrID

		IDom        BlockID
		DomChildren []BlockID
		DomPre      int
		DomPost     int

		LiveIn  set.Bits[Reg]
		LiveOut set.Bits[Reg]

		Data any `tlog:"-"`
	}

	Instr struct {
		ID    InstrID
		Block BlockID

		Opc    isa.Opc
		Flags  InstrFlags
		Repeat int
		Nop    int

		Dsts []Reg
		Srcs []Reg

		// Deps are false dependencies: instructions this one
		// must follow without reading their results.
		Deps []InstrID

		// Address is the instruction writing a0/a1 this one reads.
		Address InstrID

		// Payload holds per category fields:
		// one of Cat0..Cat7 or a Meta* type.
		Payload any

		Serial int
		IP     int

		Data any `tlog:"-"`
	}

	Register struct {
		ID    Reg
		Instr InstrID

		Flags  RegFlags
		Num    isa.RegID
		Wrmask uint8

		// Imm is the raw immediate when RegImmed is set.
		Imm uint32

		// Offset is the relative access offset.
		Offset int

		Array ArrayID

		// Def is the register defining an ssa source.
		Def Reg

		// Tied is the register sharing the physical register
		// with this one across the instruction.
		Tied Reg
	}

	Array struct {
		ID     ArrayID
		Length int
		Half   bool

		Base      isa.RegID
		LastWrite Reg
	}
)

// per category payloads
type (
	Cat0 struct {
		Immed  uint32
		Idx    uint8
		BrType isa.BrType
		Eq     bool

		Inv0, Inv1   bool
		Comp0, Comp1 uint8

		Target BlockID
	}

	Cat1 struct {
		SrcType isa.Type
		DstType isa.Type
		Round   isa.Round

		SrcC bool
		RelC bool
	}

	Cat2 struct {
		Cond isa.Cond
	}

	Cat5 struct {
		Type isa.Type
		Full bool

		Samp uint8
		Tex  uint8

		DescMode isa.Cat5DescMode
		Base     uint8
	}

	Cat6Form uint8

	Cat6 struct {
		Form Cat6Form
		Type isa.Type

		Off    int
		SrcOff bool
		DstOff bool
		G      bool

		D        uint8
		Typed    bool
		TypeSize uint8

		DescMode isa.Cat6DescMode
		Base     uint8

		// opcode selector bits kept as found
		Pad0 bool
		Pad1 bool
		Pad3 uint8
		Pad5 uint8
	}

	Cat7 struct {
		W, R, L, G bool
	}

	MetaInput struct {
		InIdx  int
		Sysval int
	}

	MetaSplit struct {
		Off int
	}

	MetaTexPrefetch struct {
		InputOffset int
		Samp        uint8
		Tex         uint8
	}
)

const (
	Cat6Legacy Cat6Form = iota
	Cat6LdGB
	Cat6StGB
	Cat6A6xx
)

const (
	RegConst RegFlags = 1 << iota
	RegImmed
	RegHalf
	RegShared
	RegRelative
	RegR
	RegFNeg
	RegFAbs
	RegSNeg
	RegSAbs
	RegBNot
	RegEI
	RegSSA
	RegArray
	RegKill
	RegFirstKill
	RegUnused

	RegNegMask = RegFNeg | RegSNeg | RegBNot
	RegAbsMask = RegFAbs | RegSAbs
)

const (
	InstrSY InstrFlags = 1 << iota
	InstrSS
	InstrJP
	InstrUL
	Instr3D
	InstrA
	InstrO
	InstrP
	InstrS
	InstrS2EN
	InstrSat
	InstrBindless
	InstrNonuniform
	InstrA1EN
	InstrMark
	InstrUnused
)

const (
	NoBlock BlockID = -1
	NoInstr InstrID = -1
	NoReg   Reg     = -1
	NoArray ArrayID = -1
)

func (i *Instr) Cat() isa.Category { return i.Opc.Cat() }

func (b *Block) Succ() []BlockID {
	switch {
	case b.Succs[0] == NoBlock:
		return nil
	case b.Succs[1] == NoBlock:
		return b.Succs[:1]
	default:
		return b.Succs[:]
	}
}

func (r Reg) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	if r == NoReg {
		return e.AppendNil(b)
	}

	return e.AppendFormat(b, "ssa_%d", int(r))
}

func (x InstrID) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	if x == NoInstr {
		return e.AppendNil(b)
	}

	return e.AppendFormat(b, "i%d", int(x))
}

func (x BlockID) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	if x == NoBlock {
		return e.AppendNil(b)
	}

	return e.AppendFormat(b, "block%d", int(x))
}
