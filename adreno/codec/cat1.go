package codec

import (
	"math"

	"github.com/slowlang/adreno/adreno/isa"
)

type Cat1 struct {
	Header

	// Src is the whole first dword: an immediate when SrcIm is set,
	// otherwise a register (bits 0-10) or, with bit 11 set, a relative
	// access with a 10 bit offset and bit 10 selecting the const file.
	Src uint32

	Dst     uint8
	Repeat  uint8
	SrcR    bool
	SS      bool
	UL      bool
	DstType isa.Type
	DstRel  bool
	SrcType isa.Type
	SrcC    bool
	SrcIm   bool
	Even    bool
	PosInf  bool
	RawOpc  uint8
}

const cat1Multi = 2

func decodeCat1(w bitw) *Cat1 {
	return &Cat1{
		Header:  decodeHeader(w),
		Src:     uint32(w.get(0, 32)),
		Dst:     uint8(w.get(32, 8)),
		Repeat:  uint8(w.get(40, 3)),
		SrcR:    w.flag(43),
		SS:      w.flag(bitSS),
		UL:      w.flag(bitUL),
		DstType: isa.Type(w.get(46, 3)),
		DstRel:  w.flag(49),
		SrcType: isa.Type(w.get(50, 3)),
		SrcC:    w.flag(53),
		SrcIm:   w.flag(54),
		Even:    w.flag(55),
		PosInf:  w.flag(56),
		RawOpc:  uint8(w.get(57, 2)),
	}
}

func (i *Cat1) Cat() isa.Category { return isa.Cat1 }

func (i *Cat1) Encode() uint64 {
	var w bitw

	w.put(0, 32, uint64(i.Src))
	w.put(32, 8, uint64(i.Dst))
	w.put(40, 3, uint64(i.Repeat))
	w.set(43, i.SrcR)
	w.set(bitSS, i.SS)
	w.set(bitUL, i.UL)
	w.put(46, 3, uint64(i.DstType))
	w.set(49, i.DstRel)
	w.put(50, 3, uint64(i.SrcType))
	w.set(53, i.SrcC)
	w.set(54, i.SrcIm)
	w.set(55, i.Even)
	w.set(56, i.PosInf)
	w.put(57, 2, uint64(i.RawOpc))
	i.Header.put(&w)
	putCat(&w, isa.Cat1)

	return uint64(w)
}

func (i *Cat1) Opc() (isa.Opc, error) {
	switch i.RawOpc {
	case 0:
		return isa.OpcMov, nil
	case 1:
		return isa.OpcMovp, nil
	case 3:
		return isa.OpcMovmsk, nil
	}

	switch i.Repeat {
	case 0:
		return isa.OpcSwz, nil
	case 1:
		return isa.OpcGat, nil
	case 2:
		return isa.OpcSct, nil
	}

	return invalid(isa.Cat1, int(i.RawOpc))
}

// Rpt is the repeat count. It is zero for swz, gat and sct
// which keep their sub-opcode in the repeat field.
func (i *Cat1) Rpt() int {
	if i.RawOpc == cat1Multi {
		return 0
	}

	return int(i.Repeat)
}

// Round is the rounding mode held in the even and pos_inf bits.
func (i *Cat1) Round() isa.Round {
	return isa.Round(b2u(i.Even) | b2u(i.PosInf)<<1)
}

func (i *Cat1) SetRound(r isa.Round) {
	i.Even = r&1 != 0
	i.PosInf = r&2 != 0
}

// IsMov reports whether the instruction is a mov with equal types.
// Differing types make it a cov.
func (i *Cat1) IsMov() bool {
	return i.RawOpc == 0 && i.SrcType == i.DstType
}

// SrcRel reports whether the source is a relative access.
func (i *Cat1) SrcRel() bool {
	return !i.SrcIm && i.Src&(1<<11) != 0
}

// SrcOff is the signed offset of a relative source.
func (i *Cat1) SrcOff() int {
	return int(sext(uint64(i.Src), 10))
}

// SrcRelC reports whether a relative source reads the const file.
func (i *Cat1) SrcRelC() bool {
	return i.Src&(1<<10) != 0
}

// SrcReg is the register of a plain source.
func (i *Cat1) SrcReg() isa.RegID {
	return isa.RegID(i.Src & 0x7ff)
}

// SrcPad is the part of the first dword a register source leaves unused.
func (i *Cat1) SrcPad() uint32 {
	return i.Src >> 12
}

func (i *Cat1) ImmInt() int32     { return int32(i.Src) }
func (i *Cat1) ImmUint() uint32   { return i.Src }
func (i *Cat1) ImmFloat() float32 { return math.Float32frombits(i.Src) }

// MovKind classifies a mov by its source: one of the logical
// OpcMovImmed, OpcMovConst, OpcMovGPR, OpcMovRelGPR, OpcMovRelConst.
func (i *Cat1) MovKind() isa.Opc {
	switch {
	case i.SrcIm:
		return isa.OpcMovImmed
	case i.SrcRel() && (i.SrcC || i.SrcRelC()):
		return isa.OpcMovRelConst
	case i.SrcRel():
		return isa.OpcMovRelGPR
	case i.SrcC:
		return isa.OpcMovConst
	default:
		return isa.OpcMovGPR
	}
}
