package codec

import "github.com/slowlang/adreno/adreno/isa"

type (
	// SrcKind selects the shape of a 13 bit alu source slot.
	SrcKind uint8

	// Src is the 13 bit source slot shared by cat2, cat3 and cat4.
	// Bit 12 selects a const, otherwise bit 11 selects a relative access,
	// otherwise the slot is a plain register.
	Src struct {
		Kind SrcKind
		Num  uint16 // reg: 11 bits, const: 12 bits, rel: 10 bit offset
		RelC bool   // rel only: relative to the const file
	}
)

const (
	SrcReg SrcKind = iota
	SrcRel
	SrcConst
)

const srcBits = 13

func decodeSrc(v uint64) Src {
	switch {
	case v&(1<<12) != 0:
		return Src{Kind: SrcConst, Num: uint16(v & 0xfff)}
	case v&(1<<11) != 0:
		return Src{Kind: SrcRel, Num: uint16(v & 0x3ff), RelC: v&(1<<10) != 0}
	default:
		return Src{Kind: SrcReg, Num: uint16(v & 0x7ff)}
	}
}

func (s Src) bits() uint64 {
	switch s.Kind {
	case SrcConst:
		return uint64(s.Num&0xfff) | 1<<12
	case SrcRel:
		return uint64(s.Num&0x3ff) | b2u(s.RelC)<<10 | 1<<11
	default:
		return uint64(s.Num & 0x7ff)
	}
}

// Off is the signed offset of a relative source.
func (s Src) Off() int {
	return int(sext(uint64(s.Num), 10))
}

// Reg is the register of a plain or const source.
// Plain sources address the full range including a0 and p0.
func (s Src) Reg() isa.RegID {
	return isa.RegID(s.Num)
}

// Raw is the 13 bit slot the source occupies.
func (s Src) Raw() uint64 {
	return s.bits()
}

func SrcFromRaw(v uint64) Src {
	return decodeSrc(v & (1<<srcBits - 1))
}

// Imm is the signed 11 bit immediate a source slot holds
// when its im flag is set.
func (s Src) Imm() int {
	return int(sext(s.bits(), 11))
}

// Const reports whether the source reads the const file.
func (s Src) Const() bool {
	return s.Kind == SrcConst || s.Kind == SrcRel && s.RelC
}

func RegSrc(r isa.RegID) Src   { return Src{Kind: SrcReg, Num: uint16(r) & 0x7ff} }
func ConstSrc(r isa.RegID) Src { return Src{Kind: SrcConst, Num: uint16(r) & 0xfff} }

func RelSrc(off int, konst bool) Src {
	return Src{Kind: SrcRel, Num: uint16(off) & 0x3ff, RelC: konst}
}
