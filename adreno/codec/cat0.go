package codec

import "github.com/slowlang/adreno/adreno/isa"

type Cat0 struct {
	Header

	// Immed is the whole first dword. The branch offset is its low
	// 16 (a3xx), 20 (a4xx) or 32 (a5xx+) bits.
	Immed uint32

	Idx    uint8 // brac.N
	BrType isa.BrType
	Repeat uint8
	Dummy3 bool
	SS     bool
	Inv1   bool // second source
	Comp1  uint8
	Eq     bool
	OpcHi  bool
	Dummy4 uint8
	Inv0   bool // first source
	Comp0  uint8
	RawOpc uint8

	GPUID int
}

func decodeCat0(w bitw, gpuID int) *Cat0 {
	return &Cat0{
		Header: decodeHeader(w),
		Immed:  uint32(w.get(0, 32)),
		Idx:    uint8(w.get(32, 5)),
		BrType: isa.BrType(w.get(37, 3)),
		Repeat: uint8(w.get(40, 3)),
		Dummy3: w.flag(43),
		SS:     w.flag(bitSS),
		Inv1:   w.flag(45),
		Comp1:  uint8(w.get(46, 2)),
		Eq:     w.flag(48),
		OpcHi:  w.flag(49),
		Dummy4: uint8(w.get(50, 2)),
		Inv0:   w.flag(52),
		Comp0:  uint8(w.get(53, 2)),
		RawOpc: uint8(w.get(55, 4)),
		GPUID:  gpuID,
	}
}

func (i *Cat0) Cat() isa.Category { return isa.Cat0 }

func (i *Cat0) Encode() uint64 {
	var w bitw

	w.put(0, 32, uint64(i.Immed))
	w.put(32, 5, uint64(i.Idx))
	w.put(37, 3, uint64(i.BrType))
	w.put(40, 3, uint64(i.Repeat))
	w.set(43, i.Dummy3)
	w.set(bitSS, i.SS)
	w.set(45, i.Inv1)
	w.put(46, 2, uint64(i.Comp1))
	w.set(48, i.Eq)
	w.set(49, i.OpcHi)
	w.put(50, 2, uint64(i.Dummy4))
	w.set(52, i.Inv0)
	w.put(53, 2, uint64(i.Comp0))
	w.put(55, 4, uint64(i.RawOpc))
	i.Header.put(&w)
	putCat(&w, isa.Cat0)

	return uint64(w)
}

// HWOpc is the 5 bit hardware opcode.
func (i *Cat0) HWOpc() int {
	return int(i.RawOpc) | int(b2u(i.OpcHi))<<4
}

func (i *Cat0) SetHWOpc(op int) {
	i.RawOpc = uint8(op & 0xf)
	i.OpcHi = op&0x10 != 0
}

func (i *Cat0) Opc() (isa.Opc, error) {
	hw := i.HWOpc()

	switch hw {
	case int(isa.OpcB.Sub()):
		op, ok := i.BrType.Opc()
		if !ok {
			return invalid(isa.Cat0, hw)
		}

		return op, nil
	case isa.DemoteHW:
		return isa.OpcDemote, nil
	}

	return known(isa.Cat0, hw)
}

// OffsetBits is the branch offset width for the generation.
func OffsetBits(gpuID int) uint {
	switch {
	case gpuID < 400:
		return 16
	case gpuID < 500:
		return 20
	default:
		return 32
	}
}

// Offset is the sign-extended branch offset in instructions.
func (i *Cat0) Offset() int {
	return int(sext(uint64(i.Immed), OffsetBits(i.GPUID)))
}

// SetOffset stores off keeping dword0 bits above the offset field.
func (i *Cat0) SetOffset(off int) {
	w := bitw(i.Immed)
	w.put(0, OffsetBits(i.GPUID), uint64(off))
	i.Immed = uint32(w)
}
