package codec

import "github.com/slowlang/adreno/adreno/isa"

type Cat7 struct {
	Header

	Pad1   uint32
	Pad2   uint16 // 12 bits
	SS     bool
	Pad3   uint8 // 6 bits
	W      bool
	R      bool
	L      bool
	G      bool
	RawOpc uint8
}

func decodeCat7(w bitw) *Cat7 {
	return &Cat7{
		Header: decodeHeader(w),
		Pad1:   uint32(w.get(0, 32)),
		Pad2:   uint16(w.get(32, 12)),
		SS:     w.flag(bitSS),
		Pad3:   uint8(w.get(45, 6)),
		W:      w.flag(51),
		R:      w.flag(52),
		L:      w.flag(53),
		G:      w.flag(54),
		RawOpc: uint8(w.get(55, 4)),
	}
}

func (i *Cat7) Cat() isa.Category { return isa.Cat7 }

func (i *Cat7) Encode() uint64 {
	var w bitw

	w.put(0, 32, uint64(i.Pad1))
	w.put(32, 12, uint64(i.Pad2))
	w.set(bitSS, i.SS)
	w.put(45, 6, uint64(i.Pad3))
	w.set(51, i.W)
	w.set(52, i.R)
	w.set(53, i.L)
	w.set(54, i.G)
	w.put(55, 4, uint64(i.RawOpc))
	i.Header.put(&w)
	putCat(&w, isa.Cat7)

	return uint64(w)
}

func (i *Cat7) Opc() (isa.Opc, error) {
	return known(isa.Cat7, int(i.RawOpc))
}
