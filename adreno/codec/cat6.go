package codec

import "github.com/slowlang/adreno/adreno/isa"

type (
	// Cat6Shape tells how a legacy cat6 word is read.
	Cat6Shape uint8

	// Cat6 is the pre-a6xx memory instruction in the a/b/c/d shapes.
	//
	//	a: [src1 + off], src2   load with src_off
	//	b: [src1], src2         load
	//	c: dst[off], src1       store with dst_off
	//	d: dst, src1            store
	Cat6 struct {
		Header

		SrcOff bool
		Src1   uint8
		Src1Im bool
		Src2Im bool
		Off    uint16 // 13 bits
		Src2   uint8

		Dst    uint8
		DstOff bool
		Pad3   uint8
		Type   isa.Type
		G      bool
		Pad4   bool
		RawOpc uint8
	}

	// Cat6LdGB is ldgb and the global atomics.
	Cat6LdGB struct {
		Header

		Pad0     bool
		Src3     uint8
		D        uint8
		Typed    bool
		TypeSize uint8
		Src1     uint8
		Src1Im   bool
		Src2Im   bool
		Src2     uint8

		Dst       uint8
		Mustbe0   bool
		SrcSSBO   uint8
		Type      isa.Type
		G         bool
		SrcSSBOIm bool
		RawOpc    uint8
	}

	// Cat6StGB is stgb and stib.
	Cat6StGB struct {
		Header

		Mustbe1  bool
		Src1     uint8
		D        uint8
		Typed    bool
		TypeSize uint8
		Pad0     uint16 // 9 bits
		Src2Im   bool
		Src2     uint8

		Src3    uint8
		Src3Im  bool
		DstSSBO uint8
		Type    isa.Type
		Pad3    uint8
		RawOpc  uint8
	}
)

const (
	Cat6A Cat6Shape = iota
	Cat6B
	Cat6C
	Cat6D
)

// legacy opcode: dword1 bits 22-26
const cat6OpcLo = dword1 + 22

func decodeCat6Legacy(w bitw) Instr {
	op := isa.MakeOpc(isa.Cat6, int(w.get(cat6OpcLo, 5)))
	g := w.flag(dword1 + 20)

	switch {
	case op == isa.OpcLdgb, isa.IsAtomic(op) && g:
		return decodeCat6LdGB(w)
	case op == isa.OpcStgb, op == isa.OpcStib:
		return decodeCat6StGB(w)
	}

	return &Cat6{
		Header: decodeHeader(w),
		SrcOff: w.flag(0),
		Src1:   uint8(w.get(1, 8)),
		Src1Im: w.flag(9),
		Src2Im: w.flag(10),
		Off:    uint16(w.get(11, 13)),
		Src2:   uint8(w.get(24, 8)),
		Dst:    uint8(w.get(32, 8)),
		DstOff: w.flag(40),
		Pad3:   uint8(w.get(41, 8)),
		Type:   isa.Type(w.get(49, 3)),
		G:      g,
		Pad4:   w.flag(53),
		RawOpc: uint8(w.get(cat6OpcLo, 5)),
	}
}

func (i *Cat6) Cat() isa.Category { return isa.Cat6 }

func (i *Cat6) Encode() uint64 {
	var w bitw

	w.set(0, i.SrcOff)
	w.put(1, 8, uint64(i.Src1))
	w.set(9, i.Src1Im)
	w.set(10, i.Src2Im)
	w.put(11, 13, uint64(i.Off))
	w.put(24, 8, uint64(i.Src2))
	w.put(32, 8, uint64(i.Dst))
	w.set(40, i.DstOff)
	w.put(41, 8, uint64(i.Pad3))
	w.put(49, 3, uint64(i.Type))
	w.set(52, i.G)
	w.set(53, i.Pad4)
	w.put(cat6OpcLo, 5, uint64(i.RawOpc))
	i.Header.put(&w)
	putCat(&w, isa.Cat6)

	return uint64(w)
}

func (i *Cat6) Opc() (isa.Opc, error) {
	return known(isa.Cat6, int(i.RawOpc))
}

func (i *Cat6) Shape() Cat6Shape {
	op := isa.MakeOpc(isa.Cat6, int(i.RawOpc))

	switch {
	case isa.IsStore(op) && i.DstOff:
		return Cat6C
	case isa.IsStore(op):
		return Cat6D
	case i.SrcOff:
		return Cat6A
	default:
		return Cat6B
	}
}

// Offset is the signed 13 bit offset.
func (i *Cat6) Offset() int {
	return int(sext(uint64(i.Off), 13))
}

func decodeCat6LdGB(w bitw) *Cat6LdGB {
	return &Cat6LdGB{
		Header:    decodeHeader(w),
		Pad0:      w.flag(0),
		Src3:      uint8(w.get(1, 8)),
		D:         uint8(w.get(9, 2)),
		Typed:     w.flag(11),
		TypeSize:  uint8(w.get(12, 2)),
		Src1:      uint8(w.get(14, 8)),
		Src1Im:    w.flag(22),
		Src2Im:    w.flag(23),
		Src2:      uint8(w.get(24, 8)),
		Dst:       uint8(w.get(32, 8)),
		Mustbe0:   w.flag(40),
		SrcSSBO:   uint8(w.get(41, 8)),
		Type:      isa.Type(w.get(49, 3)),
		G:         w.flag(52),
		SrcSSBOIm: w.flag(53),
		RawOpc:    uint8(w.get(cat6OpcLo, 5)),
	}
}

func (i *Cat6LdGB) Cat() isa.Category { return isa.Cat6 }

func (i *Cat6LdGB) Encode() uint64 {
	var w bitw

	w.set(0, i.Pad0)
	w.put(1, 8, uint64(i.Src3))
	w.put(9, 2, uint64(i.D))
	w.set(11, i.Typed)
	w.put(12, 2, uint64(i.TypeSize))
	w.put(14, 8, uint64(i.Src1))
	w.set(22, i.Src1Im)
	w.set(23, i.Src2Im)
	w.put(24, 8, uint64(i.Src2))
	w.put(32, 8, uint64(i.Dst))
	w.set(40, i.Mustbe0)
	w.put(41, 8, uint64(i.SrcSSBO))
	w.put(49, 3, uint64(i.Type))
	w.set(52, i.G)
	w.set(53, i.SrcSSBOIm)
	w.put(cat6OpcLo, 5, uint64(i.RawOpc))
	i.Header.put(&w)
	putCat(&w, isa.Cat6)

	return uint64(w)
}

func (i *Cat6LdGB) Opc() (isa.Opc, error) {
	return known(isa.Cat6, int(i.RawOpc))
}

func (i *Cat6LdGB) check() string {
	if i.Mustbe0 {
		return "ldgb: mustbe0 bit set"
	}

	// pad0 selects ldgb (0) or atomic.g (1)
	atomic := isa.IsAtomic(isa.MakeOpc(isa.Cat6, int(i.RawOpc)))

	switch {
	case atomic && !i.Pad0:
		return "atomic.g: pad0 bit clear"
	case !atomic && i.Pad0:
		return "ldgb: pad0 bit set"
	}

	return ""
}

func decodeCat6StGB(w bitw) *Cat6StGB {
	return &Cat6StGB{
		Header:   decodeHeader(w),
		Mustbe1:  w.flag(0),
		Src1:     uint8(w.get(1, 8)),
		D:        uint8(w.get(9, 2)),
		Typed:    w.flag(11),
		TypeSize: uint8(w.get(12, 2)),
		Pad0:     uint16(w.get(14, 9)),
		Src2Im:   w.flag(23),
		Src2:     uint8(w.get(24, 8)),
		Src3:     uint8(w.get(32, 8)),
		Src3Im:   w.flag(40),
		DstSSBO:  uint8(w.get(41, 8)),
		Type:     isa.Type(w.get(49, 3)),
		Pad3:     uint8(w.get(52, 2)),
		RawOpc:   uint8(w.get(cat6OpcLo, 5)),
	}
}

func (i *Cat6StGB) Cat() isa.Category { return isa.Cat6 }

func (i *Cat6StGB) Encode() uint64 {
	var w bitw

	w.set(0, i.Mustbe1)
	w.put(1, 8, uint64(i.Src1))
	w.put(9, 2, uint64(i.D))
	w.set(11, i.Typed)
	w.put(12, 2, uint64(i.TypeSize))
	w.put(14, 9, uint64(i.Pad0))
	w.set(23, i.Src2Im)
	w.put(24, 8, uint64(i.Src2))
	w.put(32, 8, uint64(i.Src3))
	w.set(40, i.Src3Im)
	w.put(41, 8, uint64(i.DstSSBO))
	w.put(49, 3, uint64(i.Type))
	w.put(52, 2, uint64(i.Pad3))
	w.put(cat6OpcLo, 5, uint64(i.RawOpc))
	i.Header.put(&w)
	putCat(&w, isa.Cat6)

	return uint64(w)
}

func (i *Cat6StGB) Opc() (isa.Opc, error) {
	return known(isa.Cat6, int(i.RawOpc))
}

func (i *Cat6StGB) check() string {
	if !i.Mustbe1 {
		return "stgb: mustbe1 bit clear"
	}

	return ""
}
