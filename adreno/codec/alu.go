package codec

import "github.com/slowlang/adreno/adreno/isa"

type (
	Cat2 struct {
		Header

		Src1    Src
		Src1Im  bool
		Src1Neg bool
		Src1Abs bool
		Src2    Src
		Src2Im  bool
		Src2Neg bool
		Src2Abs bool

		Dst     uint8
		Repeat  uint8
		Sat     bool
		Src1R   bool // nop bit 0 when Repeat is 0
		SS      bool
		UL      bool
		DstHalf bool
		EI      bool
		Cond    isa.Cond
		Src2R   bool // nop bit 1 when Repeat is 0
		Full    bool
		RawOpc  uint8
	}

	Cat3 struct {
		Header

		Src1    Src
		Src2C   bool
		Src1Neg bool
		Src2R   bool // nop bit 1 when Repeat is 0
		Src3    Src
		Src3R   bool
		Src2Neg bool
		Src3Neg bool

		Dst     uint8
		Repeat  uint8
		Sat     bool
		Src1R   bool // nop bit 0 when Repeat is 0
		SS      bool
		UL      bool
		DstHalf bool
		Src2    uint8
		RawOpc  uint8
	}

	Cat4 struct {
		Header

		Src    Src
		SrcIm  bool
		SrcNeg bool
		SrcAbs bool
		Dummy1 uint16

		Dst     uint8
		Repeat  uint8
		Sat     bool
		SrcR    bool
		SS      bool
		UL      bool
		DstHalf bool
		Dummy2  uint8
		Full    bool
		RawOpc  uint8
	}
)

func decodeCat2(w bitw) *Cat2 {
	return &Cat2{
		Header:  decodeHeader(w),
		Src1:    decodeSrc(w.get(0, srcBits)),
		Src1Im:  w.flag(13),
		Src1Neg: w.flag(14),
		Src1Abs: w.flag(15),
		Src2:    decodeSrc(w.get(16, srcBits)),
		Src2Im:  w.flag(29),
		Src2Neg: w.flag(30),
		Src2Abs: w.flag(31),
		Dst:     uint8(w.get(32, 8)),
		Repeat:  uint8(w.get(40, 2)),
		Sat:     w.flag(42),
		Src1R:   w.flag(43),
		SS:      w.flag(bitSS),
		UL:      w.flag(bitUL),
		DstHalf: w.flag(46),
		EI:      w.flag(47),
		Cond:    isa.Cond(w.get(48, 3)),
		Src2R:   w.flag(51),
		Full:    w.flag(52),
		RawOpc:  uint8(w.get(53, 6)),
	}
}

func (i *Cat2) Cat() isa.Category { return isa.Cat2 }

func (i *Cat2) Encode() uint64 {
	var w bitw

	w.put(0, srcBits, i.Src1.bits())
	w.set(13, i.Src1Im)
	w.set(14, i.Src1Neg)
	w.set(15, i.Src1Abs)
	w.put(16, srcBits, i.Src2.bits())
	w.set(29, i.Src2Im)
	w.set(30, i.Src2Neg)
	w.set(31, i.Src2Abs)
	w.put(32, 8, uint64(i.Dst))
	w.put(40, 2, uint64(i.Repeat))
	w.set(42, i.Sat)
	w.set(43, i.Src1R)
	w.set(bitSS, i.SS)
	w.set(bitUL, i.UL)
	w.set(46, i.DstHalf)
	w.set(47, i.EI)
	w.put(48, 3, uint64(i.Cond))
	w.set(51, i.Src2R)
	w.set(52, i.Full)
	w.put(53, 6, uint64(i.RawOpc))
	i.Header.put(&w)
	putCat(&w, isa.Cat2)

	return uint64(w)
}

func (i *Cat2) Opc() (isa.Opc, error) {
	return known(isa.Cat2, int(i.RawOpc))
}

func (i *Cat2) Nop() int {
	if i.Repeat != 0 {
		return 0
	}

	return int(b2u(i.Src1R) | b2u(i.Src2R)<<1)
}

// Srcs is the number of sources the opcode reads.
func (i *Cat2) Srcs() int {
	switch isa.MakeOpc(isa.Cat2, int(i.RawOpc)) {
	case isa.OpcAbsnegF, isa.OpcAbsnegS, isa.OpcFloorF, isa.OpcCeilF,
		isa.OpcRndneF, isa.OpcRndazF, isa.OpcTruncF, isa.OpcNotB,
		isa.OpcBfrevB, isa.OpcClzS, isa.OpcClzB, isa.OpcSignF,
		isa.OpcCbitsB, isa.OpcSetrm:
		return 1
	default:
		return 2
	}
}

func decodeCat3(w bitw) *Cat3 {
	return &Cat3{
		Header:  decodeHeader(w),
		Src1:    decodeSrc(w.get(0, srcBits)),
		Src2C:   w.flag(13),
		Src1Neg: w.flag(14),
		Src2R:   w.flag(15),
		Src3:    decodeSrc(w.get(16, srcBits)),
		Src3R:   w.flag(29),
		Src2Neg: w.flag(30),
		Src3Neg: w.flag(31),
		Dst:     uint8(w.get(32, 8)),
		Repeat:  uint8(w.get(40, 2)),
		Sat:     w.flag(42),
		Src1R:   w.flag(43),
		SS:      w.flag(bitSS),
		UL:      w.flag(bitUL),
		DstHalf: w.flag(46),
		Src2:    uint8(w.get(47, 8)),
		RawOpc:  uint8(w.get(55, 4)),
	}
}

func (i *Cat3) Cat() isa.Category { return isa.Cat3 }

func (i *Cat3) Encode() uint64 {
	var w bitw

	w.put(0, srcBits, i.Src1.bits())
	w.set(13, i.Src2C)
	w.set(14, i.Src1Neg)
	w.set(15, i.Src2R)
	w.put(16, srcBits, i.Src3.bits())
	w.set(29, i.Src3R)
	w.set(30, i.Src2Neg)
	w.set(31, i.Src3Neg)
	w.put(32, 8, uint64(i.Dst))
	w.put(40, 2, uint64(i.Repeat))
	w.set(42, i.Sat)
	w.set(43, i.Src1R)
	w.set(bitSS, i.SS)
	w.set(bitUL, i.UL)
	w.set(46, i.DstHalf)
	w.put(47, 8, uint64(i.Src2))
	w.put(55, 4, uint64(i.RawOpc))
	i.Header.put(&w)
	putCat(&w, isa.Cat3)

	return uint64(w)
}

func (i *Cat3) Opc() (isa.Opc, error) {
	return known(isa.Cat3, int(i.RawOpc))
}

func (i *Cat3) Nop() int {
	if i.Repeat != 0 {
		return 0
	}

	return int(b2u(i.Src1R) | b2u(i.Src2R)<<1)
}

// Full reports whether operands are full precision.
func (i *Cat3) Full() bool {
	return isa.Cat3IsFull(isa.MakeOpc(isa.Cat3, int(i.RawOpc)))
}

func decodeCat4(w bitw) *Cat4 {
	return &Cat4{
		Header:  decodeHeader(w),
		Src:     decodeSrc(w.get(0, srcBits)),
		SrcIm:   w.flag(13),
		SrcNeg:  w.flag(14),
		SrcAbs:  w.flag(15),
		Dummy1:  uint16(w.get(16, 16)),
		Dst:     uint8(w.get(32, 8)),
		Repeat:  uint8(w.get(40, 2)),
		Sat:     w.flag(42),
		SrcR:    w.flag(43),
		SS:      w.flag(bitSS),
		UL:      w.flag(bitUL),
		DstHalf: w.flag(46),
		Dummy2:  uint8(w.get(47, 5)),
		Full:    w.flag(52),
		RawOpc:  uint8(w.get(53, 6)),
	}
}

func (i *Cat4) Cat() isa.Category { return isa.Cat4 }

func (i *Cat4) Encode() uint64 {
	var w bitw

	w.put(0, srcBits, i.Src.bits())
	w.set(13, i.SrcIm)
	w.set(14, i.SrcNeg)
	w.set(15, i.SrcAbs)
	w.put(16, 16, uint64(i.Dummy1))
	w.put(32, 8, uint64(i.Dst))
	w.put(40, 2, uint64(i.Repeat))
	w.set(42, i.Sat)
	w.set(43, i.SrcR)
	w.set(bitSS, i.SS)
	w.set(bitUL, i.UL)
	w.set(46, i.DstHalf)
	w.put(47, 5, uint64(i.Dummy2))
	w.set(52, i.Full)
	w.put(53, 6, uint64(i.RawOpc))
	i.Header.put(&w)
	putCat(&w, isa.Cat4)

	return uint64(w)
}

func (i *Cat4) Opc() (isa.Opc, error) {
	return known(isa.Cat4, int(i.RawOpc))
}
