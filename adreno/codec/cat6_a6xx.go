package codec

import "github.com/slowlang/adreno/adreno/isa"

// Cat6A6xx is the unified a6xx+ memory instruction layout.
type Cat6A6xx struct {
	Header

	Pad1     bool
	Base     uint8
	Pad2     uint8
	DescMode isa.Cat6DescMode
	D        uint8
	Typed    bool
	TypeSize uint8
	RawOpc   uint8
	Pad3     uint8
	Src1     uint8

	Src2 uint8 // or dst for loads
	Pad4 bool
	SSBO uint8
	Type isa.Type
	Pad5 uint8
}

const (
	a6xxPad3Lo = 20
	a6xxPad5Lo = 20 // in dword1
)

func decodeCat6A6xx(w bitw) *Cat6A6xx {
	return &Cat6A6xx{
		Header:   decodeHeader(w),
		Pad1:     w.flag(0),
		Base:     uint8(w.get(1, 3)),
		Pad2:     uint8(w.get(4, 2)),
		DescMode: isa.Cat6DescMode(w.get(6, 3)),
		D:        uint8(w.get(9, 2)),
		Typed:    w.flag(11),
		TypeSize: uint8(w.get(12, 2)),
		RawOpc:   uint8(w.get(14, 6)),
		Pad3:     uint8(w.get(a6xxPad3Lo, 4)),
		Src1:     uint8(w.get(24, 8)),
		Src2:     uint8(w.get(32, 8)),
		Pad4:     w.flag(40),
		SSBO:     uint8(w.get(41, 8)),
		Type:     isa.Type(w.get(49, 3)),
		Pad5:     uint8(w.get(dword1+a6xxPad5Lo, 7)),
	}
}

func (i *Cat6A6xx) Cat() isa.Category { return isa.Cat6 }

func (i *Cat6A6xx) Encode() uint64 {
	var w bitw

	w.set(0, i.Pad1)
	w.put(1, 3, uint64(i.Base))
	w.put(4, 2, uint64(i.Pad2))
	w.put(6, 3, uint64(i.DescMode))
	w.put(9, 2, uint64(i.D))
	w.set(11, i.Typed)
	w.put(12, 2, uint64(i.TypeSize))
	w.put(14, 6, uint64(i.RawOpc))
	w.put(a6xxPad3Lo, 4, uint64(i.Pad3))
	w.put(24, 8, uint64(i.Src1))
	w.put(32, 8, uint64(i.Src2))
	w.set(40, i.Pad4)
	w.put(41, 8, uint64(i.SSBO))
	w.put(49, 3, uint64(i.Type))
	w.put(dword1+a6xxPad5Lo, 7, uint64(i.Pad5))
	i.Header.put(&w)
	putCat(&w, isa.Cat6)

	return uint64(w)
}

// a6xx hardware opcodes that decode to logical a6xx opcodes
var a6xxOpc = map[uint8]isa.Opc{
	isa.OpcLdg.Sub():     isa.OpcLdgA,
	isa.OpcStg.Sub():     isa.OpcStgA,
	isa.OpcLdib.Sub():    isa.OpcLdibB,
	isa.OpcResinfo.Sub(): isa.OpcResinfoB,
	isa.OpcStgb.Sub():    isa.OpcStc,
	isa.OpcStib.Sub():    isa.OpcStibB,
}

var a6xxRaw = func() map[isa.Opc]uint8 {
	m := make(map[isa.Opc]uint8, len(a6xxOpc)+11)

	for raw, op := range a6xxOpc {
		m[op] = raw
	}

	for op := isa.OpcAtomicBAdd; op <= isa.OpcAtomicBXor; op++ {
		m[op] = isa.OpcAtomicAdd.Sub() + uint8(op-isa.OpcAtomicBAdd)
	}

	return m
}()

func (i *Cat6A6xx) Opc() (isa.Opc, error) {
	if op, ok := a6xxOpc[i.RawOpc]; ok {
		return op, nil
	}

	op := isa.MakeOpc(isa.Cat6, int(i.RawOpc))

	switch {
	case op >= isa.OpcAtomicAdd && op <= isa.OpcAtomicXor:
		return op - isa.OpcAtomicAdd + isa.OpcAtomicBAdd, nil
	case op >= isa.OpcStc:
		return invalid(isa.Cat6, int(i.RawOpc))
	}

	return known(isa.Cat6, int(i.RawOpc))
}

// A6xxRawOpc is the inverse of Cat6A6xx.Opc.
func A6xxRawOpc(op isa.Opc) (uint8, bool) {
	if raw, ok := a6xxRaw[op]; ok {
		return raw, true
	}

	if op.Cat() != isa.Cat6 || op >= isa.OpcStc || isa.IsAtomic(op) || !isa.Known(op) {
		return 0, false
	}

	if _, ok := a6xxOpc[op.Sub()]; ok {
		return 0, false
	}

	return op.Sub(), true
}

// LegacyOpcSet reports whether the bits the legacy layout keeps its
// opcode in are non-zero. Such words are decoded as a6xx+ anyway.
func (i *Cat6A6xx) LegacyOpcSet() bool {
	return i.Pad5>>2 != 0
}

func (i *Cat6A6xx) check() string {
	switch {
	case i.Pad2 != 0:
		return "cat6 a6xx: pad2 set"
	case i.Pad4:
		return "cat6 a6xx: pad4 set"
	}

	return ""
}
