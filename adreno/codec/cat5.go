package codec

import "github.com/slowlang/adreno/adreno/isa"

type Cat5 struct {
	Header

	Full bool
	Src1 uint8
	Src2 uint8

	// Hi is dword0 bits 17-31. Its meaning depends on IsS2EN:
	// samp and tex immediates in the normal form,
	// base_hi, src3 and desc_mode in the s2en/bindless form.
	Hi uint16

	Dst    uint8
	Wrmask uint8
	Type   isa.Type
	BaseLo bool
	Is3D   bool
	IsA    bool
	IsS    bool
	IsS2EN bool
	IsO    bool
	IsP    bool
	RawOpc uint8
}

const cat5HiLo = 17

func decodeCat5(w bitw) *Cat5 {
	return &Cat5{
		Header: decodeHeader(w),
		Full:   w.flag(0),
		Src1:   uint8(w.get(1, 8)),
		Src2:   uint8(w.get(9, 8)),
		Hi:     uint16(w.get(cat5HiLo, 15)),
		Dst:    uint8(w.get(32, 8)),
		Wrmask: uint8(w.get(40, 4)),
		Type:   isa.Type(w.get(44, 3)),
		BaseLo: w.flag(47),
		Is3D:   w.flag(48),
		IsA:    w.flag(49),
		IsS:    w.flag(50),
		IsS2EN: w.flag(51),
		IsO:    w.flag(52),
		IsP:    w.flag(53),
		RawOpc: uint8(w.get(54, 5)),
	}
}

func (i *Cat5) Cat() isa.Category { return isa.Cat5 }

func (i *Cat5) Encode() uint64 {
	var w bitw

	w.set(0, i.Full)
	w.put(1, 8, uint64(i.Src1))
	w.put(9, 8, uint64(i.Src2))
	w.put(cat5HiLo, 15, uint64(i.Hi))
	w.put(32, 8, uint64(i.Dst))
	w.put(40, 4, uint64(i.Wrmask))
	w.put(44, 3, uint64(i.Type))
	w.set(47, i.BaseLo)
	w.set(48, i.Is3D)
	w.set(49, i.IsA)
	w.set(50, i.IsS)
	w.set(51, i.IsS2EN)
	w.set(52, i.IsO)
	w.set(53, i.IsP)
	w.put(54, 5, uint64(i.RawOpc))
	i.Header.put(&w)
	putCat(&w, isa.Cat5)

	return uint64(w)
}

func (i *Cat5) Opc() (isa.Opc, error) {
	return known(isa.Cat5, int(i.RawOpc))
}

func (i *Cat5) hi(lo, n uint) uint64 {
	return bitw(i.Hi).get(lo-cat5HiLo, n)
}

func (i *Cat5) setHi(lo, n uint, v uint64) {
	w := bitw(i.Hi)
	w.put(lo-cat5HiLo, n, v)
	i.Hi = uint16(w)
}

// normal form

func (i *Cat5) Dummy1() uint8 { return uint8(i.hi(17, 4)) }
func (i *Cat5) Samp() uint8   { return uint8(i.hi(21, 4)) }
func (i *Cat5) Tex() uint8    { return uint8(i.hi(25, 7)) }

func (i *Cat5) SetSampTex(samp, tex uint8) {
	i.setHi(21, 4, uint64(samp))
	i.setHi(25, 7, uint64(tex))
}

// s2en/bindless form

func (i *Cat5) S2ENPad() uint8 { return uint8(i.hi(17, 2)) }
func (i *Cat5) BaseHi() uint8  { return uint8(i.hi(19, 2)) }
func (i *Cat5) Src3() uint8    { return uint8(i.hi(21, 8)) }

func (i *Cat5) DescMode() isa.Cat5DescMode {
	return isa.Cat5DescMode(i.hi(29, 3))
}

func (i *Cat5) SetS2EN(src3 uint8, mode isa.Cat5DescMode, base uint8) {
	i.IsS2EN = true
	i.BaseLo = base&1 != 0
	i.setHi(19, 2, uint64(base>>1))
	i.setHi(21, 8, uint64(src3))
	i.setHi(29, 3, uint64(mode))
}

// Base is the bindless descriptor base: base_hi<<1 | base_lo.
func (i *Cat5) Base() uint8 {
	return i.BaseHi()<<1 | uint8(b2u(i.BaseLo))
}

type cat5Info struct {
	src1, src2, samp, tex bool
}

var cat5Infos = [32]cat5Info{
	isa.OpcIsam & 31:     {true, false, true, true},
	isa.OpcIsaml & 31:    {true, true, true, true},
	isa.OpcIsamm & 31:    {true, false, true, true},
	isa.OpcSam & 31:      {true, false, true, true},
	isa.OpcSamb & 31:     {true, true, true, true},
	isa.OpcSaml & 31:     {true, true, true, true},
	isa.OpcSamgq & 31:    {true, false, true, true},
	isa.OpcGetlod & 31:   {true, false, true, true},
	isa.OpcConv & 31:     {true, true, true, true},
	isa.OpcConvm & 31:    {true, true, true, true},
	isa.OpcGetsize & 31:  {true, false, false, true},
	isa.OpcGetbuf & 31:   {false, false, false, true},
	isa.OpcGetpos & 31:   {true, false, false, true},
	isa.OpcGetinfo & 31:  {false, false, false, true},
	isa.OpcDsx & 31:      {true, false, false, false},
	isa.OpcDsy & 31:      {true, false, false, false},
	isa.OpcGather4r & 31: {true, false, true, true},
	isa.OpcGather4g & 31: {true, false, true, true},
	isa.OpcGather4b & 31: {true, false, true, true},
	isa.OpcGather4a & 31: {true, false, true, true},
	isa.OpcSamgp0 & 31:   {true, false, true, true},
	isa.OpcSamgp1 & 31:   {true, false, true, true},
	isa.OpcSamgp2 & 31:   {true, false, true, true},
	isa.OpcSamgp3 & 31:   {true, false, true, true},
	isa.OpcDsxpp1 & 31:   {true, false, false, false},
	isa.OpcDsypp1 & 31:   {true, false, false, false},
	isa.OpcRgetpos & 31:  {true, false, false, false},
}

// Operands reports which operands the opcode uses.
// src2 is also used by the o and p variants.
func (i *Cat5) Operands() (src1, src2, samp, tex bool) {
	in := cat5Infos[i.RawOpc&0x1f]

	return in.src1, in.src2 || i.IsO || i.IsP, in.samp, in.tex
}
