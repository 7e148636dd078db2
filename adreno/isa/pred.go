package isa

func IsFlow(op Opc) bool    { return op.Cat() == Cat0 }
func IsALU(op Opc) bool     { return op.Cat() >= Cat1 && op.Cat() <= Cat3 }
func IsSFU(op Opc) bool     { return op.Cat() == Cat4 }
func IsTex(op Opc) bool     { return op.Cat() == Cat5 }
func IsMem(op Opc) bool     { return op.Cat() == Cat6 }
func IsBarrier(op Opc) bool { return op.Cat() == Cat7 }
func IsMeta(op Opc) bool    { return op.Cat() == CatMeta }

func IsMad(op Opc) bool {
	switch op {
	case OpcMadU16, OpcMadshU16, OpcMadS16, OpcMadshM16,
		OpcMadU24, OpcMadS24, OpcMadF16, OpcMadF32:
		return true
	default:
		return false
	}
}

func IsAtomic(op Opc) bool {
	switch {
	case op >= OpcAtomicAdd && op <= OpcAtomicXor:
		return true
	case op >= OpcAtomicBAdd && op <= OpcAtomicBXor:
		return true
	default:
		return false
	}
}

// IsSSBO reports whether op addresses memory through an ssbo/ibo binding.
func IsSSBO(op Opc) bool {
	switch op {
	case OpcResfmt, OpcResinfo, OpcLdgb, OpcStgb, OpcLdib, OpcStib,
		OpcResinfoB, OpcLdibB, OpcStibB:
		return true
	default:
		return false
	}
}

func IsIsam(op Opc) bool {
	return op == OpcIsam || op == OpcIsaml || op == OpcIsamm
}

func IsCat2Float(op Opc) bool {
	switch op {
	case OpcAddF, OpcMinF, OpcMaxF, OpcMulF, OpcSignF, OpcCmpsF,
		OpcAbsnegF, OpcCmpvF, OpcFloorF, OpcCeilF, OpcRndneF,
		OpcRndazF, OpcTruncF:
		return true
	default:
		return false
	}
}

func IsCat3Float(op Opc) bool {
	switch op {
	case OpcMadF16, OpcMadF32, OpcSelF16, OpcSelF32:
		return true
	default:
		return false
	}
}

func IsSel(op Opc) bool {
	return op >= OpcSelB16 && op <= OpcSelF32
}

// IsSatCompatible reports whether (sat) may be set on op.
func IsSatCompatible(op Opc) bool {
	switch op.Cat() {
	case Cat2:
		return op != OpcBaryF
	case Cat3:
		return !IsSel(op)
	default:
		return false
	}
}

func IsStore(op Opc) bool {
	switch op {
	case OpcStg, OpcStgA, OpcStgb, OpcStib, OpcStp, OpcStl, OpcStlw,
		OpcL2g, OpcG2l, OpcStibB, OpcStc:
		return true
	default:
		return false
	}
}

func IsLoad(op Opc) bool {
	switch op {
	case OpcLdg, OpcLdgA, OpcLdgb, OpcLdib, OpcLdl, OpcLdp, OpcL2g,
		OpcLdlw, OpcLdc, OpcLdlv, OpcLdibB:
		return true
	default:
		return IsTex(op)
	}
}

var cat3Half = map[Opc]Opc{
	OpcMadF32: OpcMadF16,
	OpcSelB32: OpcSelB16,
	OpcSelS32: OpcSelS16,
	OpcSelF32: OpcSelF16,
	OpcSadS32: OpcSadS16,
}

var cat3Full = invert(cat3Half)

var cat4Half = map[Opc]Opc{
	OpcRsq:  OpcHrsq,
	OpcLog2: OpcHlog2,
	OpcExp2: OpcHexp2,
}

var cat4Full = invert(cat4Half)

// Cat3Half returns the half precision variant of a cat3 opcode.
// Opcodes without one are returned unchanged.
func Cat3Half(op Opc) Opc { return lookup(cat3Half, op) }
func Cat3Full(op Opc) Opc { return lookup(cat3Full, op) }
func Cat4Half(op Opc) Opc { return lookup(cat4Half, op) }
func Cat4Full(op Opc) Opc { return lookup(cat4Full, op) }

// Cat3IsFull reports whether a cat3 opcode implies full precision operands.
// sad.s32 is treated as full precision.
func Cat3IsFull(op Opc) bool {
	switch op {
	case OpcMadF16, OpcMadU16, OpcMadS16,
		OpcSelB16, OpcSelS16, OpcSelF16,
		OpcSadS16:
		return false
	default:
		return true
	}
}

// Cat2AbsNeg is the set of source modifiers a cat2 opcode accepts.
func Cat2AbsNeg(op Opc) SrcMod {
	switch op {
	case OpcAddF, OpcMinF, OpcMaxF, OpcMulF, OpcSignF, OpcCmpsF,
		OpcAbsnegF, OpcCmpvF, OpcFloorF, OpcCeilF, OpcRndneF,
		OpcRndazF, OpcTruncF, OpcBaryF:
		return ModFAbs | ModFNeg
	case OpcAbsnegS:
		return ModSAbs | ModSNeg
	case OpcAndB, OpcOrB, OpcNotB, OpcXorB, OpcBfrevB, OpcClzB,
		OpcShlB, OpcShrB, OpcAshrB, OpcMgenB, OpcGetbitB, OpcCbitsB:
		return ModBNot
	default:
		return 0
	}
}

// Cat3AbsNeg is the set of source modifiers a cat3 opcode accepts.
// Abs is never encodable for cat3.
func Cat3AbsNeg(op Opc) SrcMod {
	switch op {
	case OpcMadF16, OpcMadF32, OpcSelF16, OpcSelF32:
		return ModFNeg
	case OpcMadU16, OpcMadshU16, OpcMadS16, OpcMadshM16,
		OpcMadU24, OpcMadS24, OpcSelS16, OpcSelS32,
		OpcSadS16, OpcSadS32:
		return ModSNeg
	default:
		return 0
	}
}

func lookup(m map[Opc]Opc, op Opc) Opc {
	if r, ok := m[op]; ok {
		return r
	}

	return op
}

func invert(m map[Opc]Opc) map[Opc]Opc {
	r := make(map[Opc]Opc, len(m))

	for k, v := range m {
		r[v] = k
	}

	return r
}
