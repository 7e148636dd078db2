package isa

import "tlog.app/go/tlog/tlwire"

var opcNames = map[Opc]string{
	OpcNop: "nop", OpcB: "b", OpcJump: "jump", OpcCall: "call", OpcRet: "ret",
	OpcKill: "kill", OpcEnd: "end", OpcEmit: "emit", OpcCut: "cut",
	OpcChmask: "chmask", OpcChsh: "chsh", OpcFlowRev: "flow_rev",
	OpcBkt: "bkt", OpcStks: "stks", OpcStkr: "stkr", OpcXset: "xset",
	OpcXclr: "xclr", OpcGetone: "getone", OpcDbg: "dbg", OpcShps: "shps",
	OpcShpe: "shpe", OpcPredt: "predt", OpcPredf: "predf", OpcPrede: "prede",
	OpcBr: "br", OpcBrao: "brao", OpcBraa: "braa", OpcBrac: "brac",
	OpcBany: "bany", OpcBall: "ball", OpcBrax: "brax", OpcDemote: "demote",

	OpcMov: "mov", OpcMovp: "movp", OpcMovmsk: "movmsk",
	OpcSwz: "swz", OpcGat: "gat", OpcSct: "sct",
	OpcMovImmed: "mov", OpcMovConst: "mov", OpcMovGPR: "mov",
	OpcMovRelGPR: "mov", OpcMovRelConst: "mov",

	OpcAddF: "add.f", OpcMinF: "min.f", OpcMaxF: "max.f", OpcMulF: "mul.f",
	OpcSignF: "sign.f", OpcCmpsF: "cmps.f", OpcAbsnegF: "absneg.f",
	OpcCmpvF: "cmpv.f", OpcFloorF: "floor.f", OpcCeilF: "ceil.f",
	OpcRndneF: "rndne.f", OpcRndazF: "rndaz.f", OpcTruncF: "trunc.f",
	OpcAddU: "add.u", OpcAddS: "add.s", OpcSubU: "sub.u", OpcSubS: "sub.s",
	OpcCmpsU: "cmps.u", OpcCmpsS: "cmps.s", OpcMinU: "min.u", OpcMinS: "min.s",
	OpcMaxU: "max.u", OpcMaxS: "max.s", OpcAbsnegS: "absneg.s",
	OpcAndB: "and.b", OpcOrB: "or.b", OpcNotB: "not.b", OpcXorB: "xor.b",
	OpcCmpvU: "cmpv.u", OpcCmpvS: "cmpv.s",
	OpcMulU24: "mul.u24", OpcMulS24: "mul.s24", OpcMullU: "mull.u",
	OpcBfrevB: "bfrev.b", OpcClzS: "clz.s", OpcClzB: "clz.b",
	OpcShlB: "shl.b", OpcShrB: "shr.b", OpcAshrB: "ashr.b",
	OpcBaryF: "bary.f", OpcMgenB: "mgen.b", OpcGetbitB: "getbit.b",
	OpcSetrm: "setrm", OpcCbitsB: "cbits.b", OpcShb: "shb", OpcMsad: "msad",

	OpcMadU16: "mad.u16", OpcMadshU16: "madsh.u16", OpcMadS16: "mad.s16",
	OpcMadshM16: "madsh.m16", OpcMadU24: "mad.u24", OpcMadS24: "mad.s24",
	OpcMadF16: "mad.f16", OpcMadF32: "mad.f32",
	OpcSelB16: "sel.b16", OpcSelB32: "sel.b32", OpcSelS16: "sel.s16",
	OpcSelS32: "sel.s32", OpcSelF16: "sel.f16", OpcSelF32: "sel.f32",
	OpcSadS16: "sad.s16", OpcSadS32: "sad.s32",

	OpcRcp: "rcp", OpcRsq: "rsq", OpcLog2: "log2", OpcExp2: "exp2",
	OpcSin: "sin", OpcCos: "cos", OpcSqrt: "sqrt",
	OpcHrsq: "hrsq", OpcHlog2: "hlog2", OpcHexp2: "hexp2",

	OpcIsam: "isam", OpcIsaml: "isaml", OpcIsamm: "isamm", OpcSam: "sam",
	OpcSamb: "samb", OpcSaml: "saml", OpcSamgq: "samgq", OpcGetlod: "getlod",
	OpcConv: "conv", OpcConvm: "convm", OpcGetsize: "getsize",
	OpcGetbuf: "getbuf", OpcGetpos: "getpos", OpcGetinfo: "getinfo",
	OpcDsx: "dsx", OpcDsy: "dsy",
	OpcGather4r: "gather4r", OpcGather4g: "gather4g",
	OpcGather4b: "gather4b", OpcGather4a: "gather4a",
	OpcSamgp0: "samgp0", OpcSamgp1: "samgp1", OpcSamgp2: "samgp2", OpcSamgp3: "samgp3",
	OpcDsxpp1: "dsxpp.1", OpcDsypp1: "dsypp.1",
	OpcRgetpos: "rgetpos", OpcRgetinfo: "rgetinfo",
	OpcDsxppMacro: "dsxpp.macro", OpcDsyppMacro: "dsypp.macro",

	OpcLdg: "ldg", OpcLdl: "ldl", OpcLdp: "ldp", OpcStg: "stg", OpcStl: "stl",
	OpcStp: "stp", OpcLdib: "ldib", OpcG2l: "g2l", OpcL2g: "l2g",
	OpcPrefetch: "prefetch", OpcLdlw: "ldlw", OpcStlw: "stlw",
	OpcResfmt: "resfmt", OpcResinfo: "resinfo",
	OpcAtomicAdd: "atomic.add", OpcAtomicSub: "atomic.sub",
	OpcAtomicXchg: "atomic.xchg", OpcAtomicInc: "atomic.inc",
	OpcAtomicDec: "atomic.dec", OpcAtomicCmpxchg: "atomic.cmpxchg",
	OpcAtomicMin: "atomic.min", OpcAtomicMax: "atomic.max",
	OpcAtomicAnd: "atomic.and", OpcAtomicOr: "atomic.or", OpcAtomicXor: "atomic.xor",
	OpcLdgb: "ldgb", OpcStgb: "stgb", OpcStib: "stib", OpcLdc: "ldc", OpcLdlv: "ldlv",
	OpcPipr: "pipr", OpcPipc: "pipc", OpcEmit2: "emit2", OpcEndls: "endls",
	OpcGetspid: "getspid", OpcGetwid: "getwid",
	OpcStc: "stc", OpcResinfoB: "resinfo.b", OpcLdibB: "ldib.b", OpcStibB: "stib.b",
	OpcAtomicBAdd: "atomic.b.add", OpcAtomicBSub: "atomic.b.sub",
	OpcAtomicBXchg: "atomic.b.xchg", OpcAtomicBInc: "atomic.b.inc",
	OpcAtomicBDec: "atomic.b.dec", OpcAtomicBCmpxchg: "atomic.b.cmpxchg",
	OpcAtomicBMin: "atomic.b.min", OpcAtomicBMax: "atomic.b.max",
	OpcAtomicBAnd: "atomic.b.and", OpcAtomicBOr: "atomic.b.or",
	OpcAtomicBXor: "atomic.b.xor",
	OpcLdgA: "ldg.a", OpcStgA: "stg.a",

	OpcBar: "bar", OpcFence: "fence",
}

var metaNames = map[Opc]string{
	OpcMetaInput:        "meta:input",
	OpcMetaSplit:        "meta:split",
	OpcMetaCollect:      "meta:collect",
	OpcMetaTexPrefetch:  "meta:tex_prefetch",
	OpcMetaParallelCopy: "meta:parallel_copy",
	OpcMetaPhi:          "meta:phi",
}

// Name returns the mnemonic of op, "??meta??" for meta opcodes
// and "???" for holes in the hardware opcode space.
func Name(op Opc) string {
	if op.Cat() == CatMeta {
		return "??meta??"
	}

	if n, ok := opcNames[op]; ok {
		return n
	}

	return "???"
}

// Known reports whether op is in the catalogue.
func Known(op Opc) bool {
	if _, ok := opcNames[op]; ok {
		return true
	}

	_, ok := metaNames[op]

	return ok
}

func (op Opc) String() string {
	if n, ok := metaNames[op]; ok {
		return n
	}

	return Name(op)
}

func (op Opc) TlogAppend(b []byte) []byte {
	var e tlwire.LowEncoder

	return e.AppendString(b, op.String())
}

// Opcodes returns every catalogued opcode of category c in sub-opcode order.
func Opcodes(c Category) (l []Opc) {
	names := opcNames
	if c == CatMeta {
		names = metaNames
	}

	for sub := 0; sub < 1<<NOpcBits; sub++ {
		op := MakeOpc(c, sub)

		if _, ok := names[op]; ok {
			l = append(l, op)
		}
	}

	return l
}
