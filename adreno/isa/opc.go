// Package isa describes the Adreno a3xx-a6xx shader instruction set:
// opcode catalogue, operand types, rounding and branch modes, descriptor
// modes and the pure predicates every other package consults.
package isa

type (
	// Category is the top level instruction class held in bits 61-63.
	Category int8

	// Opc is a (category, sub-opcode) pair packed as cat<<NOpcBits | sub.
	// Meta opcodes use the negative CatMeta category.
	Opc int16
)

const NOpcBits = 6

const (
	Cat0 Category = iota
	Cat1
	Cat2
	Cat3
	Cat4
	Cat5
	Cat6
	Cat7

	CatMeta Category = -1
)

// category 0: flow control
const (
	OpcNop     Opc = 0<<NOpcBits | 0
	OpcB       Opc = 0<<NOpcBits | 1
	OpcJump    Opc = 0<<NOpcBits | 2
	OpcCall    Opc = 0<<NOpcBits | 3
	OpcRet     Opc = 0<<NOpcBits | 4
	OpcKill    Opc = 0<<NOpcBits | 5
	OpcEnd     Opc = 0<<NOpcBits | 6
	OpcEmit    Opc = 0<<NOpcBits | 7
	OpcCut     Opc = 0<<NOpcBits | 8
	OpcChmask  Opc = 0<<NOpcBits | 9
	OpcChsh    Opc = 0<<NOpcBits | 10
	OpcFlowRev Opc = 0<<NOpcBits | 11

	OpcBkt    Opc = 0<<NOpcBits | 16
	OpcStks   Opc = 0<<NOpcBits | 17
	OpcStkr   Opc = 0<<NOpcBits | 18
	OpcXset   Opc = 0<<NOpcBits | 19
	OpcXclr   Opc = 0<<NOpcBits | 20
	OpcGetone Opc = 0<<NOpcBits | 21
	OpcDbg    Opc = 0<<NOpcBits | 22
	OpcShps   Opc = 0<<NOpcBits | 23
	OpcShpe   Opc = 0<<NOpcBits | 24

	OpcPredt Opc = 0<<NOpcBits | 29
	OpcPredf Opc = 0<<NOpcBits | 30
	OpcPrede Opc = 0<<NOpcBits | 31

	// logical branch variants of OpcB, selected by the branch type field
	OpcBr   Opc = 0<<NOpcBits | 40
	OpcBrao Opc = 0<<NOpcBits | 41
	OpcBraa Opc = 0<<NOpcBits | 42
	OpcBrac Opc = 0<<NOpcBits | 43
	OpcBany Opc = 0<<NOpcBits | 44
	OpcBall Opc = 0<<NOpcBits | 45
	OpcBrax Opc = 0<<NOpcBits | 46

	OpcDemote Opc = 0<<NOpcBits | 47
)

// DemoteHW is the hardware cat0 opcode a demote is encoded with.
// It is kill with bit 3 set.
const DemoteHW = 13

// category 1: mov
const (
	OpcMov    Opc = 1<<NOpcBits | 0
	OpcMovp   Opc = 1<<NOpcBits | 1
	OpcMovmsk Opc = 1<<NOpcBits | 3

	// sub-opcodes living in the repeat field when the opcode field is 2
	OpcSwz Opc = 1<<NOpcBits | 4
	OpcGat Opc = 1<<NOpcBits | 5
	OpcSct Opc = 1<<NOpcBits | 6

	OpcMovImmed    Opc = 1<<NOpcBits | 40
	OpcMovConst    Opc = 1<<NOpcBits | 41
	OpcMovGPR      Opc = 1<<NOpcBits | 42
	OpcMovRelGPR   Opc = 1<<NOpcBits | 43
	OpcMovRelConst Opc = 1<<NOpcBits | 44
)

// category 2: alu
const (
	OpcAddF    Opc = 2<<NOpcBits | 0
	OpcMinF    Opc = 2<<NOpcBits | 1
	OpcMaxF    Opc = 2<<NOpcBits | 2
	OpcMulF    Opc = 2<<NOpcBits | 3
	OpcSignF   Opc = 2<<NOpcBits | 4
	OpcCmpsF   Opc = 2<<NOpcBits | 5
	OpcAbsnegF Opc = 2<<NOpcBits | 6
	OpcCmpvF   Opc = 2<<NOpcBits | 7
	OpcFloorF  Opc = 2<<NOpcBits | 9
	OpcCeilF   Opc = 2<<NOpcBits | 10
	OpcRndneF  Opc = 2<<NOpcBits | 11
	OpcRndazF  Opc = 2<<NOpcBits | 12
	OpcTruncF  Opc = 2<<NOpcBits | 13

	OpcAddU    Opc = 2<<NOpcBits | 16
	OpcAddS    Opc = 2<<NOpcBits | 17
	OpcSubU    Opc = 2<<NOpcBits | 18
	OpcSubS    Opc = 2<<NOpcBits | 19
	OpcCmpsU   Opc = 2<<NOpcBits | 20
	OpcCmpsS   Opc = 2<<NOpcBits | 21
	OpcMinU    Opc = 2<<NOpcBits | 22
	OpcMinS    Opc = 2<<NOpcBits | 23
	OpcMaxU    Opc = 2<<NOpcBits | 24
	OpcMaxS    Opc = 2<<NOpcBits | 25
	OpcAbsnegS Opc = 2<<NOpcBits | 26

	OpcAndB Opc = 2<<NOpcBits | 28
	OpcOrB  Opc = 2<<NOpcBits | 29
	OpcNotB Opc = 2<<NOpcBits | 30
	OpcXorB Opc = 2<<NOpcBits | 31

	OpcCmpvU Opc = 2<<NOpcBits | 33
	OpcCmpvS Opc = 2<<NOpcBits | 34

	OpcMulU24  Opc = 2<<NOpcBits | 48
	OpcMulS24  Opc = 2<<NOpcBits | 49
	OpcMullU   Opc = 2<<NOpcBits | 50
	OpcBfrevB  Opc = 2<<NOpcBits | 51
	OpcClzS    Opc = 2<<NOpcBits | 52
	OpcClzB    Opc = 2<<NOpcBits | 53
	OpcShlB    Opc = 2<<NOpcBits | 54
	OpcShrB    Opc = 2<<NOpcBits | 55
	OpcAshrB   Opc = 2<<NOpcBits | 56
	OpcBaryF   Opc = 2<<NOpcBits | 57
	OpcMgenB   Opc = 2<<NOpcBits | 58
	OpcGetbitB Opc = 2<<NOpcBits | 59
	OpcSetrm   Opc = 2<<NOpcBits | 60
	OpcCbitsB  Opc = 2<<NOpcBits | 61
	OpcShb     Opc = 2<<NOpcBits | 62
	OpcMsad    Opc = 2<<NOpcBits | 63
)

// category 3: mad, sel, sad
const (
	OpcMadU16   Opc = 3<<NOpcBits | 0
	OpcMadshU16 Opc = 3<<NOpcBits | 1
	OpcMadS16   Opc = 3<<NOpcBits | 2
	OpcMadshM16 Opc = 3<<NOpcBits | 3
	OpcMadU24   Opc = 3<<NOpcBits | 4
	OpcMadS24   Opc = 3<<NOpcBits | 5
	OpcMadF16   Opc = 3<<NOpcBits | 6
	OpcMadF32   Opc = 3<<NOpcBits | 7
	OpcSelB16   Opc = 3<<NOpcBits | 8
	OpcSelB32   Opc = 3<<NOpcBits | 9
	OpcSelS16   Opc = 3<<NOpcBits | 10
	OpcSelS32   Opc = 3<<NOpcBits | 11
	OpcSelF16   Opc = 3<<NOpcBits | 12
	OpcSelF32   Opc = 3<<NOpcBits | 13
	OpcSadS16   Opc = 3<<NOpcBits | 14
	OpcSadS32   Opc = 3<<NOpcBits | 15
)

// category 4: sfu
const (
	OpcRcp  Opc = 4<<NOpcBits | 0
	OpcRsq  Opc = 4<<NOpcBits | 1
	OpcLog2 Opc = 4<<NOpcBits | 2
	OpcExp2 Opc = 4<<NOpcBits | 3
	OpcSin  Opc = 4<<NOpcBits | 4
	OpcCos  Opc = 4<<NOpcBits | 5
	OpcSqrt Opc = 4<<NOpcBits | 6

	// 8+opc of the highp variants
	OpcHrsq  Opc = 4<<NOpcBits | 9
	OpcHlog2 Opc = 4<<NOpcBits | 10
	OpcHexp2 Opc = 4<<NOpcBits | 11
)

// category 5: texture
const (
	OpcIsam     Opc = 5<<NOpcBits | 0
	OpcIsaml    Opc = 5<<NOpcBits | 1
	OpcIsamm    Opc = 5<<NOpcBits | 2
	OpcSam      Opc = 5<<NOpcBits | 3
	OpcSamb     Opc = 5<<NOpcBits | 4
	OpcSaml     Opc = 5<<NOpcBits | 5
	OpcSamgq    Opc = 5<<NOpcBits | 6
	OpcGetlod   Opc = 5<<NOpcBits | 7
	OpcConv     Opc = 5<<NOpcBits | 8
	OpcConvm    Opc = 5<<NOpcBits | 9
	OpcGetsize  Opc = 5<<NOpcBits | 10
	OpcGetbuf   Opc = 5<<NOpcBits | 11
	OpcGetpos   Opc = 5<<NOpcBits | 12
	OpcGetinfo  Opc = 5<<NOpcBits | 13
	OpcDsx      Opc = 5<<NOpcBits | 14
	OpcDsy      Opc = 5<<NOpcBits | 15
	OpcGather4r Opc = 5<<NOpcBits | 16
	OpcGather4g Opc = 5<<NOpcBits | 17
	OpcGather4b Opc = 5<<NOpcBits | 18
	OpcGather4a Opc = 5<<NOpcBits | 19
	OpcSamgp0   Opc = 5<<NOpcBits | 20
	OpcSamgp1   Opc = 5<<NOpcBits | 21
	OpcSamgp2   Opc = 5<<NOpcBits | 22
	OpcSamgp3   Opc = 5<<NOpcBits | 23
	OpcDsxpp1   Opc = 5<<NOpcBits | 24
	OpcDsypp1   Opc = 5<<NOpcBits | 25
	OpcRgetpos  Opc = 5<<NOpcBits | 26
	OpcRgetinfo Opc = 5<<NOpcBits | 27

	// macros above the 5 bit opcode space
	OpcDsxppMacro Opc = 5<<NOpcBits | 32
	OpcDsyppMacro Opc = 5<<NOpcBits | 33
)

// category 6: memory
const (
	OpcLdg      Opc = 6<<NOpcBits | 0
	OpcLdl      Opc = 6<<NOpcBits | 1
	OpcLdp      Opc = 6<<NOpcBits | 2
	OpcStg      Opc = 6<<NOpcBits | 3
	OpcStl      Opc = 6<<NOpcBits | 4
	OpcStp      Opc = 6<<NOpcBits | 5
	OpcLdib     Opc = 6<<NOpcBits | 6
	OpcG2l      Opc = 6<<NOpcBits | 7
	OpcL2g      Opc = 6<<NOpcBits | 8
	OpcPrefetch Opc = 6<<NOpcBits | 9
	OpcLdlw     Opc = 6<<NOpcBits | 10
	OpcStlw     Opc = 6<<NOpcBits | 11
	OpcResfmt   Opc = 6<<NOpcBits | 14
	OpcResinfo  Opc = 6<<NOpcBits | 15

	OpcAtomicAdd     Opc = 6<<NOpcBits | 16
	OpcAtomicSub     Opc = 6<<NOpcBits | 17
	OpcAtomicXchg    Opc = 6<<NOpcBits | 18
	OpcAtomicInc     Opc = 6<<NOpcBits | 19
	OpcAtomicDec     Opc = 6<<NOpcBits | 20
	OpcAtomicCmpxchg Opc = 6<<NOpcBits | 21
	OpcAtomicMin     Opc = 6<<NOpcBits | 22
	OpcAtomicMax     Opc = 6<<NOpcBits | 23
	OpcAtomicAnd     Opc = 6<<NOpcBits | 24
	OpcAtomicOr      Opc = 6<<NOpcBits | 25
	OpcAtomicXor     Opc = 6<<NOpcBits | 26

	OpcLdgb    Opc = 6<<NOpcBits | 27
	OpcStgb    Opc = 6<<NOpcBits | 28
	OpcStib    Opc = 6<<NOpcBits | 29
	OpcLdc     Opc = 6<<NOpcBits | 30
	OpcLdlv    Opc = 6<<NOpcBits | 31
	OpcPipr    Opc = 6<<NOpcBits | 32
	OpcPipc    Opc = 6<<NOpcBits | 33
	OpcEmit2   Opc = 6<<NOpcBits | 34
	OpcEndls   Opc = 6<<NOpcBits | 35
	OpcGetspid Opc = 6<<NOpcBits | 36
	OpcGetwid  Opc = 6<<NOpcBits | 37

	// logical opcodes for things that differ in a6xx+
	OpcStc      Opc = 6<<NOpcBits | 40
	OpcResinfoB Opc = 6<<NOpcBits | 41
	OpcLdibB    Opc = 6<<NOpcBits | 42
	OpcStibB    Opc = 6<<NOpcBits | 43

	OpcAtomicBAdd     Opc = 6<<NOpcBits | 44
	OpcAtomicBSub     Opc = 6<<NOpcBits | 45
	OpcAtomicBXchg    Opc = 6<<NOpcBits | 46
	OpcAtomicBInc     Opc = 6<<NOpcBits | 47
	OpcAtomicBDec     Opc = 6<<NOpcBits | 48
	OpcAtomicBCmpxchg Opc = 6<<NOpcBits | 49
	OpcAtomicBMin     Opc = 6<<NOpcBits | 50
	OpcAtomicBMax     Opc = 6<<NOpcBits | 51
	OpcAtomicBAnd     Opc = 6<<NOpcBits | 52
	OpcAtomicBOr      Opc = 6<<NOpcBits | 53
	OpcAtomicBXor     Opc = 6<<NOpcBits | 54

	OpcLdgA Opc = 6<<NOpcBits | 55
	OpcStgA Opc = 6<<NOpcBits | 56
)

// category 7: barrier
const (
	OpcBar   Opc = 7<<NOpcBits | 0
	OpcFence Opc = 7<<NOpcBits | 1
)

// meta instructions, IR only
const (
	OpcMetaInput        Opc = -1<<NOpcBits | 0
	OpcMetaSplit        Opc = -1<<NOpcBits | 2
	OpcMetaCollect      Opc = -1<<NOpcBits | 3
	OpcMetaTexPrefetch  Opc = -1<<NOpcBits | 4
	OpcMetaParallelCopy Opc = -1<<NOpcBits | 5
	OpcMetaPhi          Opc = -1<<NOpcBits | 6
)

func MakeOpc(cat Category, sub int) Opc {
	return Opc(int(cat)<<NOpcBits | sub&(1<<NOpcBits-1))
}

func (op Opc) Cat() Category {
	return Category(op >> NOpcBits)
}

// Sub returns the sub-opcode, the low NOpcBits of op.
func (op Opc) Sub() uint8 {
	return uint8(op & (1<<NOpcBits - 1))
}

func (c Category) Valid() bool {
	return c >= Cat0 && c <= Cat7 || c == CatMeta
}
