package isa

import "tlog.app/go/tlog/tlwire"

type (
	// Type is the 3 bit operand type used by cat1, cat5 and cat6.
	Type uint8

	// Round is the cat1 rounding mode, even | pos_inf<<1.
	Round uint8

	// BrType is the cat0 branch type.
	BrType uint8

	// Cond is the cat2 compare condition.
	Cond uint8

	// Cat5DescMode selects how a bindless/s2en texture instruction
	// finds its sampler and texture.
	Cat5DescMode uint8

	// Cat6DescMode selects how an a6xx+ memory instruction finds its
	// descriptor.
	Cat6DescMode uint8

	// SrcMod is a set of source modifiers an opcode accepts.
	SrcMod uint8
)

const (
	TypeF16 Type = iota
	TypeF32
	TypeU16
	TypeU32
	TypeS16
	TypeS32
	TypeU8
	TypeS8
)

const (
	RoundZero Round = iota
	RoundEven
	RoundPosInf
	RoundNegInf
)

const (
	BranchPlain BrType = iota
	BranchOr
	BranchAnd
	BranchConst
	BranchAny
	BranchAll
	BranchX
)

const (
	CondLT Cond = iota
	CondLE
	CondGT
	CondGE
	CondEQ
	CondNE
)

const (
	Cat5Nonuniform Cat5DescMode = iota
	Cat5BindlessA1Uniform
	Cat5BindlessNonuniform
	Cat5BindlessA1Nonuniform
	Cat5Uniform
	Cat5BindlessUniform
	Cat5BindlessImm
	Cat5BindlessA1Imm
)

const (
	Cat6Imm                Cat6DescMode = 0
	Cat6Uniform            Cat6DescMode = 1
	Cat6Nonuniform         Cat6DescMode = 2
	Cat6BindlessImm        Cat6DescMode = 4
	Cat6BindlessUniform    Cat6DescMode = 5
	Cat6BindlessNonuniform Cat6DescMode = 6
)

const (
	ModFAbs SrcMod = 1 << iota
	ModFNeg
	ModSAbs
	ModSNeg
	ModBNot
)

var typeNames = [8]string{"f16", "f32", "u16", "u32", "s16", "s32", "u8", "s8"}

// Width is the width of t in bits: 8, 16 or 32.
func (t Type) Width() int {
	switch t & 7 {
	case TypeF32, TypeU32, TypeS32:
		return 32
	case TypeF16, TypeU16, TypeS16:
		return 16
	default:
		return 8
	}
}

func (t Type) Float() bool { return t == TypeF16 || t == TypeF32 }
func (t Type) Uint() bool  { return t == TypeU16 || t == TypeU32 || t == TypeU8 }
func (t Type) Sint() bool  { return t == TypeS16 || t == TypeS32 || t == TypeS8 }

// Full reports whether t lives in a full (32 bit) register.
func (t Type) Full() bool { return t.Width() == 32 }

func (t Type) String() string {
	return typeNames[t&7]
}

func (t Type) TlogAppend(b []byte) []byte {
	var e tlwire.LowEncoder

	return e.AppendString(b, t.String())
}

func (r Round) String() string {
	switch r & 3 {
	case RoundEven:
		return "(even)"
	case RoundPosInf:
		return "(pos_infinity)"
	case RoundNegInf:
		return "(neg_infinity)"
	default:
		return ""
	}
}

var brSuffix = [8]string{"r", "rao", "raa", "rac", "any", "all", "rax", ""}

// Opc maps the branch type to the logical branch opcode.
// ok is false for the reserved branch type 7.
func (t BrType) Opc() (op Opc, ok bool) {
	if t > BranchX {
		return OpcB, false
	}

	return OpcBr + Opc(t), true
}

// Srcs is the number of predicate sources the branch type reads.
func (t BrType) Srcs() int {
	switch t {
	case BranchPlain, BranchAny, BranchAll:
		return 1
	case BranchOr, BranchAnd:
		return 2
	default:
		return 0
	}
}

// Suffix is appended to "b" to form the mnemonic.
func (t BrType) Suffix() string { return brSuffix[t&7] }

// BranchType is the inverse of BrType.Opc.
func BranchType(op Opc) (BrType, bool) {
	if op < OpcBr || op > OpcBrax {
		return 0, false
	}

	return BrType(op - OpcBr), true
}

var condNames = [8]string{"lt", "le", "gt", "ge", "eq", "ne", "?6?", "?7?"}

func (c Cond) String() string { return condNames[c&7] }

// Bindless reports whether the mode reads descriptors from a bindless base.
func (m Cat5DescMode) Bindless() bool {
	switch m {
	case Cat5Nonuniform, Cat5Uniform:
		return false
	default:
		return true
	}
}

// A1 reports whether the base comes from a1.x.
func (m Cat5DescMode) A1() bool {
	return m == Cat5BindlessA1Uniform || m == Cat5BindlessA1Nonuniform || m == Cat5BindlessA1Imm
}

func (m Cat5DescMode) Uniform() bool {
	return m == Cat5BindlessA1Uniform || m == Cat5Uniform || m == Cat5BindlessUniform
}

func (m Cat5DescMode) Imm() bool {
	return m == Cat5BindlessImm || m == Cat5BindlessA1Imm
}

var cat6DescNames = [8]string{"imm", "uniform", "nonuniform", "?3?", "imm", "uniform", "nonuniform", "?7?"}

func (m Cat6DescMode) Valid() bool    { return m&7 != 3 && m&7 != 7 }
func (m Cat6DescMode) Bindless() bool { return m&4 != 0 }
func (m Cat6DescMode) Indirect() bool { return m&3 != 0 && m.Valid() }
func (m Cat6DescMode) String() string { return cat6DescNames[m&7] }
