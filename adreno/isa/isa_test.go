package isa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestOpcPacking(t *testing.T) {
	assert.Equal(t, Cat2, OpcAddF.Cat())
	assert.Equal(t, uint8(0), OpcAddF.Sub())
	assert.Equal(t, Cat6, OpcAtomicBXor.Cat())
	assert.Equal(t, uint8(54), OpcAtomicBXor.Sub())

	assert.Equal(t, CatMeta, OpcMetaPhi.Cat())
	assert.Equal(t, uint8(6), OpcMetaPhi.Sub())

	assert.Equal(t, OpcSam, MakeOpc(Cat5, 3))
	assert.Equal(t, OpcMetaSplit, MakeOpc(CatMeta, 2))
}

func TestCategoryTotality(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cat := Category(rapid.IntRange(-1, 7).Draw(t, "cat"))
		sub := rapid.IntRange(0, 1<<NOpcBits-1).Draw(t, "sub")

		op := MakeOpc(cat, sub)

		require.Equal(t, cat, op.Cat())
		require.Equal(t, uint8(sub), op.Sub())
		require.True(t, op.Cat().Valid())
	})
}

func TestNames(t *testing.T) {
	assert.Equal(t, "nop", Name(OpcNop))
	assert.Equal(t, "add.f", Name(OpcAddF))
	assert.Equal(t, "mad.f32", Name(OpcMadF32))
	assert.Equal(t, "atomic.b.cmpxchg", Name(OpcAtomicBCmpxchg))
	assert.Equal(t, "??meta??", Name(OpcMetaPhi))
	assert.Equal(t, "???", Name(MakeOpc(Cat2, 8)))

	assert.Equal(t, "meta:phi", OpcMetaPhi.String())
	assert.Equal(t, "rsq", OpcRsq.String())

	for c := CatMeta; c <= Cat7; c++ {
		for _, op := range Opcodes(c) {
			assert.True(t, Known(op), "%v", op)
			assert.Equal(t, c, op.Cat())
		}
	}

	assert.Len(t, Opcodes(Cat3), 16)
	assert.Len(t, Opcodes(CatMeta), 6)
}

func TestTypes(t *testing.T) {
	for _, tc := range []struct {
		t     Type
		w     int
		float bool
		uint  bool
		sint  bool
	}{
		{TypeF16, 16, true, false, false},
		{TypeF32, 32, true, false, false},
		{TypeU16, 16, false, true, false},
		{TypeU32, 32, false, true, false},
		{TypeS16, 16, false, false, true},
		{TypeS32, 32, false, false, true},
		{TypeU8, 8, false, true, false},
		{TypeS8, 8, false, false, true},
	} {
		assert.Equal(t, tc.w, tc.t.Width(), "%v", tc.t)
		assert.Equal(t, tc.float, tc.t.Float(), "%v", tc.t)
		assert.Equal(t, tc.uint, tc.t.Uint(), "%v", tc.t)
		assert.Equal(t, tc.sint, tc.t.Sint(), "%v", tc.t)
	}
}

func TestBranchTypes(t *testing.T) {
	for bt := BranchPlain; bt <= BranchX; bt++ {
		op, ok := bt.Opc()
		require.True(t, ok)

		back, ok := BranchType(op)
		require.True(t, ok)
		assert.Equal(t, bt, back)
		assert.Equal(t, "b"+bt.Suffix(), Name(op))
	}

	_, ok := BrType(7).Opc()
	assert.False(t, ok)

	_, ok = BranchType(OpcJump)
	assert.False(t, ok)
}

func TestDescModes(t *testing.T) {
	assert.False(t, Cat5Nonuniform.Bindless())
	assert.False(t, Cat5Uniform.Bindless())
	assert.True(t, Cat5BindlessA1Imm.Bindless())
	assert.True(t, Cat5BindlessA1Imm.A1())
	assert.True(t, Cat5BindlessA1Imm.Imm())
	assert.True(t, Cat5BindlessUniform.Uniform())

	assert.True(t, Cat6BindlessNonuniform.Bindless())
	assert.True(t, Cat6BindlessNonuniform.Indirect())
	assert.False(t, Cat6Imm.Indirect())
	assert.False(t, Cat6DescMode(3).Valid())
}

func TestPredicates(t *testing.T) {
	assert.True(t, IsFlow(OpcBr))
	assert.True(t, IsALU(OpcMov))
	assert.True(t, IsALU(OpcSelF32))
	assert.True(t, IsSFU(OpcSin))
	assert.True(t, IsTex(OpcSam))
	assert.True(t, IsMem(OpcLdg))
	assert.True(t, IsBarrier(OpcFence))
	assert.True(t, IsMeta(OpcMetaCollect))

	assert.True(t, IsMad(OpcMadshM16))
	assert.False(t, IsMad(OpcSelB32))
	assert.True(t, IsAtomic(OpcAtomicCmpxchg))
	assert.True(t, IsAtomic(OpcAtomicBOr))
	assert.False(t, IsAtomic(OpcLdgb))
	assert.True(t, IsSSBO(OpcStgb))
	assert.True(t, IsIsam(OpcIsaml))

	assert.True(t, IsCat2Float(OpcTruncF))
	assert.False(t, IsCat2Float(OpcBaryF))
	assert.True(t, IsCat3Float(OpcSelF16))

	assert.True(t, IsStore(OpcStgA))
	assert.True(t, IsLoad(OpcLdlv))
	assert.True(t, IsLoad(OpcSam))
}

func TestSatCompatible(t *testing.T) {
	assert.True(t, IsSatCompatible(OpcAddF))
	assert.True(t, IsSatCompatible(OpcMadF32))
	assert.False(t, IsSatCompatible(OpcBaryF))
	assert.False(t, IsSatCompatible(OpcSelB32))
	assert.False(t, IsSatCompatible(OpcSelF16))
	assert.False(t, IsSatCompatible(OpcRsq))
	assert.False(t, IsSatCompatible(OpcMov))
}

func TestHalfFull(t *testing.T) {
	assert.Equal(t, OpcMadF16, Cat3Half(OpcMadF32))
	assert.Equal(t, OpcMadF32, Cat3Full(OpcMadF16))
	assert.Equal(t, OpcSelB16, Cat3Half(OpcSelB32))
	assert.Equal(t, OpcMadshM16, Cat3Half(OpcMadshM16))

	// integer mad has no half/full pair
	for _, op := range []Opc{OpcMadU16, OpcMadS16, OpcMadU24, OpcMadS24} {
		assert.Equal(t, op, Cat3Half(op), "%v", op)
		assert.Equal(t, op, Cat3Full(op), "%v", op)
	}

	assert.Equal(t, OpcHrsq, Cat4Half(OpcRsq))
	assert.Equal(t, OpcLog2, Cat4Full(OpcHlog2))
	assert.Equal(t, OpcHexp2, Cat4Half(OpcExp2))
	assert.Equal(t, OpcSin, Cat4Half(OpcSin))

	for _, op := range Opcodes(Cat3) {
		if h := Cat3Half(op); h != op {
			assert.Equal(t, op, Cat3Full(h), "%v", op)
		}
	}

	assert.False(t, Cat3IsFull(OpcMadF16))
	assert.False(t, Cat3IsFull(OpcSadS16))
	assert.True(t, Cat3IsFull(OpcSadS32))
	assert.True(t, Cat3IsFull(OpcMadshU16))
}

func TestAbsNeg(t *testing.T) {
	assert.Equal(t, ModFAbs|ModFNeg, Cat2AbsNeg(OpcBaryF))
	assert.Equal(t, ModSAbs|ModSNeg, Cat2AbsNeg(OpcAbsnegS))
	assert.Equal(t, ModBNot, Cat2AbsNeg(OpcShlB))
	assert.Equal(t, SrcMod(0), Cat2AbsNeg(OpcAddU))

	assert.Equal(t, ModFNeg, Cat3AbsNeg(OpcMadF32))
	assert.Equal(t, ModSNeg, Cat3AbsNeg(OpcMadS24))
	assert.Equal(t, SrcMod(0), Cat3AbsNeg(OpcSelB32))
}

func TestRegs(t *testing.T) {
	r := Reg(2, 1)

	assert.Equal(t, RegID(9), r)
	assert.Equal(t, 2, r.Num())
	assert.Equal(t, 1, r.Comp())
	assert.Equal(t, "r2.y", r.String())

	assert.Equal(t, RegID(63<<2), InvalidReg)
	assert.False(t, InvalidReg.Valid())

	assert.True(t, Reg(RegA0, 0).IsAddr())
	assert.True(t, Reg(RegP0, 0).IsPred())
	assert.True(t, Reg(48, 0).IsShared())
	assert.False(t, Reg(47, 3).IsShared())

	assert.Equal(t, "hr3.w", string(AppendReg(nil, Reg(3, 3), true, false)))
	assert.Equal(t, "c10.z", string(AppendReg(nil, Reg(10, 2), false, true)))
	assert.Equal(t, "a1.x", string(AppendReg(nil, Reg(RegA0, 1), false, false)))
	assert.Equal(t, "p0.x", string(AppendReg(nil, Reg(RegP0, 0), false, false)))
}
