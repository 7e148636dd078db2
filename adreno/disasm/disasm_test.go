package disasm

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/slowlang/adreno/adreno/codec"
	"github.com/slowlang/adreno/adreno/isa"
)

func dwords(l ...codec.Instr) []uint32 {
	dw := make([]uint32, 0, 2*len(l))

	for _, i := range l {
		lo, hi := codec.Split(i.Encode())
		dw = append(dw, lo, hi)
	}

	return dw
}

func cat0(op isa.Opc) *codec.Cat0 {
	i := &codec.Cat0{GPUID: 530}
	i.SetHWOpc(int(op.Sub()))

	return i
}

func branch(off int) *codec.Cat0 {
	i := cat0(isa.OpcB)
	i.BrType = isa.BranchPlain
	i.SetOffset(off)

	return i
}

func alu(op isa.Opc, dst, src1, src2 isa.RegID) *codec.Cat2 {
	return &codec.Cat2{
		RawOpc: op.Sub(),
		Full:   true,
		Dst:    uint8(dst),
		Src1:   codec.RegSrc(src1),
		Src2:   codec.RegSrc(src2),
	}
}

func dis(t testing.TB, gpu int, dw []uint32) (string, Stats) {
	t.Helper()

	var b bytes.Buffer
	var st Stats

	_, err := DisasmStat(context.Background(), &b, dw, Options{GPUID: gpu}, &st)
	require.NoError(t, err)

	return b.String(), st
}

func TestSingleNop(t *testing.T) {
	text, st := dis(t, 530, []uint32{0, 0})

	assert.Equal(t, "nop\n", text)
	assert.Equal(t, 1, st.InstrsCount)
	assert.Equal(t, 1, st.NopsCount)
	assert.Equal(t, 1, st.InstrsPerCat[0])
	assert.Equal(t, -1, st.MaxReg)
	assert.Equal(t, -1, st.LastBaryf)
}

func TestMov(t *testing.T) {
	mov := &codec.Cat1{
		Src:     uint32(isa.Reg(2, 1)),
		Dst:     uint8(isa.Reg(1, 0)),
		SrcType: isa.TypeF32,
		DstType: isa.TypeF32,
	}

	text, st := dis(t, 530, dwords(mov))

	assert.Equal(t, "mov.f32f32 r1.x, r2.y\n", text)
	assert.Equal(t, 1, st.MovCount)
	assert.Equal(t, 0, st.CovCount)
	assert.Equal(t, 2, st.MaxReg)
	assert.Equal(t, -1, st.MaxHalfReg)
	assert.True(t, st.UsedRegs.IsSet(int(isa.Reg(2, 1))))

	mov.SrcType = isa.TypeF16

	text, st = dis(t, 530, dwords(mov))

	assert.Equal(t, "mov.f16f32 r1.x, hr2.y\n", text)
	assert.Equal(t, 0, st.MovCount)
	assert.Equal(t, 1, st.CovCount)
	assert.Equal(t, 1, st.MaxReg)
	assert.GreaterOrEqual(t, st.MaxHalfReg, 2)
}

func TestMovImmediate(t *testing.T) {
	mov := &codec.Cat1{
		Src:     0x2a,
		SrcIm:   true,
		Dst:     uint8(isa.Reg(0, 3)),
		SrcType: isa.TypeU32,
		DstType: isa.TypeU32,
	}

	text, st := dis(t, 530, dwords(mov))

	assert.Equal(t, "mov.u32u32 r0.w, 0x2a\n", text)
	assert.Equal(t, 0, st.MaxReg)
}

func TestSFUStall(t *testing.T) {
	rsq := &codec.Cat4{
		RawOpc: isa.OpcRsq.Sub(),
		Full:   true,
		Dst:    uint8(isa.Reg(1, 0)),
		Src:    codec.RegSrc(isa.Reg(2, 0)),
	}

	add := alu(isa.OpcAddF, isa.Reg(3, 0), isa.Reg(1, 0), isa.Reg(4, 0))
	add.SS = true

	text, st := dis(t, 530, dwords(rsq, add))

	assert.Equal(t, "rsq r1.x, r2.x\n(ss) add.f r3.x, r1.x, r4.x\n", text)
	assert.Equal(t, 1, st.SS)
	assert.Equal(t, 9, st.SStall)
	assert.Equal(t, 2, st.InstrsCount)
}

func TestSFUStallModel(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		l := []codec.Instr{
			&codec.Cat4{RawOpc: isa.OpcRcp.Sub(), Full: true},
		}

		n := rapid.IntRange(0, 6).Draw(t, "n")
		sum := 0

		for k := 0; k <= n; k++ {
			i := alu(isa.OpcMulF, 0, 0, 0)

			i.Repeat = uint8(rapid.IntRange(0, 3).Draw(t, "rpt"))
			if i.Repeat == 0 {
				nop := rapid.IntRange(0, 3).Draw(t, "nop")
				i.Src1R = nop&1 != 0
				i.Src2R = nop&2 != 0
			}

			i.SS = k == n

			sum += 1 + int(i.Repeat) + i.Nop()
			l = append(l, i)
		}

		var b bytes.Buffer
		var st Stats

		_, err := DisasmStat(context.Background(), &b, dwords(l...), Options{GPUID: 530}, &st)
		if err != nil {
			t.Fatalf("disasm: %v", err)
		}

		if exp := max(0, sfuDelay-sum); st.SStall != exp {
			t.Fatalf("sstall %d, want %d", st.SStall, exp)
		}
	})
}

func TestLastBaryf(t *testing.T) {
	var l []codec.Instr

	for n := 0; n < 12; n++ {
		op := isa.OpcAddF
		if n == 4 || n == 11 {
			op = isa.OpcBaryF
		}

		l = append(l, alu(op, isa.Reg(n, 0), 0, 0))
	}

	l = append(l, &codec.Cat5{RawOpc: isa.OpcSam.Sub(), Full: true, Wrmask: 0xf, Type: isa.TypeF32})

	text, st := dis(t, 530, dwords(l...))

	assert.Equal(t, 11, st.LastBaryf)
	assert.Equal(t, 12, st.InstrsPerCat[2])
	assert.Equal(t, 1, st.InstrsPerCat[5])
	assert.Contains(t, text, "bary.f r11.x, r0.x, r0.x\n")
	assert.Contains(t, text, "sam (f32)(xyzw)r0.x, r0.x, s#0, t#0\n")
}

func TestEndHalts(t *testing.T) {
	nop := cat0(isa.OpcNop)
	end := cat0(isa.OpcEnd)

	var b bytes.Buffer
	var st Stats

	status, err := DisasmStat(context.Background(), &b, dwords(end, nop, nop, nop, nop), Options{GPUID: 530}, &st)
	require.NoError(t, err)

	assert.Equal(t, StatusEnd, status)
	assert.Equal(t, 4, st.InstrsCount)
	assert.Equal(t, 3, st.NopsCount)
	assert.Equal(t, "end\nnop\nnop\nnop\n", b.String())

	// a non-nop resets the trailing nop counter
	add := alu(isa.OpcAddF, 0, 0, 0)

	status, err = DisasmStat(context.Background(), &b, dwords(end, nop, nop, add, nop, nop, nop), Options{GPUID: 530}, &st)
	require.NoError(t, err)

	assert.Equal(t, StatusEOF, status)
	assert.Equal(t, 7, st.InstrsCount)
}

func TestChshHalts(t *testing.T) {
	nop := cat0(isa.OpcNop)

	var b bytes.Buffer
	var st Stats

	status, err := DisasmStat(context.Background(), &b, dwords(nop, cat0(isa.OpcChsh), nop), Options{GPUID: 530}, &st)
	require.NoError(t, err)

	assert.Equal(t, StatusEnd, status)
	assert.Equal(t, 2, st.InstrsCount)
	assert.Equal(t, "nop\nchsh\n", b.String())
}

func TestStatsConsistency(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		raw := rapid.SliceOfN(rapid.Uint64(), 1, 32).Draw(t, "words")
		gpu := rapid.SampledFrom([]int{320, 430, 530, 630}).Draw(t, "gpu")

		rpt := 0
		dw := make([]uint32, 0, 2*len(raw))

		for _, w := range raw {
			cat := uint64(rapid.IntRange(1, 4).Draw(t, "cat"))
			w = w&^(7<<61) | cat<<61

			i, _ := codec.Decode(w, gpu)
			rpt += codec.Repeat(i)

			lo, hi := codec.Split(w)
			dw = append(dw, lo, hi)
		}

		var b bytes.Buffer
		var st Stats

		_, err := DisasmStat(context.Background(), &b, dw, Options{GPUID: gpu}, &st)
		if err != nil {
			t.Fatalf("disasm: %v", err)
		}

		sum := 0
		for _, n := range st.InstrsPerCat {
			sum += n
		}

		if sum != st.InstrsCount-rpt {
			t.Fatalf("per cat sum %d, instrs %d, repeats %d", sum, st.InstrsCount, rpt)
		}

		if st.NopsCount > st.InstrsCount {
			t.Fatalf("nops %d > instrs %d", st.NopsCount, st.InstrsCount)
		}

		if lines := strings.Count(b.String(), "\n"); lines != len(raw) {
			t.Fatalf("%d lines for %d words", lines, len(raw))
		}
	})
}

func TestRegisterTracking(t *testing.T) {
	add := alu(isa.OpcAddF, isa.Reg(1, 2), isa.Reg(0, 0), isa.Reg(0, 1))
	add.Repeat = 2
	add.Src1R = true

	_, st := dis(t, 530, dwords(add))
	assert.Equal(t, 2, st.MaxReg) // r1.z + 2
	assert.True(t, st.UsedRegs.IsSet(int(isa.Reg(0, 2))))
	assert.False(t, st.UsedRegs.IsSet(int(isa.Reg(0, 3))))
	assert.Equal(t, 3, st.InstrsCount)

	shared := alu(isa.OpcAddF, isa.Reg(48, 0), isa.Reg(50, 0), isa.Reg(0, 0))

	_, st = dis(t, 530, dwords(shared))
	assert.Equal(t, 0, st.MaxReg)

	konst := alu(isa.OpcAddF, isa.Reg(0, 0), 0, 0)
	konst.Src2 = codec.ConstSrc(isa.Reg(7, 3))

	text, st := dis(t, 530, dwords(konst))
	assert.Equal(t, "add.f r0.x, r0.x, c7.w\n", text)
	assert.Equal(t, 7, st.MaxConst)

	sam := &codec.Cat5{
		RawOpc: isa.OpcSam.Sub(),
		Dst:    uint8(isa.Reg(1, 2)),
		Wrmask: 0xf,
		Type:   isa.TypeF32,
	}

	_, st = dis(t, 530, dwords(sam))
	assert.Equal(t, 2, st.MaxReg) // r1.z .. r2.y
}

func TestMergeRegs(t *testing.T) {
	add := alu(isa.OpcAddF, isa.Reg(5, 0), isa.Reg(5, 1), isa.Reg(1, 0))
	add.Full = false

	_, st := dis(t, 530, dwords(add))
	assert.Equal(t, 5, st.MaxHalfReg)
	assert.Equal(t, -1, st.MaxReg)

	_, st = dis(t, 630, dwords(add))
	assert.Equal(t, -1, st.MaxHalfReg)
	assert.Equal(t, 2, st.MaxReg) // 6 half regs in 3 full ones
}

func TestLabels(t *testing.T) {
	nop := cat0(isa.OpcNop)

	text, _ := dis(t, 530, dwords(branch(2), nop, nop, cat0(isa.OpcEnd)))
	assert.Equal(t, "br p0.x, #l0\nnop\nl0:\nnop\nend\n", text)

	text, _ = dis(t, 530, dwords(branch(100), nop))
	assert.Equal(t, "br p0.x, #100\nnop\n", text)

	back := branch(-1)
	back.Inv0 = true

	text, _ = dis(t, 530, dwords(nop, back))
	assert.Equal(t, "l0:\nnop\nbr !p0.x, #l0\n", text)
}

func TestFlags(t *testing.T) {
	add := alu(isa.OpcAddF, 0, 0, 0)
	add.Sy = true
	add.Jp = true
	add.Sat = true
	add.Repeat = 1

	text, st := dis(t, 530, dwords(add))
	assert.Equal(t, "(sy)(jp)(sat)(rpt1) add.f r0.x, r0.x, r0.x\n", text)
	assert.Equal(t, 1, st.SY)

	add.Repeat = 0
	add.Src1R = true
	add.Src2R = true

	text, st = dis(t, 530, dwords(add))
	assert.Equal(t, "(sy)(jp)(sat)(nop3) add.f r0.x, r0.x, r0.x\n", text)
	assert.Equal(t, 4, st.InstrsCount)
	assert.Equal(t, 3, st.NopsCount)
	assert.Equal(t, 3, st.InstrsPerCat[0])
	assert.Equal(t, 1, st.InstrsPerCat[2])
}

func TestRawAndIndent(t *testing.T) {
	var b bytes.Buffer

	_, err := Disasm(context.Background(), &b, []uint32{0, 0, 0, 0}, Options{GPUID: 530, Level: 2, Debug: PrintRaw})
	require.NoError(t, err)

	assert.Equal(t, "\t\t0:0000:0000[00000000_00000000] nop\n\t\t0:0001:0001[00000000_00000000] nop\n", b.String())

	b.Reset()

	_, err = Disasm(context.Background(), &b, []uint32{0, 0}, Options{GPUID: 530, Level: 12})
	require.NoError(t, err)

	assert.Equal(t, "xnop\n", b.String())
}

func TestPrintStats(t *testing.T) {
	var b bytes.Buffer

	_, err := Disasm(context.Background(), &b, []uint32{0, 0}, Options{GPUID: 530, Debug: PrintStats})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(b.String(), "nop\nStats:\n"))
	assert.Contains(t, b.String(), "- shaderdb: 1 instructions, 1 nops, 0 non-nops, -1 last-baryf, 0 half, 0 full\n")
	assert.Contains(t, b.String(), "- shaderdb: 0 sstall, 0 (ss), 0 (sy)\n")
}

func TestTruncated(t *testing.T) {
	text, st := dis(t, 530, []uint32{0, 0, 0})

	assert.Equal(t, "nop\n", text)
	assert.Equal(t, 1, st.InstrsCount)
}

func TestInvalidOpcode(t *testing.T) {
	i := &codec.Cat4{RawOpc: 7, Full: true}

	text, st := dis(t, 530, dwords(i))

	assert.Equal(t, "??? r0.x, r0.x\n", text)
	assert.Equal(t, 1, st.InstrsPerCat[4])
}

func TestAssertions(t *testing.T) {
	bad := &codec.Cat6LdGB{RawOpc: isa.OpcLdgb.Sub(), Mustbe0: true, Type: isa.TypeU32}
	dw := dwords(bad, cat0(isa.OpcNop))

	var b bytes.Buffer

	assert.Panics(t, func() {
		_, _ = Disasm(context.Background(), &b, dw, Options{GPUID: 530})
	})

	b.Reset()

	status, err := TryDisasm(context.Background(), &b, dw, Options{GPUID: 530})
	require.NoError(t, err)

	assert.Equal(t, StatusAssert, status)
	assert.Equal(t, "; assert: ldgb: mustbe0 bit set\nnop\n", b.String())

	b.Reset()

	var st Stats

	status, err = DisasmStat(context.Background(), &b, dw, Options{GPUID: 530, Assert: codec.Report}, &st)
	require.NoError(t, err)

	assert.Equal(t, StatusAssert, status)
	assert.True(t, strings.HasPrefix(b.String(), "ldgb."), "%q", b.String())
	assert.Contains(t, b.String(), " ; assert: ldgb: mustbe0 bit set\nnop\n")
	assert.Equal(t, 2, st.InstrsCount)
}

func TestA6xxMarkers(t *testing.T) {
	raw, ok := codec.A6xxRawOpc(isa.OpcLdibB)
	require.True(t, ok)

	i := &codec.Cat6A6xx{
		RawOpc: raw,
		Type:   isa.TypeU32,
		Pad3:   4,
		Pad5:   2 | 1<<3,
		Src2:   uint8(isa.Reg(2, 0)),
		Src1:   uint8(isa.Reg(3, 0)),
	}

	text, st := dis(t, 630, dwords(i))

	assert.Equal(t, "ldib.b.untyped.1d.u32.1.imm r2.x, 0, r3.x (legacy-opc)\n", text)
	assert.Equal(t, 3, st.MaxReg)
}

func TestVerbose(t *testing.T) {
	i := &codec.Cat7{RawOpc: isa.OpcFence.Sub(), Pad1: 5, R: true, W: true}

	var b bytes.Buffer

	_, err := Disasm(context.Background(), &b, dwords(i), Options{GPUID: 630, Debug: Verbose})
	require.NoError(t, err)

	assert.Equal(t, "fence.r.w {pad1: 0x5}\n", b.String())
}

func TestVerboseHiddenBits(t *testing.T) {
	verbose := func(i codec.Instr) (string, Status) {
		var b bytes.Buffer
		var st Stats

		status, err := DisasmStat(context.Background(), &b, dwords(i), Options{GPUID: 530, Debug: Verbose, Assert: codec.Report}, &st)
		require.NoError(t, err)

		return b.String(), status
	}

	s2en := func() *codec.Cat5 {
		i := &codec.Cat5{RawOpc: isa.OpcSam.Sub(), Full: true, Wrmask: 1, Type: isa.TypeF32}
		i.SetS2EN(3, 0, 0)

		return i
	}

	for _, tc := range []struct {
		name   string
		clean  codec.Instr
		dirty  codec.Instr
		want   string
		status Status
	}{
		{"ldgb_pad0",
			&codec.Cat6LdGB{RawOpc: isa.OpcLdgb.Sub(), Type: isa.TypeU32},
			&codec.Cat6LdGB{RawOpc: isa.OpcLdgb.Sub(), Type: isa.TypeU32, Pad0: true},
			"{pad0: 0x1}", StatusAssert},
		{"s2en_pad",
			s2en(),
			func() codec.Instr { i := s2en(); i.Hi |= 1; return i }(),
			"{pad: 0x1}", StatusEOF},
		{"mov_rel_pad",
			&codec.Cat1{Src: 1<<11 | 2, DstType: isa.TypeU32, SrcType: isa.TypeU32},
			&codec.Cat1{Src: 1<<12 | 1<<11 | 2, DstType: isa.TypeU32, SrcType: isa.TypeU32},
			"{src_pad: 0x1}", StatusEOF},
		{"load_off",
			&codec.Cat6{RawOpc: isa.OpcLdg.Sub(), Type: isa.TypeU32},
			&codec.Cat6{RawOpc: isa.OpcLdg.Sub(), Type: isa.TypeU32, Off: 5},
			"{off: 0x5}", StatusEOF},
		{"store_off",
			&codec.Cat6{RawOpc: isa.OpcStg.Sub(), Type: isa.TypeU32},
			&codec.Cat6{RawOpc: isa.OpcStg.Sub(), Type: isa.TypeU32, Off: 5},
			"{off: 0x5}", StatusEOF},
	} {
		t.Run(tc.name, func(t *testing.T) {
			clean, status := verbose(tc.clean)
			assert.Equal(t, StatusEOF, status)
			assert.NotContains(t, clean, "{")

			dirty, status := verbose(tc.dirty)
			assert.Equal(t, tc.status, status)
			assert.Contains(t, dirty, tc.want)
			assert.NotEqual(t, clean, dirty)
		})
	}

	text, _ := verbose(s2en())
	assert.Equal(t, "sam.s2en.nonuniform (f32)(x)r0.x, r0.x, r0.w\n", text)
}

func TestParseDebug(t *testing.T) {
	d, err := ParseDebug("raw, stats,verbose")
	require.NoError(t, err)
	assert.Equal(t, PrintRaw|PrintStats|Verbose, d)
	assert.Equal(t, "raw,stats,verbose", d.String())

	d, err = ParseDebug("")
	require.NoError(t, err)
	assert.Equal(t, Debug(0), d)

	_, err = ParseDebug("raw,nope")
	assert.Error(t, err)
}

func TestInstrName(t *testing.T) {
	assert.Equal(t, "??meta??", InstrName(isa.OpcMetaPhi))
	assert.Equal(t, "bary.f", InstrName(isa.OpcBaryF))
	assert.Equal(t, "???", InstrName(isa.MakeOpc(isa.Cat4, 7)))
}
