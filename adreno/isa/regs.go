package isa

import "github.com/nikandfor/hacked/hfmt"

// RegID is a scalar register index: num<<2 | comp.
type RegID uint16

const (
	RegA0 = 61 // a0.x, a1.x
	RegP0 = 62 // p0.x

	// SharedBase is the first register number of the shared file.
	SharedBase = 48

	InvalidReg RegID = 63 << 2
)

func Reg(num, comp int) RegID {
	return RegID(num<<2 | comp&3)
}

func (r RegID) Num() int  { return int(r >> 2) }
func (r RegID) Comp() int { return int(r & 3) }

func (r RegID) IsAddr() bool   { return r.Num() == RegA0 }
func (r RegID) IsPred() bool   { return r.Num() == RegP0 }
func (r RegID) IsShared() bool { return r.Num() >= SharedBase && r.Num() < RegA0 }
func (r RegID) Valid() bool    { return r != InvalidReg }

// IsGPR reports whether r names an ordinary general purpose register.
func (r RegID) IsGPR() bool {
	return r.Num() < RegA0
}

const comps = "xyzw"

// AppendReg appends r in listing form: r1.x, hr2.y, c3.z, a0.x, p0.x.
// half only affects the general purpose file.
func AppendReg(b []byte, r RegID, half, konst bool) []byte {
	switch {
	case konst:
		b = append(b, 'c')
	case r.IsAddr():
		return hfmt.Appendf(b, "a%d.x", r.Comp())
	case r.IsPred():
		return hfmt.Appendf(b, "p0.%c", comps[r.Comp()])
	case half:
		b = append(b, "hr"...)
	default:
		b = append(b, 'r')
	}

	return hfmt.Appendf(b, "%d.%c", r.Num(), comps[r.Comp()])
}

func (r RegID) String() string {
	return string(AppendReg(nil, r, false, false))
}
