package codec

type bitw uint64

// get returns n bits of w starting at lo.
func (w bitw) get(lo, n uint) uint64 {
	return uint64(w) >> lo & (1<<n - 1)
}

func (w bitw) flag(b uint) bool {
	return uint64(w)>>b&1 != 0
}

func (w *bitw) put(lo, n uint, v uint64) {
	m := uint64(1<<n-1) << lo

	*w = bitw(uint64(*w)&^m | v<<lo&m)
}

func (w *bitw) set(b uint, v bool) {
	if v {
		*w |= 1 << b
	} else {
		*w &^= 1 << b
	}
}

func b2u(v bool) uint64 {
	if v {
		return 1
	}

	return 0
}

// sext sign-extends the low n bits of v.
func sext(v uint64, n uint) int64 {
	s := 64 - n

	return int64(v<<s) >> s
}

// Word joins two dwords the way they lie in memory.
func Word(lo, hi uint32) uint64 {
	return uint64(hi)<<32 | uint64(lo)
}

func Split(w uint64) (lo, hi uint32) {
	return uint32(w), uint32(w >> 32)
}
