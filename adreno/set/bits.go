// Package set is a bit set keyed by small integer ids:
// register indices, instruction and block ids.
package set

import (
	"iter"
	"math/bits"

	"tlog.app/go/tlog/tlwire"
)

type (
	Key interface {
		~int | ~int32 | ~int64 | ~uint16
	}

	Bits[K Key] struct {
		b  []uint64
		b0 [2]uint64
	}
)

func MakeBits[K Key](k ...K) Bits[K] {
	var s Bits[K]

	s.b = s.b0[:0]

	for _, k := range k {
		s.Set(k)
	}

	return s
}

func (s Bits[K]) Copy() Bits[K] {
	c := MakeBits[K]()

	c.grow(len(s.b) - 1)
	copy(c.b, s.b)

	return c
}

func (s *Bits[K]) Set(k K) {
	i, j := ij(k)

	s.grow(i)

	s.b[i] |= 1 << j
}

func (s Bits[K]) IsSet(k K) bool {
	i, j := ij(k)

	if i >= len(s.b) {
		return false
	}

	return s.b[i]&(1<<j) != 0
}

func (s Bits[K]) Clear(k K) {
	i, j := ij(k)

	if i >= len(s.b) {
		return
	}

	s.b[i] &^= 1 << j
}

// Merge adds x to s and reports whether s changed.
func (s *Bits[K]) Merge(x Bits[K]) (changed bool) {
	s.grow(len(x.b) - 1)

	for i, x := range x.b {
		changed = changed || s.b[i]|x != s.b[i]
		s.b[i] |= x
	}

	return changed
}

func (s Bits[K]) Intersect(x Bits[K]) {
	for i := range s.b {
		if i < len(x.b) {
			s.b[i] &= x.b[i]
		} else {
			s.b[i] = 0
		}
	}
}

func (s Bits[K]) Subtract(x Bits[K]) {
	n := min(len(s.b), len(x.b))

	for i, x := range x.b[:n] {
		s.b[i] &^= x
	}
}

func (s Bits[K]) Equal(x Bits[K]) bool {
	n := max(len(s.b), len(x.b))

	for i := 0; i < n; i++ {
		if word(s.b, i) != word(x.b, i) {
			return false
		}
	}

	return true
}

func (s Bits[K]) Size() (r int) {
	for _, c := range s.b {
		r += bits.OnesCount64(c)
	}

	return r
}

// Max returns the highest key in the set or -1.
func (s Bits[K]) Max() int {
	for i := len(s.b) - 1; i >= 0; i-- {
		if s.b[i] != 0 {
			return i*64 + bits.Len64(s.b[i]) - 1
		}
	}

	return -1
}

func (s Bits[K]) Range(f func(k K) bool) {
	for i, x := range s.b {
		for x != 0 {
			j := bits.TrailingZeros64(x)
			x &^= 1 << j

			if !f(K(i*64 + j)) {
				return
			}
		}
	}
}

func (s Bits[K]) All() iter.Seq[K] {
	return s.Range
}

func (s Bits[K]) TlogAppend(b []byte) []byte {
	var e tlwire.LowEncoder

	if s.b == nil {
		return e.AppendNil(b)
	}

	b = e.AppendTag(b, tlwire.Array, -1)

	for k := range s.All() {
		b = e.AppendInt(b, int(k))
	}

	b = e.AppendBreak(b)

	return b
}

func (s *Bits[K]) Reset() {
	clear(s.b)

	s.b = s.b[:0]
}

func ij[K Key](k K) (i int, j int) {
	p := int(k)

	return p / 64, p % 64
}

func word(b []uint64, i int) uint64 {
	if i < len(b) {
		return b[i]
	}

	return 0
}

func (s *Bits[K]) grow(i int) {
	if s.b == nil {
		s.b = s.b0[:0]
	}

	for i >= len(s.b) {
		s.b = append(s.b, 0)
	}
}
