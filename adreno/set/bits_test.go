package set

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestBits(t *testing.T) {
	s := MakeBits(1, 3, 64, 200)

	assert.True(t, s.IsSet(3))
	assert.True(t, s.IsSet(200))
	assert.False(t, s.IsSet(2))
	assert.False(t, s.IsSet(1000))
	assert.Equal(t, 4, s.Size())
	assert.Equal(t, 200, s.Max())

	s.Clear(200)
	assert.Equal(t, 64, s.Max())

	assert.Equal(t, []int{1, 3, 64}, slices.Collect(s.All()))

	c := s.Copy()
	c.Set(5)
	assert.False(t, s.IsSet(5))

	assert.True(t, s.Merge(c))
	assert.False(t, s.Merge(c))
	assert.True(t, s.Equal(c))

	s.Subtract(MakeBits(1, 64))
	assert.Equal(t, []int{3, 5}, slices.Collect(s.All()))

	s.Intersect(MakeBits(5))
	assert.Equal(t, []int{5}, slices.Collect(s.All()))

	s.Reset()
	assert.Equal(t, 0, s.Size())
	assert.Equal(t, -1, s.Max())

	var z Bits[int]
	assert.Equal(t, -1, z.Max())
	assert.True(t, z.Equal(MakeBits[int]()))
}

func TestBitsModel(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		keys := rapid.SliceOf(rapid.IntRange(0, 500)).Draw(t, "keys")

		s := MakeBits[int]()
		m := map[int]bool{}
		top := -1

		for _, k := range keys {
			s.Set(k)
			m[k] = true
			top = max(top, k)
		}

		if s.Size() != len(m) {
			t.Fatalf("size %d, want %d", s.Size(), len(m))
		}

		if s.Max() != top {
			t.Fatalf("max %d, want %d", s.Max(), top)
		}

		for k := range s.All() {
			if !m[k] {
				t.Fatalf("unexpected key %d", k)
			}
		}
	})
}
