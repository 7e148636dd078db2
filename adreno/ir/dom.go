package ir

import (
	"context"

	"tlog.app/go/tlog"

	"github.com/slowlang/adreno/adreno/isa"
	"github.com/slowlang/adreno/adreno/set"
)

// CalculateDominance fills immediate dominators, dominator tree children
// and pre/post tree indices. Blocks unreachable from the entry get
// NoBlock IDom and -1 indices.
func (s *Shader) CalculateDominance(ctx context.Context) {
	tr := tlog.SpanFromContext(ctx)

	for _, b := range s.blocks {
		b.IDom = NoBlock
		b.DomChildren = b.DomChildren[:0]
		b.DomPre, b.DomPost = -1, -1
	}

	if len(s.Order) == 0 {
		return
	}

	entry := s.Order[0]

	po := s.postorder(entry)

	num := make([]int, len(s.blocks))
	for k := range num {
		num[k] = -1
	}

	for k, b := range po {
		num[b] = k
	}

	intersect := func(a, b BlockID) BlockID {
		for a != b {
			for num[a] < num[b] {
				a = s.blocks[a].IDom
			}

			for num[b] < num[a] {
				b = s.blocks[b].IDom
			}
		}

		return a
	}

	s.blocks[entry].IDom = entry

	for iter, changed := 0, true; changed; iter++ {
		changed = false

		for k := len(po) - 2; k >= 0; k-- {
			b := s.blocks[po[k]]

			idom := NoBlock

			for _, p := range b.Preds {
				if s.blocks[p].IDom == NoBlock {
					continue
				}

				if idom == NoBlock {
					idom = p
				} else {
					idom = intersect(p, idom)
				}
			}

			if b.IDom != idom {
				b.IDom = idom
				changed = true
			}
		}

		if tr.If("ir_dom") {
			tr.Printw("dominance iteration", "iter", iter, "changed", changed)
		}
	}

	s.blocks[entry].IDom = NoBlock

	for _, id := range s.Order {
		b := s.blocks[id]
		if b.IDom == NoBlock {
			continue
		}

		p := s.blocks[b.IDom]
		p.DomChildren = append(p.DomChildren, id)
	}

	var pre, post int

	var walk func(b *Block)
	walk = func(b *Block) {
		b.DomPre = pre
		pre++

		for _, c := range b.DomChildren {
			walk(s.blocks[c])
		}

		b.DomPost = post
		post++
	}

	walk(s.blocks[entry])

	if tr.If("ir_dom") {
		for b := range s.Blocks() {
			tr.Printw("dom", "block", b.ID, "idom", b.IDom, "pre", b.DomPre, "post", b.DomPost, "children", b.DomChildren)
		}
	}
}

// Dominates reports whether a dominates b.
// Dominance must be calculated.
func (s *Shader) Dominates(a, b BlockID) bool {
	x, y := s.blocks[a], s.blocks[b]

	if x.DomPre < 0 || y.DomPre < 0 {
		return false
	}

	return x.DomPre <= y.DomPre && y.DomPost <= x.DomPost
}

func (s *Shader) postorder(entry BlockID) []BlockID {
	po := make([]BlockID, 0, len(s.Order))
	seen := set.MakeBits[BlockID]()

	var dfs func(b BlockID)
	dfs = func(b BlockID) {
		seen.Set(b)

		for _, x := range s.blocks[b].Succ() {
			if !seen.IsSet(x) {
				dfs(x)
			}
		}

		po = append(po, b)
	}

	dfs(entry)

	return po
}

// CalculateLiveness fills LiveIn and LiveOut with the ssa values live
// at block boundaries. A phi source is live out of the predecessor
// at the same index.
func (s *Shader) CalculateLiveness(ctx context.Context) {
	tr := tlog.SpanFromContext(ctx)

	type local struct {
		use, def set.Bits[Reg]
		phi      []set.Bits[Reg] // per predecessor
	}

	loc := make([]local, len(s.blocks))

	for b := range s.Blocks() {
		l := &loc[b.ID]
		l.use = set.MakeBits[Reg]()
		l.def = set.MakeBits[Reg]()

		for i := range s.Instrs(b) {
			if i.Opc == isa.OpcMetaPhi {
				for k, r := range s.Srcs(i) {
					if r.Flags&RegSSA == 0 || k >= len(b.Preds) {
						continue
					}

					for len(l.phi) <= k {
						l.phi = append(l.phi, set.MakeBits[Reg]())
					}

					l.phi[k].Set(r.Def)
				}
			} else {
				for _, r := range s.Srcs(i) {
					if r.Flags&RegSSA != 0 && !l.def.IsSet(r.Def) {
						l.use.Set(r.Def)
					}
				}
			}

			for _, r := range s.Dsts(i) {
				l.def.Set(r.ID)
			}
		}

		b.LiveIn = set.MakeBits[Reg]()
		b.LiveOut = set.MakeBits[Reg]()
	}

	for iter, changed := 0, true; changed; iter++ {
		changed = false

		for b := range s.BlocksReverse() {
			out := set.MakeBits[Reg]()

			for _, x := range b.Succ() {
				succ := s.blocks[x]
				out.Merge(succ.LiveIn)

				l := &loc[x]

				for k, p := range succ.Preds {
					if p == b.ID && k < len(l.phi) {
						out.Merge(l.phi[k])
					}
				}
			}

			in := out.Copy()
			in.Subtract(loc[b.ID].def)
			in.Merge(loc[b.ID].use)

			if !in.Equal(b.LiveIn) || !out.Equal(b.LiveOut) {
				b.LiveIn, b.LiveOut = in, out
				changed = true
			}
		}

		if tr.If("ir_live") {
			tr.Printw("liveness iteration", "iter", iter, "changed", changed)
		}
	}
}
