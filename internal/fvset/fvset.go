// Package fvset implements the compact per-node free-variable set keyed by
// De Bruijn index (0 = innermost binder), used by the expression algebra to
// track which enclosing binders a node's operands still reference.
package fvset

import "math/bits"

// inlineWords is the number of uint64 words stored inline before a Set
// spills its bits onto the heap. Most nodes reference only a handful of
// binders, so this covers the common case without an allocation.
const inlineWords = 2

// Set is a small-inline, heap-spilling bitset of De Bruijn indices.
//
// The zero value is an empty set, ready to use.
type Set struct {
	inline [inlineWords]uint64
	spill  []uint64 // nil until a bit ≥ inlineWords*64 is set
}

func wordIndex(k int) int { return k / 64 }
func bitMask(k int) uint64 { return uint64(1) << uint(k%64) }

func (s *Set) wordCount() int {
	if s.spill != nil {
		return len(s.spill)
	}
	return inlineWords
}

func (s *Set) wordAt(i int) uint64 {
	if s.spill != nil {
		if i < len(s.spill) {
			return s.spill[i]
		}
		return 0
	}
	if i < inlineWords {
		return s.inline[i]
	}
	return 0
}

// grow ensures word index i is addressable, spilling to the heap if needed.
func (s *Set) grow(i int) {
	if s.spill == nil && i < inlineWords {
		return
	}
	if s.spill == nil {
		s.spill = make([]uint64, i+1)
		copy(s.spill, s.inline[:])
		return
	}
	if i >= len(s.spill) {
		grown := make([]uint64, i+1)
		copy(grown, s.spill)
		s.spill = grown
	}
}

// Set marks De Bruijn index k as free.
func (s *Set) Set(k int) {
	if k < 0 {
		panic("fvset: negative index")
	}
	w := wordIndex(k)
	s.grow(w)
	if s.spill != nil {
		s.spill[w] |= bitMask(k)
	} else {
		s.inline[w] |= bitMask(k)
	}
}

// Test reports whether index k is marked free.
func (s *Set) Test(k int) bool {
	if k < 0 {
		return false
	}
	return s.wordAt(wordIndex(k))&bitMask(k) != 0
}

// OrIn unions other into s in place.
func (s *Set) OrIn(other *Set) {
	n := other.wordCount()
	if n > s.wordCount() {
		s.grow(n - 1)
	}
	for i := 0; i < n; i++ {
		w := other.wordAt(i)
		if w == 0 {
			continue
		}
		if s.spill != nil {
			s.spill[i] |= w
		} else {
			s.inline[i] |= w
		}
	}
}

// Shift drops the lowest k bits and shifts the remainder right by k,
// matching the De Bruijn renumbering induced by crossing k binders.
func (s *Set) Shift(k int) *Set {
	if k == 0 {
		out := *s
		return &out
	}
	out := &Set{}
	n := s.wordCount()
	bitLen := n * 64
	for i := k; i < bitLen; i++ {
		if s.Test(i) {
			out.Set(i - k)
		}
	}
	return out
}

// Any reports whether the set is non-empty.
func (s *Set) Any() bool {
	for i := 0; i < s.wordCount(); i++ {
		if s.wordAt(i) != 0 {
			return true
		}
	}
	return false
}

// None reports whether the set is empty.
func (s *Set) None() bool { return !s.Any() }

// AnyRange reports whether any bit in [l, r) is set.
func (s *Set) AnyRange(l, r int) bool {
	for i := l; i < r; i++ {
		if s.Test(i) {
			return true
		}
	}
	return false
}

// NoneRange reports whether no bit in [l, r) is set.
func (s *Set) NoneRange(l, r int) bool { return !s.AnyRange(l, r) }

// AnyBegin reports whether any bit ≥ k is set.
func (s *Set) AnyBegin(k int) bool {
	bitLen := s.wordCount() * 64
	return s.AnyRange(k, bitLen)
}

// NoneEnd reports whether no bit < k is set.
func (s *Set) NoneEnd(k int) bool { return !s.AnyRange(0, k) }

// Len returns one past the highest set bit, or 0 if the set is empty.
func (s *Set) Len() int {
	for i := s.wordCount() - 1; i >= 0; i-- {
		w := s.wordAt(i)
		if w != 0 {
			return i*64 + (64 - bits.LeadingZeros64(w))
		}
	}
	return 0
}

// Bits returns the sorted list of set indices. Intended for debugging and
// tests; not on any hot path.
func (s *Set) Bits() []int {
	var out []int
	for i := 0; i < s.wordCount(); i++ {
		w := s.wordAt(i)
		for w != 0 {
			b := bits.TrailingZeros64(w)
			out = append(out, i*64+b)
			w &= w - 1
		}
	}
	return out
}

// FromBits builds a Set containing exactly the given indices.
func FromBits(bs ...int) *Set {
	s := &Set{}
	for _, b := range bs {
		s.Set(b)
	}
	return s
}

// Union returns a new Set containing the union of a and b without mutating
// either input.
func Union(a, b *Set) *Set {
	out := &Set{}
	out.OrIn(a)
	out.OrIn(b)
	return out
}
