// Package qualifier implements the four-element substructural lattice used
// to annotate Kinds and, transitively, the Terms that inhabit their Types.
package qualifier

import "fmt"

// Qualifier is a point in the diamond lattice U < {R,A} < L.
type Qualifier uint8

const (
	// Unlimited is the bottom element: no usage restriction.
	Unlimited Qualifier = iota
	// Relevant values must be used at least once.
	Relevant
	// Affine values may be used at most once.
	Affine
	// Linear is the top element (Affine ∨ Relevant): used exactly once.
	Linear
)

func (q Qualifier) String() string {
	switch q {
	case Unlimited:
		return "U"
	case Relevant:
		return "R"
	case Affine:
		return "A"
	case Linear:
		return "L"
	default:
		return fmt.Sprintf("Qualifier(%d)", uint8(q))
	}
}

// Suffix is the pretty-printer suffix glyph for q (ᵁ ᴿ ᴬ ᴸ).
func (q Qualifier) Suffix() string {
	switch q {
	case Unlimited:
		return "ᵁ"
	case Relevant:
		return "ᴿ"
	case Affine:
		return "ᴬ"
	case Linear:
		return "ᴸ"
	default:
		return "?"
	}
}

// leq is the partial order of the diamond: U below R and A, both below L.
func leq(a, b Qualifier) bool {
	if a == b {
		return true
	}
	if a == Unlimited {
		return true
	}
	if b == Linear {
		return true
	}
	return false
}

// Less reports whether a is strictly below b in the lattice order.
func Less(a, b Qualifier) bool { return a != b && leq(a, b) }

// LessEqual reports whether a ≤ b in the lattice order.
func LessEqual(a, b Qualifier) bool { return leq(a, b) }

// Meet computes a ∧ b, the substructural discipline required to satisfy BOTH
// a and b (used by Intersection type formation, §4.6).
func Meet(a, b Qualifier) Qualifier {
	if a == b {
		return a
	}
	if a == Unlimited || b == Unlimited {
		return Unlimited
	}
	if a == Linear {
		return b
	}
	if b == Linear {
		return a
	}
	// a, b distinct and both in {Relevant, Affine}: meet is Unlimited.
	return Unlimited
}

// Join computes a ∨ b, the substructural discipline implied by EITHER a or b
// (used by Sigma and Variant type formation, §4.6).
func Join(a, b Qualifier) Qualifier {
	if a == b {
		return a
	}
	if a == Linear || b == Linear {
		return Linear
	}
	if a == Unlimited {
		return b
	}
	if b == Unlimited {
		return a
	}
	// a, b distinct and both in {Relevant, Affine}: join is Linear.
	return Linear
}

// JoinAll folds Join over qs, returning Unlimited for an empty sequence (the
// lattice bottom is the identity element for Join).
func JoinAll(qs ...Qualifier) Qualifier {
	acc := Unlimited
	for _, q := range qs {
		acc = Join(acc, q)
	}
	return acc
}

// MeetAll folds Meet over qs, returning Linear for an empty sequence (the
// lattice top is the identity element for Meet).
func MeetAll(qs ...Qualifier) Qualifier {
	acc := Linear
	for _, q := range qs {
		acc = Meet(acc, q)
	}
	return acc
}
